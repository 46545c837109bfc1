package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConsoleLevels(t *testing.T) {
	var console bytes.Buffer
	log := New(Options{Level: "info", Console: &console})

	log.Debug("debug msg")
	log.Info("info msg", "display", "lcd-1")

	out := console.String()
	assert.NotContains(t, out, "debug msg")
	assert.Contains(t, out, "info msg")
	assert.Contains(t, out, "display=lcd-1")
	assert.Regexp(t, `time=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z `, out)
}

func TestNewCopiesToFileAndExtra(t *testing.T) {
	var console, file, extra bytes.Buffer
	log := New(Options{
		Tool:    "connalign",
		Level:   "debug",
		Console: &console,
		File:    &file,
		Extra:   []slog.Handler{slog.NewJSONHandler(&extra, nil)},
	})

	log.Info("both")

	for _, out := range []string{console.String(), file.String()} {
		assert.Contains(t, out, "msg=both")
		assert.Contains(t, out, "tool=connalign")
	}
	assert.Contains(t, extra.String(), `"msg":"both"`)
	assert.Contains(t, extra.String(), `"tool":"connalign"`)
}

type failing struct{ slog.Handler }

func (failing) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestFanoutReportsFailures(t *testing.T) {
	var buf bytes.Buffer
	h := Fanout(failing{slog.NewTextHandler(io.Discard, nil)}, nil, slog.NewTextHandler(&buf, nil))

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still written", 0))
	assert.EqualError(t, err, "disk full")
	assert.Contains(t, buf.String(), "still written")
}

func TestFanoutLevels(t *testing.T) {
	var warn, debug bytes.Buffer
	log := slog.New(Fanout(
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))

	log.WithGroup("hud").Info("seeded", "panel", 5)

	assert.Empty(t, warn.String())
	assert.Contains(t, debug.String(), "hud.panel=5")
	assert.False(t, Fanout().Enabled(context.Background(), slog.LevelError))
}

func TestFanoutSingle(t *testing.T) {
	h := slog.NewTextHandler(io.Discard, nil)
	assert.Equal(t, slog.Handler(h), Fanout(nil, h))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelError+2, ParseLevel("error+2"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, Nop{}, OrNop(nil))
	l := slog.Default()
	var want Logger = l
	assert.Equal(t, want, OrNop(l))
}

func TestLogFilePath(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "connalign.20240301_123005.log"), LogFilePath("logs", "connalign", ts))
}
