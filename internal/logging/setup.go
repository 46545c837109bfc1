package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Options shapes the logger a tool builds at startup.
type Options struct {
	// Tool is attached to every record as the "tool" attribute when set.
	Tool string
	// Level is a slog level name ("debug", "info", "warn", "error"). Unknown
	// names log at info.
	Level string
	// Console receives records; nil means stderr.
	Console io.Writer
	// File, when set, receives a copy of every record, e.g. a session log.
	File io.Writer
	// Extra handlers see every record too. Tests use it to capture output.
	Extra []slog.Handler
}

// New builds the tool logger. Timestamps are RFC3339 in UTC so session logs
// from different machines line up.
func New(opts Options) *slog.Logger {
	ho := &slog.HandlerOptions{Level: ParseLevel(opts.Level), ReplaceAttr: utcTime}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	handlers := []slog.Handler{slog.NewTextHandler(console, ho)}
	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, ho))
	}
	handlers = append(handlers, opts.Extra...)

	var h slog.Handler = Fanout(handlers...)
	if opts.Tool != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("tool", opts.Tool)})
	}
	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level. Offsets such as "warn+2"
// are accepted; anything unreadable is info.
func ParseLevel(name string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}
