// Package customdata reads and seeds the display's option block, an INI
// section stored in the host entity's free-form custom data.
package customdata

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/ini.v1"
)

// Section and key names.
const (
	Section          = "ConnAlign"
	KeyRelativeToLcd = "relativeToLcd"
	KeyUseLargeFont  = "useLargeFont"
)

// ErrSyntax marks text that is not a valid key/value block. Options
// returned with it are the defaults.
var ErrSyntax = errors.New("customdata: syntax error")

// Options are the user-editable display settings.
type Options struct {
	// RelativeToLcd shows offsets in the panel frame instead of the
	// connector frame.
	RelativeToLcd bool
	// UseLargeFont drops the unit suffix from the position readout.
	UseLargeFont bool
}

// Defaults returns both options enabled.
func Defaults() Options {
	return Options{RelativeToLcd: true, UseLargeFont: true}
}

type option struct {
	key string
	ptr func(*Options) *bool
}

var options = []option{
	{KeyRelativeToLcd, func(o *Options) *bool { return &o.RelativeToLcd }},
	{KeyUseLargeFont, func(o *Options) *bool { return &o.UseLargeFont }},
}

// Read parses text. Missing keys and values that are not booleans read as
// defaults; the latter are reported in the returned error.
func Read(text string) (Options, error) {
	opts := Defaults()
	f, err := ini.Load([]byte(text))
	if err != nil {
		return opts, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return readSection(f, opts)
}

// GetOrCreate parses text and adds the section and any missing keys with
// their defaults. It returns the options, the text to store back and
// whether that text differs from the input. Unparseable text is left alone.
func GetOrCreate(text string) (Options, string, bool, error) {
	opts := Defaults()
	f, err := ini.Load([]byte(text))
	if err != nil {
		return opts, text, false, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	changed := false
	sec := f.Section(Section)
	for _, o := range options {
		if sec.HasKey(o.key) {
			continue
		}
		if _, err := sec.NewKey(o.key, fmt.Sprint(*o.ptr(&opts))); err != nil {
			return opts, text, false, fmt.Errorf("customdata: add %s: %w", o.key, err)
		}
		changed = true
	}

	opts, readErr := readSection(f, opts)
	if !changed {
		return opts, text, false, readErr
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return opts, text, false, fmt.Errorf("customdata: write: %w", err)
	}
	return opts, buf.String(), true, readErr
}

func readSection(f *ini.File, opts Options) (Options, error) {
	if !f.HasSection(Section) {
		return opts, nil
	}
	sec := f.Section(Section)
	var errs []error
	for _, o := range options {
		if !sec.HasKey(o.key) {
			continue
		}
		v, err := sec.Key(o.key).Bool()
		if err != nil {
			errs = append(errs, fmt.Errorf("customdata: %s: %w", o.key, err))
			continue
		}
		*o.ptr(&opts) = v
	}
	return opts, errors.Join(errs...)
}
