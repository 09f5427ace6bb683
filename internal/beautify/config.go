package beautify

import (
	"context"
	"unicode/utf8"

	"github.com/kobzarvs/qbeautify/internal/formatter"
)

// Formatter rewrites a whole document.
type Formatter interface {
	Format(ctx context.Context, text string, opts formatter.Options) (string, error)
}

type FormatterFunc func(ctx context.Context, text string, opts formatter.Options) (string, error)

func (f FormatterFunc) Format(ctx context.Context, text string, opts formatter.Options) (string, error) {
	return f(ctx, text, opts)
}

// TriggerFunc reports whether inserted text should cause a reformat.
type TriggerFunc func(inserted string) bool

// TriggerChars returns a TriggerFunc matching the first rune of the
// inserted text against chars.
func TriggerChars(chars ...rune) TriggerFunc {
	set := make(map[rune]bool, len(chars))
	for _, c := range chars {
		set[c] = true
	}
	return func(inserted string) bool {
		r, size := utf8.DecodeRuneInString(inserted)
		return size > 0 && set[r]
	}
}

// Profile is the formatting capability of one mode.
type Profile struct {
	Formatter Formatter
	Trigger   TriggerFunc
	Options   formatter.Options
}

// Config is a fully resolved session configuration. Build it with Resolve.
type Config struct {
	InitialBeautify bool
	AutoBeautify    bool
	profiles        map[Mode]Profile
}

// Profile returns the profile for m.
func (c Config) Profile(m Mode) (Profile, bool) {
	p, ok := c.profiles[m]
	return p, ok
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	opts := formatter.DefaultOptions()
	return Config{
		InitialBeautify: true,
		AutoBeautify:    true,
		profiles: map[Mode]Profile{
			ModeScript: {
				Formatter: FormatterFunc(formatter.Script),
				Trigger:   TriggerChars('}', ']', ';'),
				Options:   opts,
			},
			ModeStyle: {
				Formatter: FormatterFunc(formatter.Style),
				Trigger:   TriggerChars('}', ';'),
				Options:   opts,
			},
			ModeMarkup: {
				Formatter: FormatterFunc(formatter.Markup),
				Trigger:   TriggerChars('>'),
				Options:   opts,
			},
		},
	}
}

// Overrides is a partial configuration. Nil fields keep the lower layer.
type Overrides struct {
	InitialBeautify *bool
	AutoBeautify    *bool
	Modes           map[Mode]ModeOverride
}

type ModeOverride struct {
	Formatter Formatter
	Trigger   TriggerFunc
	// Disable removes the formatter for the mode.
	Disable bool

	IndentSize               *int
	IndentChar               *rune
	PreserveNewlines         *bool
	EndWithNewline           *bool
	NewlineBetweenRules      *bool
	SelectorSeparatorNewline *bool
	IndentInnerHTML          *bool
}

// Resolve layers the defaults, the host indent unit and o, in that order.
func Resolve(indentUnit int, o *Overrides) Config {
	cfg := Defaults()
	if indentUnit > 0 {
		for m, p := range cfg.profiles {
			p.Options.IndentSize = indentUnit
			cfg.profiles[m] = p
		}
	}
	if o == nil {
		return cfg
	}
	if o.InitialBeautify != nil {
		cfg.InitialBeautify = *o.InitialBeautify
	}
	if o.AutoBeautify != nil {
		cfg.AutoBeautify = *o.AutoBeautify
	}
	for m, mo := range o.Modes {
		if m == ModeNone {
			continue
		}
		p := cfg.profiles[m]
		if mo.Formatter != nil {
			p.Formatter = mo.Formatter
		}
		if mo.Disable {
			p.Formatter = nil
		}
		if mo.Trigger != nil {
			p.Trigger = mo.Trigger
		}
		mo.apply(&p.Options)
		cfg.profiles[m] = p
	}
	return cfg
}

func (mo ModeOverride) apply(opts *formatter.Options) {
	if mo.IndentSize != nil {
		opts.IndentSize = *mo.IndentSize
	}
	if mo.IndentChar != nil {
		opts.IndentChar = *mo.IndentChar
	}
	if mo.PreserveNewlines != nil {
		opts.PreserveNewlines = *mo.PreserveNewlines
	}
	if mo.EndWithNewline != nil {
		opts.EndWithNewline = *mo.EndWithNewline
	}
	if mo.NewlineBetweenRules != nil {
		opts.NewlineBetweenRules = *mo.NewlineBetweenRules
	}
	if mo.SelectorSeparatorNewline != nil {
		opts.SelectorSeparatorNewline = *mo.SelectorSeparatorNewline
	}
	if mo.IndentInnerHTML != nil {
		opts.IndentInnerHTML = *mo.IndentInnerHTML
	}
}

// Setting is the value a session is configured with: disabled, enabled with
// defaults, or enabled with overrides.
type Setting struct {
	Enabled   bool
	Overrides *Overrides
}

func Disabled() Setting {
	return Setting{}
}

func Enabled() Setting {
	return Setting{Enabled: true}
}

func WithOverrides(o Overrides) Setting {
	return Setting{Enabled: true, Overrides: &o}
}
