// Package beautify reformats a hosted document when a completion trigger
// is typed and keeps the cursor next to the character that triggered it.
package beautify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kobzarvs/qbeautify/internal/document"
)

// Host is the editor session the bridge is attached to.
type Host interface {
	Value() string
	SetValue(text string)
	LineCount() int
	Line(i int) string
	Range(from, to document.Pos) string
	SetCursor(pos document.Pos)
	ModeName() string
	IndentUnit() int
	Subscribe(o document.Observer)
	Unsubscribe(o document.Observer)
}

// Outcome tells what FormatNow did.
type Outcome int

const (
	OutcomeDisabled Outcome = iota
	OutcomeNoMode
	OutcomeNoFormatter
	OutcomeFailed
	OutcomeUnchanged
	OutcomeFormatted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDisabled:
		return "disabled"
	case OutcomeNoMode:
		return "no mode"
	case OutcomeNoFormatter:
		return "no formatter"
	case OutcomeFailed:
		return "failed"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeFormatted:
		return "formatted"
	}
	return "unknown"
}

// FormatError is returned when a mode's formatter fails.
type FormatError struct {
	Mode Mode
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("beautify: %s formatter: %v", e.Mode, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

var errPanic = errors.New("formatter panicked")

type Option func(*Bridge)

func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// WithErrorHandler receives formatter failures raised while handling
// change events, which have no caller to return them to.
func WithErrorHandler(fn func(error)) Option {
	return func(b *Bridge) {
		b.onError = fn
	}
}

// WithContext sets the context used for formats started by change events.
func WithContext(ctx context.Context) Option {
	return func(b *Bridge) {
		if ctx != nil {
			b.ctx = ctx
		}
	}
}

// Bridge binds one host session to the formatters.
type Bridge struct {
	host       Host
	cfg        *Config
	log        *zap.Logger
	onError    func(error)
	ctx        context.Context
	subscribed bool
	applying   bool
	last       Outcome
}

// Attach configures a bridge for host. A disabled setting yields an inert
// bridge. The returned error comes from the initial format; the bridge is
// attached regardless.
func Attach(host Host, s Setting, opts ...Option) (*Bridge, error) {
	b := &Bridge{
		host: host,
		log:  zap.NewNop(),
		ctx:  context.Background(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, b.Reconfigure(s)
}

// Reconfigure replaces the session configuration.
func (b *Bridge) Reconfigure(s Setting) error {
	if b.subscribed {
		b.host.Unsubscribe(b)
		b.subscribed = false
	}
	if !s.Enabled {
		b.cfg = nil
		b.log.Debug("auto-format disabled")
		return nil
	}
	cfg := Resolve(b.host.IndentUnit(), s.Overrides)
	b.cfg = &cfg
	b.log.Debug("auto-format configured",
		zap.Bool("initial", cfg.InitialBeautify),
		zap.Bool("auto", cfg.AutoBeautify),
		zap.Int("indentUnit", b.host.IndentUnit()))

	var err error
	if cfg.InitialBeautify {
		_, err = b.FormatNow(b.ctx)
	}
	b.host.Subscribe(b)
	b.subscribed = true
	return err
}

// Detach stops listening to the host and drops the configuration.
func (b *Bridge) Detach() {
	_ = b.Reconfigure(Disabled())
}

// Config returns the active configuration, false when disabled.
func (b *Bridge) Config() (Config, bool) {
	if b.cfg == nil {
		return Config{}, false
	}
	return *b.cfg, true
}

// Enabled reports whether auto-format reacts to change events.
func (b *Bridge) Enabled() bool {
	return b.cfg != nil && b.cfg.AutoBeautify
}

// LastOutcome returns the outcome of the most recent format attempt.
func (b *Bridge) LastOutcome() Outcome {
	return b.last
}

// FormatNow formats the whole document with the formatter of the current
// mode. Missing mode or formatter leave the document alone and return a nil
// error.
func (b *Bridge) FormatNow(ctx context.Context) (Outcome, error) {
	out, err := b.formatNow(ctx)
	b.last = out
	return out, err
}

func (b *Bridge) formatNow(ctx context.Context) (Outcome, error) {
	if b.cfg == nil {
		return OutcomeDisabled, nil
	}
	mode := ModeForName(b.host.ModeName())
	if mode == ModeNone {
		b.log.Debug("format skipped", zap.String("modeName", b.host.ModeName()))
		return OutcomeNoMode, nil
	}
	p, ok := b.cfg.Profile(mode)
	if !ok || p.Formatter == nil {
		b.log.Debug("format skipped: no formatter", zap.Stringer("mode", mode))
		return OutcomeNoFormatter, nil
	}

	src := b.host.Value()
	formatted, err := run(ctx, p, src)
	if err != nil {
		b.log.Warn("format failed", zap.Stringer("mode", mode), zap.Error(err))
		return OutcomeFailed, &FormatError{Mode: mode, Err: err}
	}
	if formatted == src {
		return OutcomeUnchanged, nil
	}

	b.applying = true
	defer func() { b.applying = false }()
	b.host.SetValue(formatted)
	b.log.Debug("document formatted",
		zap.Stringer("mode", mode),
		zap.Int("before", len(src)),
		zap.Int("after", len(formatted)))
	return OutcomeFormatted, nil
}

func run(ctx context.Context, p Profile, src string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return p.Formatter.Format(ctx, src, p.Options)
}

// OnDocumentChanged implements document.Observer.
func (b *Bridge) OnDocumentChanged(c document.Change) {
	if b.applying || b.cfg == nil || !b.cfg.AutoBeautify {
		return
	}
	mode := ModeForName(b.host.ModeName())
	p, ok := b.cfg.Profile(mode)
	if !ok || p.Trigger == nil {
		return
	}
	inserted := c.Inserted()
	if !p.Trigger(inserted) {
		return
	}
	ch, _ := utf8.DecodeRuneInString(inserted)
	target := strings.Count(b.host.Range(document.Pos{}, c.From), string(ch)) + 1
	b.log.Debug("auto-format triggered",
		zap.Stringer("mode", mode),
		zap.String("char", string(ch)),
		zap.Int("occurrence", target))

	out, err := b.FormatNow(b.ctx)
	if err != nil {
		if b.onError != nil {
			b.onError(err)
		}
		return
	}
	if out == OutcomeFormatted || out == OutcomeUnchanged {
		b.placeCursor(ch, target)
	}
}

// placeCursor puts the cursor after the target-th occurrence of ch.
func (b *Bridge) placeCursor(ch rune, target int) {
	seen := 0
	for i := 0; i < b.host.LineCount(); i++ {
		col := 0
		for _, r := range b.host.Line(i) {
			col++
			if r != ch {
				continue
			}
			seen++
			if seen == target {
				b.host.SetCursor(document.Pos{Line: i, Col: col})
				return
			}
		}
	}
}
