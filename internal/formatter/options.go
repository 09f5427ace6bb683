package formatter

import (
	"context"
	"errors"
	"strings"
)

// ErrParse is returned when the parser produced no tree for the input.
var ErrParse = errors.New("formatter: parse failed")

// Options controls layout. Field names follow the js-beautify option set.
type Options struct {
	IndentSize               int
	IndentChar               rune
	PreserveNewlines         bool
	EndWithNewline           bool
	NewlineBetweenRules      bool
	SelectorSeparatorNewline bool
	IndentInnerHTML          bool
}

func DefaultOptions() Options {
	return Options{
		IndentSize:               4,
		IndentChar:               ' ',
		PreserveNewlines:         true,
		NewlineBetweenRules:      true,
		SelectorSeparatorNewline: true,
	}
}

func (o Options) indent(level int) string {
	if level <= 0 {
		return ""
	}
	size := o.IndentSize
	if size <= 0 {
		size = 4
	}
	ch := o.IndentChar
	if ch == 0 {
		ch = ' '
	}
	return strings.Repeat(string(ch), size*level)
}

// Func formats a whole document.
type Func func(ctx context.Context, src string, opts Options) (string, error)

// Lookup returns the built-in formatter registered under name.
func Lookup(name string) (Func, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "script", "javascript", "js":
		return Script, true
	case "style", "css":
		return Style, true
	case "markup", "html", "htmlmixed":
		return Markup, true
	}
	return nil, false
}
