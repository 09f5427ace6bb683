package beautify

import (
	"fmt"
	"strings"
)

// Mode identifies a content mode with its own formatter.
type Mode int

const (
	ModeNone Mode = iota
	ModeScript
	ModeStyle
	ModeMarkup
)

// Modes lists every formattable mode.
var Modes = []Mode{ModeScript, ModeStyle, ModeMarkup}

func (m Mode) String() string {
	switch m {
	case ModeScript:
		return "script"
	case ModeStyle:
		return "style"
	case ModeMarkup:
		return "markup"
	}
	return "none"
}

// ModeForName maps a host mode descriptor to a Mode. Unknown and empty
// names map to ModeNone.
func ModeForName(name string) Mode {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "javascript", "js", "ecmascript", "script":
		return ModeScript
	case "css", "style":
		return ModeStyle
	case "htmlmixed", "html", "markup":
		return ModeMarkup
	}
	return ModeNone
}

// ParseMode accepts the canonical names used in configuration files.
func ParseMode(s string) (Mode, error) {
	if m := ModeForName(s); m != ModeNone {
		return m, nil
	}
	return ModeNone, fmt.Errorf("beautify: unknown mode %q", s)
}
