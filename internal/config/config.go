package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/kobzarvs/qbeautify/internal/beautify"
	"github.com/kobzarvs/qbeautify/internal/formatter"
)

type EditorOptions struct {
	TabWidth   int `toml:"tab-width"`
	IndentUnit int `toml:"indent-unit"`
}

// ModeOptions configures one formatting mode. Pointer fields distinguish
// "unset" from an explicit false.
type ModeOptions struct {
	Formatter                string   `toml:"formatter"`
	Triggers                 []string `toml:"triggers"`
	IndentSize               int      `toml:"indent-size"`
	PreserveNewlines         *bool    `toml:"preserve-newlines"`
	EndWithNewline           *bool    `toml:"end-with-newline"`
	NewlineBetweenRules      *bool    `toml:"newline-between-rules"`
	SelectorSeparatorNewline *bool    `toml:"selector-separator-newline"`
	IndentInnerHTML          *bool    `toml:"indent-inner-html"`
}

type BeautifyOptions struct {
	Enabled         *bool       `toml:"enabled"`
	InitialBeautify *bool       `toml:"initial-beautify"`
	AutoBeautify    *bool       `toml:"auto-beautify"`
	Script          ModeOptions `toml:"script"`
	Style           ModeOptions `toml:"style"`
	Markup          ModeOptions `toml:"markup"`
}

type Theme struct {
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	StatuslineForeground string `toml:"statusline-foreground"`
	StatuslineBackground string `toml:"statusline-background"`
	ErrorForeground      string `toml:"error-foreground"`
}

type Config struct {
	Editor   EditorOptions   `toml:"editor"`
	Beautify BeautifyOptions `toml:"beautify"`
	Theme    Theme           `toml:"theme"`
}

func Default() Config {
	enabled := true
	return Config{
		Editor: EditorOptions{
			TabWidth:   4,
			IndentUnit: 4,
		},
		Beautify: BeautifyOptions{
			Enabled: &enabled,
		},
		Theme: Theme{
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			StatuslineForeground: "#B3B1AD",
			StatuslineBackground: "#0F1419",
			ErrorForeground:      "#FF3333",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.IndentUnit > 0 {
		cfg.Editor.IndentUnit = userCfg.Editor.IndentUnit
	}
	if userCfg.Beautify.Enabled != nil {
		cfg.Beautify.Enabled = userCfg.Beautify.Enabled
	}
	if userCfg.Beautify.InitialBeautify != nil {
		cfg.Beautify.InitialBeautify = userCfg.Beautify.InitialBeautify
	}
	if userCfg.Beautify.AutoBeautify != nil {
		cfg.Beautify.AutoBeautify = userCfg.Beautify.AutoBeautify
	}
	cfg.Beautify.Script = userCfg.Beautify.Script
	cfg.Beautify.Style = userCfg.Beautify.Style
	cfg.Beautify.Markup = userCfg.Beautify.Markup
	mergeTheme(&cfg.Theme, userCfg.Theme)

	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.ErrorForeground != "" {
		dst.ErrorForeground = src.ErrorForeground
	}
}

// Setting converts the [beautify] section into a bridge setting.
func (b BeautifyOptions) Setting() (beautify.Setting, error) {
	if b.Enabled != nil && !*b.Enabled {
		return beautify.Disabled(), nil
	}
	o := beautify.Overrides{
		InitialBeautify: b.InitialBeautify,
		AutoBeautify:    b.AutoBeautify,
		Modes:           map[beautify.Mode]beautify.ModeOverride{},
	}
	modes := []struct {
		mode beautify.Mode
		opts ModeOptions
	}{
		{beautify.ModeScript, b.Script},
		{beautify.ModeStyle, b.Style},
		{beautify.ModeMarkup, b.Markup},
	}
	for _, m := range modes {
		mo, err := m.opts.override()
		if err != nil {
			return beautify.Setting{}, fmt.Errorf("config: beautify.%s: %w", m.mode, err)
		}
		o.Modes[m.mode] = mo
	}
	return beautify.WithOverrides(o), nil
}

func (m ModeOptions) override() (beautify.ModeOverride, error) {
	mo := beautify.ModeOverride{
		PreserveNewlines:         m.PreserveNewlines,
		EndWithNewline:           m.EndWithNewline,
		NewlineBetweenRules:      m.NewlineBetweenRules,
		SelectorSeparatorNewline: m.SelectorSeparatorNewline,
		IndentInnerHTML:          m.IndentInnerHTML,
	}
	if m.IndentSize > 0 {
		size := m.IndentSize
		mo.IndentSize = &size
	}
	switch m.Formatter {
	case "", "builtin":
	case "none":
		mo.Disable = true
	default:
		fn, ok := formatter.Lookup(m.Formatter)
		if !ok {
			return mo, fmt.Errorf("unknown formatter %q", m.Formatter)
		}
		mo.Formatter = beautify.FormatterFunc(fn)
	}
	if len(m.Triggers) > 0 {
		chars := make([]rune, 0, len(m.Triggers))
		for _, t := range m.Triggers {
			r, size := utf8.DecodeRuneInString(t)
			if size == 0 || size != len(t) {
				return mo, fmt.Errorf("trigger %q must be a single character", t)
			}
			chars = append(chars, r)
		}
		mo.Trigger = beautify.TriggerChars(chars...)
	}
	return mo, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QBEAUTIFY_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qbeautify"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qbeautify"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
