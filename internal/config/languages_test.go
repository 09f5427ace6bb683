package config

import (
	"path/filepath"
	"testing"
)

func TestLanguagesMatch(t *testing.T) {
	cfg := DefaultLanguages()

	if got := cfg.Match("app.js"); got == nil || got.Name != "javascript" {
		t.Fatalf("Match app.js = %#v, want javascript", got)
	}
	if got := cfg.Match("dir/Index.HTML"); got == nil || got.Name != "htmlmixed" {
		t.Fatalf("Match Index.HTML = %#v, want htmlmixed", got)
	}
	if got := cfg.Match("site.css"); got == nil || got.Name != "css" {
		t.Fatalf("Match site.css = %#v, want css", got)
	}
	if got := cfg.Match("unknown.txt"); got != nil {
		t.Fatalf("Match unknown.txt = %#v, want nil", got)
	}
}

func TestLanguagesMatchDottedAndBasename(t *testing.T) {
	cfg := Languages{
		Languages: []Language{
			{Name: "javascript", FileTypes: []string{".es6", "Jakefile"}},
		},
	}
	if got := cfg.Match("x.es6"); got == nil || got.Name != "javascript" {
		t.Fatalf("Match x.es6 = %#v, want javascript", got)
	}
	if got := cfg.Match("Jakefile"); got == nil || got.Name != "javascript" {
		t.Fatalf("Match Jakefile = %#v, want javascript", got)
	}
}

func TestLoadLanguages(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QBEAUTIFY_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "languages.toml"), `
[[language]]
name = "css"
file-types = ["js"]
`)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if len(cfg.Languages) != 4 {
		t.Fatalf("Languages len = %d, want 4", len(cfg.Languages))
	}
	if got := cfg.Match("a.js"); got == nil || got.Name != "css" {
		t.Fatalf("Match a.js = %#v, want user entry css", got)
	}
	if got := cfg.Match("a.html"); got == nil || got.Name != "htmlmixed" {
		t.Fatalf("Match a.html = %#v, want default htmlmixed", got)
	}
}

func TestLoadLanguagesMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QBEAUTIFY_CONFIG_HOME", dir)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if len(cfg.Languages) != 3 {
		t.Fatalf("Languages len = %d, want 3", len(cfg.Languages))
	}
}
