package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	off := false
	m.SetFileState("/tmp/a.js", FileState{CursorLine: 3, CursorCol: 7, AutoFormat: &off})
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "qbeautify", "session.json")); err != nil {
		t.Fatalf("session file missing: %v", err)
	}

	m2, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	defer func() { _ = m2.Stop() }()
	state, ok := m2.FileState("/tmp/a.js")
	if !ok {
		t.Fatalf("state for a.js not restored")
	}
	if state.CursorLine != 3 || state.CursorCol != 7 {
		t.Fatalf("cursor = %d:%d, want 3:7", state.CursorLine, state.CursorCol)
	}
	if state.AutoFormat == nil || *state.AutoFormat {
		t.Fatalf("AutoFormat = %v, want false", state.AutoFormat)
	}
	if m2.ActiveFile() != "/tmp/a.js" {
		t.Fatalf("ActiveFile = %q", m2.ActiveFile())
	}
}

func TestSaveSkipsCleanSession(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("second Stop error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "qbeautify", "session.json")); !os.IsNotExist(err) {
		t.Fatalf("session file written for clean session: %v", err)
	}
}

func TestCorruptSessionIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	path := filepath.Join(dir, "qbeautify", "session.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	defer func() { _ = m.Stop() }()
	if _, ok := m.FileState("/x"); ok {
		t.Fatalf("state found in corrupt session")
	}
}

func TestSetFileStateUnchangedKeepsClean(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	path := filepath.Join(dir, "qbeautify", "session.json")

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	defer func() { _ = m.Stop() }()
	on := true
	m.SetFileState("/tmp/a.js", FileState{CursorLine: 1, AutoFormat: &on})
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	again := true
	m.SetFileState("/tmp/a.js", FileState{CursorLine: 1, AutoFormat: &again})
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("unchanged state saved again: %v", err)
	}

	m.SetFileState("/tmp/a.js", FileState{CursorLine: 2, AutoFormat: &again})
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("changed state not saved: %v", err)
	}
}
