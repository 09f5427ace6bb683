package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/kobzarvs/qbeautify/internal/logger"
)

func TestExecuteClosesLogOnFailure(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "q.log")
	t.Setenv("QBEAUTIFY_LOG_FILE", logPath)
	t.Setenv("QBEAUTIFY_CONFIG_HOME", filepath.Join(dir, "config"))
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out, errOut bytes.Buffer
	if code := execute([]string{"fmt", "--color", "off", notes}, &out, &errOut); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "qbeautify:") {
		t.Fatalf("stderr = %q, want error line", errOut.String())
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "command failed") {
		t.Fatalf("log = %q, want command failure entry", data)
	}
	if logger.Named("cli").Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("logger left open after failed command")
	}
}
