// Package logger sets up the zap logger shared by the editor and the fmt
// command. Output goes to a file; until Init runs every logger is a no-op.
package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kobzarvs/qbeautify/internal/config"
)

var (
	mu      sync.Mutex
	root    = zap.NewNop()
	logFile *os.File
)

// Init opens the log file and installs the root logger.
// Debug messages are written only when debug is set.
func Init(debug bool) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(f), level)

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = root.Sync()
		_ = logFile.Close()
	}
	logFile = f
	root = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	root.Info("logger initialized", zap.String("path", path), zap.Bool("debug", debug))
	return nil
}

// Named returns a child of the root logger.
func Named(name string) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return root.Named(name)
}

// Close flushes the log file and goes back to a no-op logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = root.Sync()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	root = zap.NewNop()
}

// Path returns QBEAUTIFY_LOG_FILE, or qbeautify.log in the config directory.
func Path() (string, error) {
	if v := os.Getenv("QBEAUTIFY_LOG_FILE"); v != "" {
		return v, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "qbeautify.log"), nil
}
