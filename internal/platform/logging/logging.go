package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to a size-rotated file at path. The TUI owns
// stdout, so nothing is written to the terminal.
func New(path string, debug bool) (hclog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	level := hclog.Info
	if debug {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "hostnav",
		Level:  level,
		Output: sink,
	})
	return logger, sink, nil
}

// Discard is used by one-shot CLI paths and tests.
func Discard() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel})
}
