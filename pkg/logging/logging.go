// Package logging sets up the process logger: structured output to stderr
// and, mirroring it, to a timestamped file under the log directory so every
// run leaves a reviewable trace.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// New creates a logger writing to both stderr and logDir/<name>_<UTC time>.log.
// The returned func closes the log file. LOG_LEVEL=debug switches on debug
// output.
func New(logDir, name string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	stamp := time.Now().UTC().Format("2006_01_02_15_04_05")
	path := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", name, stamp))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stderr, f), &slog.HandlerOptions{Level: level})
	return slog.New(handler), f.Close, nil
}
