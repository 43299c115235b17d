package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abhisek/focuslab/internal/store"
)

// OpenLogger returns a JSON logger writing to the configured log file.
// The TUI owns stdout, so logs never go to the terminal. Close the returned
// io.Closer on exit.
func OpenLogger(s Settings) (*slog.Logger, io.Closer, error) {
	if err := store.EnsureDir(s.LogFile); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, s.LogLevel), f, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
