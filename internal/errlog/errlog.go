// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errlog appends pipeline failures to a per-day JSON log file.
// One file per calendar day, append-only, never rotated away.
package errlog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Logger writes dated error entries under a fixed directory. Single
// writer by contract, like the rest of the system.
type Logger struct {
	dir string
	now func() time.Time

	day     string
	file    *os.File
	slogger *slog.Logger
}

// New returns a Logger writing under dir. The directory must exist.
func New(dir string) *Logger {
	return &Logger{dir: dir, now: time.Now}
}

// Record appends one failure entry carrying the pipeline step, the
// paper URL, and the error detail.
func (l *Logger) Record(step, url string, err error) error {
	logger, openErr := l.forToday()
	if openErr != nil {
		return openErr
	}
	logger.Error("pipeline step failed",
		slog.String("step", step),
		slog.String("url", url),
		slog.String("error", err.Error()),
	)
	return nil
}

// Close releases the current log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.slogger = nil
	return err
}

// forToday returns a slog.Logger appending to today's file, reopening
// when the calendar day changes.
func (l *Logger) forToday() (*slog.Logger, error) {
	day := l.now().Format("20060102")
	if l.slogger != nil && day == l.day {
		return l.slogger, nil
	}

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	path := filepath.Join(l.dir, fmt.Sprintf("errors_%s.log", day))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening error log %s: %w", path, err)
	}

	l.day = day
	l.file = file
	l.slogger = slog.New(slog.NewJSONHandler(file, nil))
	return l.slogger, nil
}
