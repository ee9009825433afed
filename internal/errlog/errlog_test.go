// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package errlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordWritesDatedJSONEntries(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	l.now = func() time.Time { return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) }
	defer l.Close()

	if err := l.Record("resolve", "https://example.com/paper.pdf", errors.New("connection refused")); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := l.Record("extract", "https://example.com/other.pdf", errors.New("no text")); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	path := filepath.Join(dir, "errors_20260305.log")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected log file at %s: %v", path, err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %d is not JSON: %v", lines, err)
		}
		for _, key := range []string{"time", "step", "url", "error"} {
			if _, ok := entry[key]; !ok {
				t.Errorf("line %d missing %q: %v", lines, key, entry)
			}
		}
	}
	if lines != 2 {
		t.Errorf("log has %d lines, want 2", lines)
	}
}

func TestRecordRollsOverAtMidnight(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	defer l.Close()

	day := time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return day }
	if err := l.Record("upload", "u", errors.New("x")); err != nil {
		t.Fatal(err)
	}

	day = day.Add(2 * time.Minute)
	if err := l.Record("upload", "u", errors.New("y")); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"errors_20260305.log", "errors_20260306.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRecordAppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	first := New(dir)
	first.now = func() time.Time { return at }
	if err := first.Record("resolve", "u", errors.New("one")); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second := New(dir)
	second.now = func() time.Time { return at }
	if err := second.Record("resolve", "u", errors.New("two")); err != nil {
		t.Fatal(err)
	}
	second.Close()

	data, err := os.ReadFile(filepath.Join(dir, "errors_20260305.log"))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(splitLines(data)); got != 2 {
		t.Errorf("log has %d entries after reopen, want 2", got)
	}
}

func splitLines(data []byte) []string {
	var out []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				out = append(out, string(data[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(data) {
		out = append(out, string(data[start:]))
	}
	return out
}
