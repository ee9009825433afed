// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record persists paper processing metadata: one JSON file per
// record plus a master index keyed by normalized source URL. The store
// is the single owner of the on-disk representation; callers hold only
// transient copies.
package record

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paperboi/pkg/types"
)

const indexFile = "index.json"

var (
	// ErrDuplicateRecord indicates a non-failed record already exists
	// for the URL. Callers treat this as "already processed", not a
	// failure.
	ErrDuplicateRecord = errors.New("record already exists for URL")

	// ErrNotFound indicates no record exists under the given ID.
	ErrNotFound = errors.New("record not found")

	// ErrBadTransition indicates an update would move a record backwards
	// or out of a terminal status.
	ErrBadTransition = errors.New("illegal status transition")
)

// Store manages paper records in a metadata directory. Not safe for
// concurrent use; the system is single-writer by contract.
type Store struct {
	dir string

	// index maps normalized URL to record IDs, oldest first. Rebuilt
	// from the record files when the index file is missing or corrupt.
	index map[string][]string
}

// Open loads (or initializes) the store in dir. A missing or unreadable
// master index is rebuilt by scanning the record files, so a crash
// between a record write and an index write loses nothing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating metadata directory: %w", err)
	}

	s := &Store{dir: dir, index: make(map[string][]string)}

	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	if err == nil && json.Unmarshal(data, &s.index) == nil {
		return s, nil
	}

	if err := s.rebuildIndex(); err != nil {
		return nil, err
	}
	if err := s.writeIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// rebuildIndex scans record files and regenerates the URL index.
func (s *Store) rebuildIndex() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("scanning metadata directory: %w", err)
	}

	type dated struct {
		id string
		at time.Time
	}
	byURL := make(map[string][]dated)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == indexFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := s.readRecord(strings.TrimSuffix(name, ".json"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping unreadable record %s: %v\n", name, err)
			continue
		}
		byURL[rec.SourceURL] = append(byURL[rec.SourceURL], dated{rec.ID, rec.ProcessedAt})
	}

	s.index = make(map[string][]string, len(byURL))
	for u, recs := range byURL {
		sort.Slice(recs, func(i, j int) bool { return recs[i].at.Before(recs[j].at) })
		for _, r := range recs {
			s.index[u] = append(s.index[u], r.id)
		}
	}
	return nil
}

// FindByURL returns the most recent record for the normalized URL, or
// false if none exists.
func (s *Store) FindByURL(normalizedURL string) (*types.PaperRecord, bool, error) {
	ids := s.index[normalizedURL]
	if len(ids) == 0 {
		return nil, false, nil
	}
	rec, err := s.readRecord(ids[len(ids)-1])
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Create persists a new record. It fails with ErrDuplicateRecord when a
// non-failed record already exists for the same URL; failed records are
// retained for audit and do not block a fresh attempt.
func (s *Store) Create(rec *types.PaperRecord) (*types.PaperRecord, error) {
	for _, id := range s.index[rec.SourceURL] {
		existing, err := s.readRecord(id)
		if err != nil {
			return nil, err
		}
		if existing.Status != types.StatusFailed {
			return nil, fmt.Errorf("%w: %s (status %s)", ErrDuplicateRecord, rec.SourceURL, existing.Status)
		}
	}

	if rec.ID == "" {
		rec.ID = NewRecordID(rec.SourceURL, rec.ProcessedAt)
	}
	if rec.Status == "" {
		rec.Status = types.StatusPending
	}

	if err := s.writeRecord(rec); err != nil {
		return nil, err
	}
	s.index[rec.SourceURL] = append(s.index[rec.SourceURL], rec.ID)
	if err := s.writeIndex(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Mutation adjusts record fields alongside a status transition.
type Mutation func(*types.PaperRecord)

// WithChunkCount records the number of chunks produced.
func WithChunkCount(n int) Mutation {
	return func(r *types.PaperRecord) { r.ChunkCount = n }
}

// WithSummaryFilename records the stored summary's filename.
func WithSummaryFilename(name string) Mutation {
	return func(r *types.PaperRecord) { r.SummaryFilename = name }
}

// WithTitle records the best-effort paper title.
func WithTitle(title string) Mutation {
	return func(r *types.PaperRecord) { r.Title = title }
}

// WithDOI records the best-effort DOI.
func WithDOI(doi string) Mutation {
	return func(r *types.PaperRecord) { r.DOI = doi }
}

// WithFailureReason records why the attempt failed.
func WithFailureReason(reason string) Mutation {
	return func(r *types.PaperRecord) { r.FailureReason = reason }
}

// UpdateStatus transitions a record and applies mutations, durably,
// before returning. The write is atomic with respect to a crash.
func (s *Store) UpdateStatus(id string, status types.Status, muts ...Mutation) (*types.PaperRecord, error) {
	rec, err := s.readRecord(id)
	if err != nil {
		return nil, err
	}
	if !rec.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, rec.Status, status)
	}

	rec.Status = status
	for _, m := range muts {
		m(rec)
	}
	if err := s.writeRecord(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// All returns every record, newest first.
func (s *Store) All() ([]*types.PaperRecord, error) {
	var out []*types.PaperRecord
	for _, ids := range s.index {
		for _, id := range ids {
			rec, err := s.readRecord(id)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	return out, nil
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) readRecord(id string) (*types.PaperRecord, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	var rec types.PaperRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) writeRecord(rec *types.PaperRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", rec.ID, err)
	}
	return atomicWrite(s.recordPath(rec.ID), data)
}

func (s *Store) writeIndex() error {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	return atomicWrite(filepath.Join(s.dir, indexFile), data)
}

// atomicWrite commits data to path via a temp file and rename, so a
// crash never leaves a partially written file behind.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// NewRecordID derives a collision-free record ID from the normalized
// URL and creation time. The hash distinguishes papers created within
// the same second.
func NewRecordID(normalizedURL string, at time.Time) string {
	h := sha256.Sum256([]byte(normalizedURL))
	return fmt.Sprintf("paper_%x_%s", h[:4], at.UTC().Format("20060102_150405"))
}
