// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains a full-text search index over stored paper
// summaries, kept alongside but separate from the JSON metadata records.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperboi/pkg/types"
)

const (
	dbFile            = "paperboi.db"
	defaultMaxResults = 20
)

// Store manages the summary search SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the search database under dir, creating the
// schema on first use.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, maxResults: defaultMaxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			doi TEXT,
			source_url TEXT,
			summary_filename TEXT,
			processed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id TEXT NOT NULL UNIQUE REFERENCES papers(id),
			content TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='summaries_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE summaries_fts USING fts5(content, content=summaries, content_rowid=rowid)`,
			`CREATE TRIGGER summaries_ai AFTER INSERT ON summaries BEGIN
				INSERT INTO summaries_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER summaries_ad AFTER DELETE ON summaries BEGIN
				INSERT INTO summaries_fts(summaries_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER summaries_au AFTER UPDATE ON summaries BEGIN
				INSERT INTO summaries_fts(summaries_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO summaries_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Add upserts one summarized paper into the index. Re-adding the same
// record replaces its summary text.
func (s *Store) Add(ctx context.Context, rec *types.PaperRecord, summary string) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("record with an ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	processedAt := ""
	if !rec.ProcessedAt.IsZero() {
		processedAt = rec.ProcessedAt.UTC().Format(time.RFC3339)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO papers (id, title, doi, source_url, summary_filename, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, doi=excluded.doi, source_url=excluded.source_url,
			summary_filename=excluded.summary_filename, processed_at=excluded.processed_at`,
		rec.ID, rec.Title, rec.DOI, rec.SourceURL, rec.SummaryFilename, processedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting paper: %w", err)
	}

	// DELETE then INSERT rather than UPDATE OR INSERT so the FTS
	// triggers see consistent before/after rows.
	if _, err := tx.ExecContext(ctx, `DELETE FROM summaries WHERE paper_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("deleting old summary: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO summaries (paper_id, content) VALUES (?, ?)`, rec.ID, summary,
	); err != nil {
		return fmt.Errorf("inserting summary: %w", err)
	}

	return tx.Commit()
}

// Result is one search hit with a relevance-ordered snippet.
type Result struct {
	PaperID         string `json:"paper_id" yaml:"paper_id"`
	Title           string `json:"title" yaml:"title"`
	SourceURL       string `json:"source_url" yaml:"source_url"`
	SummaryFilename string `json:"summary_filename" yaml:"summary_filename"`
	Snippet         string `json:"snippet" yaml:"snippet"`
}

// Search runs an FTS5 full-text query over the indexed summaries,
// ranked by relevance. maxResults <= 0 uses the store default.
func (s *Store) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.title, p.source_url, p.summary_filename,
			snippet(summaries_fts, 0, '', '', '...', 20)
		FROM summaries_fts
		JOIN summaries sm ON sm.rowid = summaries_fts.rowid
		JOIN papers p ON p.id = sm.paper_id
		WHERE summaries_fts MATCH ?
		ORDER BY summaries_fts.rank
		LIMIT ?`,
		query, maxResults,
	)
	if err != nil {
		return nil, fmt.Errorf("querying summary index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r       Result
			title   sql.NullString
			srcURL  sql.NullString
			sumFile sql.NullString
		)
		if err := rows.Scan(&r.PaperID, &title, &srcURL, &sumFile, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Title = title.String
		r.SourceURL = srcURL.String
		r.SummaryFilename = sumFile.String
		results = append(results, r)
	}

	return results, rows.Err()
}
