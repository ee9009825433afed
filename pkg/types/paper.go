// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Status tracks a paper's processing lifecycle. Transitions move strictly
// forward except Failed, which is reachable from any non-terminal status
// and is terminal for that attempt. A retry creates a fresh record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDownloaded Status = "downloaded"
	StatusChunked    Status = "chunked"
	StatusUploaded   Status = "uploaded"
	StatusSummarized Status = "summarized"
	StatusFailed     Status = "failed"
)

// statusRank orders the forward-only lifecycle. Failed sits outside the
// ordering and is handled separately by CanTransition.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusDownloaded: 1,
	StatusChunked:    2,
	StatusUploaded:   3,
	StatusSummarized: 4,
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusSummarized || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle step.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// PaperRecord holds the durable metadata for one processing attempt of a
// paper. The normalized source URL is the dedup key: at most one
// non-failed record exists per URL.
type PaperRecord struct {
	// ID identifies the record and names its metadata file.
	ID string `json:"id" yaml:"id"`

	// SourceURL is the normalized URL the paper was submitted under.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// OriginalFilename is the stored PDF's name under full_papers/.
	// Set once at creation, immutable afterwards.
	OriginalFilename string `json:"original_filename" yaml:"original_filename"`

	// SummaryFilename is the stored summary's name under summaries/.
	// Empty until the summary is persisted.
	SummaryFilename string `json:"summary_filename,omitempty" yaml:"summary_filename,omitempty"`

	// ProcessedAt is the record creation time.
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`

	// Title is the best-effort paper title; empty if unavailable.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// DOI is the best-effort DOI; empty if unavailable.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ChunkCount is the number of chunks produced, set once chunking
	// completes.
	ChunkCount int `json:"chunk_count" yaml:"chunk_count"`

	// Status is the current lifecycle state.
	Status Status `json:"status" yaml:"status"`

	// FailureReason records why the attempt failed, for failed records.
	FailureReason string `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
}

// Chunk is one bounded-size, ordered slice of a paper's extracted text,
// the unit of upload to the assistant. Index is 0-based.
type Chunk struct {
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
}
