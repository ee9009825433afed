// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant drives the sequential chunk-upload and
// summary-request conversation with the external summarization
// assistant. The conversation is modeled as an explicit state machine
// rather than implicit call order: every call checks the session state
// and protocol violations surface as errors instead of garbled threads.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/paperboi/pkg/types"
)

// State is the session's position in the upload protocol.
type State string

const (
	StateNew             State = "new"
	StateOpened          State = "opened"
	StateUploading       State = "uploading"
	StateAwaitingSummary State = "awaiting_summary"
	StateSummarized      State = "summarized"
	StateFailed          State = "failed"
)

var (
	// ErrSessionOpen indicates the conversation could not be
	// established (transport or auth failure). Not retried here.
	ErrSessionOpen = errors.New("opening assistant session")

	// ErrProtocolOrder indicates a call arrived in the wrong protocol
	// phase. This is an orchestrator defect, fatal to the run.
	ErrProtocolOrder = errors.New("assistant protocol call out of order")

	// ErrIncompleteUpload indicates a summary was requested before all
	// announced chunks were acknowledged.
	ErrIncompleteUpload = errors.New("not all chunks uploaded")
)

// OutOfOrderError indicates an upload attempted to skip or repeat a
// chunk index. Like ErrProtocolOrder, it signals an orchestrator defect.
type OutOfOrderError struct {
	Got  int
	Want int
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("chunk upload out of order: got index %d, want %d", e.Got, e.Want)
}

// ChunkUploadError indicates a transport failure while uploading one
// chunk. The caller decides retry policy; the session permits retrying
// the same index.
type ChunkUploadError struct {
	Index int
	Err   error
}

func (e *ChunkUploadError) Error() string {
	return fmt.Sprintf("uploading chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkUploadError) Unwrap() error { return e.Err }

// Backend abstracts the assistant transport so tests can supply a fake.
// The production implementation talks to the OpenAI Assistants thread
// API.
type Backend interface {
	// CreateThread opens a fresh conversation and returns its handle.
	CreateThread(ctx context.Context) (string, error)

	// SendMessage appends a user message to the thread.
	SendMessage(ctx context.Context, threadID, content string) error

	// RunAndAwait asks the assistant to respond and blocks until the
	// run completes, returning the assistant's latest message text.
	RunAndAwait(ctx context.Context, threadID string) (string, error)
}

// titlePattern matches the [[Title]] marker the assistant is instructed
// to include.
var titlePattern = regexp.MustCompile(`\[\[(.+?)\]\]`)

// Session is a single paper's conversation with the assistant. Never
// reused across papers and not safe for concurrent use.
type Session struct {
	backend   Backend
	titleHint string

	state    State
	threadID string
	total    int
	acked    int
}

// NewSession returns a session in StateNew. titleHint is the best
// available paper title, used to guarantee a [[Title]] marker when the
// assistant's response lacks one.
func NewSession(backend Backend, titleHint string) *Session {
	return &Session{backend: backend, titleHint: titleHint, state: StateNew}
}

// State returns the current protocol state.
func (s *Session) State() State { return s.state }

// Acked returns the count of chunks acknowledged so far.
func (s *Session) Acked() int { return s.acked }

// Open establishes a new conversation. Valid only once, in StateNew.
func (s *Session) Open(ctx context.Context) error {
	if s.state != StateNew {
		return fmt.Errorf("%w: open in state %s", ErrProtocolOrder, s.state)
	}
	threadID, err := s.backend.CreateThread(ctx)
	if err != nil {
		s.state = StateFailed
		return fmt.Errorf("%w: %v", ErrSessionOpen, err)
	}
	s.threadID = threadID
	s.state = StateOpened
	return nil
}

// AnnounceTotal tells the assistant how many chunks will follow. Must
// be called exactly once, after Open and before the first UploadChunk.
func (s *Session) AnnounceTotal(ctx context.Context, total int) error {
	if s.state != StateOpened {
		return fmt.Errorf("%w: announce in state %s", ErrProtocolOrder, s.state)
	}
	if total <= 0 {
		return fmt.Errorf("%w: announced total must be positive, got %d", ErrProtocolOrder, total)
	}

	msg := fmt.Sprintf(
		"You will receive %d chunks of an academic paper. "+
			"Wait for all chunks before providing a comprehensive summary. "+
			"Your summary must include the paper name in [[Name of paper]] format.", total)
	if err := s.backend.SendMessage(ctx, s.threadID, msg); err != nil {
		s.state = StateFailed
		return fmt.Errorf("announcing chunk count: %w", err)
	}
	s.total = total
	s.state = StateUploading
	return nil
}

// UploadChunk sends one chunk. Chunks must arrive strictly in index
// order; a failed index may be retried because acknowledgement only
// advances on success.
func (s *Session) UploadChunk(ctx context.Context, chunk types.Chunk) error {
	if s.state != StateUploading {
		return fmt.Errorf("%w: upload in state %s", ErrProtocolOrder, s.state)
	}
	if chunk.Index != s.acked {
		return &OutOfOrderError{Got: chunk.Index, Want: s.acked}
	}
	if chunk.Index >= s.total {
		return &OutOfOrderError{Got: chunk.Index, Want: s.total - 1}
	}

	msg := fmt.Sprintf("[Chunk %d/%d]\n\n%s", chunk.Index+1, s.total, chunk.Text)
	if err := s.backend.SendMessage(ctx, s.threadID, msg); err != nil {
		return &ChunkUploadError{Index: chunk.Index, Err: err}
	}
	s.acked++
	return nil
}

// Abort marks the session failed. Called by the orchestrator when it
// gives up on the paper.
func (s *Session) Abort() {
	if s.state != StateSummarized {
		s.state = StateFailed
	}
}

// RequestSummary asks the assistant for the final summary. Valid only
// after every announced chunk has been acknowledged. The returned text
// always contains a [[Title]] marker: when the assistant omits one, the
// best-available title is prepended rather than losing the summary over
// formatting.
func (s *Session) RequestSummary(ctx context.Context) (string, error) {
	if s.state != StateUploading {
		return "", fmt.Errorf("%w: summary request in state %s", ErrProtocolOrder, s.state)
	}
	if s.acked < s.total {
		return "", fmt.Errorf("%w: %d of %d chunks acknowledged", ErrIncompleteUpload, s.acked, s.total)
	}
	s.state = StateAwaitingSummary

	const closing = "All chunks have been provided. Please generate a comprehensive summary following the format specified."
	if err := s.backend.SendMessage(ctx, s.threadID, closing); err != nil {
		s.state = StateFailed
		return "", fmt.Errorf("requesting summary: %w", err)
	}

	summary, err := s.backend.RunAndAwait(ctx, s.threadID)
	if err != nil {
		s.state = StateFailed
		return "", fmt.Errorf("awaiting summary: %w", err)
	}

	summary = s.ensureTitle(summary)
	s.state = StateSummarized
	return summary, nil
}

// Title returns the paper title from a summary's [[Title]] marker.
func Title(summary string) (string, bool) {
	m := titlePattern.FindStringSubmatch(summary)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func (s *Session) ensureTitle(summary string) string {
	if _, ok := Title(summary); ok {
		return summary
	}
	title := strings.TrimSpace(s.titleHint)
	if title == "" {
		title = "Untitled Paper"
	}
	return fmt.Sprintf("[[%s]]\n\n%s", title, summary)
}
