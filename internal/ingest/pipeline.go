// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest orchestrates the paper pipeline: resolve, validate,
// dedup, persist, extract, chunk, upload, summarize. One URL at a time;
// metadata writes follow the durable side effect they describe, so a
// crash never reports a status more advanced than what is on disk.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/paperboi/internal/assistant"
	"github.com/pdiddy/paperboi/internal/chunk"
	"github.com/pdiddy/paperboi/internal/errlog"
	"github.com/pdiddy/paperboi/internal/pdftext"
	"github.com/pdiddy/paperboi/internal/record"
	"github.com/pdiddy/paperboi/pkg/types"
)

// Extractor abstracts PDF text extraction so tests can supply canned
// text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// Indexer receives completed summaries for search indexing. Best
// effort: indexing failures degrade to warnings.
type Indexer interface {
	Add(ctx context.Context, rec *types.PaperRecord, summary string) error
}

// Outcome classifies a pipeline run.
type Outcome string

const (
	OutcomeSummarized       Outcome = "summarized"
	OutcomeAlreadyProcessed Outcome = "already-processed"
	OutcomeFailed           Outcome = "failed"
)

// Result reports one pipeline run to the caller.
type Result struct {
	Outcome Outcome

	// Record is the final record state; nil when no record could be
	// created (e.g. duplicate short-circuit reports the existing one).
	Record *types.PaperRecord

	// SummaryPath is the stored summary location on success.
	SummaryPath string

	// Step and Reason describe the failing step for OutcomeFailed.
	Step   string
	Reason string
}

// Pipeline wires the collaborators for ingestion runs. Not safe for
// concurrent use: one paper at a time by design.
type Pipeline struct {
	cfg       types.PipelineConfig
	resolver  Resolver
	extractor Extractor
	splitter  *chunk.Splitter
	store     *record.Store
	backend   assistant.Backend
	indexer   Indexer
	errs      *errlog.Logger
	out       io.Writer
	now       func() time.Time
}

// NewPipeline assembles a pipeline. indexer may be nil to disable
// search indexing; w receives progress lines, nil discards them.
func NewPipeline(
	cfg types.PipelineConfig,
	resolver Resolver,
	extractor Extractor,
	store *record.Store,
	backend assistant.Backend,
	indexer Indexer,
	errs *errlog.Logger,
	w io.Writer,
) *Pipeline {
	if w == nil {
		w = io.Discard
	}
	return &Pipeline{
		cfg:       cfg,
		resolver:  resolver,
		extractor: extractor,
		splitter:  chunk.NewSplitter(cfg.Chunk.MaxSize),
		store:     store,
		backend:   backend,
		indexer:   indexer,
		errs:      errs,
		out:       w,
		now:       time.Now,
	}
}

// Process runs the full pipeline for one URL. Collaborator failures are
// converted into a failed record plus an error-log entry; the returned
// error is non-nil only for failures in the store boundary itself that
// leave no record to report through.
func (p *Pipeline) Process(ctx context.Context, rawURL string) (*Result, error) {
	normalized, err := record.NormalizeURL(CanonicalizeURL(rawURL))
	if err != nil {
		return p.failWithoutRecord("normalize", rawURL, err), nil
	}

	// Dedup before any heavy work.
	if existing, ok, err := p.store.FindByURL(normalized); err != nil {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	} else if ok && existing.Status != types.StatusFailed {
		fmt.Fprintf(p.out, "already processed: %s (status %s)\n", normalized, existing.Status)
		return &Result{Outcome: OutcomeAlreadyProcessed, Record: existing}, nil
	}

	fmt.Fprintf(p.out, "resolving: %s\n", normalized)
	finalURL, body, err := p.resolver.Resolve(ctx, rawURL)
	if err != nil {
		return p.failWithoutRecord("resolve", normalized, err), nil
	}

	if !pdftext.IsPDF(body) {
		return p.failWithoutRecord("validate", normalized, pdftext.ErrNotPDF), nil
	}

	// Re-normalize in case redirects moved us; dedup against the final
	// location too.
	if n, err := record.NormalizeURL(finalURL); err == nil && n != normalized {
		if existing, ok, err := p.store.FindByURL(n); err == nil && ok && existing.Status != types.StatusFailed {
			fmt.Fprintf(p.out, "already processed: %s (status %s)\n", n, existing.Status)
			return &Result{Outcome: OutcomeAlreadyProcessed, Record: existing}, nil
		}
		normalized = n
	}

	createdAt := p.now()
	rec, err := p.store.Create(&types.PaperRecord{
		SourceURL:        normalized,
		OriginalFilename: DeriveName(normalized, KindPDF, createdAt),
		ProcessedAt:      createdAt,
		Status:           types.StatusPending,
	})
	if errors.Is(err, record.ErrDuplicateRecord) {
		existing, _, _ := p.store.FindByURL(normalized)
		return &Result{Outcome: OutcomeAlreadyProcessed, Record: existing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	return p.run(ctx, rec, body), nil
}

// run executes the post-create steps. Any failure marks the record
// failed and is logged; run itself never returns an error.
func (p *Pipeline) run(ctx context.Context, rec *types.PaperRecord, body []byte) *Result {
	// Persist the PDF, then record DOWNLOADED.
	pdfPath := filepath.Join(p.cfg.Storage.PapersDir(), rec.OriginalFilename)
	if err := writeFileAtomic(pdfPath, body); err != nil {
		return p.fail(rec, "store-pdf", err)
	}
	updated, err := p.store.UpdateStatus(rec.ID, types.StatusDownloaded)
	if err != nil {
		return p.fail(rec, "store-pdf", err)
	}
	rec = updated
	fmt.Fprintf(p.out, "downloaded: %s\n", rec.OriginalFilename)

	// Extract text. Image-only PDFs fail here; no OCR fallback.
	text, err := p.extractor.Extract(body)
	if err != nil {
		return p.fail(rec, "extract", err)
	}

	title := GuessTitle(text)
	doi := GuessDOI(text)

	// Chunk, then record CHUNKED with the count.
	chunks, err := p.splitter.Split(text)
	if err != nil {
		return p.fail(rec, "chunk", err)
	}
	muts := []record.Mutation{record.WithChunkCount(len(chunks))}
	if title != "" {
		muts = append(muts, record.WithTitle(title))
	}
	if doi != "" {
		muts = append(muts, record.WithDOI(doi))
	}
	if updated, err = p.store.UpdateStatus(rec.ID, types.StatusChunked, muts...); err != nil {
		return p.fail(rec, "chunk", err)
	}
	rec = updated
	fmt.Fprintf(p.out, "chunked: %d chunk(s)\n", len(chunks))

	// Upload every chunk in order, then record UPLOADED.
	session := assistant.NewSession(p.backend, title)
	if err := p.uploadAll(ctx, session, chunks); err != nil {
		session.Abort()
		return p.fail(rec, "upload", err)
	}
	if updated, err = p.store.UpdateStatus(rec.ID, types.StatusUploaded); err != nil {
		return p.fail(rec, "upload", err)
	}
	rec = updated
	fmt.Fprintf(p.out, "uploaded: %d/%d chunks\n", session.Acked(), len(chunks))

	// Request the summary and persist it, then record SUMMARIZED.
	summary, err := session.RequestSummary(ctx)
	if err != nil {
		return p.fail(rec, "summarize", err)
	}

	if t, ok := assistant.Title(summary); ok {
		title = t
	}
	summaryName := DeriveName(title, KindSummary, p.now())
	summaryPath := filepath.Join(p.cfg.Storage.SummariesDir(), summaryName)
	if err := writeFileAtomic(summaryPath, []byte(summary)); err != nil {
		return p.fail(rec, "store-summary", err)
	}

	finalMuts := []record.Mutation{record.WithSummaryFilename(summaryName)}
	if title != "" {
		finalMuts = append(finalMuts, record.WithTitle(title))
	}
	if updated, err = p.store.UpdateStatus(rec.ID, types.StatusSummarized, finalMuts...); err != nil {
		return p.fail(rec, "store-summary", err)
	}
	rec = updated
	fmt.Fprintf(p.out, "summarized: %s\n", summaryName)

	if p.indexer != nil {
		if err := p.indexer.Add(ctx, rec, summary); err != nil {
			fmt.Fprintf(p.out, "  warning: search indexing failed: %v\n", err)
		}
	}

	return &Result{Outcome: OutcomeSummarized, Record: rec, SummaryPath: summaryPath}
}

// uploadAll drives the session through announce and ordered uploads,
// retrying each failed chunk up to the configured number of times
// before giving up on the session.
func (p *Pipeline) uploadAll(ctx context.Context, session *assistant.Session, chunks []types.Chunk) error {
	if err := session.Open(ctx); err != nil {
		return err
	}
	if err := session.AnnounceTotal(ctx, len(chunks)); err != nil {
		return err
	}

	retries := p.cfg.Assistant.UploadRetries
	if retries < 0 {
		retries = 0
	}

	for _, c := range chunks {
		var err error
		for attempt := 0; attempt <= retries; attempt++ {
			err = session.UploadChunk(ctx, c)
			if err == nil {
				break
			}
			var ue *assistant.ChunkUploadError
			if !errors.As(err, &ue) {
				// Ordering violations are orchestrator defects, not
				// transient transport faults. Never retried.
				return err
			}
			if attempt < retries {
				fmt.Fprintf(p.out, "  retrying chunk %d after upload error: %v\n", c.Index, ue.Err)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// fail marks the record failed (best effort), logs the failure, and
// reports a concise reason. Terminal records are left as they are.
func (p *Pipeline) fail(rec *types.PaperRecord, step string, cause error) *Result {
	p.log(step, rec.SourceURL, cause)

	updated, err := p.store.UpdateStatus(rec.ID, types.StatusFailed, record.WithFailureReason(cause.Error()))
	if err != nil {
		fmt.Fprintf(p.out, "  warning: could not record failure: %v\n", err)
		updated = rec
	}
	fmt.Fprintf(p.out, "failed: %s (%s: %v)\n", rec.SourceURL, step, cause)
	return &Result{Outcome: OutcomeFailed, Record: updated, Step: step, Reason: cause.Error()}
}

// failWithoutRecord covers failures before a record exists (steps 1-2):
// logged but only reportable through the result.
func (p *Pipeline) failWithoutRecord(step, url string, cause error) *Result {
	p.log(step, url, cause)
	fmt.Fprintf(p.out, "failed: %s (%s: %v)\n", url, step, cause)
	return &Result{Outcome: OutcomeFailed, Step: step, Reason: cause.Error()}
}

func (p *Pipeline) log(step, url string, cause error) {
	if p.errs == nil {
		return
	}
	if err := p.errs.Record(step, url, cause); err != nil {
		fmt.Fprintf(p.out, "  warning: error log write failed: %v\n", err)
	}
}

// writeFileAtomic commits data via temp file and rename so partially
// written artifacts never appear under their final name.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ingest-*.tmp")
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
