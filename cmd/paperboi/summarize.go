// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperboi/internal/assistant"
	"github.com/pdiddy/paperboi/internal/errlog"
	"github.com/pdiddy/paperboi/internal/index"
	"github.com/pdiddy/paperboi/internal/ingest"
	"github.com/pdiddy/paperboi/internal/pdftext"
	"github.com/pdiddy/paperboi/internal/record"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [url]",
	Short: "Download one paper and produce its summary",
	Long: `Summarize resolves a paper URL (arXiv pages are rewritten to their PDF
endpoint), downloads the PDF, extracts and chunks its text, uploads the
chunks to the summarization assistant in order, and stores the returned
summary. A URL that was already processed is reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)
	if err := ensureDirs(cfg.Storage); err != nil {
		return err
	}

	store, err := record.Open(cfg.Storage.MetadataDir())
	if err != nil {
		return err
	}

	backend, err := assistant.NewOpenAIBackend(cfg.Assistant)
	if err != nil {
		return err
	}

	// The search index is best effort: a broken index disables search
	// but never blocks summarization.
	var indexer ingest.Indexer
	if idx, err := index.Open(cfg.Storage.IndexDir()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: search index unavailable: %v\n", err)
	} else {
		defer idx.Close()
		indexer = idx
	}

	errs := errlog.New(cfg.Storage.ErrorsDir())
	defer errs.Close()

	pipeline := ingest.NewPipeline(
		cfg,
		ingest.NewHTTPResolver(cfg.HTTP, os.Stdout),
		pdftext.NewExtractor(),
		store,
		backend,
		indexer,
		errs,
		os.Stdout,
	)

	result, err := pipeline.Process(context.Background(), args[0])
	if err != nil {
		return err
	}

	switch result.Outcome {
	case ingest.OutcomeSummarized:
		fmt.Printf("summary written: %s\n", result.SummaryPath)
		return nil
	case ingest.OutcomeAlreadyProcessed:
		fmt.Printf("skipped: already processed (record %s)\n", result.Record.ID)
		return nil
	default:
		return fmt.Errorf("processing failed at %s: %s", result.Step, result.Reason)
	}
}
