// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperboi/internal/record"
	"github.com/pdiddy/paperboi/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed papers, newest first",
	Long: `List prints every recorded paper with its status, title, and summary
filename, most recently processed first. Use --yaml for the full records
in YAML.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().Bool("yaml", false, "output full records as YAML")
	listCmd.Flags().String("status", "", "filter by status: pending, downloaded, chunked, uploaded, summarized, failed")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)
	if err := ensureDirs(cfg.Storage); err != nil {
		return err
	}

	store, err := record.Open(cfg.Storage.MetadataDir())
	if err != nil {
		return err
	}

	records, err := store.All()
	if err != nil {
		return err
	}

	if statusFilter, _ := cmd.Flags().GetString("status"); statusFilter != "" {
		filtered := records[:0]
		for _, r := range records {
			if string(r.Status) == statusFilter {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if yamlOutput, _ := cmd.Flags().GetBool("yaml"); yamlOutput {
		return yaml.NewEncoder(os.Stdout).Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No papers recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-19s  %-10s  %-40s  %s\n", "Processed", "Status", "Title", "Summary")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range records {
		title := r.Title
		if title == "" {
			title = r.SourceURL
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		summary := r.SummaryFilename
		if summary == "" && r.Status == types.StatusFailed {
			summary = r.FailureReason
		}
		fmt.Fprintf(os.Stdout, "%-19s  %-10s  %-40s  %s\n",
			r.ProcessedAt.Format("2006-01-02 15:04:05"), r.Status, title, summary)
	}
	fmt.Fprintf(os.Stdout, "\n%d paper(s)\n", len(records))
	return nil
}
