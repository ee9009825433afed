// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperboi/internal/index"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Full-text search over stored summaries",
	Long: `Search runs an FTS5 full-text query against the indexed summaries and
prints matching papers ranked by relevance, with a snippet of the
matched text.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}

	cfg := buildConfig(cmd)
	idx, err := index.Open(cfg.Storage.IndexDir())
	if err != nil {
		return err
	}
	defer idx.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := idx.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %s\n", "Rank", "Title", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.PaperID
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
		if len(snippet) > 50 {
			snippet = snippet[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %s\n", i+1, title, snippet)
	}
	fmt.Fprintf(os.Stdout, "\n%d result(s)\n", len(results))
	return nil
}
