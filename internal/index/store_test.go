// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperboi/pkg/types"
)

func testRecord(id, title string) *types.PaperRecord {
	return &types.PaperRecord{
		ID:              id,
		Title:           title,
		SourceURL:       "https://example.com/" + id,
		SummaryFilename: id + ".txt",
		ProcessedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Status:          types.StatusSummarized,
	}
}

func TestStoreAddAndSearch(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Add(ctx, testRecord("paper_a", "Transformers"),
		"This paper introduces attention mechanisms for sequence transduction."))
	require.NoError(t, s.Add(ctx, testRecord("paper_b", "Databases"),
		"A study of write-ahead logging in relational storage engines."))

	results, err := s.Search(ctx, "attention", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "paper_a", results[0].PaperID)
	assert.Equal(t, "Transformers", results[0].Title)
	assert.Contains(t, results[0].Snippet, "attention")

	results, err = s.Search(ctx, "logging", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "paper_b", results[0].PaperID)
}

func TestStoreReAddReplacesSummary(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	rec := testRecord("paper_a", "First Title")
	require.NoError(t, s.Add(ctx, rec, "original text about penguins"))

	rec.Title = "Second Title"
	require.NoError(t, s.Add(ctx, rec, "revised text about albatrosses"))

	// The old content is gone from the index.
	results, err := s.Search(ctx, "penguins", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(ctx, "albatrosses", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Second Title", results[0].Title)
}

func TestStoreSearchValidation(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Search(context.Background(), "   ", 10)
	assert.Error(t, err)

	err = s.Add(context.Background(), nil, "text")
	assert.Error(t, err)
}

func TestStoreReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, testRecord("paper_a", "Kept"), "durable content survives reopen"))
	require.NoError(t, s.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	results, err := s2.Search(ctx, "durable", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Kept", results[0].Title)
}
