// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/merge-engine/internal/dedup"
	"github.com/pdiddy/merge-engine/pkg/types"
)

func TestWriteReadReport(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := MergeResult{
		CollectionID:      "book-1",
		Config:            dedup.DefaultConfig(),
		Total:             3,
		MergedCount:       2,
		RemovedDuplicates: 1,
		Pairs: []dedup.Pair{{
			Duplicate: types.ComparableRecord{ID: "c-3", DisplayName: "Jane Doe"},
			Original:  types.ComparableRecord{ID: "c-1", DisplayName: "Jane Doe"},
		}},
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, WriteReport(path, NewMergeReport("contacts merge", res, at)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "operation: contacts merge")
	assert.Contains(t, string(data), "matched_id: c-1")

	got, err := ReadReport(path)
	require.NoError(t, err)
	assert.Equal(t, "book-1", got.Collection)
	assert.Equal(t, 3, got.Summary.Total)
	assert.Equal(t, 2, got.Summary.Kept)
	assert.Equal(t, 1, got.Summary.Removed)
	assert.True(t, got.Summary.Timestamp.Equal(at))
	require.NotNil(t, got.Config.UsePhone)
	assert.False(t, *got.Config.UsePhone)
	assert.Equal(t, []ReportPair{{ID: "c-3", Name: "Jane Doe", MatchedID: "c-1"}}, got.Duplicates)
}

func TestNewImportReport(t *testing.T) {
	res := ImportResult{
		CollectionID:       "list-1",
		Config:             dedup.TaskDefaults(),
		DryRun:             true,
		Received:           5,
		Imported:           2,
		SkippedDuplicates:  2,
		SkippedWithinBatch: 1,
	}
	r := NewImportReport("tasks import", res, time.Time{})
	assert.True(t, r.DryRun)
	assert.Equal(t, ReportSummary{Total: 5, Kept: 2, SkippedExisting: 2, SkippedWithinBatch: 1}, r.Summary)
	assert.Empty(t, r.Duplicates)
}

func TestReadReport_Errors(t *testing.T) {
	_, err := ReadReport(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("summary: [not, a, map"), 0o644))
	_, err = ReadReport(bad)
	assert.Error(t, err)
}
