// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/merge-engine/pkg/types"
)

// Report is the on-disk summary of a merge or import run. It lets a user
// review which records were dropped and why.
type Report struct {
	Operation  string                 `yaml:"operation"`
	Collection string                 `yaml:"collection"`
	DryRun     bool                   `yaml:"dry_run"`
	Config     types.DetectionOptions `yaml:"config"`
	Summary    ReportSummary          `yaml:"summary"`
	Duplicates []ReportPair           `yaml:"duplicates,omitempty"`
}

// ReportSummary holds the counts of a run and when it happened.
type ReportSummary struct {
	Total              int       `yaml:"total"`
	Kept               int       `yaml:"kept"`
	Removed            int       `yaml:"removed,omitempty"`
	SkippedExisting    int       `yaml:"skipped_existing,omitempty"`
	SkippedWithinBatch int       `yaml:"skipped_within_batch,omitempty"`
	Timestamp          time.Time `yaml:"timestamp"`
}

// ReportPair names a dropped record and the record it duplicated.
type ReportPair struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name,omitempty"`
	MatchedID string `yaml:"matched_id"`
}

// NewMergeReport builds a report from a merge result.
func NewMergeReport(operation string, res MergeResult, at time.Time) Report {
	r := Report{
		Operation:  operation,
		Collection: res.CollectionID,
		DryRun:     res.DryRun,
		Config:     res.Config.Options(),
		Summary: ReportSummary{
			Total:     res.Total,
			Kept:      res.MergedCount,
			Removed:   res.RemovedDuplicates,
			Timestamp: at,
		},
	}
	for _, p := range res.Pairs {
		r.Duplicates = append(r.Duplicates, ReportPair{ID: p.Duplicate.ID, Name: p.Duplicate.DisplayName, MatchedID: p.Original.ID})
	}
	return r
}

// NewImportReport builds a report from an import result.
func NewImportReport(operation string, res ImportResult, at time.Time) Report {
	r := Report{
		Operation:  operation,
		Collection: res.CollectionID,
		DryRun:     res.DryRun,
		Config:     res.Config.Options(),
		Summary: ReportSummary{
			Total:              res.Received,
			Kept:               res.Imported,
			SkippedExisting:    res.SkippedDuplicates,
			SkippedWithinBatch: res.SkippedWithinBatch,
			Timestamp:          at,
		},
	}
	for _, p := range res.Pairs {
		r.Duplicates = append(r.Duplicates, ReportPair{ID: p.Duplicate.ID, Name: p.Duplicate.DisplayName, MatchedID: p.Original.ID})
	}
	return r
}

// WriteReport saves r to a YAML file.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}
