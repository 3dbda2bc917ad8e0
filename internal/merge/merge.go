// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge applies duplicate detection to stored collections. It
// removes duplicates already present in a collection (merge) and filters
// incoming records against a collection before inserting them (import).
package merge

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/merge-engine/internal/dedup"
	"github.com/pdiddy/merge-engine/internal/logging"
	"github.com/pdiddy/merge-engine/internal/store"
	"github.com/pdiddy/merge-engine/pkg/types"
)

// DefaultMaxImportRecords caps one import when the configuration leaves
// import.max_records unset.
const DefaultMaxImportRecords = 5000

var (
	// ErrTooManyRecords is returned when an import exceeds the configured limit.
	ErrTooManyRecords = errors.New("too many records")

	// ErrWrongKind is returned when an operation targets a collection of the
	// other kind, e.g. importing tasks into an address book.
	ErrWrongKind = errors.New("wrong collection kind")

	// ErrNoSource is returned when refreshing a collection without a source URL.
	ErrNoSource = errors.New("collection has no source URL")
)

// Options controls a single merge or import run.
type Options struct {
	// Detection overrides the per-kind detection defaults.
	Detection types.DetectionOptions

	// DryRun computes the result without writing to the store.
	DryRun bool
}

// MergeResult summarizes a merge of one collection.
type MergeResult struct {
	CollectionID string
	Config       dedup.Config
	DryRun       bool

	// Total is the number of records examined.
	Total int

	// MergedCount is the number of records left after the merge.
	MergedCount int

	RemovedDuplicates int
	Pairs             []dedup.Pair
}

// ImportResult summarizes an import into one collection.
type ImportResult struct {
	CollectionID string
	Config       dedup.Config
	DryRun       bool

	Received int
	Imported int

	// SkippedDuplicates counts records that matched one already stored.
	SkippedDuplicates int

	// SkippedWithinBatch counts records that duplicated an earlier record
	// of the same import.
	SkippedWithinBatch int

	Pairs []dedup.Pair
}

// Service runs merges and imports against a store.
type Service struct {
	store      *store.Store
	log        *logging.Logger
	maxRecords int
}

// NewService returns a Service. A nil logger is replaced with a no-op one.
func NewService(st *store.Store, log *logging.Logger, cfg types.ImportConfig) *Service {
	if log == nil {
		log = logging.Nop()
	}
	maxRecords := cfg.MaxRecords
	if maxRecords <= 0 {
		maxRecords = DefaultMaxImportRecords
	}
	return &Service{store: st, log: log, maxRecords: maxRecords}
}

// DetectionConfig resolves opts against the defaults for kind.
func DetectionConfig(kind types.CollectionKind, opts types.DetectionOptions) dedup.Config {
	if kind == types.KindTasks {
		return dedup.NewConfigFrom(dedup.TaskDefaults(), opts)
	}
	return dedup.NewConfig(opts)
}

// collection loads id and checks that it holds records of kind.
func (s *Service) collection(ctx context.Context, id string, kind types.CollectionKind) (types.Collection, error) {
	c, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return types.Collection{}, err
	}
	if c.Kind != kind {
		return types.Collection{}, fmt.Errorf("%w: collection %s holds %s, not %s", ErrWrongKind, id, c.Kind, kind)
	}
	return c, nil
}

func (s *Service) checkLimit(n int) error {
	if n > s.maxRecords {
		return fmt.Errorf("%w: %d received, limit is %d", ErrTooManyRecords, n, s.maxRecords)
	}
	return nil
}

// MergeContacts removes duplicate contacts from a collection, keeping the
// first-seen record of every duplicate group.
func (s *Service) MergeContacts(ctx context.Context, collectionID string, opts Options) (MergeResult, error) {
	if _, err := s.collection(ctx, collectionID, types.KindContacts); err != nil {
		return MergeResult{}, err
	}
	cfg := DetectionConfig(types.KindContacts, opts.Detection)

	var res MergeResult
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		contacts, err := tx.ListContacts(ctx, collectionID)
		if err != nil {
			return err
		}
		var found dedup.Result
		res, found = s.mergeRecords(collectionID, cfg, opts.DryRun, contactRecords(contacts))
		if opts.DryRun || res.RemovedDuplicates == 0 {
			return nil
		}
		_, err = tx.DeleteContacts(ctx, found.DuplicateIDs())
		return err
	})
	if err != nil {
		return MergeResult{}, fmt.Errorf("merging contacts in %s: %w", collectionID, err)
	}
	s.logMerge("contacts", res)
	return res, nil
}

// MergeTasks removes duplicate tasks from a collection.
func (s *Service) MergeTasks(ctx context.Context, collectionID string, opts Options) (MergeResult, error) {
	if _, err := s.collection(ctx, collectionID, types.KindTasks); err != nil {
		return MergeResult{}, err
	}
	cfg := DetectionConfig(types.KindTasks, opts.Detection)

	var res MergeResult
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		tasks, err := tx.ListTasks(ctx, collectionID)
		if err != nil {
			return err
		}
		var found dedup.Result
		res, found = s.mergeRecords(collectionID, cfg, opts.DryRun, taskRecords(tasks))
		if opts.DryRun || res.RemovedDuplicates == 0 {
			return nil
		}
		_, err = tx.DeleteTasks(ctx, found.DuplicateIDs())
		return err
	})
	if err != nil {
		return MergeResult{}, fmt.Errorf("merging tasks in %s: %w", collectionID, err)
	}
	s.logMerge("tasks", res)
	return res, nil
}

func (s *Service) mergeRecords(collectionID string, cfg dedup.Config, dryRun bool, records []types.ComparableRecord) (MergeResult, dedup.Result) {
	found := dedup.FindDuplicates(records, cfg)
	return MergeResult{
		CollectionID:      collectionID,
		Config:            cfg,
		DryRun:            dryRun,
		Total:             len(records),
		MergedCount:       len(found.Unique),
		RemovedDuplicates: len(found.Duplicates),
		Pairs:             found.Pairs,
	}, found
}

// ImportContacts inserts contacts into a collection, skipping those that
// duplicate an earlier contact of the batch or a contact already stored.
// Every inserted contact receives a fresh ID.
func (s *Service) ImportContacts(ctx context.Context, collectionID string, contacts []types.Contact, opts Options) (ImportResult, error) {
	if err := s.checkLimit(len(contacts)); err != nil {
		return ImportResult{}, err
	}
	if _, err := s.collection(ctx, collectionID, types.KindContacts); err != nil {
		return ImportResult{}, err
	}
	cfg := DetectionConfig(types.KindContacts, opts.Detection)

	incoming := make([]types.Contact, len(contacts))
	for i, c := range contacts {
		c.ID = uuid.NewString()
		c.CollectionID = collectionID
		incoming[i] = c
	}

	var res ImportResult
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		existing, err := tx.ListContacts(ctx, collectionID)
		if err != nil {
			return err
		}
		var keep map[string]bool
		res, keep = s.importRecords(collectionID, cfg, opts.DryRun, contactRecords(incoming), contactRecords(existing))
		if opts.DryRun || res.Imported == 0 {
			return nil
		}
		_, err = tx.CreateContacts(ctx, filter(incoming, keep, func(c types.Contact) string { return c.ID }))
		return err
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("importing contacts into %s: %w", collectionID, err)
	}
	s.logImport("contacts", res)
	return res, nil
}

// ImportTasks inserts tasks into a collection, skipping duplicates.
func (s *Service) ImportTasks(ctx context.Context, collectionID string, tasks []types.Task, opts Options) (ImportResult, error) {
	if err := s.checkLimit(len(tasks)); err != nil {
		return ImportResult{}, err
	}
	if _, err := s.collection(ctx, collectionID, types.KindTasks); err != nil {
		return ImportResult{}, err
	}
	cfg := DetectionConfig(types.KindTasks, opts.Detection)

	incoming := make([]types.Task, len(tasks))
	for i, t := range tasks {
		t.ID = uuid.NewString()
		t.CollectionID = collectionID
		incoming[i] = t
	}

	var res ImportResult
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		existing, err := tx.ListTasks(ctx, collectionID)
		if err != nil {
			return err
		}
		var keep map[string]bool
		res, keep = s.importRecords(collectionID, cfg, opts.DryRun, taskRecords(incoming), taskRecords(existing))
		if opts.DryRun || res.Imported == 0 {
			return nil
		}
		_, err = tx.CreateTasks(ctx, filter(incoming, keep, func(t types.Task) string { return t.ID }))
		return err
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("importing tasks into %s: %w", collectionID, err)
	}
	s.logImport("tasks", res)
	return res, nil
}

// importRecords dedups the batch, then matches the survivors against the
// stored records. It returns the set of IDs to insert.
func (s *Service) importRecords(collectionID string, cfg dedup.Config, dryRun bool, incoming, existing []types.ComparableRecord) (ImportResult, map[string]bool) {
	batch := dedup.FindDuplicates(incoming, cfg)
	matched := dedup.MatchExisting(batch.Unique, existing, cfg)

	keep := make(map[string]bool, len(matched.Unique))
	for _, r := range matched.Unique {
		keep[r.ID] = true
	}

	pairs := make([]dedup.Pair, 0, len(batch.Pairs)+len(matched.Pairs))
	pairs = append(pairs, batch.Pairs...)
	pairs = append(pairs, matched.Pairs...)

	return ImportResult{
		CollectionID:       collectionID,
		Config:             cfg,
		DryRun:             dryRun,
		Received:           len(incoming),
		Imported:           len(matched.Unique),
		SkippedDuplicates:  len(matched.Duplicates),
		SkippedWithinBatch: len(batch.Duplicates),
		Pairs:              pairs,
	}, keep
}

func (s *Service) logMerge(kind string, res MergeResult) {
	s.log.Info("merged collection",
		"kind", kind,
		"collection", res.CollectionID,
		"config", res.Config.String(),
		"total", res.Total,
		"remaining", res.MergedCount,
		"removed", res.RemovedDuplicates,
		"dry_run", res.DryRun,
	)
	s.logPairs(res.Pairs)
}

func (s *Service) logImport(kind string, res ImportResult) {
	s.log.Info("imported records",
		"kind", kind,
		"collection", res.CollectionID,
		"config", res.Config.String(),
		"received", res.Received,
		"imported", res.Imported,
		"skipped_existing", res.SkippedDuplicates,
		"skipped_batch", res.SkippedWithinBatch,
		"dry_run", res.DryRun,
	)
	s.logPairs(res.Pairs)
}

func (s *Service) logPairs(pairs []dedup.Pair) {
	for _, p := range pairs {
		s.log.Debug("duplicate",
			"id", p.Duplicate.ID,
			"name", p.Duplicate.DisplayName,
			"matched", p.Original.ID,
		)
	}
}

func contactRecords(contacts []types.Contact) []types.ComparableRecord {
	out := make([]types.ComparableRecord, len(contacts))
	for i, c := range contacts {
		out[i] = c.Comparable()
	}
	return out
}

func taskRecords(tasks []types.Task) []types.ComparableRecord {
	out := make([]types.ComparableRecord, len(tasks))
	for i, t := range tasks {
		out[i] = t.Comparable()
	}
	return out
}

// filter returns the items whose ID is in keep, preserving order.
func filter[T any](items []T, keep map[string]bool, id func(T) string) []T {
	out := make([]T, 0, len(keep))
	for _, item := range items {
		if keep[id(item)] {
			out = append(out, item)
		}
	}
	return out
}
