// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup decides which records in a collection are duplicates of
// each other, and which incoming records already exist in a collection.
// Matching is deterministic and rule-based: records are bucketed by a
// comparison key and confirmed with a pairwise rule.
//
// Every function here is pure. Inputs are never mutated and no state is
// kept between calls, so the package is safe for concurrent use.
package dedup

import "github.com/pdiddy/merge-engine/pkg/types"

// Pair links a record classified as duplicate to the record it matched:
// the first-seen representative for FindDuplicates, or the existing record
// for MatchExisting.
type Pair struct {
	Duplicate types.ComparableRecord `json:"duplicate" yaml:"duplicate"`
	Original  types.ComparableRecord `json:"original" yaml:"original"`
}

// Result partitions an input slice into unique and duplicate records. Both
// slices keep input order.
type Result struct {
	Unique     []types.ComparableRecord `json:"unique" yaml:"unique"`
	Duplicates []types.ComparableRecord `json:"duplicates" yaml:"duplicates"`

	// Pairs has one entry per duplicate, in the same order as Duplicates.
	Pairs []Pair `json:"pairs,omitempty" yaml:"pairs,omitempty"`
}

// DuplicateIDs returns the IDs of the duplicates in input order.
func (r Result) DuplicateIDs() []string {
	ids := make([]string, len(r.Duplicates))
	for i, d := range r.Duplicates {
		ids[i] = d.ID
	}
	return ids
}

// FindDuplicates partitions records with a first-seen-wins policy: the
// earliest record of a duplicate group stays in Unique and later ones go to
// Duplicates.
//
// Each key maps to its current representative. A same-key record that the
// pairwise rule rejects becomes the new representative; a confirmed
// duplicate never replaces it, so later records are still compared with the
// original.
func FindDuplicates(records []types.ComparableRecord, cfg Config) Result {
	res := Result{
		Unique:     make([]types.ComparableRecord, 0, len(records)),
		Duplicates: []types.ComparableRecord{},
	}
	representatives := make(map[string]types.ComparableRecord, len(records))

	for _, r := range records {
		key := Key(r, cfg)
		rep, seen := representatives[key]
		if seen && IsDuplicate(r, rep, cfg) {
			res.Duplicates = append(res.Duplicates, r)
			res.Pairs = append(res.Pairs, Pair{Duplicate: r, Original: rep})
			continue
		}
		representatives[key] = r
		res.Unique = append(res.Unique, r)
	}
	return res
}

// MatchExisting classifies each of newRecords as duplicate when some
// record in existing shares its key and satisfies the pairwise rule.
// It does not deduplicate within newRecords; run FindDuplicates first for
// that.
func MatchExisting(newRecords, existing []types.ComparableRecord, cfg Config) Result {
	index := make(map[string][]types.ComparableRecord, len(existing))
	for _, e := range existing {
		key := Key(e, cfg)
		index[key] = append(index[key], e)
	}

	res := Result{
		Unique:     make([]types.ComparableRecord, 0, len(newRecords)),
		Duplicates: []types.ComparableRecord{},
	}
	for _, r := range newRecords {
		match, ok := firstMatch(r, index[Key(r, cfg)], cfg)
		if !ok {
			res.Unique = append(res.Unique, r)
			continue
		}
		res.Duplicates = append(res.Duplicates, r)
		res.Pairs = append(res.Pairs, Pair{Duplicate: r, Original: match})
	}
	return res
}

func firstMatch(r types.ComparableRecord, candidates []types.ComparableRecord, cfg Config) (types.ComparableRecord, bool) {
	for _, c := range candidates {
		if IsDuplicate(r, c, cfg) {
			return c, true
		}
	}
	return types.ComparableRecord{}, false
}

// DuplicateIDs runs FindDuplicates and returns only the duplicate IDs, in
// input order, ready for a bulk delete.
func DuplicateIDs(records []types.ComparableRecord, cfg Config) []string {
	return FindDuplicates(records, cfg).DuplicateIDs()
}
