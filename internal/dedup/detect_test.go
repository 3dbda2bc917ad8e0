// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/merge-engine/pkg/types"
)

func ids(records []types.ComparableRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFindDuplicatesDefaultConfig(t *testing.T) {
	records := []types.ComparableRecord{
		{ID: "1", DisplayName: "Jane Doe", Emails: emails("jane@x.com")},
		{ID: "2", DisplayName: "jane doe", Emails: emails("JANE@X.COM")},
		{ID: "3", DisplayName: "Bob", Emails: emails("bob@x.com")},
	}

	res := FindDuplicates(records, DefaultConfig())

	assert.Equal(t, []string{"1", "3"}, ids(res.Unique))
	assert.Equal(t, []string{"2"}, ids(res.Duplicates))
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "1", res.Pairs[0].Original.ID)
}

func TestFindDuplicatesUIDPrecedence(t *testing.T) {
	records := []types.ComparableRecord{
		{ID: "1", UID: uid("abc"), DisplayName: "Jane"},
		{ID: "2", UID: uid("abc"), DisplayName: "Totally Different"},
	}

	res := FindDuplicates(records, DefaultConfig())

	assert.Equal(t, []string{"1"}, ids(res.Unique))
	assert.Equal(t, []string{"2"}, ids(res.Duplicates))
}

func TestFindDuplicatesEmailOnly(t *testing.T) {
	cfg := NewConfig(types.DetectionOptions{
		UseUID:   types.BoolPtr(false),
		UseName:  types.BoolPtr(false),
		UseEmail: types.BoolPtr(true),
		UsePhone: types.BoolPtr(false),
	})
	records := []types.ComparableRecord{
		{ID: "1", DisplayName: "Jane Doe", Emails: emails("jane@x.com")},
		{ID: "2", DisplayName: "J. Doe", Emails: emails("jane@x.com")},
	}

	res := FindDuplicates(records, cfg)

	assert.Equal(t, []string{"1"}, ids(res.Unique))
	assert.Equal(t, []string{"2"}, ids(res.Duplicates))
}

func TestFindDuplicatesKeepsEarliestWithInterspersedRecords(t *testing.T) {
	a := types.ComparableRecord{ID: "a", DisplayName: "Jane", Emails: emails("jane@x.com")}
	b := types.ComparableRecord{ID: "b", DisplayName: "JANE", Emails: emails("jane@x.com")}

	for n := 0; n < 5; n++ {
		t.Run(fmt.Sprintf("%d between", n), func(t *testing.T) {
			records := []types.ComparableRecord{a}
			for i := 0; i < n; i++ {
				records = append(records, types.ComparableRecord{
					ID:          fmt.Sprintf("x%d", i),
					DisplayName: fmt.Sprintf("Other %d", i),
					Emails:      emails(fmt.Sprintf("other%d@x.com", i)),
				})
			}
			records = append(records, b)

			res := FindDuplicates(records, DefaultConfig())

			assert.Equal(t, "a", res.Unique[0].ID)
			assert.Len(t, res.Unique, n+1)
			assert.Equal(t, []string{"b"}, ids(res.Duplicates))
		})
	}
}

func TestFindDuplicatesRepresentativeHandling(t *testing.T) {
	// Name is the whole key here, so every record lands in one bucket and the
	// phone decides.
	cfg := Config{UseName: true, UsePhone: true}
	records := []types.ComparableRecord{
		{ID: "A", DisplayName: "Jane", Phones: phones("111-1111")},
		{ID: "B", DisplayName: "Jane", Phones: phones("111-1111", "222-2222")},
		// Matches B but not A: B never became the representative.
		{ID: "C", DisplayName: "Jane", Phones: phones("222-2222")},
		// C replaced A as representative after the mismatch.
		{ID: "D", DisplayName: "Jane", Phones: phones("222 2222")},
	}

	res := FindDuplicates(records, cfg)

	assert.Equal(t, []string{"A", "C"}, ids(res.Unique))
	assert.Equal(t, []string{"B", "D"}, ids(res.Duplicates))
	require.Len(t, res.Pairs, 2)
	assert.Equal(t, "A", res.Pairs[0].Original.ID)
	assert.Equal(t, "C", res.Pairs[1].Original.ID)
}

func TestFindDuplicatesNamelessRecordNotHiddenByEmailName(t *testing.T) {
	records := []types.ComparableRecord{
		{ID: "c", Emails: emails("x@y.com")},
		{ID: "b", DisplayName: "x@y.com"},
		{ID: "d", Emails: emails("x@y.com")},
	}

	res := FindDuplicates(records, DefaultConfig())

	assert.Equal(t, "|x@y.com", Key(records[0], DefaultConfig()))
	assert.Equal(t, "x@y.com|", Key(records[1], DefaultConfig()))
	assert.Equal(t, []string{"c", "b"}, ids(res.Unique))
	assert.Equal(t, []string{"d"}, res.DuplicateIDs())
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "c", res.Pairs[0].Original.ID)
}

func TestFindDuplicatesEmptySignalIsolation(t *testing.T) {
	records := []types.ComparableRecord{
		{ID: "1"},
		{ID: "2", DisplayName: ""},
		{ID: "3", DisplayName: "   ", Emails: []types.Email{}, Phones: []types.Phone{}},
	}
	for _, cfg := range allConfigs() {
		t.Run(cfg.String(), func(t *testing.T) {
			res := FindDuplicates(records, cfg)
			assert.Equal(t, []string{"1", "2", "3"}, ids(res.Unique))
			assert.Empty(t, res.Duplicates)
		})
	}
}

func TestFindDuplicatesAllDisabled(t *testing.T) {
	records := []types.ComparableRecord{
		{ID: "1", UID: uid("abc"), DisplayName: "Jane", Emails: emails("jane@x.com")},
		{ID: "2", UID: uid("abc"), DisplayName: "Jane", Emails: emails("jane@x.com")},
	}

	res := FindDuplicates(records, Config{})

	assert.Len(t, res.Unique, 2)
	assert.Empty(t, res.Duplicates)
}

func TestFindDuplicatesEmptyInput(t *testing.T) {
	res := FindDuplicates(nil, DefaultConfig())
	assert.Empty(t, res.Unique)
	assert.Empty(t, res.Duplicates)
	assert.Empty(t, DuplicateIDs(nil, DefaultConfig()))
}

func TestFindDuplicatesDoesNotMutateInput(t *testing.T) {
	records := []types.ComparableRecord{
		{ID: "1", DisplayName: "Jane  Doe ", Emails: emails("JANE@X.COM"), Phones: phones("+1 555 123 4567")},
		{ID: "2", DisplayName: "jane doe", Emails: emails("jane@x.com")},
	}
	before := make([]types.ComparableRecord, len(records))
	copy(before, records)

	FindDuplicates(records, Config{UseName: true, UseEmail: true, UsePhone: true})

	assert.Equal(t, before, records)
	assert.Equal(t, "JANE@X.COM", records[0].Emails[0].Address)
}

func TestFindDuplicatesPartitionsInput(t *testing.T) {
	records := []types.ComparableRecord{
		{ID: "1", DisplayName: "Jane", Emails: emails("jane@x.com")},
		{ID: "2", DisplayName: "Bob", Emails: emails("bob@x.com")},
		{ID: "3", DisplayName: "jane", Emails: emails("jane@x.com")},
		{ID: "4", DisplayName: "BOB", Emails: emails("bob@x.com", "robert@x.com")},
		{ID: "5", DisplayName: "Carol"},
	}

	res := FindDuplicates(records, DefaultConfig())

	assert.Equal(t, []string{"1", "2", "5"}, ids(res.Unique))
	assert.Equal(t, []string{"3", "4"}, ids(res.Duplicates))
	assert.Equal(t, len(records), len(res.Unique)+len(res.Duplicates))
}

func TestDuplicateIDs(t *testing.T) {
	records := []types.ComparableRecord{
		{ID: "1", DisplayName: "Jane Doe", Emails: emails("jane@x.com")},
		{ID: "2", DisplayName: "jane doe", Emails: emails("JANE@X.COM")},
		{ID: "3", DisplayName: "Bob", Emails: emails("bob@x.com")},
		{ID: "4", DisplayName: "Jane Doe", Emails: emails("jane@x.com")},
	}

	assert.Equal(t, []string{"2", "4"}, DuplicateIDs(records, DefaultConfig()))
}

func TestMatchExisting(t *testing.T) {
	existing := []types.ComparableRecord{
		{ID: "e1", DisplayName: "Jane Doe", Emails: emails("jane@x.com")},
		{ID: "e2", DisplayName: "Bob", Emails: emails("bob@x.com")},
	}
	incoming := []types.ComparableRecord{
		{ID: "n1", DisplayName: "JANE DOE", Emails: emails("jane@x.com")},
		{ID: "n2", DisplayName: "Alice", Emails: emails("alice@x.com")},
		// Same as n1: matching does not dedup within the new batch.
		{ID: "n3", DisplayName: "jane doe", Emails: emails("Jane@X.com")},
	}

	res := MatchExisting(incoming, existing, DefaultConfig())

	assert.Equal(t, []string{"n2"}, ids(res.Unique))
	assert.Equal(t, []string{"n1", "n3"}, ids(res.Duplicates))
	require.Len(t, res.Pairs, 2)
	assert.Equal(t, "e1", res.Pairs[0].Original.ID)
	assert.Equal(t, []string{"e1", "e2"}, ids(existing))
}

func TestMatchExistingChecksEveryCandidateInBucket(t *testing.T) {
	cfg := Config{UseName: true, UsePhone: true}
	existing := []types.ComparableRecord{
		{ID: "e1", DisplayName: "Jane", Phones: phones("111-1111")},
		{ID: "e2", DisplayName: "Jane", Phones: phones("222-2222")},
	}
	incoming := []types.ComparableRecord{
		{ID: "n1", DisplayName: "jane", Phones: phones("(222) 2222")},
		{ID: "n2", DisplayName: "jane", Phones: phones("333-3333")},
	}

	res := MatchExisting(incoming, existing, cfg)

	assert.Equal(t, []string{"n2"}, ids(res.Unique))
	assert.Equal(t, []string{"n1"}, ids(res.Duplicates))
	assert.Equal(t, "e2", res.Pairs[0].Original.ID)
}

func TestMatchExistingEmptyExisting(t *testing.T) {
	incoming := []types.ComparableRecord{{ID: "n1", DisplayName: "Jane"}, {ID: "n2", DisplayName: "Jane"}}

	res := MatchExisting(incoming, nil, DefaultConfig())

	assert.Equal(t, []string{"n1", "n2"}, ids(res.Unique))
	assert.Empty(t, res.Duplicates)
}

func TestMatchExistingAgreesWithSingleCollectionRun(t *testing.T) {
	existing := []types.ComparableRecord{
		{ID: "e1", UID: uid("u-1"), DisplayName: "Jane", Emails: emails("jane@x.com")},
		{ID: "e2", DisplayName: "Bob", Emails: emails("bob@x.com")},
		{ID: "e3", DisplayName: "Carol", Emails: emails("carol@x.com")},
	}
	incoming := []types.ComparableRecord{
		{ID: "n1", UID: uid("u-1"), DisplayName: "Someone Else"},
		{ID: "n2", DisplayName: "bob", Emails: emails("BOB@x.com")},
		{ID: "n3", DisplayName: "Dave", Emails: emails("dave@x.com")},
		{ID: "n4", DisplayName: "Carol", Emails: emails("carol@y.com")},
	}

	configs := []Config{
		DefaultConfig(),
		{UseName: true},
		{UseEmail: true},
		{UseUID: true, UseEmail: true},
		{UseUID: true, UseName: true},
	}
	for _, cfg := range configs {
		t.Run(cfg.String(), func(t *testing.T) {
			combined := append(append([]types.ComparableRecord{}, existing...), incoming...)
			single := FindDuplicates(combined, cfg)

			var want []string
			for _, d := range single.Duplicates {
				for _, n := range incoming {
					if d.ID == n.ID {
						want = append(want, d.ID)
					}
				}
			}

			got := MatchExisting(incoming, existing, cfg).DuplicateIDs()
			if len(want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}
