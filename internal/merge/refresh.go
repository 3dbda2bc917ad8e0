// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"context"
	"fmt"

	"github.com/pdiddy/merge-engine/internal/feed"
	"github.com/pdiddy/merge-engine/pkg/types"
)

// FeedSource downloads the records of URL-sourced collections.
// *feed.Fetcher implements it.
type FeedSource interface {
	FetchContacts(ctx context.Context, url string) ([]types.Contact, error)
	FetchTasks(ctx context.Context, url string) ([]types.Task, error)
	RefreshAll(ctx context.Context, collections []types.Collection) ([]feed.Result, error)
}

// RefreshOutcome is the result of refreshing one collection.
type RefreshOutcome struct {
	Collection types.Collection
	Result     ImportResult
	Err        error
}

// RefreshFromFeed fetches a collection's SourceURL and imports the records
// that are not already present. Stored records are never removed.
func (s *Service) RefreshFromFeed(ctx context.Context, collectionID string, src FeedSource, opts Options) (ImportResult, error) {
	c, err := s.store.GetCollection(ctx, collectionID)
	if err != nil {
		return ImportResult{}, err
	}
	if c.SourceURL == "" {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrNoSource, collectionID)
	}

	switch c.Kind {
	case types.KindContacts:
		contacts, err := src.FetchContacts(ctx, c.SourceURL)
		if err != nil {
			return ImportResult{}, err
		}
		return s.ImportContacts(ctx, c.ID, contacts, opts)
	case types.KindTasks:
		tasks, err := src.FetchTasks(ctx, c.SourceURL)
		if err != nil {
			return ImportResult{}, err
		}
		return s.ImportTasks(ctx, c.ID, tasks, opts)
	default:
		return ImportResult{}, fmt.Errorf("%w: %q", ErrWrongKind, c.Kind)
	}
}

// RefreshAll refreshes every collection that has a SourceURL. Feeds are
// downloaded concurrently by src; imports run one at a time. A failing feed
// is reported in its outcome and does not stop the others.
func (s *Service) RefreshAll(ctx context.Context, src FeedSource, opts Options) ([]RefreshOutcome, error) {
	all, err := s.store.ListCollections(ctx, "")
	if err != nil {
		return nil, err
	}
	var sourced []types.Collection
	for _, c := range all {
		if c.SourceURL != "" {
			sourced = append(sourced, c)
		}
	}
	if len(sourced) == 0 {
		return nil, nil
	}

	fetched, err := src.RefreshAll(ctx, sourced)
	if err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}

	outcomes := make([]RefreshOutcome, len(fetched))
	for i, f := range fetched {
		outcomes[i] = RefreshOutcome{Collection: f.Collection}
		if f.Err != nil {
			s.log.Warn("feed fetch failed", "collection", f.Collection.ID, "url", f.Collection.SourceURL, "error", f.Err)
			outcomes[i].Err = f.Err
			continue
		}
		if f.Collection.Kind == types.KindTasks {
			outcomes[i].Result, outcomes[i].Err = s.ImportTasks(ctx, f.Collection.ID, f.Tasks, opts)
		} else {
			outcomes[i].Result, outcomes[i].Err = s.ImportContacts(ctx, f.Collection.ID, f.Contacts, opts)
		}
	}
	return outcomes, nil
}
