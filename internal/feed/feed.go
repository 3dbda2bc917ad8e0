// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed fetches URL-sourced address books (vCard) and task lists
// (iCalendar) so they can be merged into local collections.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/merge-engine/internal/httputil"
	"github.com/pdiddy/merge-engine/internal/ical"
	"github.com/pdiddy/merge-engine/internal/secrets"
	"github.com/pdiddy/merge-engine/internal/vcard"
	"github.com/pdiddy/merge-engine/pkg/types"
)

const defaultConcurrency = 4

// Fetcher downloads and decodes feeds. The zero value is usable and falls
// back to http.DefaultClient.
type Fetcher struct {
	Client    *http.Client
	UserAgent string

	// MaxRetries is passed to httputil.DoWithRetry; 0 means its default.
	MaxRetries int

	// Concurrency bounds RefreshAll; 0 means 4.
	Concurrency int

	// Credentials maps secret names to values, as returned by secrets.Load.
	Credentials map[string]string
}

// NewFetcher builds a Fetcher from configuration and loaded credentials.
func NewFetcher(cfg types.FeedConfig, creds map[string]string) *Fetcher {
	return &Fetcher{
		Client:      &http.Client{Timeout: cfg.Timeout},
		UserAgent:   cfg.UserAgent,
		MaxRetries:  cfg.MaxRetries,
		Concurrency: cfg.Concurrency,
		Credentials: creds,
	}
}

// FetchContacts downloads a vCard feed and decodes it.
func (f *Fetcher) FetchContacts(ctx context.Context, rawURL string) ([]types.Contact, error) {
	var contacts []types.Contact
	err := f.fetch(ctx, rawURL, "text/vcard", func(r io.Reader) error {
		var err error
		contacts, err = vcard.Decode(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// FetchTasks downloads an iCalendar feed and decodes its VTODOs.
func (f *Fetcher) FetchTasks(ctx context.Context, rawURL string) ([]types.Task, error) {
	var tasks []types.Task
	err := f.fetch(ctx, rawURL, "text/calendar", func(r io.Reader) error {
		var err error
		tasks, err = ical.Decode(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL, accept string, decode func(io.Reader) error) error {
	u, err := feedURL(rawURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	if token, ok := secrets.FeedToken(f.Credentials, u.Hostname()); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, f.MaxRetries)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed %s returned HTTP %d", u.Redacted(), resp.StatusCode)
	}
	if err := decode(resp.Body); err != nil {
		return fmt.Errorf("decoding feed %s: %w", u.Redacted(), err)
	}
	return nil
}

// feedURL parses rawURL and rewrites webcal:// to https://.
func feedURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parsing feed URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "webcal", "webcals":
		u.Scheme = "https"
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported feed URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("feed URL %q has no host", rawURL)
	}
	return u, nil
}

// Result is the outcome of fetching one collection's feed. Exactly one of
// Contacts or Tasks is populated, according to the collection kind, unless
// Err is set.
type Result struct {
	Collection types.Collection
	Contacts   []types.Contact
	Tasks      []types.Task
	Err        error
}

// RefreshAll fetches every collection's SourceURL concurrently, at most
// Concurrency at a time. A failing feed records its error in the matching
// Result and does not stop the others. Results are returned in input order.
// The returned error is non-nil only when ctx is cancelled.
func (f *Fetcher) RefreshAll(ctx context.Context, collections []types.Collection) ([]Result, error) {
	limit := f.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	results := make([]Result, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, c := range collections {
		i, c := i, c
		results[i].Collection = c
		g.Go(func() error {
			if c.SourceURL == "" {
				results[i].Err = fmt.Errorf("collection %s has no source URL", c.ID)
				return nil
			}
			switch c.Kind {
			case types.KindContacts:
				results[i].Contacts, results[i].Err = f.FetchContacts(gctx, c.SourceURL)
			case types.KindTasks:
				results[i].Tasks, results[i].Err = f.FetchTasks(gctx, c.SourceURL)
			default:
				results[i].Err = fmt.Errorf("collection %s has unknown kind %q", c.ID, c.Kind)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
