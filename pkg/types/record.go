// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for merge-engine: the
// comparable record consumed by the deduplication engine, the contact and
// task entities persisted by the store, and configuration structs.
package types

import "time"

// Email is a single email entry attached to a record.
type Email struct {
	Address string `json:"address" yaml:"address"`
}

// Phone is a single phone entry attached to a record.
type Phone struct {
	Number string `json:"number" yaml:"number"`
}

// ComparableRecord is the shape the deduplication engine compares. Callers
// build it from whatever entity they own (contact, task) and map results
// back to storage rows through ID.
type ComparableRecord struct {
	// ID is assigned by the owning store. It is never a matching signal.
	ID string `json:"id" yaml:"id"`

	// UID is the optional identifier carried over from an external source
	// (vCard UID, iCalendar UID). Nil means the record has none.
	UID *string `json:"uid,omitempty" yaml:"uid,omitempty"`

	// DisplayName is the human-readable name. It may be empty.
	DisplayName string `json:"display_name" yaml:"display_name"`

	Emails []Email `json:"emails,omitempty" yaml:"emails,omitempty"`
	Phones []Phone `json:"phones,omitempty" yaml:"phones,omitempty"`
}

// HasUID reports whether the record carries a non-empty UID.
func (r ComparableRecord) HasUID() bool {
	return r.UID != nil && *r.UID != ""
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CollectionKind identifies what a collection holds.
type CollectionKind string

const (
	KindContacts CollectionKind = "contacts"
	KindTasks    CollectionKind = "tasks"
)

// Valid reports whether k is a known collection kind.
func (k CollectionKind) Valid() bool {
	return k == KindContacts || k == KindTasks
}

// Collection is an address book or task list. A collection with a
// SourceURL is refreshed from a remote feed.
type Collection struct {
	ID        string         `json:"id" yaml:"id"`
	Kind      CollectionKind `json:"kind" yaml:"kind"`
	Name      string         `json:"name" yaml:"name"`
	SourceURL string         `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}
