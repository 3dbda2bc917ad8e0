// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Contact is a person entry in an address book collection.
type Contact struct {
	ID           string  `json:"id" yaml:"id"`
	CollectionID string  `json:"collection_id" yaml:"collection_id"`
	UID          *string `json:"uid,omitempty" yaml:"uid,omitempty"`

	// FormattedName is the vCard FN value.
	FormattedName string  `json:"formatted_name" yaml:"formatted_name"`
	Emails        []Email `json:"emails,omitempty" yaml:"emails,omitempty"`
	Phones        []Phone `json:"phones,omitempty" yaml:"phones,omitempty"`
	Organization  string  `json:"organization,omitempty" yaml:"organization,omitempty"`
	Note          string  `json:"note,omitempty" yaml:"note,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Comparable projects the contact onto the record shape used for
// duplicate detection.
func (c Contact) Comparable() ComparableRecord {
	return ComparableRecord{
		ID:          c.ID,
		UID:         c.UID,
		DisplayName: c.FormattedName,
		Emails:      c.Emails,
		Phones:      c.Phones,
	}
}

// TaskStatus mirrors the iCalendar VTODO STATUS values.
type TaskStatus string

const (
	TaskNeedsAction TaskStatus = "needs-action"
	TaskInProcess   TaskStatus = "in-process"
	TaskCompleted   TaskStatus = "completed"
	TaskCancelled   TaskStatus = "cancelled"
)

// Task is an entry in a task list collection.
type Task struct {
	ID           string     `json:"id" yaml:"id"`
	CollectionID string     `json:"collection_id" yaml:"collection_id"`
	UID          *string    `json:"uid,omitempty" yaml:"uid,omitempty"`
	Title        string     `json:"title" yaml:"title"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status       TaskStatus `json:"status" yaml:"status"`

	// Priority follows iCalendar: 0 is undefined, 1 highest, 9 lowest.
	Priority int        `json:"priority,omitempty" yaml:"priority,omitempty"`
	Due      *time.Time `json:"due,omitempty" yaml:"due,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Comparable projects the task onto the record shape used for duplicate
// detection. Tasks have no contact channels, so only UID and title take
// part in matching.
func (t Task) Comparable() ComparableRecord {
	return ComparableRecord{
		ID:          t.ID,
		UID:         t.UID,
		DisplayName: t.Title,
	}
}
