// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/merge-engine/pkg/types"
)

// CreateContacts inserts contacts with their emails and phones and returns
// them with IDs and timestamps filled in.
func (s *Store) CreateContacts(ctx context.Context, contacts []types.Contact) ([]types.Contact, error) {
	var out []types.Contact
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.CreateContacts(ctx, contacts)
		return err
	})
	return out, err
}

// CreateContacts inserts contacts inside the transaction.
func (t *Tx) CreateContacts(ctx context.Context, contacts []types.Contact) ([]types.Contact, error) {
	return createContacts(ctx, t.tx, t.now(), contacts)
}

// ListContacts returns the contacts of a collection in insertion order,
// with emails and phones loaded.
func (s *Store) ListContacts(ctx context.Context, collectionID string) ([]types.Contact, error) {
	return listContacts(ctx, s.db, collectionID)
}

// ListContacts reads contacts inside the transaction.
func (t *Tx) ListContacts(ctx context.Context, collectionID string) ([]types.Contact, error) {
	return listContacts(ctx, t.tx, collectionID)
}

// DeleteContacts removes the contacts with the given IDs; their emails and
// phones cascade. It returns the number of contacts removed.
func (s *Store) DeleteContacts(ctx context.Context, ids []string) (int, error) {
	return deleteByIDs(ctx, s.db, "contacts", ids)
}

// DeleteContacts removes contacts inside the transaction.
func (t *Tx) DeleteContacts(ctx context.Context, ids []string) (int, error) {
	return deleteByIDs(ctx, t.tx, "contacts", ids)
}

func createContacts(ctx context.Context, q querier, now time.Time, contacts []types.Contact) ([]types.Contact, error) {
	out := make([]types.Contact, len(contacts))
	for i, c := range contacts {
		if c.CollectionID == "" {
			return nil, fmt.Errorf("contact %d has no collection", i)
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now

		_, err := q.ExecContext(ctx,
			`INSERT INTO contacts (id, collection_id, uid, formatted_name, organization, note, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.CollectionID, nullUID(c.UID), c.FormattedName,
			nullString(c.Organization), nullString(c.Note),
			formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
		)
		if err != nil {
			return nil, fmt.Errorf("inserting contact %s: %w", c.ID, err)
		}

		for pos, e := range c.Emails {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO contact_emails (contact_id, position, address) VALUES (?, ?, ?)`,
				c.ID, pos, e.Address,
			); err != nil {
				return nil, fmt.Errorf("inserting email for contact %s: %w", c.ID, err)
			}
		}
		for pos, p := range c.Phones {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO contact_phones (contact_id, position, number) VALUES (?, ?, ?)`,
				c.ID, pos, p.Number,
			); err != nil {
				return nil, fmt.Errorf("inserting phone for contact %s: %w", c.ID, err)
			}
		}
		out[i] = c
	}
	return out, nil
}

func listContacts(ctx context.Context, q querier, collectionID string) ([]types.Contact, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, collection_id, uid, formatted_name, organization, note, created_at, updated_at
		 FROM contacts WHERE collection_id = ? ORDER BY seq`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	var contacts []types.Contact
	index := make(map[string]int)
	for rows.Next() {
		var (
			c                    types.Contact
			uid, org, note       sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&c.ID, &c.CollectionID, &uid, &c.FormattedName, &org, &note, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		c.UID = uidFromNull(uid)
		c.Organization = org.String
		c.Note = note.String
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		index[c.ID] = len(contacts)
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return contacts, nil
	}

	if err := loadChildren(ctx, q, collectionID,
		`SELECT e.contact_id, e.address FROM contact_emails e
		 JOIN contacts c ON c.id = e.contact_id
		 WHERE c.collection_id = ? ORDER BY e.contact_id, e.position`,
		func(contactID, value string) {
			if i, ok := index[contactID]; ok {
				contacts[i].Emails = append(contacts[i].Emails, types.Email{Address: value})
			}
		},
	); err != nil {
		return nil, fmt.Errorf("loading emails: %w", err)
	}

	if err := loadChildren(ctx, q, collectionID,
		`SELECT p.contact_id, p.number FROM contact_phones p
		 JOIN contacts c ON c.id = p.contact_id
		 WHERE c.collection_id = ? ORDER BY p.contact_id, p.position`,
		func(contactID, value string) {
			if i, ok := index[contactID]; ok {
				contacts[i].Phones = append(contacts[i].Phones, types.Phone{Number: value})
			}
		},
	); err != nil {
		return nil, fmt.Errorf("loading phones: %w", err)
	}

	return contacts, nil
}

// loadChildren runs a (contact_id, value) query and hands each row to add.
func loadChildren(ctx context.Context, q querier, collectionID, query string, add func(contactID, value string)) error {
	rows, err := q.QueryContext(ctx, query, collectionID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var contactID, value string
		if err := rows.Scan(&contactID, &value); err != nil {
			return err
		}
		add(contactID, value)
	}
	return rows.Err()
}
