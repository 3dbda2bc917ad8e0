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

// CreateTasks inserts tasks and returns them with IDs and timestamps set.
func (s *Store) CreateTasks(ctx context.Context, tasks []types.Task) ([]types.Task, error) {
	var out []types.Task
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.CreateTasks(ctx, tasks)
		return err
	})
	return out, err
}

// CreateTasks inserts tasks inside the transaction.
func (t *Tx) CreateTasks(ctx context.Context, tasks []types.Task) ([]types.Task, error) {
	return createTasks(ctx, t.tx, t.now(), tasks)
}

// ListTasks returns the tasks of a collection in insertion order.
func (s *Store) ListTasks(ctx context.Context, collectionID string) ([]types.Task, error) {
	return listTasks(ctx, s.db, collectionID)
}

// ListTasks reads tasks inside the transaction.
func (t *Tx) ListTasks(ctx context.Context, collectionID string) ([]types.Task, error) {
	return listTasks(ctx, t.tx, collectionID)
}

// DeleteTasks removes the tasks with the given IDs.
func (s *Store) DeleteTasks(ctx context.Context, ids []string) (int, error) {
	return deleteByIDs(ctx, s.db, "tasks", ids)
}

// DeleteTasks removes tasks inside the transaction.
func (t *Tx) DeleteTasks(ctx context.Context, ids []string) (int, error) {
	return deleteByIDs(ctx, t.tx, "tasks", ids)
}

func createTasks(ctx context.Context, q querier, now time.Time, tasks []types.Task) ([]types.Task, error) {
	out := make([]types.Task, len(tasks))
	for i, t := range tasks {
		if t.CollectionID == "" {
			return nil, fmt.Errorf("task %d has no collection", i)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.Status == "" {
			t.Status = types.TaskNeedsAction
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now

		var due sql.NullString
		if t.Due != nil {
			due = sql.NullString{String: formatTime(*t.Due), Valid: true}
		}

		_, err := q.ExecContext(ctx,
			`INSERT INTO tasks (id, collection_id, uid, title, description, status, priority, due, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.CollectionID, nullUID(t.UID), t.Title, nullString(t.Description),
			string(t.Status), t.Priority, due,
			formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
		)
		if err != nil {
			return nil, fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
		out[i] = t
	}
	return out, nil
}

func listTasks(ctx context.Context, q querier, collectionID string) ([]types.Task, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, collection_id, uid, title, description, status, priority, due, created_at, updated_at
		 FROM tasks WHERE collection_id = ? ORDER BY seq`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		var (
			t                    types.Task
			uid, desc, due       sql.NullString
			status               string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&t.ID, &t.CollectionID, &uid, &t.Title, &desc, &status, &t.Priority, &due, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.UID = uidFromNull(uid)
		t.Description = desc.String
		t.Status = types.TaskStatus(status)
		if due.Valid {
			d := parseTime(due.String)
			t.Due = &d
		}
		t.CreatedAt = parseTime(createdAt)
		t.UpdatedAt = parseTime(updatedAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
