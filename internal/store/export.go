// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/merge-engine/pkg/types"
)

// Export is the on-disk snapshot of one collection.
type Export struct {
	Collection types.Collection `json:"collection" yaml:"collection"`
	Contacts   []types.Contact  `json:"contacts,omitempty" yaml:"contacts,omitempty"`
	Tasks      []types.Task     `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// ExportYAML writes the collection to dataDir/export/<id>.yaml and returns
// the path written.
func (s *Store) ExportYAML(ctx context.Context, collectionID string) (string, error) {
	snapshot, err := s.snapshot(ctx, collectionID)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport(collectionID+".yaml", data)
}

// ExportJSON writes the collection to dataDir/export/<id>.json and returns
// the path written.
func (s *Store) ExportJSON(ctx context.Context, collectionID string) (string, error) {
	snapshot, err := s.snapshot(ctx, collectionID)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport(collectionID+".json", data)
}

func (s *Store) snapshot(ctx context.Context, collectionID string) (*Export, error) {
	c, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	out := &Export{Collection: c}
	switch c.Kind {
	case types.KindContacts:
		out.Contacts, err = s.ListContacts(ctx, c.ID)
	case types.KindTasks:
		out.Tasks, err = s.ListTasks(ctx, c.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return out, nil
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	dir := filepath.Join(s.dataDir, exportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
