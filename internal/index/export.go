// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one concept in an export file.
type ExportEntry struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Category    string   `json:"category" yaml:"category"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Path        string   `json:"path" yaml:"path"`
}

const exportLimit = 100000

// ExportYAML writes the matching concepts to <index dir>/export.yaml and
// returns the file path.
func (s *Store) ExportYAML(ctx context.Context, q Query) (string, error) {
	entries, err := s.exportEntries(ctx, q)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport("export.yaml", data)
}

// ExportJSON writes the matching concepts to <index dir>/export.json and
// returns the file path.
func (s *Store) ExportJSON(ctx context.Context, q Query) (string, error) {
	entries, err := s.exportEntries(ctx, q)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport("export.json", data)
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (s *Store) exportEntries(ctx context.Context, q Query) ([]ExportEntry, error) {
	q.MaxResults = exportLimit
	results, err := s.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			Slug:        r.Slug,
			Category:    r.Category,
			Title:       r.Title,
			Description: r.Description,
			Keywords:    r.Keywords,
			Path:        r.Path,
		}
	}
	return entries, nil
}
