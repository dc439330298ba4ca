// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a mention with document metadata for export.
type ExportEntry struct {
	ID          string         `json:"id" yaml:"id"`
	Type        string         `json:"type" yaml:"type"`
	Text        string         `json:"text" yaml:"text"`
	DocID       string         `json:"doc_id" yaml:"doc_id"`
	Section     string         `json:"section" yaml:"section"`
	Page        int            `json:"page" yaml:"page"`
	FigureIndex int            `json:"figure_index" yaml:"figure_index"`
	Confidence  float64        `json:"confidence" yaml:"confidence"`
	Split       string         `json:"split,omitempty" yaml:"split,omitempty"`
	Document    *ExportDocMeta `json:"document,omitempty" yaml:"document,omitempty"`
}

// ExportDocMeta holds the document-level fields included in each export entry.
type ExportDocMeta struct {
	Title        string `json:"title" yaml:"title"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
}

const exportLimit = 100000

// ExportYAML writes the corpus to corpus/index/export.yaml. It supports
// the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.corpusDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the corpus to corpus/index/export.json. It supports
// the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.corpusDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:          r.ID,
			Type:        string(r.Type),
			Text:        r.Text,
			DocID:       r.DocID,
			Section:     r.Section,
			Page:        r.Page,
			FigureIndex: r.FigureIndex,
			Confidence:  r.Confidence,
			Split:       string(r.Split),
		}
		if r.DocTitle != "" || r.Manufacturer != "" {
			entries[i].Document = &ExportDocMeta{
				Title:        r.DocTitle,
				Manufacturer: r.Manufacturer,
			}
		}
	}

	return entries, nil
}
