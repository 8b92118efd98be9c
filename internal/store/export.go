// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is the flattened run summary written to the export files.
type ExportEntry struct {
	ID              string    `json:"id" yaml:"id"`
	Label           string    `json:"label" yaml:"label"`
	StartedAt       time.Time `json:"started_at" yaml:"started_at"`
	TranscriptCount int       `json:"transcript_count" yaml:"transcript_count"`
	TotalSeconds    float64   `json:"total_seconds" yaml:"total_seconds"`
	AverageSeconds  float64   `json:"average_seconds" yaml:"average_seconds"`
	Notes           string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes all run summaries to results/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(s.resultsDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes all run summaries to results/index/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(s.resultsDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	runs, err := s.List(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(runs))
	for i, r := range runs {
		entries[i] = ExportEntry{
			ID:              r.ID,
			Label:           r.Label,
			StartedAt:       r.StartedAt,
			TranscriptCount: r.TranscriptCount,
			TotalSeconds:    r.TotalSeconds,
			AverageSeconds:  r.AverageSeconds,
			Notes:           r.Notes,
		}
	}
	return entries, nil
}
