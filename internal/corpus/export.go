// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// ExportEntry holds a paper with its extraction record, if any.
type ExportEntry struct {
	Paper      types.Paper       `json:"paper" yaml:"paper"`
	Extraction *types.Extraction `json:"extraction,omitempty" yaml:"extraction,omitempty"`
}

// ExportYAML writes every paper and extraction to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every paper and extraction to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	papers, err := s.ListPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(papers))
	for i, p := range papers {
		entries[i].Paper = p
		e, err := s.GetExtraction(ctx, p.ID)
		if errors.Is(err, ErrExtractionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries[i].Extraction = &e
	}
	return entries, nil
}
