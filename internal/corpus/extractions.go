// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// SaveExtraction writes e as the extraction record of e.PaperID, replacing
// any previous record wholesale. Levels are never merged across passes.
func (s *Store) SaveExtraction(ctx context.Context, e types.Extraction) error {
	high, err := levelJSON(e.HighLevel)
	if err != nil {
		return err
	}
	mid, err := levelJSON(e.MidLevel)
	if err != nil {
		return err
	}
	low, err := levelJSON(e.LowLevel)
	if err != nil {
		return err
	}
	code, err := levelJSON(e.CodeMethods)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO paper_extractions
			(paper_id, high_level, mid_level, low_level, code_methods, extraction_model, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET
			high_level=excluded.high_level, mid_level=excluded.mid_level,
			low_level=excluded.low_level, code_methods=excluded.code_methods,
			extraction_model=excluded.extraction_model, extracted_at=excluded.extracted_at`,
		e.PaperID, high, mid, low, code, e.Model, formatTime(e.ExtractedAt),
	)
	if err != nil {
		return fmt.Errorf("saving extraction for paper %d: %w", e.PaperID, err)
	}
	return nil
}

// GetExtraction returns the extraction record of a paper, or an error
// wrapping ErrExtractionNotFound.
func (s *Store) GetExtraction(ctx context.Context, paperID int64) (types.Extraction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT paper_id, high_level, mid_level, low_level, code_methods, extraction_model, extracted_at
		 FROM paper_extractions WHERE paper_id = ?`, paperID)
	e, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Extraction{}, fmt.Errorf("paper %d: %w", paperID, ErrExtractionNotFound)
	}
	if err != nil {
		return types.Extraction{}, fmt.Errorf("reading extraction for paper %d: %w", paperID, err)
	}
	return e, nil
}

// DomainExtractions returns the extracted papers tagged with domain, in
// corpus id order. Domain tags match case-insensitively. When the run has a discovered candidate set, only papers
// in that set are returned.
func (s *Store) DomainExtractions(ctx context.Context, runID, domain string) ([]types.PaperExtraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paperColumns+`,
			pe.paper_id, pe.high_level, pe.mid_level, pe.low_level, pe.code_methods,
			pe.extraction_model, pe.extracted_at
		 FROM papers p
		 JOIN paper_extractions pe ON pe.paper_id = p.id
		 LEFT JOIN professors prof ON p.professor_id = prof.id
		 WHERE lower(p.domain) = lower(?)
		   AND (NOT EXISTS (SELECT 1 FROM run_papers WHERE synthesis_run_id = ?)
		        OR p.id IN (SELECT paper_id FROM run_papers WHERE synthesis_run_id = ?))
		 ORDER BY p.id`,
		domain, runID, runID)
	if err != nil {
		return nil, fmt.Errorf("querying extractions for domain %s: %w", domain, err)
	}
	defer rows.Close()

	var out []types.PaperExtraction
	for rows.Next() {
		pe, err := scanPaperExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}
		out = append(out, pe)
	}
	return out, rows.Err()
}

// levelJSON encodes an optional extraction level; nil becomes SQL NULL.
func levelJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding extraction level: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeLevel[T any](v sql.NullString) (*T, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil, fmt.Errorf("decoding extraction level: %w", err)
	}
	return &out, nil
}

type extractionColumns struct {
	paperID              int64
	high, mid, low, code sql.NullString
	model, at            string
}

func (c *extractionColumns) dest() []any {
	return []any{&c.paperID, &c.high, &c.mid, &c.low, &c.code, &c.model, &c.at}
}

func (c *extractionColumns) extraction() (types.Extraction, error) {
	e := types.Extraction{PaperID: c.paperID, Model: c.model, ExtractedAt: parseTime(c.at)}
	var err error
	if e.HighLevel, err = decodeLevel[types.HighLevel](c.high); err != nil {
		return e, err
	}
	if e.MidLevel, err = decodeLevel[types.MidLevel](c.mid); err != nil {
		return e, err
	}
	if e.LowLevel, err = decodeLevel[types.LowLevel](c.low); err != nil {
		return e, err
	}
	if e.CodeMethods, err = decodeLevel[types.CodeMethods](c.code); err != nil {
		return e, err
	}
	return e, nil
}

func scanExtraction(r rowScanner) (types.Extraction, error) {
	var c extractionColumns
	if err := r.Scan(c.dest()...); err != nil {
		return types.Extraction{}, err
	}
	return c.extraction()
}

func scanPaperExtraction(r rowScanner) (types.PaperExtraction, error) {
	var pr paperRow
	var c extractionColumns
	if err := r.Scan(append(pr.dest(), c.dest()...)...); err != nil {
		return types.PaperExtraction{}, err
	}
	p, err := pr.paper()
	if err != nil {
		return types.PaperExtraction{}, err
	}
	e, err := c.extraction()
	if err != nil {
		return types.PaperExtraction{}, err
	}
	return types.PaperExtraction{Paper: p, Extraction: e}, nil
}
