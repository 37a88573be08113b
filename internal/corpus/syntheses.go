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

// EnsureDomain returns the domain with the given name, creating it when absent.
func (s *Store) EnsureDomain(ctx context.Context, name string) (types.Domain, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO domains (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name,
	); err != nil {
		return types.Domain{}, fmt.Errorf("inserting domain %q: %w", name, err)
	}
	d := types.Domain{Name: name}
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM domains WHERE name = ?`, name,
	).Scan(&d.ID); err != nil {
		return types.Domain{}, fmt.Errorf("looking up domain %q: %w", name, err)
	}
	return d, nil
}

// GetDomain returns the domain with the given id, or an error wrapping
// types.ErrDomainNotFound.
func (s *Store) GetDomain(ctx context.Context, id int64) (types.Domain, error) {
	d := types.Domain{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT name FROM domains WHERE id = ?`, id).Scan(&d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Domain{}, fmt.Errorf("domain %d: %w", id, types.ErrDomainNotFound)
	}
	if err != nil {
		return types.Domain{}, fmt.Errorf("reading domain %d: %w", id, err)
	}
	return d, nil
}

// UpsertSynthesis writes the synthesis document for (ds.RunID, ds.DomainID)
// in one statement, replacing any previous document for that pair.
func (s *Store) UpsertSynthesis(ctx context.Context, ds types.DomainSynthesis) error {
	findings, err := json.Marshal(ds.KeyFindings)
	if err != nil {
		return fmt.Errorf("encoding key findings: %w", err)
	}
	insights, err := json.Marshal(ds.CrossFieldInsights)
	if err != nil {
		return fmt.Errorf("encoding cross-field insights: %w", err)
	}
	paperIDs, err := json.Marshal(nonNil(ds.PaperIDs))
	if err != nil {
		return fmt.Errorf("encoding paper ids: %w", err)
	}
	keys, err := json.Marshal(nonNil(ds.CitationKeys))
	if err != nil {
		return fmt.Errorf("encoding citation keys: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO domain_syntheses
			(synthesis_run_id, domain_id, summary_markdown, key_findings, cross_field_insights,
			 papers_analyzed, paper_ids, citation_keys, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(synthesis_run_id, domain_id) DO UPDATE SET
			summary_markdown=excluded.summary_markdown, key_findings=excluded.key_findings,
			cross_field_insights=excluded.cross_field_insights,
			papers_analyzed=excluded.papers_analyzed, paper_ids=excluded.paper_ids,
			citation_keys=excluded.citation_keys, created_at=excluded.created_at`,
		ds.RunID, ds.DomainID, ds.SummaryMarkdown, string(findings), string(insights),
		ds.PapersAnalyzed, string(paperIDs), string(keys), formatTime(ds.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("writing synthesis for domain %d: %w", ds.DomainID, err)
	}
	return nil
}

// ListSyntheses returns the domain syntheses of a run in domain id order.
func (s *Store) ListSyntheses(ctx context.Context, runID string) ([]types.DomainSynthesis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ds.synthesis_run_id, ds.domain_id, d.name, ds.summary_markdown,
			ds.key_findings, ds.cross_field_insights, ds.papers_analyzed,
			ds.paper_ids, ds.citation_keys, ds.created_at
		 FROM domain_syntheses ds JOIN domains d ON d.id = ds.domain_id
		 WHERE ds.synthesis_run_id = ?
		 ORDER BY ds.domain_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing syntheses of run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []types.DomainSynthesis
	for rows.Next() {
		var (
			ds                                 types.DomainSynthesis
			findings, insights, ids, keys, cat string
		)
		if err := rows.Scan(&ds.RunID, &ds.DomainID, &ds.Domain, &ds.SummaryMarkdown,
			&findings, &insights, &ds.PapersAnalyzed, &ids, &keys, &cat); err != nil {
			return nil, fmt.Errorf("scanning synthesis: %w", err)
		}
		for _, f := range []struct {
			data string
			dst  any
		}{
			{findings, &ds.KeyFindings},
			{insights, &ds.CrossFieldInsights},
			{ids, &ds.PaperIDs},
			{keys, &ds.CitationKeys},
		} {
			if err := json.Unmarshal([]byte(f.data), f.dst); err != nil {
				return nil, fmt.Errorf("decoding synthesis of domain %d: %w", ds.DomainID, err)
			}
		}
		ds.CreatedAt = parseTime(cat)
		out = append(out, ds)
	}
	return out, rows.Err()
}

// SaveManuscript stores m as the next version for its run and returns it
// with ID and Version assigned.
func (s *Store) SaveManuscript(ctx context.Context, m types.Manuscript) (types.Manuscript, error) {
	sections, err := json.Marshal(m.Sections)
	if err != nil {
		return m, fmt.Errorf("encoding sections: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return m, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM manuscripts WHERE synthesis_run_id = ?`, m.RunID,
	).Scan(&m.Version); err != nil {
		return m, fmt.Errorf("reading manuscript version: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO manuscripts
			(synthesis_run_id, version, mode, field, sections, full_text, bibliography, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Version, m.Mode, m.Field, string(sections), m.FullText,
		nullString(m.Bibliography), formatTime(m.GeneratedAt),
	)
	if err != nil {
		return m, fmt.Errorf("inserting manuscript: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return m, fmt.Errorf("reading manuscript id: %w", err)
	}
	return m, tx.Commit()
}

// LatestManuscript returns the highest manuscript version of a run.
func (s *Store) LatestManuscript(ctx context.Context, runID string) (types.Manuscript, error) {
	var (
		m        types.Manuscript
		sections string
		mode     sql.NullString
		field    sql.NullString
		bib      sql.NullString
		at       string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, synthesis_run_id, version, mode, field, sections, full_text, bibliography, generated_at
		 FROM manuscripts WHERE synthesis_run_id = ?
		 ORDER BY version DESC LIMIT 1`, runID,
	).Scan(&m.ID, &m.RunID, &m.Version, &mode, &field, &sections, &m.FullText, &bib, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("run %s: %w", runID, ErrManuscriptNotFound)
	}
	if err != nil {
		return m, fmt.Errorf("reading manuscript of run %s: %w", runID, err)
	}
	m.Mode, m.Field, m.Bibliography = mode.String, field.String, bib.String
	m.GeneratedAt = parseTime(at)
	if err := json.Unmarshal([]byte(sections), &m.Sections); err != nil {
		return m, fmt.Errorf("decoding sections: %w", err)
	}
	return m, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
