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

// UpsertProfessor returns the id of the professor with the given name,
// inserting it when absent. added reports whether a row was created.
func (s *Store) UpsertProfessor(ctx context.Context, name, affiliation string) (id int64, added bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO professors (name, affiliation) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, nullString(affiliation),
	)
	if err != nil {
		return 0, false, fmt.Errorf("inserting professor %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		id, err = res.LastInsertId()
		return id, true, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM professors WHERE name = ?`, name,
	).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("looking up professor %q: %w", name, err)
	}
	return id, false, nil
}

// AddPaper inserts p and returns its corpus id. A paper whose identifier is
// already present is not inserted again; its existing id is returned with
// added set to false. Papers without an identifier are always inserted.
func (s *Store) AddPaper(ctx context.Context, p types.Paper) (id int64, added bool, err error) {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return 0, false, fmt.Errorf("encoding authors: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (pmid, title, abstract, authors, year, journal, doi, full_text, domain, professor_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pmid) DO NOTHING`,
		nullString(p.Identifier), p.Title, p.Abstract, string(authorsJSON), p.Year,
		p.Journal, p.DOI, p.FullText, nullString(p.Domain), p.ProfessorID,
	)
	if err != nil {
		return 0, false, fmt.Errorf("inserting paper %q: %w", p.Title, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		id, err = res.LastInsertId()
		return id, true, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM papers WHERE pmid = ?`, p.Identifier,
	).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("looking up paper %s: %w", p.Identifier, err)
	}
	return id, false, nil
}

const paperColumns = `p.id, p.pmid, p.title, p.abstract, p.authors, p.year, p.journal,
	p.doi, p.full_text, p.domain, p.professor_id, prof.name`

// GetPaper returns the paper with the given corpus id, or an error wrapping
// types.ErrPaperNotFound.
func (s *Store) GetPaper(ctx context.Context, id int64) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paperColumns+`
		 FROM papers p LEFT JOIN professors prof ON p.professor_id = prof.id
		 WHERE p.id = ?`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("paper %d: %w", id, types.ErrPaperNotFound)
	}
	if err != nil {
		return types.Paper{}, fmt.Errorf("reading paper %d: %w", id, err)
	}
	return p, nil
}

// ListPapers returns every paper in corpus id order, with the owning
// professor's name joined in.
func (s *Store) ListPapers(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paperColumns+`
		 FROM papers p LEFT JOIN professors prof ON p.professor_id = prof.id
		 ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// Candidates satisfies discover.Corpus.
func (s *Store) Candidates(ctx context.Context) ([]types.Paper, error) {
	return s.ListPapers(ctx)
}

// CountProfessors returns the number of professors in the corpus.
func (s *Store) CountProfessors(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM professors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting professors: %w", err)
	}
	return n, nil
}

// paperRow holds the nullable columns selected by paperColumns.
type paperRow struct {
	id                                          int64
	title                                       string
	pmid, abstract, authors, journal, doi, full sql.NullString
	domain, profName                            sql.NullString
	year, profID                                sql.NullInt64
}

func (r *paperRow) dest() []any {
	return []any{&r.id, &r.pmid, &r.title, &r.abstract, &r.authors, &r.year, &r.journal,
		&r.doi, &r.full, &r.domain, &r.profID, &r.profName}
}

func (r *paperRow) paper() (types.Paper, error) {
	p := types.Paper{
		ID:            r.id,
		Identifier:    r.pmid.String,
		Title:         r.title,
		Abstract:      r.abstract.String,
		Year:          int(r.year.Int64),
		Journal:       r.journal.String,
		DOI:           r.doi.String,
		FullText:      r.full.String,
		Domain:        r.domain.String,
		ProfessorName: r.profName.String,
	}
	if r.profID.Valid {
		id := r.profID.Int64
		p.ProfessorID = &id
	}
	if r.authors.Valid && r.authors.String != "" {
		if err := json.Unmarshal([]byte(r.authors.String), &p.Authors); err != nil {
			return types.Paper{}, fmt.Errorf("decoding authors: %w", err)
		}
	}
	return p, nil
}

func scanPaper(r rowScanner) (types.Paper, error) {
	var pr paperRow
	if err := r.Scan(pr.dest()...); err != nil {
		return types.Paper{}, err
	}
	return pr.paper()
}
