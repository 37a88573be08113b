// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// InsertRun persists a new synthesis run.
func (s *Store) InsertRun(ctx context.Context, run types.SynthesisRun) error {
	domainsJSON, err := json.Marshal(run.Domains)
	if err != nil {
		return fmt.Errorf("encoding domains: %w", err)
	}
	var mf sql.NullString
	if run.MainFinding != nil {
		data, err := json.Marshal(run.MainFinding)
		if err != nil {
			return fmt.Errorf("encoding main finding: %w", err)
		}
		mf = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO synthesis_runs
			(id, repo_path, mode, detected_domains, main_finding, status,
			 professors_found, papers_found, papers_extracted, domains_synthesized, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RepoPath, string(run.Mode), string(domainsJSON), mf, string(run.Status),
		run.Counts.ProfessorsFound, run.Counts.PapersFound,
		run.Counts.PapersExtracted, run.Counts.DomainsSynthesized,
		formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns the run with the given id, or an error wrapping
// types.ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (types.SynthesisRun, error) {
	var (
		run                   types.SynthesisRun
		mode, status, created string
		domains, mf, done     sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, repo_path, mode, detected_domains, main_finding, status,
			professors_found, papers_found, papers_extracted, domains_synthesized,
			created_at, completed_at
		 FROM synthesis_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.RepoPath, &mode, &domains, &mf, &status,
		&run.Counts.ProfessorsFound, &run.Counts.PapersFound,
		&run.Counts.PapersExtracted, &run.Counts.DomainsSynthesized,
		&created, &done)
	if errors.Is(err, sql.ErrNoRows) {
		return types.SynthesisRun{}, fmt.Errorf("run %s: %w", id, types.ErrRunNotFound)
	}
	if err != nil {
		return types.SynthesisRun{}, fmt.Errorf("reading run %s: %w", id, err)
	}

	run.Mode = types.Mode(mode)
	run.Status = types.RunStatus(status)
	run.CreatedAt = parseTime(created)
	if done.Valid {
		t := parseTime(done.String)
		run.CompletedAt = &t
	}
	if domains.Valid && domains.String != "" {
		if err := json.Unmarshal([]byte(domains.String), &run.Domains); err != nil {
			return types.SynthesisRun{}, fmt.Errorf("decoding domains of run %s: %w", id, err)
		}
	}
	if mf.Valid && mf.String != "" {
		run.MainFinding = &types.MainFinding{}
		if err := json.Unmarshal([]byte(mf.String), run.MainFinding); err != nil {
			return types.SynthesisRun{}, fmt.Errorf("decoding main finding of run %s: %w", id, err)
		}
	}
	return run, nil
}

// CompareAndSetStatus moves a run from status from to status to and writes
// counts, but only if the stored status still equals from. It reports
// whether the row was updated.
func (s *Store) CompareAndSetStatus(ctx context.Context, id string, from, to types.RunStatus, counts types.RunCounts, completedAt *time.Time) (bool, error) {
	var done sql.NullString
	if completedAt != nil {
		done = sql.NullString{String: formatTime(*completedAt), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE synthesis_runs SET
			status = ?, professors_found = ?, papers_found = ?,
			papers_extracted = ?, domains_synthesized = ?,
			completed_at = COALESCE(?, completed_at)
		 WHERE id = ? AND status = ?`,
		string(to), counts.ProfessorsFound, counts.PapersFound,
		counts.PapersExtracted, counts.DomainsSynthesized, done,
		id, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("updating run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating run %s: %w", id, err)
	}
	return n > 0, nil
}

// SetMainFinding replaces the main-finding payload of a run.
func (s *Store) SetMainFinding(ctx context.Context, id string, mf types.MainFinding) error {
	data, err := json.Marshal(mf)
	if err != nil {
		return fmt.Errorf("encoding main finding: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE synthesis_runs SET main_finding = ? WHERE id = ?`, string(data), id)
	if err != nil {
		return fmt.Errorf("writing main finding of run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, types.ErrRunNotFound)
	}
	return nil
}

// ReplaceRunCandidates replaces the discovered candidate set of a run.
// Candidates are stored in the given order.
func (s *Store) ReplaceRunCandidates(ctx context.Context, id string, candidates []types.RunCandidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_papers WHERE synthesis_run_id = ?`, id); err != nil {
		return fmt.Errorf("clearing candidates of run %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_papers (synthesis_run_id, paper_id, query, score, rank) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range candidates {
		if _, err := stmt.ExecContext(ctx, id, c.PaperID, nullString(c.Query), c.Score, i); err != nil {
			return fmt.Errorf("inserting candidate %d: %w", c.PaperID, err)
		}
	}
	return tx.Commit()
}

// RunCandidates returns the candidate set of a run in discovery rank order.
func (s *Store) RunCandidates(ctx context.Context, id string) ([]types.RunCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, query, score FROM run_papers
		 WHERE synthesis_run_id = ? ORDER BY rank`, id)
	if err != nil {
		return nil, fmt.Errorf("listing candidates of run %s: %w", id, err)
	}
	defer rows.Close()

	var out []types.RunCandidate
	for rows.Next() {
		var (
			c     types.RunCandidate
			query sql.NullString
		)
		if err := rows.Scan(&c.PaperID, &query, &c.Score); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.Query = query.String
		out = append(out, c)
	}
	return out, rows.Err()
}
