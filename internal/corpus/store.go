// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists the literature corpus and every synthesis
// artifact in a single SQLite database: professors, papers, extraction
// records, domains, synthesis runs, run candidates, domain syntheses, and
// manuscripts. Papers and extractions are long-lived and shared across
// runs; syntheses and manuscripts belong to one run.
package corpus

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

var (
	// ErrExtractionNotFound is returned when a paper has no extraction record.
	ErrExtractionNotFound = errors.New("extraction not found")

	// ErrManuscriptNotFound is returned when a run has no stored manuscript.
	ErrManuscriptNotFound = errors.New("manuscript not found")
)

// Store manages the corpus SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the corpus database at cfg.Path and creates the
// schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = "polymax.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Batch stages write from several goroutines; one connection serializes them.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS professors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			affiliation TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT UNIQUE,
			title TEXT NOT NULL,
			abstract TEXT,
			authors TEXT,
			year INTEGER,
			journal TEXT,
			doi TEXT,
			full_text TEXT,
			domain TEXT,
			professor_id INTEGER REFERENCES professors(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_domain ON papers(domain)`,
		`CREATE TABLE IF NOT EXISTS paper_extractions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL UNIQUE REFERENCES papers(id),
			high_level TEXT,
			mid_level TEXT,
			low_level TEXT,
			code_methods TEXT,
			extraction_model TEXT NOT NULL,
			extracted_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS domains (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS synthesis_runs (
			id TEXT PRIMARY KEY,
			repo_path TEXT NOT NULL,
			mode TEXT NOT NULL,
			detected_domains TEXT,
			main_finding TEXT,
			status TEXT NOT NULL,
			professors_found INTEGER NOT NULL DEFAULT 0,
			papers_found INTEGER NOT NULL DEFAULT 0,
			papers_extracted INTEGER NOT NULL DEFAULT 0,
			domains_synthesized INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			completed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS run_papers (
			synthesis_run_id TEXT NOT NULL REFERENCES synthesis_runs(id),
			paper_id INTEGER NOT NULL REFERENCES papers(id),
			query TEXT,
			score INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			PRIMARY KEY (synthesis_run_id, paper_id)
		)`,
		`CREATE TABLE IF NOT EXISTS domain_syntheses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			synthesis_run_id TEXT NOT NULL REFERENCES synthesis_runs(id),
			domain_id INTEGER NOT NULL REFERENCES domains(id),
			summary_markdown TEXT NOT NULL,
			key_findings TEXT,
			cross_field_insights TEXT,
			papers_analyzed INTEGER NOT NULL,
			paper_ids TEXT NOT NULL,
			citation_keys TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (synthesis_run_id, domain_id)
		)`,
		`CREATE TABLE IF NOT EXISTS manuscripts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			synthesis_run_id TEXT NOT NULL REFERENCES synthesis_runs(id),
			version INTEGER NOT NULL,
			mode TEXT,
			field TEXT,
			sections TEXT NOT NULL,
			full_text TEXT NOT NULL,
			bibliography TEXT,
			generated_at TEXT NOT NULL,
			UNIQUE (synthesis_run_id, version)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
