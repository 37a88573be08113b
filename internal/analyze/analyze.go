// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze classifies a research repository. A repository with both
// result tables and figures is primary research; anything else is a
// review. Domains are detected by keyword presence in the README.
package analyze

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// ErrRepositoryUnreadable is returned when the repository path is missing,
// is not a directory, or cannot be listed.
var ErrRepositoryUnreadable = errors.New("repository unreadable")

// readmeNames are checked in order; the first that exists is scanned.
var readmeNames = []string{"README.md", "README.rst", "README.txt", "README"}

// Structure summarizes the repository layout that mode detection reads.
type Structure struct {
	HasResults   bool     `json:"has_results"`
	Tables       []string `json:"tables"`
	Figures      []string `json:"figures"`
	ReadmeExists bool     `json:"readme_exists"`
	Readme       string   `json:"readme,omitempty"`
}

// Result is the classification of one repository.
type Result struct {
	Mode      types.Mode `json:"mode"`
	Domains   []string   `json:"domains"`
	Structure Structure  `json:"structure"`
}

// Analyzer classifies repositories using a fixed layout and domain table.
type Analyzer struct {
	cfg types.AnalyzeConfig
}

// New returns an Analyzer. Empty config fields fall back to
// types.DefaultPipelineConfig. When cfg.DomainsFile is set, its rules
// replace cfg.Domains.
func New(cfg types.AnalyzeConfig) (*Analyzer, error) {
	def := types.DefaultPipelineConfig().Analyze
	if cfg.TablesDir == "" {
		cfg.TablesDir = def.TablesDir
	}
	if cfg.FiguresDir == "" {
		cfg.FiguresDir = def.FiguresDir
	}
	if len(cfg.FigureExtensions) == 0 {
		cfg.FigureExtensions = def.FigureExtensions
	}
	if cfg.DomainsFile != "" {
		rules, err := LoadDomainRules(cfg.DomainsFile)
		if err != nil {
			return nil, err
		}
		cfg.Domains = rules
	}
	if len(cfg.Domains) == 0 {
		cfg.Domains = def.Domains
	}
	return &Analyzer{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() types.AnalyzeConfig { return a.cfg }

// Analyze classifies the repository at repoPath. override forces a mode
// when it is "primary_research" or "review"; "" and "auto" detect it.
func (a *Analyzer) Analyze(repoPath, override string) (Result, error) {
	info, err := os.Stat(repoPath)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w: %v", repoPath, ErrRepositoryUnreadable, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("%s: %w: not a directory", repoPath, ErrRepositoryUnreadable)
	}
	if _, err := os.ReadDir(repoPath); err != nil {
		return Result{}, fmt.Errorf("%s: %w: %v", repoPath, ErrRepositoryUnreadable, err)
	}

	st, err := a.Scan(repoPath)
	if err != nil {
		return Result{}, err
	}

	mode := types.ModeReview
	if st.HasResults {
		mode = types.ModePrimaryResearch
	}
	switch override {
	case "", "auto":
	case string(types.ModePrimaryResearch), string(types.ModeReview):
		mode = types.Mode(override)
	default:
		return Result{}, fmt.Errorf("unsupported mode %q: use auto, primary_research, or review", override)
	}

	var text string
	if st.Readme != "" {
		data, err := os.ReadFile(filepath.Join(repoPath, st.Readme))
		if err != nil {
			return Result{}, fmt.Errorf("reading %s: %w", st.Readme, err)
		}
		text = string(data)
	}

	return Result{
		Mode:      mode,
		Domains:   DetectDomains(text, a.cfg.Domains),
		Structure: st,
	}, nil
}

// Scan lists the result tables and figures of a repository. Table paths are
// relative to the repository root; figure paths are relative to the figures
// directory. Missing directories yield empty lists.
func (a *Analyzer) Scan(repoPath string) (Structure, error) {
	st := Structure{Tables: []string{}, Figures: []string{}}

	tablesDir := filepath.Join(repoPath, a.cfg.TablesDir)
	entries, err := os.ReadDir(tablesDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return st, fmt.Errorf("listing %s: %w", tablesDir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".tsv":
			st.Tables = append(st.Tables, filepath.ToSlash(filepath.Join(a.cfg.TablesDir, e.Name())))
		}
	}

	figuresDir := filepath.Join(repoPath, a.cfg.FiguresDir)
	err = filepath.WalkDir(figuresDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == figuresDir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !a.isFigure(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(figuresDir, path)
		if err != nil {
			return err
		}
		st.Figures = append(st.Figures, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return st, fmt.Errorf("listing %s: %w", figuresDir, err)
	}
	sort.Strings(st.Figures)

	for _, name := range readmeNames {
		if info, err := os.Stat(filepath.Join(repoPath, name)); err == nil && !info.IsDir() {
			st.ReadmeExists = true
			st.Readme = name
			break
		}
	}

	st.HasResults = len(st.Tables) > 0 && len(st.Figures) > 0
	return st, nil
}

func (a *Analyzer) isFigure(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(a.cfg.FigureExtensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// DetectDomains returns, in rule order, every domain with at least one
// keyword occurring in text. Matching is a case-insensitive substring test.
func DetectDomains(text string, rules []types.DomainRule) []string {
	lower := strings.ToLower(text)
	domains := []string{}
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				domains = append(domains, r.Name)
				break
			}
		}
	}
	return domains
}

// LoadDomainRules reads an ordered YAML list of domain rules.
func LoadDomainRules(path string) ([]types.DomainRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading domain rules %s: %w", path, err)
	}
	var rules []types.DomainRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing domain rules %s: %w", path, err)
	}
	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("domain rule %d: missing name", i)
		}
	}
	return rules, nil
}
