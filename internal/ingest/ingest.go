// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns a repository's experimental outputs into key
// findings, a figures catalog, and the constraints later checked against
// generated manuscript text.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/pdiddy/polymax-synthesizer/internal/analyze"
	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// SkippedTable records a table that could not be parsed.
type SkippedTable struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Result is the combined ingestion output of one repository.
type Result struct {
	KeyFindings    []types.KeyFinding  `json:"key_findings"`
	FiguresCatalog []types.FigureEntry `json:"figures_catalog"`
	Constraints    []types.Constraint  `json:"constraints"`
	Skipped        []SkippedTable      `json:"skipped,omitempty"`
}

// MainFinding returns the payload stored on the run.
func (r Result) MainFinding() types.MainFinding {
	return types.MainFinding{
		KeyFindings:    r.KeyFindings,
		FiguresCatalog: r.FiguresCatalog,
		Constraints:    r.Constraints,
	}
}

// Ingester reads tables and figures located by an Analyzer.
type Ingester struct {
	analyzer *analyze.Analyzer
	markers  []string
	logger   *zap.Logger
}

// New returns an Ingester. A nil logger discards output.
func New(a *analyze.Analyzer, cfg types.IngestConfig, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	markers := cfg.ComparisonMarkers
	if len(markers) == 0 {
		markers = types.DefaultPipelineConfig().Ingest.ComparisonMarkers
	}
	return &Ingester{analyzer: a, markers: markers, logger: logger}
}

// Ingest parses every table and catalogs every figure under repoPath.
// Unparseable tables are logged and listed in Result.Skipped.
func (in *Ingester) Ingest(ctx context.Context, repoPath string) (Result, error) {
	st, err := in.analyzer.Scan(repoPath)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		KeyFindings:    []types.KeyFinding{},
		FiguresCatalog: []types.FigureEntry{},
		Constraints:    []types.Constraint{},
	}

	for _, source := range st.Tables {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t, err := readTable(filepath.Join(repoPath, filepath.FromSlash(source)))
		if err != nil {
			in.logger.Warn("skipping table", zap.String("source", source), zap.Error(err))
			res.Skipped = append(res.Skipped, SkippedTable{Source: source, Reason: err.Error()})
			continue
		}
		findings, constraints := in.IngestTable(source, t)
		res.KeyFindings = append(res.KeyFindings, findings...)
		res.Constraints = append(res.Constraints, constraints...)
		in.logger.Debug("ingested table",
			zap.String("source", source),
			zap.Int("rows", len(t.Rows)),
			zap.Int("findings", len(findings)))
	}

	for _, fig := range st.Figures {
		res.FiguresCatalog = append(res.FiguresCatalog, types.FigureEntry{
			Filename:         fig,
			SuggestedCaption: Caption(fig),
		})
	}
	if len(st.Figures) > 0 {
		res.Constraints = append(res.Constraints, types.Constraint{
			Kind:   types.ConstraintFigureSource,
			Source: in.analyzer.Config().FiguresDir,
			Text:   "Figures referenced must be one of: " + strings.Join(st.Figures, ", "),
			Values: st.Figures,
		})
	}
	return res, nil
}

// IngestTable derives findings and constraints from one parsed table.
// source is the table path relative to the repository and becomes the
// citation anchor of every finding.
func (in *Ingester) IngestTable(source string, t Table) ([]types.KeyFinding, []types.Constraint) {
	var findings []types.KeyFinding
	nameColumn := -1

	for j, col := range t.Header {
		vals, ok := t.Numeric(j)
		if !ok {
			if nameColumn < 0 && len(t.Distinct(j)) > 0 {
				nameColumn = j
			}
			continue
		}

		s := Summarize(vals)
		findings = append(findings, types.KeyFinding{
			Kind:   types.FindingSummary,
			Claim:  fmt.Sprintf("Mean %s = %.3f", col, s.Mean),
			Stat:   fmt.Sprintf("%s = %.3f", col, s.Mean),
			Column: col,
			Details: types.FindingDetails{
				Mean: s.Mean, Median: s.Median, Std: s.Std, Min: s.Min, Max: s.Max,
			},
			Source:     source,
			Constraint: "Must cite exact values from " + source,
		})

		if in.isComparison(col) {
			findings = append(findings, WinRate(source, col, vals))
		}
	}

	constraints := []types.Constraint{{
		Kind:   types.ConstraintExactValue,
		Source: source,
		Text:   "All values must match " + source + " exactly",
	}}
	if nameColumn >= 0 {
		col := t.Header[nameColumn]
		constraints = append(constraints, types.Constraint{
			Kind:   types.ConstraintNameDomain,
			Source: source,
			Text:   fmt.Sprintf("Entity names limited to those in %s column %s", source, col),
			Values: t.Distinct(nameColumn),
		})
	} else {
		constraints = append(constraints, types.Constraint{
			Kind:   types.ConstraintNameDomain,
			Source: source,
			Text:   fmt.Sprintf("Entities limited to the %d rows of %s", len(t.Rows), source),
		})
	}
	return findings, constraints
}

// WinRate builds the comparison finding for a column: the share of values
// that are strictly positive.
func WinRate(source, col string, vals []float64) types.KeyFinding {
	positive := 0
	for _, v := range vals {
		if v > 0 {
			positive++
		}
	}
	total := len(vals)
	pct := float64(positive) / float64(total) * 100
	return types.KeyFinding{
		Kind:   types.FindingWinRate,
		Claim:  fmt.Sprintf("%s positive in %d/%d cases (%.1f%%)", col, positive, total, pct),
		Stat:   fmt.Sprintf("%d/%d (%.1f%%)", positive, total, pct),
		Column: col,
		Details: types.FindingDetails{
			PositiveCount: positive, TotalCount: total, Percentage: pct,
		},
		Source:     source,
		Constraint: "Win rate must match " + source,
	}
}

func (in *Ingester) isComparison(col string) bool {
	lower := strings.ToLower(col)
	for _, m := range in.markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Caption derives a figure caption from its file name: the extension and
// directories are dropped, underscores become spaces, and each word is
// title-cased, so "fig1.png" becomes "Fig1".
func Caption(filename string) string {
	base := path.Base(filepath.ToSlash(filename))
	stem := strings.TrimSuffix(base, path.Ext(base))
	return titleCase(strings.ReplaceAll(stem, "_", " "))
}

// titleCase upper-cases a letter that follows a non-letter and lower-cases
// every other letter.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func readTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	return ParseTable(f, comma)
}
