// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func defaultAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(types.AnalyzeConfig{})
	require.NoError(t, err)
	return a
}

func TestAnalyzeModeDecision(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  types.Mode
	}{
		{"tables and figures", []string{"tables/r.csv", "figures/fig1.png"}, types.ModePrimaryResearch},
		{"nested figure", []string{"tables/r.tsv", "figures/sub/plot.pdf"}, types.ModePrimaryResearch},
		{"tables only", []string{"tables/r.csv"}, types.ModeReview},
		{"figures only", []string{"figures/fig1.png"}, types.ModeReview},
		{"empty dirs", []string{"tables/notes.md", "figures/readme.txt"}, types.ModeReview},
		{"nothing", nil, types.ModeReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := t.TempDir()
			for _, f := range tt.files {
				writeFile(t, filepath.Join(repo, f), "x")
			}
			res, err := defaultAnalyzer(t).Analyze(repo, "auto")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Mode)
		})
	}
}

func TestAnalyzeModeOverride(t *testing.T) {
	repo := t.TempDir()
	a := defaultAnalyzer(t)

	res, err := a.Analyze(repo, "primary_research")
	require.NoError(t, err)
	assert.Equal(t, types.ModePrimaryResearch, res.Mode)

	_, err = a.Analyze(repo, "sideways")
	assert.Error(t, err)
}

func TestAnalyzeStructure(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "tables", "b.csv"), "x")
	writeFile(t, filepath.Join(repo, "tables", "a.tsv"), "x")
	writeFile(t, filepath.Join(repo, "figures", "fig1.png"), "x")
	writeFile(t, filepath.Join(repo, "figures", "panels", "fig2.svg"), "x")
	writeFile(t, filepath.Join(repo, "README.md"), "Visium data")

	res, err := defaultAnalyzer(t).Analyze(repo, "")
	require.NoError(t, err)
	assert.Equal(t, Structure{
		HasResults:   true,
		Tables:       []string{"tables/a.tsv", "tables/b.csv"},
		Figures:      []string{"fig1.png", "panels/fig2.svg"},
		ReadmeExists: true,
		Readme:       "README.md",
	}, res.Structure)
	assert.Equal(t, []string{"spatial-transcriptomics"}, res.Domains)
}

func TestAnalyzeUnreadable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeFile(t, file, "x")

	a := defaultAnalyzer(t)
	for _, path := range []string{filepath.Join(dir, "missing"), file} {
		_, err := a.Analyze(path, "")
		assert.ErrorIs(t, err, ErrRepositoryUnreadable, path)
	}
}

func TestDetectDomainsFollowsRuleOrder(t *testing.T) {
	rules := types.DefaultDomainRules()

	// Histology appears first in the text but pathology is last in the table.
	text := "Histology slides were modeled with a deep NEURAL NETWORK and a Poisson loss."
	assert.Equal(t,
		[]string{"loss-functions", "deep-learning", "computational-pathology"},
		DetectDomains(text, rules))

	assert.Empty(t, DetectDomains("nothing relevant", rules))
	assert.NotNil(t, DetectDomains("", rules))
}

func TestDomainsFileReplacesTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domains.yaml")
	writeFile(t, path, `- name: genomics
  keywords: [genome, sequencing]
- name: imaging
  keywords: [mri]
`)
	a, err := New(types.AnalyzeConfig{DomainsFile: path})
	require.NoError(t, err)

	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "README"), "MRI and whole-genome sequencing")
	res, err := a.Analyze(repo, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"genomics", "imaging"}, res.Domains)
}

func TestLoadDomainRulesRejectsUnnamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "- keywords: [x]\n")
	_, err := LoadDomainRules(path)
	assert.Error(t, err)
}
