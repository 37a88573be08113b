// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

func researchRun() types.SynthesisRun {
	return types.SynthesisRun{
		ID:      "run-1",
		Mode:    types.ModePrimaryResearch,
		Domains: []string{"deep-learning"},
		MainFinding: &types.MainFinding{
			KeyFindings: []types.KeyFinding{
				{
					Kind:   types.FindingSummary,
					Claim:  "Mean Metric_A = 0.250",
					Stat:   "Metric_A = 0.250",
					Column: "Metric_A",
					Source: "tables/results.csv",
				},
				{
					Kind:   types.FindingWinRate,
					Claim:  "Delta_Metric_A positive in 2/2 cases (100.0%)",
					Stat:   "2/2 (100.0%)",
					Column: "Delta_Metric_A",
					Source: "tables/results.csv",
				},
			},
			FiguresCatalog: []types.FigureEntry{{Filename: "fig1.png", SuggestedCaption: "Fig1"}},
			Constraints: []types.Constraint{
				{Kind: types.ConstraintExactValue, Source: "tables/results.csv", Text: "Must cite exact values from tables/results.csv"},
				{Kind: types.ConstraintNameDomain, Source: "tables/results.csv", Text: "Entity names limited to those in tables/results.csv column Gene", Values: []string{"BRCA1", "TP53"}},
			},
		},
	}
}

func reviewInput() Input {
	return Input{
		Run: types.SynthesisRun{ID: "run-2", Mode: types.ModeReview, Domains: []string{"deep-learning", "loss-functions"}},
		Syntheses: []types.DomainSynthesis{
			{
				Domain:         "deep-learning",
				KeyFindings:    []string{"We propose a graph model (PMID: 1, 2021)", "Reported auc of 0.91 (PMID: 1, 2021)"},
				PapersAnalyzed: 2,
				CrossFieldInsights: types.CrossFieldInsights{
					Paragraph: "Deep Learning exhibits sparse data, which is common in other domains with similar data structures.",
				},
			},
			{
				Domain:         "loss-functions",
				KeyFindings:    []string{},
				PapersAnalyzed: 1,
				CrossFieldInsights: types.CrossFieldInsights{
					Paragraph: "Loss Functions exhibits statistical modeling, which is common in other domains with similar data structures.",
				},
			},
		},
	}
}

func writeTemplate(t *testing.T, dir string, mode Mode, name, body string) {
	t.Helper()
	path := filepath.Join(dir, string(mode), name+".tmpl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"research", ModeResearch, false},
		{"primary_research", ModeResearch, false},
		{" Review ", ModeReview, false},
		{"poetry", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, ModeReview, ModeFor(types.ModeReview))
	assert.Equal(t, ModeResearch, ModeFor(types.ModePrimaryResearch))
}

func TestGenerateResearchResults(t *testing.T) {
	g := New(types.SectionConfig{})
	text, err := g.Generate(ModeResearch, Results, Input{Run: researchRun()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "\\section{Results}\n\n"))
	assert.Contains(t, text, "Mean Metric\\_A = 0.250 (\\texttt{tables/results.csv}).\n")
	assert.Contains(t, text, "Delta\\_Metric\\_A positive in 2/2 cases (100.0\\%) (\\texttt{tables/results.csv}).\n")
	assert.Contains(t, text, "Table~\\ref{tab:results} summarizes these values.")
	assert.Contains(t, text, "Figure~\\ref{fig:fig1} shows fig1.")

	// The referenced table is defined in the same section.
	assert.Contains(t, text, "\\label{tab:results}")
	assert.Contains(t, text, "\\texttt{tables/results.csv} & Metric\\_A = 0.250 \\\\\n")
	assert.Contains(t, text, "\\texttt{tables/results.csv} & 2/2 (100.0\\%) \\\\\n")
	require.NoError(t, CheckNumbers(Results, text, *researchRun().MainFinding))
}

func TestGenerateResearchSectionsPassNumberCheck(t *testing.T) {
	g := New(types.SectionConfig{})
	in := Input{Run: researchRun()}
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			text, err := g.Generate(ModeResearch, name, in)
			require.NoError(t, err)
			assert.NotEmpty(t, strings.TrimSpace(text))
		})
	}

	intro, err := g.Generate(ModeResearch, Introduction, in)
	require.NoError(t, err)
	assert.Contains(t, intro, "This paper reports comparative experimental results drawn from the tabular outputs of the project and the accompanying figures.")

	methods, err := g.Generate(ModeResearch, Methods, in)
	require.NoError(t, err)
	assert.Contains(t, methods, "\\item \\texttt{tables/results.csv}\n")
	assert.Contains(t, methods, "Entity names limited to those in tables/results.csv column Gene.")
	assert.NotContains(t, methods, "Must cite exact values")
}

func TestGenerateRejectsUngroundedNumber(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, ModeResearch, Results, "\\section{Results}\n\nThe mean was 0.999.\n")
	g := New(types.SectionConfig{TemplatesDir: dir})

	_, err := g.Generate(ModeResearch, Results, Input{Run: researchRun()})
	var cv *ConstraintViolation
	require.True(t, errors.As(err, &cv), "got %v", err)
	assert.Equal(t, Results, cv.Section)
	assert.Equal(t, "0.999", cv.Value)

	// Sections without an override still use the built-in templates.
	_, err = g.Generate(ModeResearch, Discussion, Input{Run: researchRun()})
	require.NoError(t, err)
}

func TestGenerateAcceptsGroundedNumber(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, ModeResearch, Results, "The mean was {{(index .Summaries 0).Claim}}.\n")
	g := New(types.SectionConfig{TemplatesDir: dir})

	text, err := g.Generate(ModeResearch, Results, Input{Run: researchRun()})
	require.NoError(t, err)
	assert.Equal(t, "The mean was Mean Metric_A = 0.250.\n", text)
}

func TestGenerateReviewNumbersAreNotChecked(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, ModeReview, Results, "Across 999 papers.\n")
	g := New(types.SectionConfig{TemplatesDir: dir})

	text, err := g.Generate(ModeReview, Results, reviewInput())
	require.NoError(t, err)
	assert.Equal(t, "Across 999 papers.\n", text)
}

func TestGenerateErrors(t *testing.T) {
	g := New(types.SectionConfig{})

	_, err := g.Generate(ModeResearch, "appendix", Input{Run: researchRun()})
	assert.ErrorIs(t, err, ErrUnknownSection)

	_, err = g.Generate(ModeResearch, Results, Input{Run: types.SynthesisRun{ID: "bare"}})
	assert.ErrorIs(t, err, ErrNoFindings)

	dir := t.TempDir()
	writeTemplate(t, dir, ModeReview, Abstract, "{{.Missing")
	_, err = New(types.SectionConfig{TemplatesDir: dir}).Generate(ModeReview, Abstract, reviewInput())
	assert.ErrorContains(t, err, "parsing review abstract template")
}

func TestGenerateReview(t *testing.T) {
	g := New(types.SectionConfig{})
	in := reviewInput()

	abstract, err := g.Generate(ModeReview, Abstract, in)
	require.NoError(t, err)
	assert.Equal(t, "% Abstract\nThis review synthesizes 3 papers across 2 research domains: Deep Learning, Loss Functions.\n", abstract)

	results, err := g.Generate(ModeReview, Results, in)
	require.NoError(t, err)
	assert.Contains(t, results, "\\subsection{Deep Learning}\n\n\\begin{itemize}\n\\item We propose a graph model (PMID: 1, 2021)\n\\item Reported auc of 0.91 (PMID: 1, 2021)\n\\end{itemize}\n")
	assert.Contains(t, results, "\\subsection{Loss Functions}\n\nNo key findings were extracted for this domain.\n")

	discussion, err := g.Generate(ModeReview, Discussion, in)
	require.NoError(t, err)
	assert.Contains(t, discussion, "Deep Learning exhibits sparse data")
	assert.Contains(t, discussion, "Loss Functions exhibits statistical modeling")
}

func TestGenerateReviewWithoutSyntheses(t *testing.T) {
	g := New(types.SectionConfig{})
	in := Input{Run: types.SynthesisRun{ID: "run-3", Mode: types.ModeReview}}

	results, err := g.Generate(ModeReview, Results, in)
	require.NoError(t, err)
	assert.Contains(t, results, "No domain syntheses are available.")

	discussion, err := g.Generate(ModeReview, Discussion, in)
	require.NoError(t, err)
	assert.Contains(t, discussion, "No cross-field insights are available.")
}

func TestCheckNumbers(t *testing.T) {
	mf := *researchRun().MainFinding
	assert.NoError(t, CheckNumbers("results", "0.250 and 2/2 and 100.0 and fig1", mf))
	assert.NoError(t, CheckNumbers("results", "no numbers at all", mf))

	err := CheckNumbers("results", "0.250 then 0.25", mf)
	var cv *ConstraintViolation
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, "0.25", cv.Value)
	assert.EqualError(t, err, "section results: value 0.25 does not appear in the ingested findings")
}

func TestEscape(t *testing.T) {
	got := Escape(`a_b & 50% $x$ #1 {y} ~ ^ \`)
	want := `a\_b \& 50\% \$x\$ \#1 \{y\} \textasciitilde{} \textasciicircum{} \textbackslash{}`
	assert.Equal(t, want, got)
}

func TestFigureLabel(t *testing.T) {
	assert.Equal(t, "fig:fig1", FigureLabel("fig1.png"))
	assert.Equal(t, "fig:loss-curve", FigureLabel("figures/Loss Curve.PNG"))
}
