// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/polymax-synthesizer/internal/analyze"
	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newIngester(t *testing.T, logger *zap.Logger) *Ingester {
	t.Helper()
	a, err := analyze.New(types.AnalyzeConfig{})
	require.NoError(t, err)
	return New(a, types.IngestConfig{}, logger)
}

func findingFor(findings []types.KeyFinding, kind types.FindingKind, col string) *types.KeyFinding {
	for i := range findings {
		if findings[i].Kind == kind && findings[i].Column == col {
			return &findings[i]
		}
	}
	return nil
}

func TestIngestEndToEndTable(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "tables", "results.csv"),
		"Gene,Metric_A,Metric_A_MSE,Delta_Metric_A\nGENE1,0.2,0.1,0.1\nGENE2,0.3,0.1,0.2\n")
	writeFile(t, filepath.Join(repo, "figures", "fig1.png"), "png")

	res, err := newIngester(t, nil).Ingest(context.Background(), repo)
	require.NoError(t, err)

	mean := findingFor(res.KeyFindings, types.FindingSummary, "Metric_A")
	require.NotNil(t, mean)
	assert.Equal(t, "Mean Metric_A = 0.250", mean.Claim)
	assert.Equal(t, "tables/results.csv", mean.Source)
	assert.InDelta(t, 0.25, mean.Details.Mean, 1e-9)
	assert.InDelta(t, 0.2, mean.Details.Min, 1e-9)
	assert.InDelta(t, 0.3, mean.Details.Max, 1e-9)

	win := findingFor(res.KeyFindings, types.FindingWinRate, "Delta_Metric_A")
	require.NotNil(t, win)
	assert.Equal(t, "2/2 (100.0%)", win.Stat)
	assert.Equal(t, "Delta_Metric_A positive in 2/2 cases (100.0%)", win.Claim)
	assert.Equal(t, 2, win.Details.PositiveCount)
	assert.Equal(t, 2, win.Details.TotalCount)

	assert.Nil(t, findingFor(res.KeyFindings, types.FindingWinRate, "Metric_A_MSE"))
	assert.Nil(t, findingFor(res.KeyFindings, types.FindingSummary, "Gene"))

	assert.Equal(t, []types.FigureEntry{{Filename: "fig1.png", SuggestedCaption: "Fig1"}}, res.FiguresCatalog)
}

func TestWinRateSevenOfTen(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,delta_score\n")
	for i, v := range []string{"1", "2", "-1", "3", "0.5", "0", "4", "-2", "5", "6"} {
		b.WriteString(string(rune('a'+i)) + "," + v + "\n")
	}
	tbl, err := ParseTable(strings.NewReader(b.String()), ',')
	require.NoError(t, err)

	findings, _ := newIngester(t, nil).IngestTable("tables/t.csv", tbl)
	win := findingFor(findings, types.FindingWinRate, "delta_score")
	require.NotNil(t, win)
	assert.Equal(t, "7/10 (70.0%)", win.Stat)
	assert.Contains(t, win.Claim, "7/10 cases (70.0%)")
}

func TestIngestTableConstraints(t *testing.T) {
	in := newIngester(t, nil)

	named, err := ParseTable(strings.NewReader("Gene,Score\nA,1\nB,2\nA,3\n"), ',')
	require.NoError(t, err)
	_, constraints := in.IngestTable("tables/named.csv", named)
	require.Len(t, constraints, 2)
	assert.Equal(t, types.ConstraintExactValue, constraints[0].Kind)
	assert.Equal(t, "tables/named.csv", constraints[0].Source)
	assert.Equal(t, types.ConstraintNameDomain, constraints[1].Kind)
	assert.Equal(t, []string{"A", "B"}, constraints[1].Values)

	numeric, err := ParseTable(strings.NewReader("x,y\n1,2\n3,4\n"), ',')
	require.NoError(t, err)
	_, constraints = in.IngestTable("tables/numeric.csv", numeric)
	require.Len(t, constraints, 2)
	assert.Equal(t, types.ConstraintNameDomain, constraints[1].Kind)
	assert.Contains(t, constraints[1].Text, "2 rows")
}

func TestIngestSkipsUnparseableTables(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "tables", "good.tsv"), "name\tvalue\nx\t1.5\n")
	writeFile(t, filepath.Join(repo, "tables", "bad.csv"), "a,b\n\"unterminated,1\n")
	writeFile(t, filepath.Join(repo, "tables", "empty.csv"), "")

	core, logs := observer.New(zap.WarnLevel)
	res, err := newIngester(t, zap.New(core)).Ingest(context.Background(), repo)
	require.NoError(t, err)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "tables/bad.csv", res.Skipped[0].Source)
	assert.Equal(t, "tables/empty.csv", res.Skipped[1].Source)
	assert.Equal(t, 2, logs.FilterMessage("skipping table").Len())

	f := findingFor(res.KeyFindings, types.FindingSummary, "value")
	require.NotNil(t, f)
	assert.Equal(t, "tables/good.tsv", f.Source)
}

func TestIngestFigureConstraint(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "figures", "loss_curve_v2b.pdf"), "pdf")
	writeFile(t, filepath.Join(repo, "figures", "panels", "spatial_map.png"), "png")

	res, err := newIngester(t, nil).Ingest(context.Background(), repo)
	require.NoError(t, err)

	assert.Equal(t, []types.FigureEntry{
		{Filename: "loss_curve_v2b.pdf", SuggestedCaption: "Loss Curve V2B"},
		{Filename: "panels/spatial_map.png", SuggestedCaption: "Spatial Map"},
	}, res.FiguresCatalog)
	require.Len(t, res.Constraints, 1)
	assert.Equal(t, types.ConstraintFigureSource, res.Constraints[0].Kind)
	assert.Equal(t, []string{"loss_curve_v2b.pdf", "panels/spatial_map.png"}, res.Constraints[0].Values)
}

func TestNumericColumnRules(t *testing.T) {
	tbl, err := ParseTable(strings.NewReader("a,b,c,d\n1,,x,\n2,3,4\n"), ',')
	require.NoError(t, err)

	vals, ok := tbl.Numeric(0)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, vals)

	vals, ok = tbl.Numeric(1)
	assert.True(t, ok, "blank cells are ignored")
	assert.Equal(t, []float64{3}, vals)

	_, ok = tbl.Numeric(2)
	assert.False(t, ok, "one text cell makes the column non-numeric")

	_, ok = tbl.Numeric(3)
	assert.False(t, ok, "an all-blank column is not numeric")
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2})
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 2.5, s.Median, 1e-9)
	assert.InDelta(t, 1.2909944, s.Std, 1e-6)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)

	single := Summarize([]float64{7})
	assert.Zero(t, single.Std)
	assert.Equal(t, 7.0, single.Median)
}

func TestCaption(t *testing.T) {
	tests := map[string]string{
		"fig1.png":               "Fig1",
		"spatial_expression.pdf": "Spatial Expression",
		"ROC_curve.svg":          "Roc Curve",
		"dir/sub/umap_2d.png":    "Umap 2D",
	}
	for in, want := range tests {
		assert.Equal(t, want, Caption(in), in)
	}
}
