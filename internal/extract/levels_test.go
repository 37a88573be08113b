// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

const sampleAbstract = "We propose GraphST, a graph model for Visium data. " +
	"It achieves accuracy = 0.95 with p < 0.01. " +
	"Results show 12% improvement over U-Net baselines."

func samplePaper() types.Paper {
	return types.Paper{
		ID:         7,
		Identifier: "38001234",
		Title:      "  GraphST: spatial clustering with graph networks ",
		Abstract:   sampleAbstract,
		Year:       2024,
	}
}

func TestHighLevel(t *testing.T) {
	hl := HighLevel(samplePaper())
	assert.Equal(t, "GraphST: spatial clustering with graph networks", hl.MainClaim)
	assert.Equal(t, "We propose GraphST, a graph model for Visium data.", hl.Novelty)
	assert.Equal(t, "We propose GraphST, a graph model for Visium data", hl.Contribution)
}

func TestHighLevelContributionIsEmptyWithoutKeyword(t *testing.T) {
	hl := HighLevel(types.Paper{Title: "T", Abstract: "A cohort of mice. Samples were sequenced."})
	assert.Equal(t, "A cohort of mice.", hl.Novelty)
	assert.Empty(t, hl.Contribution)
}

func TestHighLevelWithoutTerminator(t *testing.T) {
	hl := HighLevel(types.Paper{Title: "T", Abstract: "we introduce a loss"})
	assert.Equal(t, "we introduce a loss", hl.Novelty)
	assert.Equal(t, "we introduce a loss", hl.Contribution)
}

func TestStats(t *testing.T) {
	stats := Stats(sampleAbstract)

	type shape struct {
		Type   string
		Metric string
		Value  float64
	}
	var got []shape
	for _, s := range stats {
		got = append(got, shape{s.Type, s.Metric, s.Value})
		assert.Equal(t, "abstract", s.Page)
		assert.NotEmpty(t, s.Context)
	}
	want := []shape{
		{"performance", "accuracy", 0.95},
		{"measurement", "with", 0.95},
		{"measurement", "Results", 0.01},
		{"measurement", "improvement", 12},
		{"p-value", "statistical significance", 0.01},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, stats[0].Context, "accuracy = 0.95")
}

func TestStatsDropsUnparseableValues(t *testing.T) {
	// A bare period followed by a word matches the value-first shape but
	// carries no number.
	assert.Empty(t, Stats("Data. It works"))
	assert.NotNil(t, Stats(""))
}

func TestMethodsOvermatch(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "sample abstract",
			text: sampleAbstract,
			want: []string{"GraphST", "Visium", "U-Net"},
		},
		{
			name: "journal, month, and acronyms",
			text: "Published in Nature Methods in March. Our CNN beats BERT on mRNA.",
			want: []string{"Nature", "March", "CNN", "BERT", "RNA"},
		},
		{
			name: "rejected leading token retries inside the word",
			text: "GraphSAGE works.",
			want: []string{"SAGE"},
		},
		{
			name: "duplicates collapse",
			text: "using Seurat and then Seurat again",
			want: []string{"Seurat"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, m := range Methods(tt.text) {
				names = append(names, m.Name)
				assert.NotNil(t, m.Parameters)
				assert.Equal(t, "abstract", m.Page)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestLowLevel(t *testing.T) {
	ll := LowLevel(samplePaper())
	require.Len(t, ll.Quotes, 1)
	assert.Equal(t, types.Quote{
		Text:    "Results show 12% improvement over U-Net baselines.",
		Page:    "abstract",
		Section: "Abstract",
		Context: "Sentence 3 of abstract",
	}, ll.Quotes[0])
}

func TestCodeMethodsAlwaysPresent(t *testing.T) {
	cm := CodeMethods(samplePaper())
	data, err := json.Marshal(cm)
	require.NoError(t, err)
	assert.JSONEq(t, `{"algorithms":[],"equations":[],"hyperparameters":[]}`, string(data))
}

func TestEmptyAbstractDegrades(t *testing.T) {
	ex, err := NewRuleBased("")
	require.NoError(t, err)
	e := ex.Extract(types.Paper{ID: 3, Title: "Only a title"})

	require.NotNil(t, e.HighLevel)
	assert.Equal(t, "Only a title", e.HighLevel.MainClaim)
	assert.Empty(t, e.HighLevel.Novelty)
	assert.Empty(t, e.HighLevel.Contribution)
	require.NotNil(t, e.MidLevel)
	assert.Empty(t, e.MidLevel.Stats)
	assert.Empty(t, e.MidLevel.Methods)
	require.NotNil(t, e.LowLevel)
	assert.Empty(t, e.LowLevel.Quotes)
	require.NotNil(t, e.CodeMethods)
}

func TestExtractDepth(t *testing.T) {
	tests := []struct {
		depth   types.ExtractionDepth
		wantMid bool
		wantLow bool
	}{
		{types.DepthFull, true, true},
		{types.DepthMid, true, false},
		{types.DepthHigh, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.depth), func(t *testing.T) {
			ex, err := NewRuleBased(tt.depth)
			require.NoError(t, err)
			e := ex.Extract(samplePaper())
			assert.NotNil(t, e.HighLevel)
			assert.NotNil(t, e.CodeMethods)
			assert.Equal(t, tt.wantMid, e.MidLevel != nil)
			assert.Equal(t, tt.wantLow, e.LowLevel != nil)
			assert.Equal(t, RuleBasedModel, e.Model)
			assert.Equal(t, int64(7), e.PaperID)
		})
	}

	_, err := NewRuleBased("deep")
	assert.ErrorContains(t, err, `unknown extraction depth "deep"`)
}

func TestParseDepth(t *testing.T) {
	for in, want := range map[string]types.ExtractionDepth{
		"":          types.DepthFull,
		"full":      types.DepthFull,
		"mid":       types.DepthMid,
		"high":      types.DepthHigh,
		"high_only": types.DepthHigh,
	} {
		got, err := ParseDepth(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDepth("low")
	assert.Error(t, err)
}

func TestExtractIsIdempotent(t *testing.T) {
	ex, err := NewRuleBased(types.DepthFull)
	require.NoError(t, err)

	first, err := json.Marshal(ex.Extract(samplePaper()))
	require.NoError(t, err)
	second, err := json.Marshal(ex.Extract(samplePaper()))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestExtractContext(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta accuracy = 0.95 iota kappa lambda mu nu xi omicron pi rho sigma"
	start := len("alpha beta gamma delta epsilon zeta eta theta ")
	end := start + len("accuracy = 0.95")

	got := extractContext(text, start, end)
	assert.Contains(t, got, "accuracy = 0.95")
	assert.NotContains(t, got, "alpha")
	assert.NotContains(t, got, "sigma")
	// Trimmed to whole words on both sides.
	assert.Equal(t, "gamma delta epsilon zeta eta theta accuracy = 0.95 iota kappa lambda mu nu xi omicron pi", got)
}
