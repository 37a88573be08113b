// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Path: filepath.Join(t.TempDir(), "db", "polymax.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.InsertRun(context.Background(), types.SynthesisRun{
		ID:        id,
		RepoPath:  "/repo",
		Mode:      types.ModeReview,
		Domains:   []string{"deep-learning"},
		Status:    types.StatusAnalyzing,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}))
}

func TestNewStoreCreatesSchema(t *testing.T) {
	s := testStore(t)

	tables := []string{
		"professors", "papers", "paper_extractions", "domains",
		"synthesis_runs", "run_papers", "domain_syntheses", "manuscripts",
	}
	for _, table := range tables {
		var count int
		err := s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}
}

func TestAddPaperDeduplicatesByIdentifier(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id1, added, err := s.AddPaper(ctx, types.Paper{Identifier: "111", Title: "First"})
	require.NoError(t, err)
	assert.True(t, added)

	id2, added, err := s.AddPaper(ctx, types.Paper{Identifier: "111", Title: "First again"})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, id1, id2)

	// Papers without an identifier cannot be deduplicated.
	a, _, err := s.AddPaper(ctx, types.Paper{Title: "Untracked"})
	require.NoError(t, err)
	b, added, err := s.AddPaper(ctx, types.Paper{Title: "Untracked"})
	require.NoError(t, err)
	assert.True(t, added)
	assert.NotEqual(t, a, b)

	papers, err := s.ListPapers(ctx)
	require.NoError(t, err)
	assert.Len(t, papers, 3)
}

func TestGetPaperJoinsProfessor(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	profID, added, err := s.UpsertProfessor(ctx, "Ada Example", "Example University")
	require.NoError(t, err)
	require.True(t, added)
	again, added, err := s.UpsertProfessor(ctx, "Ada Example", "")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, profID, again)

	id, _, err := s.AddPaper(ctx, types.Paper{
		Identifier:  "222",
		Title:       "Spatial methods",
		Authors:     []string{"A. One", "B. Two"},
		Year:        2024,
		Domain:      "spatial-transcriptomics",
		ProfessorID: &profID,
	})
	require.NoError(t, err)

	got, err := s.GetPaper(ctx, id)
	require.NoError(t, err)
	want := types.Paper{
		ID:            id,
		Identifier:    "222",
		Title:         "Spatial methods",
		Authors:       []string{"A. One", "B. Two"},
		Year:          2024,
		Domain:        "spatial-transcriptomics",
		ProfessorID:   &profID,
		ProfessorName: "Ada Example",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetPaper mismatch (-want +got):\n%s", diff)
	}
}

func TestGetPaperNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetPaper(context.Background(), 42)
	assert.ErrorIs(t, err, types.ErrPaperNotFound)
}

func TestSaveExtractionReplacesWholesale(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, _, err := s.AddPaper(ctx, types.Paper{Identifier: "333", Title: "T"})
	require.NoError(t, err)

	first := types.Extraction{
		PaperID:     id,
		HighLevel:   &types.HighLevel{MainClaim: "T", Novelty: "old"},
		MidLevel:    &types.MidLevel{Stats: []types.Stat{{Type: "equality", Metric: "AUC", Value: 0.9}}},
		LowLevel:    &types.LowLevel{Quotes: []types.Quote{{Text: "We show x."}}},
		CodeMethods: &types.CodeMethods{Algorithms: []string{}, Equations: []string{}, Hyperparameters: []string{}},
		Model:       "rule-based-v1",
		ExtractedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveExtraction(ctx, first))

	second := types.Extraction{
		PaperID:     id,
		HighLevel:   &types.HighLevel{MainClaim: "T", Novelty: "new"},
		CodeMethods: &types.CodeMethods{Algorithms: []string{}, Equations: []string{}, Hyperparameters: []string{}},
		Model:       "rule-based-v2",
		ExtractedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveExtraction(ctx, second))

	got, err := s.GetExtraction(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("extraction mismatch (-want +got):\n%s", diff)
	}

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM paper_extractions`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestGetExtractionNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetExtraction(context.Background(), 7)
	assert.ErrorIs(t, err, ErrExtractionNotFound)
}

func TestDomainExtractionsRestrictsToRunCandidates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var ids []int64
	for _, pmid := range []string{"1", "2", "3"} {
		id, _, err := s.AddPaper(ctx, types.Paper{Identifier: pmid, Title: "P" + pmid, Domain: "deep-learning"})
		require.NoError(t, err)
		require.NoError(t, s.SaveExtraction(ctx, types.Extraction{PaperID: id, Model: "rule-based-v1"}))
		ids = append(ids, id)
	}
	other, _, err := s.AddPaper(ctx, types.Paper{Identifier: "4", Title: "P4", Domain: "loss-functions"})
	require.NoError(t, err)
	require.NoError(t, s.SaveExtraction(ctx, types.Extraction{PaperID: other, Model: "rule-based-v1"}))

	testRun(t, s, "run-a")

	all, err := s.DomainExtractions(ctx, "run-a", "deep-learning")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.ReplaceRunCandidates(ctx, "run-a", []types.RunCandidate{
		{PaperID: ids[2], Score: 2}, {PaperID: other, Score: 1},
	}))
	restricted, err := s.DomainExtractions(ctx, "run-a", "deep-learning")
	require.NoError(t, err)
	require.Len(t, restricted, 1)
	assert.Equal(t, ids[2], restricted[0].Paper.ID)
}

func TestRunRoundTripAndCompareAndSet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	testRun(t, s, "run-b")

	ok, err := s.CompareAndSetStatus(ctx, "run-b", types.StatusExtracting, types.StatusSynthesizing, types.RunCounts{}, nil)
	require.NoError(t, err)
	assert.False(t, ok, "stale from status must not update")

	ok, err = s.CompareAndSetStatus(ctx, "run-b", types.StatusAnalyzing, types.StatusDiscovering,
		types.RunCounts{PapersFound: 3}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	mf := types.MainFinding{
		KeyFindings:    []types.KeyFinding{{Kind: types.FindingSummary, Claim: "Mean X = 1.000", Source: "tables/a.csv"}},
		FiguresCatalog: []types.FigureEntry{{Filename: "fig1.png", SuggestedCaption: "Fig1"}},
	}
	require.NoError(t, s.SetMainFinding(ctx, "run-b", mf))

	run, err := s.GetRun(ctx, "run-b")
	require.NoError(t, err)
	assert.Equal(t, types.StatusDiscovering, run.Status)
	assert.Equal(t, 3, run.Counts.PapersFound)
	assert.Equal(t, []string{"deep-learning"}, run.Domains)
	require.NotNil(t, run.MainFinding)
	assert.Equal(t, "fig1.png", run.MainFinding.FiguresCatalog[0].Filename)
	assert.Nil(t, run.CompletedAt)
}

func TestGetRunNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrRunNotFound)
	assert.ErrorIs(t, s.SetMainFinding(context.Background(), "missing", types.MainFinding{}), types.ErrRunNotFound)
}

func TestUpsertSynthesisReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	testRun(t, s, "run-c")

	d, err := s.EnsureDomain(ctx, "deep-learning")
	require.NoError(t, err)
	again, err := s.EnsureDomain(ctx, "deep-learning")
	require.NoError(t, err)
	assert.Equal(t, d.ID, again.ID)

	for _, text := range []string{"# first", "# second"} {
		require.NoError(t, s.UpsertSynthesis(ctx, types.DomainSynthesis{
			RunID:           "run-c",
			DomainID:        d.ID,
			SummaryMarkdown: text,
			PapersAnalyzed:  0,
		}))
	}

	got, err := s.ListSyntheses(ctx, "run-c")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "# second", got[0].SummaryMarkdown)
	assert.Equal(t, "deep-learning", got[0].Domain)
	assert.Empty(t, got[0].PaperIDs)

	_, err = s.GetDomain(ctx, d.ID+100)
	assert.ErrorIs(t, err, types.ErrDomainNotFound)
}

func TestSaveManuscriptVersions(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	testRun(t, s, "run-d")

	_, err := s.LatestManuscript(ctx, "run-d")
	assert.ErrorIs(t, err, ErrManuscriptNotFound)

	for i := 1; i <= 2; i++ {
		m, err := s.SaveManuscript(ctx, types.Manuscript{
			RunID:    "run-d",
			Sections: map[string]string{"abstract": "text"},
			FullText: "full",
		})
		require.NoError(t, err)
		assert.Equal(t, i, m.Version)
	}

	latest, err := s.LatestManuscript(ctx, "run-d")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, "text", latest.Sections["abstract"])
}

func TestImportPathAndExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	seed := `professors:
  - name: Ada Example
    affiliation: Example University
    papers:
      - pmid: 100
        title: Visium spatial transcriptomics
        authors: Single Author
        year: 2023
        domain: spatial-transcriptomics
      - pmid: "101"
        title: Poisson loss for counts
        authors: [A. One, B. Two]
        year: 2024
papers:
  - pmid: "100"
    title: Duplicate of the first
`
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	var out strings.Builder
	summary, err := s.ImportPath(ctx, path, &out)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{ProfessorsAdded: 1, PapersAdded: 2, PapersSkipped: 1}, summary)
	assert.Contains(t, out.String(), "skipped 100")

	papers, err := s.ListPapers(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, []string{"Single Author"}, papers[0].Authors)
	assert.Equal(t, "Ada Example", papers[1].ProfessorName)

	require.NoError(t, s.SaveExtraction(ctx, types.Extraction{PaperID: papers[0].ID, Model: "rule-based-v1"}))

	yamlPath := filepath.Join(dir, "export.yaml")
	require.NoError(t, s.ExportYAML(ctx, yamlPath))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rule-based-v1")

	jsonPath := filepath.Join(dir, "export.json")
	require.NoError(t, s.ExportJSON(ctx, jsonPath))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Poisson loss for counts"`)
}

func TestImportSkipsUntitledPapers(t *testing.T) {
	s := testStore(t)
	summary, err := s.Import(context.Background(), ImportFile{
		Papers: []ImportPaper{{PMID: "9"}},
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.PapersAdded)
}
