// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/polymax-synthesizer/internal/analyze"
	"github.com/pdiddy/polymax-synthesizer/internal/discover"
	"github.com/pdiddy/polymax-synthesizer/internal/extract"
	"github.com/pdiddy/polymax-synthesizer/internal/ingest"
	"github.com/pdiddy/polymax-synthesizer/internal/runstate"
	"github.com/pdiddy/polymax-synthesizer/internal/synth"
	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// AnalyzeResult is the outcome of Analyze.
type AnalyzeResult struct {
	RunID     string            `json:"synthesis_run_id"`
	Mode      types.Mode        `json:"mode"`
	Domains   []string          `json:"domains"`
	Structure analyze.Structure `json:"structure"`
	NextStep  string            `json:"next_step"`
}

// Analyze classifies the repository and creates a run for it. mode is
// "auto" (or empty), "primary_research", or "review". No run is created
// when the repository cannot be read.
func (s *Service) Analyze(ctx context.Context, repoPath, mode string) (AnalyzeResult, error) {
	res, err := s.analyzer.Analyze(repoPath, mode)
	if err != nil {
		return AnalyzeResult{}, err
	}
	run, err := s.runs.Create(ctx, repoPath, runstate.Analysis{Mode: res.Mode, Domains: res.Domains})
	if err != nil {
		return AnalyzeResult{}, err
	}
	s.logger.Info("run created",
		zap.String("run_id", run.ID),
		zap.String("mode", string(run.Mode)),
		zap.Strings("domains", run.Domains))

	next := "discover: gather literature for the detected domains"
	if run.Mode == types.ModePrimaryResearch {
		next = "ingest: parse the result tables and figures"
	}
	return AnalyzeResult{
		RunID:     run.ID,
		Mode:      run.Mode,
		Domains:   run.Domains,
		Structure: res.Structure,
		NextStep:  next,
	}, nil
}

// IngestResult is the outcome of Ingest.
type IngestResult struct {
	RunID string `json:"synthesis_run_id"`
	ingest.Result
}

// Ingest parses the run's result tables and figures, stores them as the
// run's main finding, and advances the run to discovering.
func (s *Service) Ingest(ctx context.Context, runID string) (IngestResult, error) {
	run, err := s.begin(ctx, runID, types.StatusDiscovering)
	if err != nil {
		return IngestResult{}, err
	}
	res, err := s.ingester.Ingest(ctx, run.RepoPath)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingesting %s: %w", run.RepoPath, err)
	}
	if err := s.store.SetMainFinding(ctx, runID, res.MainFinding()); err != nil {
		return IngestResult{}, err
	}
	if _, err := s.runs.Advance(ctx, runID, types.StatusDiscovering, types.CountsUpdate{}); err != nil {
		return IngestResult{}, err
	}
	s.logger.Info("results ingested",
		zap.String("run_id", runID),
		zap.Int("key_findings", len(res.KeyFindings)),
		zap.Int("figures", len(res.FiguresCatalog)),
		zap.Int("skipped", len(res.Skipped)))
	return IngestResult{RunID: runID, Result: res}, nil
}

// DiscoverResult is the outcome of Discover.
type DiscoverResult struct {
	RunID string `json:"synthesis_run_id"`
	Mode  string `json:"mode"`
	discover.Result
}

// Discover finds candidate papers for the run, replaces the run's
// candidate set, and advances the run to extracting. Targeted mode
// matches terms against the corpus; broad mode is scoped to the run's
// domains. A review run still in analyzing is first moved to discovering.
func (s *Service) Discover(ctx context.Context, runID, mode string, terms []string) (DiscoverResult, error) {
	if mode == "" {
		mode = DiscoverTargeted
	}
	if mode != DiscoverTargeted && mode != DiscoverBroad {
		return DiscoverResult{}, fmt.Errorf("unknown discovery mode %q (want targeted or broad)", mode)
	}

	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return DiscoverResult{}, err
	}
	if run.Mode == types.ModeReview && run.Status != types.StatusComplete {
		if _, err := s.runs.Ensure(ctx, runID, types.StatusDiscovering, types.CountsUpdate{}); err != nil {
			return DiscoverResult{}, err
		}
	}
	run, err = s.begin(ctx, runID, types.StatusExtracting)
	if err != nil {
		return DiscoverResult{}, err
	}

	var res discover.Result
	if mode == DiscoverBroad {
		res, err = s.discoverer.Broad(ctx, run.Domains)
	} else {
		res, err = s.discoverer.Targeted(ctx, terms)
	}
	if err != nil {
		return DiscoverResult{}, err
	}
	if err := s.store.ReplaceRunCandidates(ctx, runID, res.Candidates()); err != nil {
		return DiscoverResult{}, err
	}
	if _, err := s.runs.Advance(ctx, runID, types.StatusExtracting, types.CountsUpdate{
		ProfessorsFound: types.Count(res.ProfessorsAdded),
		PapersFound:     types.Count(res.PapersAdded),
	}); err != nil {
		return DiscoverResult{}, err
	}
	s.logger.Info("literature discovered",
		zap.String("run_id", runID),
		zap.String("mode", mode),
		zap.Int("papers", res.PapersAdded),
		zap.Int("professors", res.ProfessorsAdded))
	return DiscoverResult{RunID: runID, Mode: mode, Result: res}, nil
}

// ExtractResult is the outcome of Extract.
type ExtractResult struct {
	RunID string                `json:"synthesis_run_id"`
	Depth types.ExtractionDepth `json:"depth"`
	extract.Summary
}

// Extract runs hierarchical extraction over paperIDs and advances the run
// to synthesizing once the whole batch has finished. With no ids it
// extracts the run's candidate set, or, when discovery kept no candidates,
// every corpus paper tagged with one of the run's domains. depth "" uses
// the configured default.
func (s *Service) Extract(ctx context.Context, runID string, paperIDs []int64, depth string) (ExtractResult, error) {
	run, err := s.begin(ctx, runID, types.StatusSynthesizing)
	if err != nil {
		return ExtractResult{}, err
	}

	if depth == "" {
		depth = string(s.cfg.Extract.Depth)
	}
	d, err := extract.ParseDepth(depth)
	if err != nil {
		return ExtractResult{}, err
	}
	ex, err := extract.NewRuleBased(d)
	if err != nil {
		return ExtractResult{}, err
	}

	if len(paperIDs) == 0 {
		paperIDs, err = s.runPapers(ctx, run)
		if err != nil {
			return ExtractResult{}, err
		}
	}

	b := extract.NewBatch(s.store, ex,
		extract.WithWorkers(s.cfg.Extract.Workers),
		extract.WithLogger(s.logger.Named("extract")),
		extract.WithClock(s.now))
	sum := b.ExtractMany(ctx, paperIDs)

	if _, err := s.runs.Advance(ctx, runID, types.StatusSynthesizing, types.CountsUpdate{
		PapersExtracted: types.Count(sum.Successful),
	}); err != nil {
		return ExtractResult{}, err
	}
	return ExtractResult{RunID: runID, Depth: d, Summary: sum}, nil
}

// runPapers returns the ids extraction defaults to for a run.
func (s *Service) runPapers(ctx context.Context, run types.SynthesisRun) ([]int64, error) {
	cands, err := s.store.RunCandidates(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if len(cands) > 0 {
		ids := make([]int64, len(cands))
		for i, c := range cands {
			ids[i] = c.PaperID
		}
		return ids, nil
	}

	papers, err := s.store.ListPapers(ctx)
	if err != nil {
		return nil, err
	}
	domains := make(map[string]bool, len(run.Domains))
	for _, d := range run.Domains {
		domains[strings.ToLower(d)] = true
	}
	ids := []int64{}
	for _, p := range papers {
		if len(domains) == 0 || domains[strings.ToLower(p.Domain)] {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// SynthesizeResult is the outcome of Synthesize.
type SynthesizeResult struct {
	RunID string `json:"synthesis_run_id"`
	synth.Summary
}

// Synthesize builds the synthesis of each domain and advances the run to
// writing once every domain has finished. No ids means the run's detected
// domains.
func (s *Service) Synthesize(ctx context.Context, runID string, domainIDs []int64) (SynthesizeResult, error) {
	if _, err := s.begin(ctx, runID, types.StatusWriting); err != nil {
		return SynthesizeResult{}, err
	}
	b := synth.NewBatch(s.store, s.synth, s.cfg.Synthesis.Workers, s.logger.Named("synth"))
	sum, err := b.SynthesizeMany(ctx, runID, domainIDs)
	if err != nil {
		return SynthesizeResult{}, err
	}
	if _, err := s.runs.Advance(ctx, runID, types.StatusWriting, types.CountsUpdate{
		DomainsSynthesized: types.Count(sum.Successful),
	}); err != nil {
		return SynthesizeResult{}, err
	}
	return SynthesizeResult{RunID: runID, Summary: sum}, nil
}
