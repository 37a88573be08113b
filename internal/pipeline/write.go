// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/polymax-synthesizer/internal/runstate"
	"github.com/pdiddy/polymax-synthesizer/internal/section"
	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// SectionResult is one generated section.
type SectionResult struct {
	RunID   string       `json:"synthesis_run_id"`
	Section string       `json:"section"`
	Mode    section.Mode `json:"mode"`
	Content string       `json:"content"`
}

// GenerateSection renders one manuscript section for a run. mode "" uses
// the run's detected mode. The run's status is not changed.
func (s *Service) GenerateSection(ctx context.Context, runID, name, mode string) (SectionResult, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return SectionResult{}, err
	}
	m, err := s.sectionMode(run, mode)
	if err != nil {
		return SectionResult{}, err
	}
	in, err := s.sectionInput(ctx, run)
	if err != nil {
		return SectionResult{}, err
	}
	text, err := s.sections.Generate(m, name, in)
	if err != nil {
		return SectionResult{}, err
	}
	return SectionResult{RunID: runID, Section: name, Mode: m, Content: text}, nil
}

// ManuscriptOptions controls AssembleManuscript.
type ManuscriptOptions struct {
	// Mode is "research", "primary_research", "review", or "" for the
	// run's detected mode.
	Mode    string
	Title   string
	Authors []string

	// OutputDir overrides the configured output directory.
	OutputDir string
}

// ManuscriptResult is a stored manuscript and the files written for it.
type ManuscriptResult struct {
	types.Manuscript
	Files []string `json:"files,omitempty"`
}

// AssembleManuscript renders every section, stores the result as the next
// manuscript version of the run, and advances the run to complete. The run
// must be writing or already complete; a complete run gains a new version
// without a status change. When an output directory is set the manuscript
// and its bibliography are written under <dir>/<run id>/.
func (s *Service) AssembleManuscript(ctx context.Context, runID string, opts ManuscriptOptions) (ManuscriptResult, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return ManuscriptResult{}, err
	}
	if run.Status != types.StatusWriting && run.Status != types.StatusComplete {
		return ManuscriptResult{}, fmt.Errorf("run %s is %s, cannot assemble a manuscript: %w",
			runID, run.Status, runstate.ErrOutOfSequenceTransition)
	}
	m, err := s.sectionMode(run, opts.Mode)
	if err != nil {
		return ManuscriptResult{}, err
	}
	in, err := s.sectionInput(ctx, run)
	if err != nil {
		return ManuscriptResult{}, err
	}
	cited, err := s.citedPapers(ctx, in.Syntheses)
	if err != nil {
		return ManuscriptResult{}, err
	}

	ms, err := s.sections.Assemble(m, in, cited, section.AssembleOptions{Title: opts.Title, Authors: opts.Authors})
	if err != nil {
		return ManuscriptResult{}, err
	}
	ms.GeneratedAt = s.now().UTC()
	ms, err = s.store.SaveManuscript(ctx, ms)
	if err != nil {
		return ManuscriptResult{}, err
	}

	res := ManuscriptResult{Manuscript: ms}
	dir := opts.OutputDir
	if dir == "" {
		dir = s.cfg.Section.OutputDir
	}
	if dir != "" {
		files, err := writeManuscript(filepath.Join(dir, runID), ms)
		if err != nil {
			return ManuscriptResult{}, err
		}
		res.Files = files
	}

	if run.Status == types.StatusWriting {
		if _, err := s.runs.Advance(ctx, runID, types.StatusComplete, types.CountsUpdate{}); err != nil {
			return ManuscriptResult{}, err
		}
	}
	s.logger.Info("manuscript assembled",
		zap.String("run_id", runID),
		zap.Int("version", ms.Version),
		zap.String("field", ms.Field))
	return res, nil
}

func (s *Service) sectionMode(run types.SynthesisRun, mode string) (section.Mode, error) {
	if mode == "" || mode == "auto" {
		return section.ModeFor(run.Mode), nil
	}
	return section.ParseMode(mode)
}

func (s *Service) sectionInput(ctx context.Context, run types.SynthesisRun) (section.Input, error) {
	syn, err := s.store.ListSyntheses(ctx, run.ID)
	if err != nil {
		return section.Input{}, err
	}
	return section.Input{Run: run, Syntheses: syn}, nil
}

// citedPapers returns the contributing papers of the syntheses, each once,
// in synthesis order.
func (s *Service) citedPapers(ctx context.Context, syn []types.DomainSynthesis) ([]types.Paper, error) {
	seen := make(map[int64]bool)
	var papers []types.Paper
	for _, ds := range syn {
		for _, id := range ds.PaperIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			p, err := s.store.GetPaper(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("loading cited paper: %w", err)
			}
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// writeManuscript writes manuscript-v<N>.tex and references.bib into dir.
func writeManuscript(dir string, m types.Manuscript) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tex := filepath.Join(dir, fmt.Sprintf("manuscript-v%d.tex", m.Version))
	if err := writeFileAtomic(tex, []byte(m.FullText)); err != nil {
		return nil, err
	}
	files := []string{tex}
	if m.Bibliography != "" {
		bib := filepath.Join(dir, "references.bib")
		if err := writeFileAtomic(bib, []byte(m.Bibliography)); err != nil {
			return nil, err
		}
		files = append(files, bib)
	}
	return files, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}
