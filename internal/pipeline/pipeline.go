// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the synthesis stages to the corpus store and the
// run state machine. Each Service method is one pipeline operation: it
// reads the run, does the stage's work, writes the stage's outputs, and
// advances the run at most once.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/polymax-synthesizer/internal/analyze"
	"github.com/pdiddy/polymax-synthesizer/internal/corpus"
	"github.com/pdiddy/polymax-synthesizer/internal/discover"
	"github.com/pdiddy/polymax-synthesizer/internal/ingest"
	"github.com/pdiddy/polymax-synthesizer/internal/runstate"
	"github.com/pdiddy/polymax-synthesizer/internal/section"
	"github.com/pdiddy/polymax-synthesizer/internal/synth"
	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// Discovery modes.
const (
	DiscoverTargeted = "targeted"
	DiscoverBroad    = "broad"
)

// Service runs pipeline operations against one corpus store.
type Service struct {
	cfg        types.PipelineConfig
	store      *corpus.Store
	runs       *runstate.Machine
	analyzer   *analyze.Analyzer
	ingester   *ingest.Ingester
	discoverer *discover.Discoverer
	synth      *synth.Synthesizer
	sections   *section.Generator
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for run, extraction, synthesis, and
// manuscript stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the run id generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// New returns a Service over store configured by cfg.
func New(store *corpus.Store, cfg types.PipelineConfig, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:    cfg,
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	a, err := analyze.New(cfg.Analyze)
	if err != nil {
		return nil, fmt.Errorf("configuring analyzer: %w", err)
	}
	rsOpts := []runstate.Option{runstate.WithClock(s.now)}
	if s.newID != nil {
		rsOpts = append(rsOpts, runstate.WithIDGenerator(s.newID))
	}

	s.runs = runstate.New(store, rsOpts...)
	s.analyzer = a
	s.ingester = ingest.New(a, cfg.Ingest, s.logger.Named("ingest"))
	s.discoverer = discover.New(store, cfg.Discover)
	s.synth = synth.New(cfg.Synthesis).WithClock(s.now)
	s.sections = section.New(cfg.Section)
	return s, nil
}

// Run returns the current state of a run.
func (s *Service) Run(ctx context.Context, runID string) (types.SynthesisRun, error) {
	return s.runs.Get(ctx, runID)
}

// begin loads a run and checks that it may be advanced to status to, so a
// stage fails before writing anything for a run it could not advance.
func (s *Service) begin(ctx context.Context, runID string, to types.RunStatus) (types.SynthesisRun, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return types.SynthesisRun{}, err
	}
	if run.Status == types.StatusComplete {
		return run, fmt.Errorf("run %s: %w", runID, runstate.ErrRunAlreadyComplete)
	}
	if !runstate.LegalNext(run.Status, to) {
		return run, fmt.Errorf("run %s is %s, cannot advance to %s: %w",
			runID, run.Status, to, runstate.ErrOutOfSequenceTransition)
	}
	return run, nil
}
