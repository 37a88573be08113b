// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// DefaultWorkers bounds concurrent domain syntheses when no limit is set.
const DefaultWorkers = 4

// Store is the persistence a Batch needs.
type Store interface {
	GetRun(ctx context.Context, id string) (types.SynthesisRun, error)
	EnsureDomain(ctx context.Context, name string) (types.Domain, error)
	GetDomain(ctx context.Context, id int64) (types.Domain, error)
	DomainExtractions(ctx context.Context, runID, domain string) ([]types.PaperExtraction, error)
	UpsertSynthesis(ctx context.Context, ds types.DomainSynthesis) error
}

// ItemError is one failed domain in a batch.
type ItemError struct {
	DomainID int64  `json:"domain_id"`
	Domain   string `json:"domain,omitempty"`
	Error    string `json:"error"`
}

// DomainResult describes one stored synthesis.
type DomainResult struct {
	DomainID       int64  `json:"domain_id"`
	Domain         string `json:"domain"`
	PapersAnalyzed int    `json:"papers_analyzed"`
}

// Summary holds counts from a batch synthesis. Errors and Syntheses follow
// the order the domains were given.
type Summary struct {
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Errors     []ItemError    `json:"errors"`
	Syntheses  []DomainResult `json:"syntheses"`
}

// HasFailures reports whether any domain failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Batch synthesizes the domains of a run with a bounded worker pool.
type Batch struct {
	store   Store
	synth   *Synthesizer
	workers int
	logger  *zap.Logger
}

// NewBatch returns a Batch. workers below one use DefaultWorkers and a nil
// logger discards output.
func NewBatch(store Store, s *Synthesizer, workers int, logger *zap.Logger) *Batch {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{store: store, synth: s, workers: workers, logger: logger}
}

// ResolveDomains returns the domain ids to synthesize. An empty list means
// every domain detected for the run, created on first use.
func (b *Batch) ResolveDomains(ctx context.Context, runID string, domainIDs []int64) ([]int64, error) {
	if len(domainIDs) > 0 {
		return domainIDs, nil
	}
	run, err := b.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(run.Domains))
	for _, name := range run.Domains {
		d, err := b.store.EnsureDomain(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving domain %q: %w", name, err)
		}
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// SynthesizeOne builds, verifies, and stores the synthesis of one domain.
// The store write is a single replace, so a failed domain leaves any prior
// document untouched.
func (b *Batch) SynthesizeOne(ctx context.Context, runID string, domainID int64) (types.DomainSynthesis, error) {
	d, err := b.store.GetDomain(ctx, domainID)
	if err != nil {
		return types.DomainSynthesis{}, err
	}
	inputs, err := b.store.DomainExtractions(ctx, runID, d.Name)
	if err != nil {
		return types.DomainSynthesis{}, fmt.Errorf("loading extractions for %s: %w", d.Name, err)
	}
	doc := b.synth.Synthesize(d.Name, inputs)
	if err := Verify(doc); err != nil {
		return types.DomainSynthesis{}, err
	}
	ds := doc.Synthesis(runID, d.ID)
	if err := b.store.UpsertSynthesis(ctx, ds); err != nil {
		return types.DomainSynthesis{}, fmt.Errorf("storing synthesis for %s: %w", d.Name, err)
	}
	return ds, nil
}

// SynthesizeMany synthesizes every domain independently. It fails only
// when the domain list cannot be resolved; per-domain failures are listed
// in the summary.
func (b *Batch) SynthesizeMany(ctx context.Context, runID string, domainIDs []int64) (Summary, error) {
	ids, err := b.ResolveDomains(ctx, runID, domainIDs)
	if err != nil {
		return Summary{}, err
	}

	var (
		g          errgroup.Group
		successful atomic.Int64
		failed     atomic.Int64
	)
	g.SetLimit(b.workers)
	results := make([]*types.DomainSynthesis, len(ids))
	errs := make([]error, len(ids))

	for i, id := range ids {
		g.Go(func() error {
			ds, err := b.SynthesizeOne(ctx, runID, id)
			if err != nil {
				errs[i] = err
				failed.Add(1)
				b.logger.Warn("synthesis failed", zap.Int64("domain_id", id), zap.Error(err))
				return nil
			}
			results[i] = &ds
			successful.Add(1)
			b.logger.Debug("synthesized domain",
				zap.String("domain", ds.Domain),
				zap.Int("papers_analyzed", ds.PapersAnalyzed))
			return nil
		})
	}
	_ = g.Wait()

	s := Summary{
		Total:      len(ids),
		Successful: int(successful.Load()),
		Failed:     int(failed.Load()),
		Errors:     []ItemError{},
		Syntheses:  []DomainResult{},
	}
	for i, id := range ids {
		if errs[i] != nil {
			s.Errors = append(s.Errors, ItemError{DomainID: id, Domain: b.domainName(ctx, id), Error: errs[i].Error()})
			continue
		}
		ds := results[i]
		s.Syntheses = append(s.Syntheses, DomainResult{DomainID: id, Domain: ds.Domain, PapersAnalyzed: ds.PapersAnalyzed})
	}
	b.logger.Info("synthesis batch finished",
		zap.String("run_id", runID),
		zap.Int("total", s.Total),
		zap.Int("successful", s.Successful),
		zap.Int("failed", s.Failed))
	return s, nil
}

// domainName looks up a name for error reporting; unknown ids report "".
func (b *Batch) domainName(ctx context.Context, id int64) string {
	d, err := b.store.GetDomain(ctx, id)
	if err != nil {
		return ""
	}
	return d.Name
}
