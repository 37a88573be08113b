// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// DefaultWorkers bounds concurrent extractions when no limit is configured.
const DefaultWorkers = 4

// PaperSource reads papers by corpus id. A missing paper is reported with
// an error wrapping types.ErrPaperNotFound.
type PaperSource interface {
	GetPaper(ctx context.Context, id int64) (types.Paper, error)
}

// ExtractionSink persists an extraction record, replacing any prior record
// for the same paper.
type ExtractionSink interface {
	SaveExtraction(ctx context.Context, e types.Extraction) error
}

// Store is the persistence a Batch needs.
type Store interface {
	PaperSource
	ExtractionSink
}

// ItemError is one failed paper in a batch.
type ItemError struct {
	PaperID int64  `json:"paper_id"`
	Error   string `json:"error"`
}

// Summary holds counts from a batch extraction. Errors are listed in the
// order the ids were given.
type Summary struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors"`
}

// HasFailures reports whether any paper failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Batch extracts many papers with a bounded worker pool.
type Batch struct {
	store     Store
	extractor Extractor
	workers   int
	logger    *zap.Logger
	now       func() time.Time
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithWorkers sets the worker limit. Values below one use DefaultWorkers.
func WithWorkers(n int) BatchOption {
	return func(b *Batch) { b.workers = n }
}

// WithLogger sets the logger for per-paper progress.
func WithLogger(l *zap.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock sets the time source for ExtractedAt.
func WithClock(now func() time.Time) BatchOption {
	return func(b *Batch) { b.now = now }
}

// NewBatch returns a Batch that reads and writes through store.
func NewBatch(store Store, ex Extractor, opts ...BatchOption) *Batch {
	b := &Batch{
		store:     store,
		extractor: ex,
		workers:   DefaultWorkers,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	if b.workers < 1 {
		b.workers = DefaultWorkers
	}
	return b
}

// ExtractOne extracts a single paper and replaces its stored record.
func (b *Batch) ExtractOne(ctx context.Context, paperID int64) (types.Extraction, error) {
	p, err := b.store.GetPaper(ctx, paperID)
	if err != nil {
		return types.Extraction{}, err
	}
	e := b.extractor.Extract(p)
	e.PaperID = p.ID
	e.ExtractedAt = b.now().UTC()
	if err := b.store.SaveExtraction(ctx, e); err != nil {
		return types.Extraction{}, fmt.Errorf("saving extraction for paper %d: %w", p.ID, err)
	}
	return e, nil
}

// ExtractMany extracts every id independently. A failed paper is recorded
// in Summary.Errors and never stops its siblings; the call returns once
// every paper has finished.
func (b *Batch) ExtractMany(ctx context.Context, paperIDs []int64) Summary {
	var (
		g          errgroup.Group
		successful atomic.Int64
		failed     atomic.Int64
	)
	g.SetLimit(b.workers)
	errs := make([]error, len(paperIDs))

	for i, id := range paperIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				failed.Add(1)
				return nil
			}
			if _, err := b.ExtractOne(ctx, id); err != nil {
				errs[i] = err
				failed.Add(1)
				b.logger.Warn("extraction failed", zap.Int64("paper_id", id), zap.Error(err))
				return nil
			}
			successful.Add(1)
			b.logger.Debug("extracted paper", zap.Int64("paper_id", id), zap.String("model", b.extractor.Model()))
			return nil
		})
	}
	_ = g.Wait()

	s := Summary{
		Total:      len(paperIDs),
		Successful: int(successful.Load()),
		Failed:     int(failed.Load()),
		Errors:     []ItemError{},
	}
	for i, err := range errs {
		if err != nil {
			s.Errors = append(s.Errors, ItemError{PaperID: paperIDs[i], Error: err.Error()})
		}
	}
	b.logger.Info("extraction batch finished",
		zap.Int("total", s.Total),
		zap.Int("successful", s.Successful),
		zap.Int("failed", s.Failed))
	return s
}
