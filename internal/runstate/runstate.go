// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runstate owns the lifecycle of a synthesis run. Every stage moves
// a run forward through the same validation function, LegalNext, and the
// store update is conditional on the status that was validated.
package runstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

var (
	// ErrOutOfSequenceTransition is returned for a skip or a regression.
	ErrOutOfSequenceTransition = errors.New("out of sequence transition")

	// ErrRunAlreadyComplete is returned for any advance of a complete run.
	ErrRunAlreadyComplete = errors.New("run already complete")
)

// maxAttempts bounds retries when a concurrent advance changes the status
// between the read and the conditional write.
const maxAttempts = 3

// Store is the persistence the state machine needs.
type Store interface {
	InsertRun(ctx context.Context, run types.SynthesisRun) error
	GetRun(ctx context.Context, id string) (types.SynthesisRun, error)
	CompareAndSetStatus(ctx context.Context, id string, from, to types.RunStatus, counts types.RunCounts, completedAt *time.Time) (bool, error)
}

// Analysis is the repository classification a run is created from.
type Analysis struct {
	Mode    types.Mode
	Domains []string
}

// LegalNext reports whether a run in status current may be advanced to
// requested. Re-requesting the current status is legal (retries overwrite
// counts); otherwise only the immediate successor is legal. Nothing is
// legal once a run is complete.
func LegalNext(current, requested types.RunStatus) bool {
	if current == types.StatusComplete {
		return false
	}
	ci, ri := current.Index(), requested.Index()
	if ci < 0 || ri < 0 {
		return false
	}
	return ri == ci || ri == ci+1
}

// Machine creates, advances, and reads synthesis runs.
type Machine struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source used for created and completed stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator sets the run id generator.
func WithIDGenerator(f func() string) Option {
	return func(m *Machine) { m.newID = f }
}

// New returns a Machine persisting through store.
func New(store Store, opts ...Option) *Machine {
	m := &Machine{store: store, now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Create persists a new run in status analyzing with the detected mode and
// domains and returns it.
func (m *Machine) Create(ctx context.Context, repoRef string, a Analysis) (types.SynthesisRun, error) {
	domains := a.Domains
	if domains == nil {
		domains = []string{}
	}
	run := types.SynthesisRun{
		ID:        m.newID(),
		RepoPath:  repoRef,
		Mode:      a.Mode,
		Domains:   domains,
		Status:    types.StatusAnalyzing,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.InsertRun(ctx, run); err != nil {
		return types.SynthesisRun{}, fmt.Errorf("creating run: %w", err)
	}
	return run, nil
}

// Get returns the run with the given id. Unknown ids wrap types.ErrRunNotFound.
func (m *Machine) Get(ctx context.Context, runID string) (types.SynthesisRun, error) {
	return m.store.GetRun(ctx, runID)
}

// Advance moves a run to status to, overwriting the counts set in delta.
// Advancing to the current status is an idempotent retry.
func (m *Machine) Advance(ctx context.Context, runID string, to types.RunStatus, delta types.CountsUpdate) (types.SynthesisRun, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		run, err := m.store.GetRun(ctx, runID)
		if err != nil {
			return types.SynthesisRun{}, err
		}
		if run.Status == types.StatusComplete {
			return run, fmt.Errorf("advancing run %s to %s: %w", runID, to, ErrRunAlreadyComplete)
		}
		if !LegalNext(run.Status, to) {
			return run, fmt.Errorf("advancing run %s from %s to %s: %w", runID, run.Status, to, ErrOutOfSequenceTransition)
		}

		counts := delta.Apply(run.Counts)
		var completedAt *time.Time
		if to == types.StatusComplete {
			t := m.now().UTC()
			completedAt = &t
		}

		ok, err := m.store.CompareAndSetStatus(ctx, runID, run.Status, to, counts, completedAt)
		if err != nil {
			return run, fmt.Errorf("advancing run %s: %w", runID, err)
		}
		if ok {
			run.Status = to
			run.Counts = counts
			if completedAt != nil {
				run.CompletedAt = completedAt
			}
			return run, nil
		}
	}
	return types.SynthesisRun{}, fmt.Errorf("advancing run %s to %s: status changed concurrently: %w", runID, to, ErrOutOfSequenceTransition)
}

// Ensure advances a run to status to unless it is already there or beyond.
// Stages that are re-invoked after a later stage has run use it to avoid a
// regression error on retry.
func (m *Machine) Ensure(ctx context.Context, runID string, to types.RunStatus, delta types.CountsUpdate) (types.SynthesisRun, error) {
	run, err := m.store.GetRun(ctx, runID)
	if err != nil {
		return types.SynthesisRun{}, err
	}
	if run.Status.Index() > to.Index() {
		return run, nil
	}
	return m.Advance(ctx, runID, to, delta)
}
