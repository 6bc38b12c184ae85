package batch

import (
	"context"
	"fmt"

	"setsampler/internal/metrics"
	"setsampler/internal/selection"
)

// Logger is the minimal logging surface the runner needs; satisfied by
// *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

// ScanFunc performs one full pass over the source, invoking every set's
// CheckLine for every line. It is a seam: production wires it to
// internal/source, tests substitute synthetic passes.
type ScanFunc func(ctx context.Context, sets []selection.Set) error

// Runner repeatedly schedules a batch, scans the source once for it, and
// closes the batch, until the requested number of training sets exists.
// Everything is sequential; the only resource under management is the
// process's file-handle budget, which the Scheduler negotiates.
type Runner struct {
	Scheduler *Scheduler
	Scan      ScanFunc

	// Shared is the legacy single shared validation set, if the run has one.
	// It is fed during the first pass only (its rows are fixed, one pass
	// fills it) and closed right after.
	Shared selection.Set

	Log Logger
}

// Run produces total training sets numbered consecutively from start.
//
// A mid-scan failure is fatal and leaves the current batch's artifacts in
// place: a streaming pass cannot be rolled back at acceptable cost, so
// partially filled files are left for the operator rather than silently
// destroyed.
func (r *Runner) Run(ctx context.Context, start, total int) error {
	shared := r.Shared
	next := start
	remaining := total

	for pass := 1; remaining > 0; pass++ {
		b, err := r.Scheduler.Next(next, remaining)
		if err != nil {
			return err
		}

		sets := b.Sets
		if shared != nil {
			sets = append(append([]selection.Set(nil), b.Sets...), shared)
		}

		if r.Log != nil {
			r.Log.Printf("pass %d: scanning source for sets %d-%d (%d of %d remaining)",
				pass, b.First, b.Last, remaining, total)
		}

		if err := r.Scan(ctx, sets); err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}

		for _, s := range b.Sets {
			if err := s.Close(); err != nil {
				return fmt.Errorf("pass %d: close set: %w", pass, err)
			}
		}
		if shared != nil {
			if err := shared.Close(); err != nil {
				return fmt.Errorf("pass %d: close shared validation set: %w", pass, err)
			}
			shared = nil
		}

		metrics.IncCounter(metrics.CounterPasses, 1, nil)
		metrics.IncCounter(metrics.CounterSetsCreated, float64(len(b.Sets)), metrics.Labels{"role": "training"})

		remaining -= len(b.Sets)
		next = b.Last + 1
	}
	return nil
}
