// Package batch drives selection-set construction against the process
// open-file budget. Every open set costs file handles, so a run requesting
// more sets than the budget allows is split into batches: build as many sets
// as the OS permits, scan the source once to fill them, close them, repeat.
package batch

import (
	"errors"
	"fmt"
	"syscall"

	"setsampler/internal/metrics"
	"setsampler/internal/selection"
)

// Builder constructs the training set with the given ordinal. On failure the
// builder is responsible for removing the failed attempt's partial artifacts
// before returning (the selection constructors do exactly that).
type Builder func(ordinal int) (selection.Set, error)

// Batch is one pass worth of constructed sets, with consecutive ordinals
// [First, Last].
type Batch struct {
	Sets  []selection.Set
	First int
	Last  int
}

// Scheduler builds batches of consecutively numbered sets, stopping a batch
// early when the open-file ceiling is hit.
type Scheduler struct {
	Build Builder

	// MaxPerPass caps the batch size. Zero means no cap: the batch grows
	// until the remaining request is satisfied or the OS says stop.
	MaxPerPass int
}

// Next constructs up to remaining sets starting at ordinal start.
//
// If construction fails with a file-handle exhaustion error and at least one
// set in this batch already succeeded, the batch stops at the previous
// ordinal and is returned as a success; the failed attempt has already been
// cleaned up by the builder. Exhaustion on the very first set, or any other
// error, is fatal: no progress is possible.
func (s *Scheduler) Next(start, remaining int) (*Batch, error) {
	want := remaining
	if s.MaxPerPass > 0 && want > s.MaxPerPass {
		want = s.MaxPerPass
	}

	b := &Batch{First: start}
	for i := 0; i < want; i++ {
		ordinal := start + i
		set, err := s.Build(ordinal)
		if err != nil {
			if isFileLimit(err) && len(b.Sets) > 0 {
				metrics.IncCounter(metrics.CounterSetsCleaned, 1, metrics.Labels{"reason": "file_limit"})
				b.Last = ordinal - 1
				return b, nil
			}
			// Fatal: nothing in this batch has been scanned yet, so the sets
			// built so far are empty shells. Remove their artifacts.
			for _, built := range b.Sets {
				_ = built.Cleanup()
			}
			return nil, fmt.Errorf("create training set %d: %w", ordinal, err)
		}
		b.Sets = append(b.Sets, set)
	}
	b.Last = start + len(b.Sets) - 1
	return b, nil
}

// isFileLimit reports whether err is the OS saying the process (or system)
// ran out of file handles.
func isFileLimit(err error) bool {
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}
