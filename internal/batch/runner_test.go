package batch

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"setsampler/internal/selection"
)

type fakeLogger struct {
	msgs []string
}

func (l *fakeLogger) Printf(format string, v ...any) {
	l.msgs = append(l.msgs, fmt.Sprintf(format, v...))
}

func TestRunner_MultiPass(t *testing.T) {
	t.Parallel()

	var built []*fakeSet
	var passes [][]selection.Set

	r := &Runner{
		Scheduler: &Scheduler{
			MaxPerPass: 2,
			Build: func(ordinal int) (selection.Set, error) {
				s := &fakeSet{ordinal: ordinal}
				built = append(built, s)
				return s, nil
			},
		},
		Scan: func(ctx context.Context, sets []selection.Set) error {
			passes = append(passes, sets)
			return nil
		},
		Log: &fakeLogger{},
	}

	if err := r.Run(context.Background(), 1, 5); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(passes) != 3 {
		t.Fatalf("passes = %d, want 3 (2+2+1 sets)", len(passes))
	}
	if len(passes[0]) != 2 || len(passes[1]) != 2 || len(passes[2]) != 1 {
		t.Fatalf("pass sizes = %d,%d,%d, want 2,2,1", len(passes[0]), len(passes[1]), len(passes[2]))
	}

	if len(built) != 5 {
		t.Fatalf("built %d sets, want 5", len(built))
	}
	for i, s := range built {
		if s.ordinal != i+1 {
			t.Errorf("set %d has ordinal %d, want consecutive numbering from 1", i, s.ordinal)
		}
		if s.closed != 1 {
			t.Errorf("set %d closed %d times, want exactly once", s.ordinal, s.closed)
		}
	}
}

// TestRunner_FileLimitAcrossPasses drives the scheduler and runner together:
// the "OS" only allows two sets at a time, so five sets take three passes,
// with the failed third construction of each pass retried as the first of
// the next.
func TestRunner_FileLimitAcrossPasses(t *testing.T) {
	t.Parallel()

	openSets := 0
	var passes int

	r := &Runner{
		Scheduler: &Scheduler{
			Build: func(ordinal int) (selection.Set, error) {
				if openSets >= 2 {
					return nil, fmt.Errorf("create training set file: %w", syscall.EMFILE)
				}
				openSets++
				return &fakeSet{ordinal: ordinal}, nil
			},
		},
		Scan: func(ctx context.Context, sets []selection.Set) error {
			passes++
			// Closing happens after the scan; model the handle release here
			// because the fake Close has no view of the counter.
			defer func() { openSets = 0 }()
			return nil
		},
	}

	if err := r.Run(context.Background(), 1, 5); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if passes != 3 {
		t.Fatalf("passes = %d, want 3", passes)
	}
}

func TestRunner_SharedValidationFedOnFirstPassOnly(t *testing.T) {
	t.Parallel()

	shared := &fakeSet{ordinal: 0}
	var passes [][]selection.Set

	r := &Runner{
		Scheduler: &Scheduler{
			MaxPerPass: 1,
			Build: func(ordinal int) (selection.Set, error) {
				return &fakeSet{ordinal: ordinal}, nil
			},
		},
		Scan: func(ctx context.Context, sets []selection.Set) error {
			passes = append(passes, sets)
			return nil
		},
		Shared: shared,
	}

	if err := r.Run(context.Background(), 1, 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(passes))
	}
	if len(passes[0]) != 2 {
		t.Fatalf("first pass fed %d sets, want 2 (training + shared)", len(passes[0]))
	}
	if len(passes[1]) != 1 {
		t.Fatalf("second pass fed %d sets, want 1 (training only)", len(passes[1]))
	}
	if shared.closed != 1 {
		t.Fatalf("shared set closed %d times, want exactly once", shared.closed)
	}
}

func TestRunner_ScanErrorIsFatal(t *testing.T) {
	t.Parallel()

	boom := errors.New("delimiter not found")
	var built []*fakeSet

	r := &Runner{
		Scheduler: &Scheduler{Build: func(ordinal int) (selection.Set, error) {
			s := &fakeSet{ordinal: ordinal}
			built = append(built, s)
			return s, nil
		}},
		Scan: func(ctx context.Context, sets []selection.Set) error {
			return boom
		},
	}

	err := r.Run(context.Background(), 1, 3)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}

	// Mid-scan failures do not roll back: no cleanup of batch artifacts.
	for _, s := range built {
		if s.cleaned != 0 {
			t.Errorf("set %d was cleaned up after a scan failure", s.ordinal)
		}
	}
}

func TestRunner_SchedulerErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("construction failed")
	r := &Runner{
		Scheduler: &Scheduler{Build: func(ordinal int) (selection.Set, error) {
			return nil, boom
		}},
		Scan: func(ctx context.Context, sets []selection.Set) error { return nil },
	}

	if err := r.Run(context.Background(), 1, 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}
