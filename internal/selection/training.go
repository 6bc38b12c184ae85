package selection

import (
	"fmt"

	"setsampler/internal/sampling"
)

// TrainingSet owns (or, in the legacy mode, references) a ValidationSet and
// guarantees its rows never appear in that validation set: in the pool model
// the training and validation pools are disjoint by construction, and in the
// legacy shared mode training rows are sampled with the shared set's rows
// excluded.
//
// In the legacy mode nothing excludes one training set's rows from another's;
// sibling training sets may overlap. That non-exclusivity is intentional.
type TrainingSet struct {
	set

	validation *ValidationSet
	// owned reports whether validation is private to this set, in which case
	// Close and Cleanup cascade to it. A shared set is fed and closed by the
	// batch runner, exactly once, not by each training set.
	owned bool
}

// NewTraining constructs a training set and, unless a shared validation set
// is supplied, a private validation set with the same ordinal first. Training
// and its validation set always project identical columns, so the column
// ordinals are adopted from the validation set and no separate column
// manifest is written.
//
// On failure every artifact created so far is removed, including the private
// validation set's.
func NewTraining(env *Env, ordinal int, shared *ValidationSet) (t *TrainingSet, err error) {
	t = &TrainingSet{set: set{ordinal: ordinal, role: "training"}}
	defer func() {
		if err != nil {
			_ = t.Cleanup()
			t = nil
		}
	}()

	if shared != nil {
		t.validation = shared
	} else {
		t.validation, err = NewValidation(env, ordinal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name(), err)
		}
		t.owned = true
	}

	t.cols = t.validation.cols
	t.outputCols = t.validation.outputCols

	if shared != nil {
		t.rows, err = sampling.RangeExcluding(env.Rng, env.TrainingRows, 2, env.LineCount, shared.rows)
	} else {
		t.rows, err = sampling.FromPool(env.Rng, env.Pools.Training, env.TrainingRows)
	}
	if err != nil {
		return nil, fmt.Errorf("%s rows: %w", t.name(), err)
	}

	if err = t.writeOrdinals(t.rows, RowManifestPath(env.OutDir, t.role, ordinal)); err != nil {
		return nil, err
	}
	if err = t.art.openData(DataPath(env.OutDir, t.role, ordinal)); err != nil {
		return nil, err
	}
	return t, nil
}

// CheckLine feeds the owned validation set first, then applies this set's own
// membership test. One scanning pass feeds every live set, so the delegation
// is what gets a private validation set its rows; disjoint pools guarantee no
// row lands in both files.
func (t *TrainingSet) CheckLine(ordinal int, fields []string) error {
	if t.owned {
		if err := t.validation.CheckLine(ordinal, fields); err != nil {
			return err
		}
	}
	return t.set.CheckLine(ordinal, fields)
}

// Close flushes and closes the set file, cascading to an owned validation set.
func (t *TrainingSet) Close() error {
	err := t.set.Close()
	if t.owned {
		if verr := t.validation.Close(); err == nil {
			err = verr
		}
	}
	return err
}

// Cleanup removes this set's artifacts, then an owned validation set's.
func (t *TrainingSet) Cleanup() error {
	err := t.set.Cleanup()
	if t.owned && t.validation != nil {
		if verr := t.validation.Cleanup(); err == nil {
			err = verr
		}
	}
	return err
}

// Validation exposes the paired validation set (shared or private).
func (t *TrainingSet) Validation() *ValidationSet { return t.validation }
