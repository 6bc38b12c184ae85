package selection

import (
	"fmt"

	"setsampler/internal/sampling"
)

// ValidationSet holds the rows a paired training set must never contain.
//
// In the default mode every training set owns a private ValidationSet with
// the same ordinal. In the legacy shared mode a single ValidationSet with
// SharedOrdinal serves every training set.
type ValidationSet struct {
	set
}

// NewValidation constructs a validation set and creates its artifacts in the
// fixed order: row-ordinal manifest, column-ordinal manifest (only when the
// columns were computed here rather than inherited), data file. On any
// failure the partially created artifacts are removed before returning.
//
// Pass SharedOrdinal to build the legacy shared set, which samples the full
// data-row range instead of the validation pool.
func NewValidation(env *Env, ordinal int) (v *ValidationSet, err error) {
	v = &ValidationSet{set{ordinal: ordinal, role: "validation"}}
	defer func() {
		if err != nil {
			_ = v.Cleanup()
			v = nil
		}
	}()

	if ordinal == SharedOrdinal {
		v.rows, err = sampling.RangeExcluding(env.Rng, env.ValidationRows, 2, env.LineCount, nil)
	} else {
		v.rows, err = sampling.FromPool(env.Rng, env.Pools.Validation, env.ValidationRows)
	}
	if err != nil {
		return nil, fmt.Errorf("%s rows: %w", v.name(), err)
	}

	if !env.AllColumns {
		if env.Restricted != nil {
			v.cols = make(map[int]struct{}, len(env.Restricted))
			for _, c := range env.Restricted {
				v.cols[c] = struct{}{}
			}
		} else {
			v.cols, err = sampling.RangeExcluding(env.Rng, env.DataColumns, 1, env.ColumnCount, reservedColumns(env))
			if err != nil {
				return nil, fmt.Errorf("%s columns: %w", v.name(), err)
			}
		}
		v.defineOutputColumns(env)
	}

	if err = v.writeOrdinals(v.rows, RowManifestPath(env.OutDir, v.role, ordinal)); err != nil {
		return nil, err
	}
	if v.cols != nil {
		if err = v.writeOrdinals(v.cols, ColumnManifestPath(env.OutDir, v.role, ordinal)); err != nil {
			return nil, err
		}
	}
	if err = v.art.openData(DataPath(env.OutDir, v.role, ordinal)); err != nil {
		return nil, err
	}
	return v, nil
}
