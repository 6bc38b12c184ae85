package sampling

import (
	"fmt"
	"math/rand"
	"sort"
)

// maxDrawAttempts bounds the rejection loop in RangeExcluding. Callers are
// required to verify feasibility before calling, so hitting the bound means an
// internal error rather than an unlucky draw: with a feasible request the
// expected number of rejections is far below this.
const maxDrawAttempts = 1 << 26

// FromPool draws count distinct elements uniformly from pool, without
// replacement. The pool itself is not modified.
//
// count must be <= len(pool); violating that is a caller bug and returns an
// error rather than panicking, so the failure surfaces as a configuration
// problem at the top level.
func FromPool(rng *rand.Rand, pool []int, count int) (map[int]struct{}, error) {
	if count < 0 || count > len(pool) {
		return nil, fmt.Errorf("sample: count %d out of range for pool of %d", count, len(pool))
	}

	// Partial Fisher-Yates over a copy: only the first count positions need
	// to be settled.
	cp := make([]int, len(pool))
	copy(cp, pool)

	out := make(map[int]struct{}, count)
	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
		out[cp[i]] = struct{}{}
	}
	return out, nil
}

// RangeExcluding draws count distinct integers uniformly from [start, end]
// inclusive, skipping any present in exclude, by rejection sampling.
//
// Contract: the caller must have verified count < (end - start + 1) -
// len(exclude). The feasibility check here converts a violated contract into
// an error instead of an unbounded loop, and maxDrawAttempts converts the
// theoretical infinite loop into a reported internal error.
func RangeExcluding(rng *rand.Rand, count, start, end int, exclude map[int]struct{}) (map[int]struct{}, error) {
	if start > end {
		return nil, fmt.Errorf("sample: start %d is greater than end %d", start, end)
	}
	size := end - start + 1
	if count >= size-len(exclude) {
		return nil, fmt.Errorf("sample: count %d is not less than the %d available values in [%d, %d]",
			count, size-len(exclude), start, end)
	}

	out := make(map[int]struct{}, count)
	for attempts := 0; len(out) < count; attempts++ {
		if attempts >= maxDrawAttempts {
			return nil, fmt.Errorf("sample: gave up after %d draws for %d values in [%d, %d]",
				attempts, count, start, end)
		}
		r := start + rng.Intn(size)
		if _, skip := exclude[r]; skip {
			continue
		}
		out[r] = struct{}{}
	}
	return out, nil
}

// SortedOrdinals returns the members of set in ascending order.
func SortedOrdinals(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for o := range set {
		out = append(out, o)
	}
	sort.Ints(out)
	return out
}
