// Package sampling implements the random-selection primitives used to build
// training and validation selection sets: partitioning the source file's row
// ordinals into disjoint pools, and sampling without replacement from a pool
// or from an integer range with exclusions.
//
// All randomness flows through an injected *rand.Rand so runs are reproducible
// under a fixed seed and tests are deterministic.
package sampling

import (
	"fmt"
	"math/rand"
)

// Pools holds the two disjoint row-ordinal populations a run samples from.
//
// Invariants (established by Partition, never mutated afterwards):
//   - Training and Validation are disjoint.
//   - Their union is exactly the data-row ordinals [2, lineCount]; ordinal 1
//     is the header line and is never a member.
//
// Pools is shared read-only by every selection set in a run.
type Pools struct {
	Training   []int
	Validation []int
}

// Partition shuffles the data-row ordinals [2, lineCount] and cuts the
// permutation at trainingPercent, yielding the training pool (first part) and
// validation pool (remainder).
//
// trainingRowCount and validationRowCount are the per-set sample sizes; they
// must each be strictly smaller than the pool they will be drawn from. The
// check happens here, before any output file is created, so an infeasible
// configuration fails fast instead of mid-stream.
func Partition(lineCount int, trainingPercent float64, trainingRowCount, validationRowCount int, rng *rand.Rand) (*Pools, error) {
	if lineCount < 2 {
		return nil, fmt.Errorf("partition: line count %d leaves no data rows", lineCount)
	}
	if trainingPercent <= 0 || trainingPercent >= 1 {
		return nil, fmt.Errorf("partition: training percent %v must be in (0, 1) exclusive", trainingPercent)
	}

	ordinals := make([]int, lineCount-1)
	for i := range ordinals {
		ordinals[i] = i + 2
	}
	rng.Shuffle(len(ordinals), func(i, j int) {
		ordinals[i], ordinals[j] = ordinals[j], ordinals[i]
	})

	cut := int(trainingPercent * float64(len(ordinals)))

	p := &Pools{
		Training:   ordinals[:cut],
		Validation: ordinals[cut:],
	}

	if trainingRowCount >= len(p.Training) {
		return nil, fmt.Errorf("partition: training row count %d is not less than the available training rows %d",
			trainingRowCount, len(p.Training))
	}
	if validationRowCount >= len(p.Validation) {
		return nil, fmt.Errorf("partition: validation row count %d is not less than the available validation rows %d",
			validationRowCount, len(p.Validation))
	}
	return p, nil
}
