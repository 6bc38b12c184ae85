package sampling

import (
	"math/rand"
	"strings"
	"testing"
)

func TestPartition_DisjointAndComplete(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	p, err := Partition(101, 0.6, 10, 10, rng)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}

	// 100 data rows, cut at 60.
	if len(p.Training) != 60 {
		t.Errorf("training pool size = %d, want 60", len(p.Training))
	}
	if len(p.Validation) != 40 {
		t.Errorf("validation pool size = %d, want 40", len(p.Validation))
	}

	seen := make(map[int]int)
	for _, o := range p.Training {
		seen[o]++
	}
	for _, o := range p.Validation {
		seen[o]++
	}
	for o := 2; o <= 101; o++ {
		if seen[o] != 1 {
			t.Fatalf("ordinal %d appears %d times across the pools, want exactly once", o, seen[o])
		}
	}
	if len(seen) != 100 {
		t.Fatalf("pools cover %d ordinals, want 100", len(seen))
	}
	if _, ok := seen[1]; ok {
		t.Fatal("header ordinal 1 must never be pooled")
	}
}

func TestPartition_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		lineCount       int
		trainingPercent float64
		trc, vrc        int
		wantSubstr      string
	}{
		{"no data rows", 1, 0.5, 1, 1, "no data rows"},
		{"percent zero", 11, 0, 1, 1, "training percent"},
		{"percent one", 11, 1, 1, 1, "training percent"},
		{"training count too large", 101, 0.6, 60, 10, "training row count"},
		{"validation count too large", 101, 0.6, 10, 40, "validation row count"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewSource(1))
			_, err := Partition(tc.lineCount, tc.trainingPercent, tc.trc, tc.vrc, rng)
			if err == nil {
				t.Fatal("want error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("error %q does not mention %q", err, tc.wantSubstr)
			}
		})
	}
}

func TestPartition_DeterministicUnderSeed(t *testing.T) {
	t.Parallel()

	a, err := Partition(51, 0.5, 5, 5, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	b, err := Partition(51, 0.5, 5, 5, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}

	for i := range a.Training {
		if a.Training[i] != b.Training[i] {
			t.Fatalf("training pools diverge at %d: %d vs %d", i, a.Training[i], b.Training[i])
		}
	}
}
