// Package selection builds the training and validation selection sets: each
// owns a sampled row-ordinal membership set, a column projection, and an
// output file plus ordinal manifest sidecars. Sets are immutable once
// constructed; a scanning pass feeds every live set one source line at a time
// through CheckLine.
package selection

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"setsampler/internal/sampling"
)

// SharedOrdinal is the sentinel set ordinal for the single validation set
// shared by every training set in the legacy shared-validation mode.
const SharedOrdinal = 0

// Set is the capability every selection set exposes to the batch runner.
type Set interface {
	// CheckLine tests whether the source row at ordinal belongs to the set
	// and, if so, appends its projected fields to the set's output file.
	CheckLine(ordinal int, fields []string) error
	// Close flushes and closes the set's output file.
	Close() error
	// Cleanup removes every artifact the set actually created. Idempotent;
	// safe on a partially constructed set.
	Cleanup() error
}

// Env is the immutable context shared by every selection set in one run.
// It is constructed once, up front, and passed by reference into every set
// constructor; sets never mutate it.
type Env struct {
	// OutDir receives all set files and manifests.
	OutDir string

	// Shape of the original file.
	LineCount   int
	ColumnCount int

	// Reserved columns, emitted first in every output row.
	CaseColumn    int
	OutcomeColumn int

	// Per-set sample sizes.
	TrainingRows   int
	ValidationRows int
	DataColumns    int

	// AllColumns disables column projection: member rows are emitted whole.
	AllColumns bool

	// Restricted, when non-nil, is the externally ranked list of column
	// ordinals to use verbatim instead of sampling.
	Restricted []int

	// Pools are the disjoint row-ordinal populations. Nil in the legacy
	// shared-validation mode, which samples from the full data-row range.
	Pools *sampling.Pools

	// Rng is the run's single random source.
	Rng *rand.Rand
}

// set is the state and behavior common to both variants. Variants embed it;
// the shared sampling they both rely on lives in internal/sampling.
type set struct {
	ordinal    int
	role       string
	rows       map[int]struct{}
	cols       map[int]struct{} // nil when projecting all columns
	outputCols []int            // nil when projecting all columns
	art        artifacts
}

// defineOutputColumns fixes the output order: case column, outcome column,
// then the data columns ascending by source ordinal. The order columns were
// sampled in never matters.
func (s *set) defineOutputColumns(env *Env) {
	ordered := sampling.SortedOrdinals(s.cols)

	s.outputCols = make([]int, 0, 2+len(ordered))
	s.outputCols = append(s.outputCols, env.CaseColumn, env.OutcomeColumn)
	s.outputCols = append(s.outputCols, ordered...)
}

// CheckLine is an O(1) membership test followed, on a hit, by projection and
// a comma-joined append to the output file. With no projection configured the
// whole field list is emitted unmodified.
func (s *set) CheckLine(ordinal int, fields []string) error {
	if _, ok := s.rows[ordinal]; !ok {
		return nil
	}

	out := fields
	if s.outputCols != nil {
		out = make([]string, len(s.outputCols))
		for i, o := range s.outputCols {
			// Column ordinals are 1-based; field slices are 0-based.
			if o-1 >= len(fields) {
				return fmt.Errorf("%s: line %d has %d fields but column %d was selected",
					s.name(), ordinal, len(fields), o)
			}
			out[i] = fields[o-1]
		}
	}

	if err := s.art.writeLine(strings.Join(out, ",")); err != nil {
		return fmt.Errorf("%s: write line %d: %w", s.name(), ordinal, err)
	}
	return nil
}

func (s *set) Close() error   { return s.art.close() }
func (s *set) Cleanup() error { return s.art.cleanup() }

func (s *set) name() string { return baseName(s.role, s.ordinal) }

// writeOrdinals serializes ordinals to path, ascending, one per line.
// Manifests are written before the data file is opened, so a construction
// failure always leaves a deterministic, cleanable prefix of artifacts.
func (s *set) writeOrdinals(ordinals map[int]struct{}, path string) error {
	s.art.noteCreated(path)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, o := range sampling.SortedOrdinals(ordinals) {
		w.WriteString(strconv.Itoa(o))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// RowOrdinals returns the set's row membership, ascending. For tests and
// diagnostics; membership itself never changes after construction.
func (s *set) RowOrdinals() []int { return sampling.SortedOrdinals(s.rows) }

// OutputColumns returns the fixed projection order, or nil when the set
// emits whole rows.
func (s *set) OutputColumns() []int { return append([]int(nil), s.outputCols...) }

// artifacts tracks the files one selection set has created, in creation
// order, so a failed construction can be unwound and a finished set closed.
type artifacts struct {
	paths []string
	file  *os.File
	w     *bufio.Writer
}

func (a *artifacts) noteCreated(path string) {
	a.paths = append(a.paths, path)
}

// openData creates the set's data output file. Last artifact to be created.
func (a *artifacts) openData(path string) error {
	a.noteCreated(path)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create set file %s: %w", path, err)
	}
	a.file = f
	a.w = bufio.NewWriter(f)
	return nil
}

func (a *artifacts) writeLine(line string) error {
	if a.w == nil {
		return errors.New("set file is not open")
	}
	if _, err := a.w.WriteString(line); err != nil {
		return err
	}
	return a.w.WriteByte('\n')
}

// close flushes and closes the data file. Safe to call more than once.
func (a *artifacts) close() error {
	if a.file == nil {
		return nil
	}
	f, w := a.file, a.w
	a.file, a.w = nil, nil

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// cleanup closes the data file if still open and removes every artifact that
// was actually created. Removal errors for files that never made it to disk
// are ignored, which is what makes cleanup idempotent.
func (a *artifacts) cleanup() error {
	_ = a.close()

	var firstErr error
	for _, p := range a.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", p, err)
			}
		}
	}
	a.paths = nil
	return firstErr
}

// Artifact naming. Base names are deterministic functions of the role and
// set ordinal so external tooling can discover the whole family of files for
// a run. The shared validation set carries no ordinal suffix.
func baseName(role string, ordinal int) string {
	if ordinal == SharedOrdinal {
		return role + "-set"
	}
	return fmt.Sprintf("%s-set-%d", role, ordinal)
}

// DataPath returns the data file path for a role ("training"/"validation")
// and set ordinal under dir.
func DataPath(dir, role string, ordinal int) string {
	return filepath.Join(dir, baseName(role, ordinal))
}

// RowManifestPath returns the row-ordinal sidecar path.
func RowManifestPath(dir, role string, ordinal int) string {
	return filepath.Join(dir, baseName(role, ordinal)+"-row-ordinals")
}

// ColumnManifestPath returns the column-ordinal sidecar path.
func ColumnManifestPath(dir, role string, ordinal int) string {
	return filepath.Join(dir, baseName(role, ordinal)+"-column-ordinals")
}

// reservedColumns is the exclusion set used when sampling data columns.
func reservedColumns(env *Env) map[int]struct{} {
	return map[int]struct{}{
		env.CaseColumn:    {},
		env.OutcomeColumn: {},
	}
}
