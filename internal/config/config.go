// Package config defines the run parameters for selection-set creation and
// validates them up front. Validation collects every problem it finds rather
// than stopping at the first, so an operator can fix a bad invocation in one
// round trip.
package config

import "fmt"

// Params holds everything a selection-set run needs, resolved from flags by
// cmd/createsets. Fields mirror the tool's command line one-to-one.
type Params struct {
	// SourcePath is the original data file. May be a plain text file or a
	// single-entry .zip/.gz/.xz archive.
	SourcePath string
	// InfoPath is the dataset info blob with the precomputed line and column
	// counts (see internal/datainfo).
	InfoPath string
	// OutDir is where set files and ordinal manifests are written.
	OutDir string

	// TrainingPercent is the fraction of data rows assigned to the training
	// pool; the remainder forms the validation pool. Exclusive (0, 1).
	TrainingPercent float64
	// TrainingRowCount rows are sampled for each training set.
	TrainingRowCount int
	// ValidationRowCount rows are sampled for each validation set.
	ValidationRowCount int
	// ColumnCount data columns are sampled for each set (ignored when
	// AllColumns is set).
	ColumnCount int

	// CaseColumn is the 1-based ordinal of the record-identifier column.
	// Always emitted first, never sampled.
	CaseColumn int
	// OutcomeColumn is the 1-based ordinal of the label column. Always
	// emitted second, never sampled.
	OutcomeColumn int

	// SetCount is how many training sets to create in this run.
	SetCount int
	// StartOrdinal numbers the first set; later sets count up from it. Lets
	// repeated runs against one source produce non-colliding file names.
	StartOrdinal int

	// ColumnFile optionally restricts column selection to the ordinals listed
	// in a ranking file (first field per line, best-ranked first).
	ColumnFile string

	// Delimiter separates fields in the source file.
	Delimiter string
	// Encoding names the source character encoding ("" or "utf-8" for none;
	// otherwise an IANA charmap name such as "windows-1250").
	Encoding string

	// SharedValidation enables the legacy mode with one validation set shared
	// by every training set. Training rows then sample the full data-row
	// range excluding only the shared set's rows, so sibling training sets
	// may overlap. That overlap is intentional.
	SharedValidation bool
	// AllColumns disables column sampling: every set emits whole source rows.
	AllColumns bool

	// MaxSetsPerPass caps how many sets are built per scanning pass. Zero
	// means discover the cap from the process open-file limit.
	MaxSetsPerPass int

	// Seed for the run's random source. Zero means derive from the clock.
	Seed int64
}

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found while validating Params.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func errf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)}
}

func warnf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Validate checks everything that can be checked without the dataset info.
// Feasibility against the actual line/column counts is a second step
// (ValidateWithInfo) because the info blob has to be loaded first.
func Validate(p Params) []Issue {
	var issues []Issue

	if p.SourcePath == "" {
		issues = append(issues, errf("source", "the original data file is required"))
	}
	if p.InfoPath == "" {
		issues = append(issues, errf("info", "the dataset info file is required"))
	}
	if p.TrainingPercent <= 0 || p.TrainingPercent >= 1 {
		issues = append(issues, errf("training-percent", "%v is not in (0, 1) exclusive", p.TrainingPercent))
	}
	if p.TrainingRowCount < 1 {
		issues = append(issues, errf("training-row-count", "%d is less than 1", p.TrainingRowCount))
	}
	if p.ValidationRowCount < 1 {
		issues = append(issues, errf("validation-row-count", "%d is less than 1", p.ValidationRowCount))
	}
	if !p.AllColumns && p.ColumnCount < 1 {
		issues = append(issues, errf("column-count", "%d is less than 1", p.ColumnCount))
	}
	if p.AllColumns && p.ColumnCount > 0 {
		issues = append(issues, warnf("column-count", "ignored when all columns are emitted"))
	}
	if p.AllColumns && p.ColumnFile != "" {
		issues = append(issues, errf("column-set", "cannot restrict columns while emitting all columns"))
	}
	if p.CaseColumn < 1 {
		issues = append(issues, errf("case-column", "%d is less than 1", p.CaseColumn))
	}
	if p.OutcomeColumn < 1 {
		issues = append(issues, errf("outcome-column", "%d is less than 1", p.OutcomeColumn))
	}
	if p.CaseColumn >= 1 && p.CaseColumn == p.OutcomeColumn {
		issues = append(issues, errf("outcome-column", "case and outcome columns are both %d", p.CaseColumn))
	}
	if p.SetCount < 1 {
		issues = append(issues, errf("sets", "%d is less than 1", p.SetCount))
	}
	if p.StartOrdinal < 1 {
		issues = append(issues, errf("start", "%d is less than 1", p.StartOrdinal))
	}
	if p.Delimiter == "" {
		issues = append(issues, errf("delimiter", "must not be empty"))
	}
	if p.MaxSetsPerPass < 0 {
		issues = append(issues, errf("max-sets-per-pass", "%d is negative", p.MaxSetsPerPass))
	}
	return issues
}

// ValidateWithInfo checks Params against the source's actual column count.
// Row-count feasibility is checked later by sampling.Partition, which knows
// the pool sizes.
func ValidateWithInfo(p Params, columnCount int) []Issue {
	var issues []Issue

	if p.CaseColumn > columnCount {
		issues = append(issues, errf("case-column",
			"%d is greater than the number of columns in the original file, %d", p.CaseColumn, columnCount))
	}
	if p.OutcomeColumn > columnCount {
		issues = append(issues, errf("outcome-column",
			"%d is greater than the number of columns in the original file, %d", p.OutcomeColumn, columnCount))
	}
	if !p.AllColumns && p.ColumnFile == "" && p.ColumnCount >= columnCount-1 {
		// The case and outcome columns are reserved, so at most
		// columnCount-2 data columns exist.
		issues = append(issues, errf("column-count",
			"%d data columns requested but only %d are available", p.ColumnCount, columnCount-2))
	}
	return issues
}

// HasError reports whether any issue is of error severity.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
