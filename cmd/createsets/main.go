// Command createsets partitions one large row-oriented dataset into many
// disjoint, randomly sampled training and validation sets, each written to
// its own output file together with row/column ordinal manifests for
// downstream model-training steps.
//
// The source is read in full streaming passes. Each open set costs file
// handles, so when the requested set count exceeds the process open-file
// budget the run automatically splits into multiple passes: build as many
// sets as the OS allows, scan, close, continue with the next ordinals.
//
// Inputs:
//   - the original data file (plain text, or a single-entry .zip/.gz/.xz)
//   - a dataset info file with the precomputed line and column counts
//     (produce it once with cmd/fileinfo)
//   - optionally a ranked column-restriction file for second-stage runs
//     against the columns a first stage found most predictive
//
// The first source line is the header and is never sampled. Output rows are
// comma-joined in the fixed order [case, outcome, data columns ascending].
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"setsampler/internal/batch"
	"setsampler/internal/config"
	"setsampler/internal/datainfo"
	"setsampler/internal/metrics"
	"setsampler/internal/metrics/datadog"
	"setsampler/internal/sampling"
	"setsampler/internal/selection"
	"setsampler/internal/source"
)

func main() {
	var cfg config.Params

	flag.StringVar(&cfg.SourcePath, "i", "", "path of the original data file (plain, .zip, .gz or .xz)")
	flag.StringVar(&cfg.InfoPath, "info", "", "dataset info file written by fileinfo")
	flag.StringVar(&cfg.OutDir, "out", ".", "directory to write set files and manifests to")

	flag.Float64Var(&cfg.TrainingPercent, "tp", 0, "fraction of data rows assigned to the training pool, in (0,1) exclusive")
	flag.IntVar(&cfg.TrainingRowCount, "trc", 0, "rows to sample for each training set")
	flag.IntVar(&cfg.ValidationRowCount, "vrc", 0, "rows to sample for each validation set")
	flag.IntVar(&cfg.ColumnCount, "cc", 0, "data columns to sample for each set")

	flag.IntVar(&cfg.CaseColumn, "case", 0, "1-based ordinal of the case (record identifier) column")
	flag.IntVar(&cfg.OutcomeColumn, "outcome", 0, "1-based ordinal of the outcome (label) column")

	flag.IntVar(&cfg.SetCount, "sets", 0, "number of training sets to create")
	flag.IntVar(&cfg.StartOrdinal, "start", 1, "ordinal of the first set; lets repeated runs produce unique names")

	flag.StringVar(&cfg.ColumnFile, "columns", "", "optional ranked column-restriction file")
	flag.StringVar(&cfg.Delimiter, "d", ",", "field delimiter of the original file")
	flag.StringVar(&cfg.Encoding, "encoding", "", "source character encoding (IANA name); empty means UTF-8")

	flag.BoolVar(&cfg.SharedValidation, "shared-validation", false, "legacy mode: one validation set shared by all training sets")
	flag.BoolVar(&cfg.AllColumns, "all-columns", false, "emit whole rows instead of sampling columns")
	flag.IntVar(&cfg.MaxSetsPerPass, "max-sets-per-pass", 0, "cap sets per scanning pass; 0 discovers the open-file limit")

	flag.Int64Var(&cfg.Seed, "seed", 0, "random seed; 0 derives one from the clock")

	metricsBackend := flag.String("metrics-backend", "none", "metrics backend to use (none, datadog)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	log.SetOutput(os.Stderr)

	if reportIssues(config.Validate(cfg)) {
		os.Exit(1)
	}

	info, err := datainfo.ReadFile(cfg.InfoPath)
	if err != nil {
		fatalf("%v", err)
	}
	if reportIssues(config.ValidateWithInfo(cfg, info.ColumnCount)) {
		os.Exit(1)
	}

	initMetrics(*metricsBackend, *verbose)
	// Close() stops a periodic flush loop and performs one final flush; for
	// the nop backend it is free.
	defer func() {
		if err := metrics.Close(); err != nil {
			log.Printf("metrics: close/flush error: %v", err)
		}
	}()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var restricted []int
	if cfg.ColumnFile != "" {
		restricted, err = selection.ReadColumnSet(cfg.ColumnFile, cfg.ColumnCount,
			info.ColumnCount, cfg.CaseColumn, cfg.OutcomeColumn)
		if err != nil {
			fatalf("%v", err)
		}
	}

	env := &selection.Env{
		OutDir:         cfg.OutDir,
		LineCount:      info.LineCount,
		ColumnCount:    info.ColumnCount,
		CaseColumn:     cfg.CaseColumn,
		OutcomeColumn:  cfg.OutcomeColumn,
		TrainingRows:   cfg.TrainingRowCount,
		ValidationRows: cfg.ValidationRowCount,
		DataColumns:    cfg.ColumnCount,
		AllColumns:     cfg.AllColumns,
		Restricted:     restricted,
		Rng:            rng,
	}

	// Row-count feasibility is checked before any artifact exists, in both
	// modes, so an infeasible request never fails mid-stream.
	if cfg.SharedValidation {
		dataRows := info.LineCount - 1
		if cfg.ValidationRowCount >= dataRows {
			fatalf("the validation row count %d is not less than the %d data rows", cfg.ValidationRowCount, dataRows)
		}
		if cfg.TrainingRowCount >= dataRows-cfg.ValidationRowCount {
			fatalf("the training row count %d is not less than the %d rows left outside the shared validation set",
				cfg.TrainingRowCount, dataRows-cfg.ValidationRowCount)
		}
	} else {
		env.Pools, err = sampling.Partition(info.LineCount, cfg.TrainingPercent,
			cfg.TrainingRowCount, cfg.ValidationRowCount, rng)
		if err != nil {
			fatalf("%v", err)
		}
	}

	var shared *selection.ValidationSet
	if cfg.SharedValidation {
		shared, err = selection.NewValidation(env, selection.SharedOrdinal)
		if err != nil {
			fatalf("create shared validation set: %v", err)
		}
	}

	runner := &batch.Runner{
		Scheduler: &batch.Scheduler{
			MaxPerPass: cfg.MaxSetsPerPass,
			Build: func(ordinal int) (selection.Set, error) {
				return selection.NewTraining(env, ordinal, shared)
			},
		},
		Scan: func(ctx context.Context, sets []selection.Set) error {
			return scanPass(ctx, cfg, sets)
		},
		Log: log.Default(),
	}
	if shared != nil {
		runner.Shared = shared
	}

	if *verbose {
		log.Printf("run: source=%s sets=%d start=%d seed=%d shared_validation=%v",
			cfg.SourcePath, cfg.SetCount, cfg.StartOrdinal, seed, cfg.SharedValidation)
	}

	startedAt := time.Now()
	if err := runner.Run(context.Background(), cfg.StartOrdinal, cfg.SetCount); err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("created %d training sets (ordinals %d-%d) in %s",
		cfg.SetCount, cfg.StartOrdinal, cfg.StartOrdinal+cfg.SetCount-1,
		time.Since(startedAt).Truncate(time.Millisecond))
}

// scanPass performs one full streaming pass over the source and feeds every
// line to every set in the batch.
func scanPass(ctx context.Context, cfg config.Params, sets []selection.Set) error {
	rc, err := source.Open(cfg.SourcePath)
	if err != nil {
		return err
	}
	dec, err := source.Decode(rc, cfg.Encoding)
	if err != nil {
		_ = rc.Close()
		return err
	}
	defer dec.Close()

	var rows int64
	err = source.Scan(ctx, dec, cfg.Delimiter, func(ordinal int, fields []string) error {
		rows++
		for _, s := range sets {
			if err := s.CheckLine(ordinal, fields); err != nil {
				return err
			}
		}
		return nil
	})

	metrics.IncCounter(metrics.CounterRowsScanned, float64(rows), nil)
	return err
}

// initMetrics selects the metrics backend: flag value, then the
// METRICS_BACKEND environment variable, then none.
func initMetrics(name string, verbose bool) {
	if name == "" {
		name = os.Getenv("METRICS_BACKEND")
	}

	switch name {
	case "datadog":
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "createsets",
			Tags:    datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)
		if verbose {
			log.Printf("metrics: backend=datadog")
		}

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
	}
}

func reportIssues(issues []config.Issue) bool {
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	return config.HasError(issues)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
