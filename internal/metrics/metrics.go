// Package metrics defines the minimal metrics surface the sampler emits
// through. Core code depends only on the Backend interface and the package
// level helpers; concrete backends (see internal/metrics/datadog) are wired
// in by the command, and the default is a nop so metrics never become a
// required dependency of a run.
package metrics

import "sync"

// Labels are free-form key/value tags attached to a metric observation.
type Labels map[string]string

// Backend receives metric observations.
type Backend interface {
	// IncCounter adds delta to the named counter.
	IncCounter(name string, delta float64, labels Labels)
	// Flush submits buffered observations.
	Flush() error
	// Close flushes one final time and releases backend resources.
	Close() error
}

// Counter names emitted by the sampler.
const (
	CounterRowsScanned = "sampler_rows_scanned_total"
	CounterSetsCreated = "sampler_sets_created_total"
	CounterSetsCleaned = "sampler_sets_cleaned_total"
	CounterPasses      = "sampler_passes_total"
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels) {}
func (nopBackend) Flush() error                       { return nil }
func (nopBackend) Close() error                       { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the process-wide backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		backend = nopBackend{}
		return
	}
	backend = b
}

// IncCounter adds delta to the named counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.IncCounter(name, delta, labels)
}

// Flush flushes the installed backend.
func Flush() error {
	mu.RLock()
	b := backend
	mu.RUnlock()
	return b.Flush()
}

// Close closes the installed backend.
func Close() error {
	mu.RLock()
	b := backend
	mu.RUnlock()
	return b.Close()
}
