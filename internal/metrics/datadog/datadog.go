// Package datadog implements a Datadog backend for the internal/metrics
// package.
//
// A selection-set run can be short (a handful of sets, one pass) or very long
// (hundreds of sets over many passes of a multi-gigabyte source). Submitting
// only at process exit would reduce a long run to a single spike on a
// dashboard, so this backend:
//
//   - buffers observations in memory (lock-protected)
//   - periodically Flush()es on a ticker (default once per minute)
//   - Flush()es one final time on Close()
//
// Concurrency model:
//   - callers may IncCounter at any time
//   - Flush snapshots and resets the buffers under a mutex, then submits
//     out-of-lock
//   - the flush loop calls Flush() periodically; Close() stops the loop
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"setsampler/internal/metrics"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to
	// "sampler".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls how often buffered metrics are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets them; tests use them
	// to avoid real clocks, tickers and network submission.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal interface needed to submit metrics. The SDK
// exposes a concrete *datadogV2.MetricsApi; depending on this interface
// instead lets tests install a fake without real HTTP.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu sync.Mutex

	// counter name -> joined sorted tags -> value
	counts map[string]map[string]float64
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client. API
// credentials come from the environment (DD_API_KEY et al.), read by the
// SDK's default context. Network errors surface from Flush(), not here.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "sampler"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		cfg := dd.NewConfiguration()
		client := dd.NewAPIClient(cfg)
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		newTicker:  newTicker,
		counts:     make(map[string]map[string]float64),
	}

	go b.loop()
	return b, nil
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the background flush loop and performs one final Flush().
// Close must be called at most once.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}

	key := labelKey(labels)

	b.mu.Lock()
	defer b.mu.Unlock()

	byTags := b.counts[name]
	if byTags == nil {
		byTags = make(map[string]float64)
		b.counts[name] = byTags
	}
	byTags[key] += delta
}

// labelKey renders labels as a stable, comma-joined "k:v" list usable both as
// a map key and, split back apart, as Datadog tags.
func labelKey(labels metrics.Labels) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, k+":"+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// snapshotAndReset grabs the buffered counters and resets the buffers.
// Buffers are reset even if the subsequent submission fails, to keep the hot
// path from blocking on a slow or failing intake.
func (b *Backend) snapshotAndReset() map[string]map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.counts
	b.counts = make(map[string]map[string]float64)
	return s
}

// Flush submits buffered metrics to Datadog and resets local buffers.
// Returns nil when there is nothing to submit.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if len(snap) == 0 {
		return nil
	}

	series := b.buildSeries(snap, b.now().Unix())
	if len(series) == 0 {
		return nil
	}

	payload := datadogV2.MetricPayload{Series: series}
	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries constructs Datadog series for a snapshot at a fixed timestamp.
// Pure (no locks, clocks or network), so it is directly unit-testable.
func (b *Backend) buildSeries(snap map[string]map[string]float64, nowUnix int64) []datadogV2.MetricSeries {
	var series []datadogV2.MetricSeries
	for name, byTags := range snap {
		for key, v := range byTags {
			if v == 0 {
				continue
			}
			tags := append([]string(nil), b.baseTags...)
			if key != "" {
				tags = append(tags, strings.Split(key, ",")...)
			}
			series = append(series, datadogV2.MetricSeries{
				Metric: metricName(name),
				Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
				Points: []datadogV2.MetricPoint{
					{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(v)},
				},
				Tags: tags,
			})
		}
	}
	return series
}

// metricName maps internal snake_case counter names to Datadog dotted names,
// e.g. "sampler_rows_scanned_total" -> "sampler.rows_scanned.total".
func metricName(name string) string {
	name = strings.TrimPrefix(name, "sampler_")
	name = strings.TrimSuffix(name, "_total")
	return "sampler." + name + ".total"
}

// ParseTagsCSV splits a comma-separated tag list from config/environment,
// dropping empty entries.
func ParseTagsCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var _ metrics.Backend = (*Backend)(nil)
