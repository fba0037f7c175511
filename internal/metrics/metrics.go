// Package metrics records run metrics for campaignetl through a pluggable
// Backend.
//
// The package-level backend defaults to a no-op, so the pipeline calls
// RecordStep and friends unconditionally. Concrete systems live in the
// prompush (Prometheus Pushgateway) and datadog (DogStatsD) subpackages.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the pipeline.
const (
	StepTotal      = "campaignetl_step_total"
	StepDuration   = "campaignetl_step_duration_seconds"
	RowsTotal      = "campaignetl_rows_total"
	LoadBatchTotal = "campaignetl_load_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes buffered metrics.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b and returns the previous backend. Passing nil keeps
// the current one.
func SetBackend(b Backend) Backend {
	mu.Lock()
	defer mu.Unlock()
	prev := backend
	if b != nil {
		backend = b
	}
	return prev
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a pipeline step and observes its
// duration. Steps are list, read, aggregate, transform, write, verify and
// load.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// StartStep returns a func that records the step when called with the step's
// error.
//
//	done := metrics.StartStep(job, "read")
//	sets, err := reader.ReadAll(ctx, bundles)
//	done(err)
func StartStep(job, step string) func(error) {
	start := time.Now()
	return func(err error) { RecordStep(job, step, err, time.Since(start)) }
}

// RecordRows adds delta to the row counter for kind. Kinds are read,
// client, campaign, economics and loaded. Non-positive deltas are ignored.
func RecordRows(job, kind string, delta int) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordBatches adds delta to the load batch counter for table.
func RecordBatches(job, table string, delta int) {
	if delta <= 0 {
		return
	}
	current().IncCounter(LoadBatchTotal, float64(delta), Labels{"job": job, "table": table})
}
