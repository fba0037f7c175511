// Package prompush is a Prometheus Pushgateway backend for the metrics
// package. A batch run has no scrape window, so collected series are pushed
// once on Flush.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"campaignetl/internal/metrics"
)

// stepBuckets covers sub-millisecond listing up to multi-minute loads.
var stepBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300}

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	runID      string
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec   // step, status
	stepDuration *prometheus.HistogramVec // step, status
	rowCounter   *prometheus.CounterVec   // kind
	batchCounter *prometheus.CounterVec   // table
}

// Option customizes a Backend.
type Option func(*Backend)

// WithRunID adds a run_id grouping key so concurrent runs do not overwrite
// each other on the gateway.
func WithRunID(id string) Option {
	return func(b *Backend) { b.runID = id }
}

// NewBackend constructs a Pushgateway backend. jobName is the Pushgateway
// "job" group and defaults to "campaignetl".
func NewBackend(jobName, gatewayURL string, opts ...Option) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "campaignetl"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.StepDuration,
			Help:    "Pipeline step duration in seconds by step and status.",
			Buckets: stepBuckets,
		}, []string{"step", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows handled by kind (read, client, campaign, economics, loaded).",
		}, []string{"kind"}),
		batchCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.LoadBatchTotal,
			Help: "Database load batches by table.",
		}, []string{"table"}),
	}
	for _, o := range opts {
		o(b)
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":   b.stepCounter,
		"step histogram": b.stepDuration,
		"row counter":    b.rowCounter,
		"batch counter":  b.batchCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

// IncCounter routes known counter names to their collectors. Unknown names
// are dropped.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.LoadBatchTotal:
		if b.batchCounter != nil {
			b.batchCounter.WithLabelValues(labels["table"]).Add(delta)
		}
	}
}

// ObserveHistogram records step durations. Other names are dropped.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the gateway, replacing the group.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	if b.runID != "" {
		p = p.Grouping("run_id", b.runID)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
