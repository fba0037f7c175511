package cli

import (
	"fmt"

	"go.uber.org/zap"

	"campaignetl/internal/config"
	"campaignetl/internal/metrics"
	"campaignetl/internal/metrics/datadog"
	"campaignetl/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns a func that
// flushes it and restores the previous one. A backend that fails to start
// is logged and skipped.
func setupMetrics(m config.Metrics, runID string, lg *zap.Logger) (func(), error) {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "", "none":
		lg.Debug("metrics disabled")
		return func() {}, nil
	case "pushgateway":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL, prompush.WithRunID(runID))
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr: m.DatadogAddr,
			Tags: []string{"job:" + m.Job},
		})
	default:
		return nil, fmt.Errorf("metrics: unknown backend %q", m.Backend)
	}
	if err != nil {
		lg.Warn("metrics backend unavailable; continuing without metrics", zap.String("backend", m.Backend), zap.Error(err))
		return func() {}, nil
	}

	lg.Info("metrics enabled", zap.String("backend", m.Backend), zap.String("job", m.Job))
	prev := metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			lg.Warn("metrics flush failed", zap.Error(err))
		}
		metrics.SetBackend(prev)
	}, nil
}
