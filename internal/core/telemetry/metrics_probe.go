package telemetry

import (
	"context"
	"time"

	"securetodo/internal/core/port"
)

// MetricsProbe forwards to another probe and feeds repository durations into
// the store histogram.
type MetricsProbe struct {
	port.Telemetry
	metrics *AppMetrics
}

func NewMetricsProbe(next port.Telemetry, metrics *AppMetrics) port.Telemetry {
	if next == nil {
		next = NewNoOpProbe()
	}

	return &MetricsProbe{Telemetry: next, metrics: metrics}
}

func (p *MetricsProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	p.metrics.ObserveStoreOperation(operation, entity, duration)
	p.Telemetry.RecordRepositoryOperation(ctx, operation, entity, duration, err)
}
