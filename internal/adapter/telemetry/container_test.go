package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewContainer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()

	c, err := NewContainer(Config{
		ServiceName:    "securetodo",
		ServiceVersion: "test",
		Environment:    "test",
		SpanProcessor:  recorder,
		RuntimeMetrics: true,
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, span := c.Probe.StartRepositorySpan(context.Background(), "Create", "task", nil)
	span.End()
	c.Probe.RecordRepositoryOperation(ctx, "Create", "task", time.Millisecond, nil)

	require.Len(t, recorder.Ended(), 1)
	count, err := testutil.GatherAndCount(c.PrometheusRegistry, "store_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var rm metricdata.ResourceMetrics
	require.NoError(t, c.MetricReader.Collect(context.Background(), &rm))
	assert.NotEmpty(t, rm.ScopeMetrics)

	assert.NoError(t, c.Shutdown(context.Background()))
}
