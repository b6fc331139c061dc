package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOTELProbe_RepositorySpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	probe := NewOTELProbe(zerolog.Nop(), tp)

	t.Run("should record a successful operation", func(t *testing.T) {
		_, op := StartOperation(context.Background(), probe, "ListByUser", "task", map[string]interface{}{
			"user.id": 3,
		})
		assert.NoError(t, op.End(nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "repository.task.ListByUser", spans[0].Name())
		assert.Equal(t, codes.Ok, spans[0].Status().Code)
	})

	t.Run("should mark the span as failed", func(t *testing.T) {
		failure := errors.New("disk I/O error")

		_, op := StartOperation(context.Background(), probe, "Create", "user", nil)
		assert.ErrorIs(t, op.End(failure), failure)

		spans := recorder.Ended()
		require.Len(t, spans, 2)
		assert.Equal(t, codes.Error, spans[1].Status().Code)
	})
}

func TestNoOpProbe_Operation(t *testing.T) {
	_, op := StartOperation(context.Background(), NewNoOpProbe(), "Delete", "task", nil)

	assert.NoError(t, op.End(nil))
}

func TestAppMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewAppMetrics(registry)

	metrics.RecordAuthAttempt("login", "logged_in")
	metrics.RecordAuthAttempt("login", "logged_in")
	metrics.RecordTaskOperation("add", nil)
	metrics.RecordTaskOperation("add", errors.New("boom"))
	metrics.AddFeedSubscribers(2)
	metrics.AddFeedSubscribers(-1)
	metrics.RecordFeedPush(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.authAttempts.WithLabelValues("login", "logged_in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.taskOperations.WithLabelValues("add", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.taskOperations.WithLabelValues("add", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.feedSubscribers))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.feedPushes))
}

func TestAppMetrics_NilReceiver(t *testing.T) {
	var metrics *AppMetrics

	assert.NotPanics(t, func() {
		metrics.RecordAuthAttempt("register", "success")
		metrics.RecordTaskOperation("add", nil)
		metrics.AddFeedSubscribers(1)
	})
}

func TestMetricsProbe(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewAppMetrics(registry)
	probe := NewMetricsProbe(nil, metrics)

	_, op := StartOperation(context.Background(), probe, "Create", "task", nil)
	op.End(nil)

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.storeDuration))
}
