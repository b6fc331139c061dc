package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type AppMetrics struct {
	authAttempts      *prometheus.CounterVec
	taskOperations    *prometheus.CounterVec
	storeDuration     *prometheus.HistogramVec
	feedSubscribers   prometheus.Gauge
	feedPushes        prometheus.Counter
	workerQueueLength *prometheus.GaugeVec
}

func NewAppMetrics(registry prometheus.Registerer) *AppMetrics {
	metrics := &AppMetrics{
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_attempts_total",
				Help: "Total number of register and login attempts by outcome",
			},
			[]string{"operation", "outcome"},
		),
		taskOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "task_operations_total",
				Help: "Total number of task mutations by status",
			},
			[]string{"operation", "status"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_operation_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "entity"},
		),
		feedSubscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "task_feed_subscribers",
				Help: "Number of open task list subscriptions",
			},
		),
		feedPushes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "task_feed_pushes_total",
				Help: "Total number of task list snapshots pushed to subscribers",
			},
		),
		workerQueueLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "worker_queue_length",
				Help: "Jobs waiting per worker",
			},
			[]string{"worker"},
		),
	}

	registry.MustRegister(
		metrics.authAttempts,
		metrics.taskOperations,
		metrics.storeDuration,
		metrics.feedSubscribers,
		metrics.feedPushes,
		metrics.workerQueueLength,
	)

	return metrics
}

// The Record methods tolerate a nil receiver so components can run without metrics.

func (m *AppMetrics) RecordAuthAttempt(operation, outcome string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(operation, outcome).Inc()
}

func (m *AppMetrics) RecordTaskOperation(operation string, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	m.taskOperations.WithLabelValues(operation, status).Inc()
}

func (m *AppMetrics) ObserveStoreOperation(operation, entity string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation, entity).Observe(duration.Seconds())
}

func (m *AppMetrics) AddFeedSubscribers(delta int) {
	if m == nil {
		return
	}
	m.feedSubscribers.Add(float64(delta))
}

func (m *AppMetrics) RecordFeedPush(count int) {
	if m == nil {
		return
	}
	m.feedPushes.Add(float64(count))
}

func (m *AppMetrics) SetWorkerQueueLength(worker string, length int) {
	if m == nil {
		return
	}
	m.workerQueueLength.WithLabelValues(worker).Set(float64(length))
}
