package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"securetodo/internal/core/port"
	"securetodo/internal/core/telemetry"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// SpanProcessor receives finished spans. Nil keeps them in process only.
	SpanProcessor sdktrace.SpanProcessor
	// MetricReader collects otel metrics. Nil installs a manual reader.
	MetricReader sdkmetric.Reader
	// Registry receives the prometheus collectors. Nil creates a fresh one.
	Registry *prometheus.Registry
	// RuntimeMetrics starts the Go runtime instrumentation.
	RuntimeMetrics bool
}

// Container owns the providers handed to the probe and the database tracer.
// Nothing is exported over the network; embedders read the registry and the
// metric reader themselves.
type Container struct {
	TracerProvider     *sdktrace.TracerProvider
	MeterProvider      *sdkmetric.MeterProvider
	MetricReader       sdkmetric.Reader
	PrometheusRegistry *prometheus.Registry
	AppMetrics         *telemetry.AppMetrics
	Probe              port.Telemetry
}

func NewContainer(config Config, logger zerolog.Logger) (*Container, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(config.ServiceName),
		semconv.ServiceVersionKey.String(config.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(config.Environment),
	)

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	appMetrics := telemetry.NewAppMetrics(registry)

	reader := config.MetricReader
	if reader == nil {
		reader = sdkmetric.NewManualReader()
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if config.SpanProcessor != nil {
		opts = append(opts, sdktrace.WithSpanProcessor(config.SpanProcessor))
	}

	tracerProvider := sdktrace.NewTracerProvider(opts...)

	if config.RuntimeMetrics {
		if err := runtime.Start(
			runtime.WithMeterProvider(meterProvider),
			runtime.WithMinimumReadMemStatsInterval(time.Second),
		); err != nil {
			return nil, err
		}
	}

	probe := telemetry.NewMetricsProbe(telemetry.NewOTELProbe(logger, tracerProvider), appMetrics)

	logger.Debug().
		Str("service", config.ServiceName).
		Bool("runtime_metrics", config.RuntimeMetrics).
		Msg("Telemetry initialized")

	return &Container{
		TracerProvider:     tracerProvider,
		MeterProvider:      meterProvider,
		MetricReader:       reader,
		PrometheusRegistry: registry,
		AppMetrics:         appMetrics,
		Probe:              probe,
	}, nil
}

func (c *Container) Shutdown(ctx context.Context) error {
	return errors.Join(
		c.TracerProvider.Shutdown(ctx),
		c.MeterProvider.Shutdown(ctx),
	)
}
