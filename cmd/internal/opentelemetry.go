package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
)

// Telemetry holds what the binaries need from the OpenTelemetry setup.
type Telemetry struct {
	// Metrics serves the Prometheus scrape endpoint.
	Metrics http.Handler
	// Shutdown flushes pending spans.
	Shutdown func(ctx context.Context) error
}

// NewOTExporter instantiates the OpenTelemetry exporters using configuration defined in environment variables.
func NewOTExporter(conf *envvar.Configuration, serviceName string) (*Telemetry, error) {
	promExporter, err := prometheus.New(prometheus.WithoutUnits())
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "prometheus.New")
	}

	global.SetMeterProvider(metric.NewMeterProvider(metric.WithReader(promExporter)))

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "runtime.Start")
	}

	jaegerEndpoint, err := conf.Get("JAEGER_ENDPOINT")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "conf.Get JAEGER_ENDPOINT")
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	}

	if jaegerEndpoint != "" {
		jaegerExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "jaeger.New")
		}

		opts = append(opts, sdktrace.WithBatcher(jaegerExporter))
	}

	traceProvider := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Telemetry{
		Metrics:  promhttp.Handler(),
		Shutdown: traceProvider.Shutdown,
	}, nil
}
