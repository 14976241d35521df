// Package telemetry wires OpenTelemetry for the catalog service: traces are
// exported over OTLP gRPC when an endpoint is configured, metrics are pulled
// by Prometheus from the handler returned by Provider.MetricsHandler.
//
// Usage:
//
//	p, shutdown, err := telemetry.Init(ctx, &telemetry.Config{
//	    ServiceName:  "catalog-svc",
//	    OTLPEndpoint: "otel-collector:4317",
//	    Enabled:      true,
//	})
//	defer shutdown(context.Background())
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds telemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string  // gRPC endpoint, e.g. "otel-collector:4317"; empty disables trace export
	SampleRate     float64 // fraction of root spans sampled
	Enabled        bool
}

// Provider exposes the tracer, the meter and the Prometheus registry they feed.
type Provider struct {
	tracer   trace.Tracer
	meter    metric.Meter
	registry *prom.Registry
}

// ShutdownFunc flushes and shuts down telemetry providers.
type ShutdownFunc func(context.Context) error

// Init initialises OpenTelemetry. With Enabled unset it returns a provider
// backed by the global no-op tracer and meter; /metrics then only carries
// the Go runtime collectors.
func Init(ctx context.Context, cfg *Config) (*Provider, ShutdownFunc, error) {
	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if !cfg.Enabled {
		return &Provider{
			tracer:   otel.Tracer(cfg.ServiceName),
			meter:    otel.Meter(cfg.ServiceName),
			registry: registry,
		}, func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("service.namespace", "movie-catalog"),
		),
		resource.WithProcessPID(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build otel resource: %w", err)
	}

	metricExporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithNamespace(sanitizeName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(metricExporter),
	)
	otel.SetMeterProvider(meterProvider)

	shutdowns := []func(context.Context) error{meterProvider.Shutdown}

	if cfg.OTLPEndpoint != "" {
		conn, err := grpc.NewClient(cfg.OTLPEndpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to otel collector %s: %w", cfg.OTLPEndpoint, err)
		}

		traceExporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithGRPCConn(conn),
			otlptracegrpc.WithTimeout(10*time.Second),
		)
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("create trace exporter: %w", err)
		}

		tracerProvider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter,
				sdktrace.WithBatchTimeout(5*time.Second),
				sdktrace.WithMaxExportBatchSize(512),
			),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(
				sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
			),
		)
		otel.SetTracerProvider(tracerProvider)
		shutdowns = append(shutdowns, tracerProvider.Shutdown, func(context.Context) error { return conn.Close() })
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p := &Provider{
		tracer:   otel.Tracer(cfg.ServiceName),
		meter:    meterProvider.Meter(cfg.ServiceName),
		registry: registry,
	}

	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("telemetry shutdown: %w", errors.Join(errs...))
		}
		return nil
	}

	return p, shutdown, nil
}

// Tracer returns the service tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Meter returns the service meter.
func (p *Provider) Meter() metric.Meter { return p.meter }

// MetricsHandler serves the Prometheus exposition of this provider's registry.
func (p *Provider) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// NewHTTPRequestCounter creates a counter for HTTP requests.
func (p *Provider) NewHTTPRequestCounter() (metric.Int64Counter, error) {
	return p.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
}

// NewHTTPDurationHistogram creates a histogram for HTTP request durations.
func (p *Provider) NewHTTPDurationHistogram() (metric.Float64Histogram, error) {
	return p.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0,
		),
	)
}

// TraceIDFromContext extracts the trace ID string from context.
func TraceIDFromContext(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

func sanitizeName(s string) string {
	out := make([]byte, len(s))
	for i := range s {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out[i] = c
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}
