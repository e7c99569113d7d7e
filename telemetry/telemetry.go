package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/awantoch/cvdfunctions/config"
	"github.com/awantoch/cvdfunctions/constants"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	invocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvdfn_invocations_total",
			Help: "Total number of function invocations by response status.",
		},
		[]string{"function", "code"},
	)
	invocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cvdfn_invocation_duration_seconds",
			Help:    "Duration of function invocations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)
	stagedModelsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvdfn_staged_models_total",
			Help: "Model files processed by staging, by outcome.",
		},
		[]string{"outcome"},
	)

	providerMu sync.Mutex
	provider   *sdktrace.TracerProvider
)

func init() {
	prometheus.MustRegister(invocationsTotal, invocationDuration, stagedModelsTotal)
}

// Init sets up the tracing exporter based on config.
// Supported exporters: "stdout", "otlp"; empty or "none" leaves tracing off.
func Init(ctx context.Context, cfg config.TracingConfig) error {
	var exp sdktrace.SpanExporter
	var err error
	switch cfg.Exporter {
	case "", constants.TracingExporterNone:
		return nil
	case constants.TracingExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case constants.TracingExporterOTLP:
		var opts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		}
		exp, err = otlptracehttp.New(ctx, opts...)
	default:
		return errors.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}
	if err != nil {
		return errors.Wrapf(err, "create %s exporter", cfg.Exporter)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = config.DefaultServiceName
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)

	providerMu.Lock()
	provider = tp
	providerMu.Unlock()
	return nil
}

// Flush exports buffered spans. Functions call it before returning, since the
// platform may freeze the process between invocations.
func Flush(ctx context.Context) {
	providerMu.Lock()
	tp := provider
	providerMu.Unlock()
	if tp != nil {
		_ = tp.ForceFlush(ctx)
	}
}

// Shutdown flushes and stops the tracer provider, if any.
func Shutdown(ctx context.Context) error {
	providerMu.Lock()
	tp := provider
	provider = nil
	providerMu.Unlock()
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// ObserveInvocation records one function invocation.
func ObserveInvocation(function string, code int, dur time.Duration) {
	invocationsTotal.WithLabelValues(function, strconv.Itoa(code)).Inc()
	invocationDuration.WithLabelValues(function).Observe(dur.Seconds())
}

// RecordStaging records the outcome of staging one model file.
func RecordStaging(outcome string) {
	stagedModelsTotal.WithLabelValues(outcome).Inc()
}

// WrapHandler applies otelhttp tracing and context propagation.
func WrapHandler(name string, next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, name)
}

// MetricsHandler returns the Prometheus metrics endpoint handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
