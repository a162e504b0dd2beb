package observability

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/keyurgolani/BabyNest-sub006/internal"
)

const instrumentationName = "github.com/keyurgolani/BabyNest-sub006"

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
}

// InitTracing installs a global tracer provider. When disabled the global
// no-op provider stays in place and the returned shutdown does nothing.
func InitTracing(ctx context.Context, log internal.Logger, cfg TracingConfig) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop
	}
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "sweetspot"
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		log.Warnw("otel resource init failed (continuing)", "error", err)
	}

	exporter, err := buildExporter(ctx, log)
	if err != nil {
		log.Warnw("otel exporter init failed, tracing disabled", "error", err)
		return noop
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio()))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Infow("otel tracing initialized", "service", serviceName, "endpoint", endpoint())
	return tp.Shutdown
}

func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func buildExporter(ctx context.Context, log internal.Logger) (sdktrace.SpanExporter, error) {
	ep := endpoint()
	if ep == "" {
		log.Warnw("otel using stdout exporter (no OTLP endpoint configured)")
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(ep)}
	if insecure() {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func endpoint() string {
	return strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
}

func insecure() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func sampleRatio() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("OTEL_SAMPLER_RATIO")), 64)
	if err != nil {
		return 1
	}
	return min(max(f, 0), 1)
}
