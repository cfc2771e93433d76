// Package telemetry configures OpenTelemetry tracing for mosaic.
package telemetry

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Iron-Ham/mosaic/internal/config"
)

// EnvDisabled turns tracing off when set to "false", whatever the config
// says.
const EnvDisabled = "MOSAIC_OTEL_ENABLED"

// Shutdown flushes pending spans and releases the exporter.
type Shutdown func(context.Context) error

// Setup initialises tracing for cfg.ServiceName.
//
// Tracing is opt-in: when cfg.OTLPEndpoint is empty or MOSAIC_OTEL_ENABLED
// is "false", Setup returns a no-op Shutdown and leaves the global provider
// untouched. Otherwise spans are batched to the OTLP/HTTP endpoint and the
// W3C trace context propagator is installed so outgoing and incoming HTTP
// requests share traces.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (Shutdown, error) {
	noop := func(context.Context) error { return nil }

	if strings.EqualFold(os.Getenv(EnvDisabled), "false") {
		return noop, nil
	}
	if cfg.OTLPEndpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return noop, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "mosaic"
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
