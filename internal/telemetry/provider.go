// Package telemetry sets up OpenTelemetry tracing for the sprite tools.
package telemetry

import (
	"context"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type settings struct {
	Endpoint string `env:"SPRITES_OTEL_ENDPOINT"`
	Enabled  string `env:"SPRITES_OTEL_ENABLED"`
}

// Setup initialises tracing for serviceName.
//
// Tracing is opt-in: when SPRITES_OTEL_ENDPOINT is empty or
// SPRITES_OTEL_ENABLED is "false", Setup returns a no-op shutdown function
// and no global provider is registered.
//
// The returned shutdown function flushes pending spans and should be
// deferred by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var s settings
	if err := env.Parse(&s); err != nil {
		return noop, errors.Annotate(err, "telemetry: parse env")
	}
	if strings.EqualFold(s.Enabled, "false") || s.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(s.Endpoint),
	)
	if err != nil {
		return noop, errors.Annotate(err, "telemetry: exporter")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, errors.Annotate(err, "telemetry: resource")
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
