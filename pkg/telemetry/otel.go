package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// OTELResiliencyServiceName is the service name the runner reports its spans under
const OTELResiliencyServiceName = "ocs_resiliency_runner"

// Config selects the telemetry providers to install
type Config struct {
	// Endpoint is the OTLP gRPC collector, spans are only exported when it is set
	Endpoint string
	// Metrics, when set, becomes the global meter provider
	Metrics *Metrics
}

// InitOTelSDK installs the propagator and the configured providers.
// The returned shutdown flushes every provider it installed.
func InitOTelSDK(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	var closers []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = errors.Join(errs, closers[i](ctx))
		}
		closers = nil
		return errs
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.Metrics != nil {
		otel.SetMeterProvider(cfg.Metrics.provider)
	}

	if cfg.Endpoint != "" {
		tracerProvider, err := newTracerProvider(ctx, cfg)
		if err != nil {
			return shutdown, errors.Join(err, shutdown(ctx))
		}
		otel.SetTracerProvider(tracerProvider)
		closers = append(closers, tracerProvider.Shutdown)
	}
	return shutdown, nil
}

func newTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", OTELResiliencyServiceName),
	))
	if err != nil {
		return nil, err
	}

	// TODO: add a TLS option once the collector is served over TLS
	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	))
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	), nil
}
