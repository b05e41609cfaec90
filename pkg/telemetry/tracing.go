package telemetry

import (
	"context"
	"encoding/json"
	"os"

	"github.com/palantir/stacktrace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName  = "github.com/red-hat-storage/ocs-resiliency"
	TraceParent = "TRACE_PARENT"
)

// StartSpan starts a span of the resiliency tracer
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, spanName)
}

// RecordError marks the span as failed with the given status message
func RecordError(span trace.Span, err error, msg string) {
	span.SetStatus(codes.Error, msg)
	span.RecordError(err)
}

// GetTraceParentContext returns a context carrying the span context passed in TRACE_PARENT, if any
func GetTraceParentContext(ctx context.Context) (context.Context, error) {
	traceParent := os.Getenv(TraceParent)
	if traceParent == "" {
		return ctx, nil
	}

	carrier := make(map[string]string)
	if err := json.Unmarshal([]byte(traceParent), &carrier); err != nil {
		return ctx, stacktrace.Propagate(err, "could not parse %s", TraceParent)
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(carrier)), nil
}
