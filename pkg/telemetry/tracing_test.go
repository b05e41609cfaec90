package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestGetTraceParentContext(t *testing.T) {
	_, err := InitOTelSDK(context.Background(), Config{})
	require.NoError(t, err)

	t.Setenv(TraceParent, `{"traceparent":"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}`)
	ctx, err := GetTraceParentContext(context.Background())
	require.NoError(t, err)

	sc := trace.SpanContextFromContext(ctx)
	assert.True(t, sc.IsValid())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
}

func TestGetTraceParentContext_Unset(t *testing.T) {
	t.Setenv(TraceParent, "")
	ctx, err := GetTraceParentContext(context.Background())
	require.NoError(t, err)
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())

	t.Setenv(TraceParent, "{not json")
	_, err = GetTraceParentContext(context.Background())
	assert.Error(t, err)
}
