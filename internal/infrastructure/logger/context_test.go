package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestRequestIDAndActor(t *testing.T) {
	ctx := WithActor(WithRequestID(context.Background(), "req-1"), "clerk@farm.test")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "clerk@farm.test", GetActor(ctx))
	assert.Empty(t, GetActor(context.Background()))
}

func TestL_EnrichesWithContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-7")
	ctx = WithActor(ctx, "clerk@farm.test")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	L(ctx).Info("batch approved")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "clerk@farm.test", fields["actor"])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestEnrich_EmptyContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Enrich(context.Background(), zap.New(core)).Info("plain")

	assert.Empty(t, logs.All()[0].ContextMap())
	assert.NotPanics(t, func() { Enrich(context.Background(), nil).Info("nop") })
}
