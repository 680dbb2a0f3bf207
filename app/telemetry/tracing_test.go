package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installRecorder routes global spans into a recorder for the test's duration.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, p.Tracer())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no endpoint", Config{Enabled: true, SampleRate: 1}},
		{"bad endpoint", Config{Enabled: true, Endpoint: "http://[::1", SampleRate: 1}},
		{"sample rate above one", Config{Enabled: true, Endpoint: "localhost:4318", SampleRate: 1.5}},
		{"negative sample rate", Config{Enabled: true, Endpoint: "localhost:4318", SampleRate: -0.1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProvider(tc.cfg)
			require.ErrorContains(t, err, "invalid telemetry config")
		})
	}
}

func TestNewProviderEnabled(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = "http://127.0.0.1:4318"

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	require.NotNil(t, p.tracerProvider)
	require.Equal(t, p.tracerProvider, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
}

func TestBlockSpanSuccess(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartBlockSpan(context.Background(), 7)
	EndBlockSpan(span, 3, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "block.execute", spans[0].Name())
	require.Equal(t, codes.Ok, spans[0].Status().Code)

	height, ok := attr(spans[0].Attributes(), "block.height")
	require.True(t, ok)
	require.Equal(t, int64(7), height.AsInt64())
	events, ok := attr(spans[0].Attributes(), "block.events")
	require.True(t, ok)
	require.Equal(t, int64(3), events.AsInt64())
}

func TestBlockSpanError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartBlockSpan(context.Background(), 2)
	EndBlockSpan(span, 0, errors.New("slippage"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Equal(t, "slippage", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	_, ok := attr(spans[0].Attributes(), "block.events")
	require.False(t, ok)
}

func TestRecordErrorIgnoresNil(t *testing.T) {
	RecordError(nil, errors.New("boom"))

	recorder := installRecorder(t)
	_, span := StartBlockSpan(context.Background(), 1)
	RecordError(span, nil)
	span.End()

	require.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}
