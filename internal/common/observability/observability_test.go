package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestObservability_RecordQuestion(t *testing.T) {
	obs, err := New("smartdm-test")
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	assert.NotPanics(t, func() {
		obs.RecordQuestion(context.Background(), "http", "generated", 120*time.Millisecond)
	})
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordQuestion(context.Background(), "http", "generated", time.Millisecond)
		obs.Shutdown(context.Background())
	})
}

func TestStartSpan_Recorded(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracing := newTracing("smartdm-test", sdktrace.WithSpanProcessor(recorder), 1.0)
	defer tracing.Shutdown(context.Background())

	_, span := StartSpan(context.Background(), "source.fetch", attribute.String("source", "sheet"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "source.fetch", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("source", "sheet"))
}
