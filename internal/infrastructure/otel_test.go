package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartlens/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTelMetricsOnly(t *testing.T) {
	cfg := OTelConfigFrom(config.Default().Telemetry)
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestInitializeOTelWithTracing(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    "chartlens-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "stdout",
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "render")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	RecordError(ctx, errors.New("boom"))
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "zipkin"}, quietLogger())
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestDashboardMetricsExposed(t *testing.T) {
	providers, err := InitializeOTel(OTelConfigFrom(config.Default().Telemetry), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRender(ctx, "dashboard", 42, 15*time.Millisecond, nil)
	m.RecordRender(ctx, "dashboard", 0, 0, errors.New("bad filter"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "dashboard_renders_total")
	assert.Contains(t, body, "dashboard_render_duration_seconds")
	assert.Contains(t, body, "dashboard_filtered_tracks")
	assert.Contains(t, body, "dashboard_render_errors_total")
}

func TestRecordRenderNilSafe(t *testing.T) {
	var m *DashboardMetrics
	assert.NotPanics(t, func() {
		m.RecordRender(context.Background(), "kpis", 1, time.Millisecond, nil)
	})
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
