package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/awantoch/cvdfunctions/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() { _ = Shutdown(ctx) })

	require.NoError(t, Init(ctx, config.TracingConfig{}))
	require.NoError(t, Init(ctx, config.TracingConfig{Exporter: "none"}))
	require.NoError(t, Init(ctx, config.TracingConfig{Exporter: "stdout", ServiceName: "test-service"}))
	require.NoError(t, Shutdown(ctx))
	require.NoError(t, Init(ctx, config.TracingConfig{Exporter: "otlp", Endpoint: "http://localhost:4318"}))
	Flush(ctx)

	assert.Error(t, Init(ctx, config.TracingConfig{Exporter: "jaeger"}))
}

func TestShutdownWithoutProvider(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background()))
	Flush(context.Background())
}

func TestObserveInvocation(t *testing.T) {
	before := testutil.ToFloat64(invocationsTotal.WithLabelValues("predict", "500"))
	ObserveInvocation("predict", http.StatusInternalServerError, 10*time.Millisecond)
	after := testutil.ToFloat64(invocationsTotal.WithLabelValues("predict", "500"))
	assert.Equal(t, before+1, after)
}

func TestRecordStaging(t *testing.T) {
	before := testutil.ToFloat64(stagedModelsTotal.WithLabelValues("skipped"))
	RecordStaging("skipped")
	RecordStaging("skipped")
	assert.Equal(t, before+2, testutil.ToFloat64(stagedModelsTotal.WithLabelValues("skipped")))
}

func TestWrapHandler(t *testing.T) {
	handler := WrapHandler("test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestMetricsHandler(t *testing.T) {
	ObserveInvocation("test", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "cvdfn_invocations_total"))
}
