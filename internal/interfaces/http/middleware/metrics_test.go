package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/logistics/console/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func findMetricByName(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetrics_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RecordsRoutePattern(t *testing.T) {
	mp, reader := setupTestMeter(t)
	prom := telemetry.NewPrometheusRegistry("console")

	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{Meter: mp.Meter("http.server"), Prometheus: prom}))
	router.GET("/maps/:kind", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/maps/static", "/maps/other"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))

	m := findMetricByName(t, reader, "http_server_request_total")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byRoute := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http.route"))
		byRoute[route.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), byRoute["/maps/:kind"])
	assert.Equal(t, int64(1), byRoute["unknown"])

	assert.NotNil(t, findMetricByName(t, reader, "http_server_request_duration_seconds"))
	assert.Equal(t, 2.0, testutil.ToFloat64(prom.HTTPRequests().WithLabelValues("GET", "/maps/:kind", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.HTTPRequests().WithLabelValues("GET", "unknown", "404")))
}

func TestHTTPMetrics_PrometheusOnly(t *testing.T) {
	prom := telemetry.NewPrometheusRegistry("console")
	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{Prometheus: prom}))
	router.POST("/dispatch", func(c *gin.Context) { c.Status(http.StatusSeeOther) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/dispatch", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(prom.HTTPRequests().WithLabelValues("POST", "/dispatch", "303")))
}
