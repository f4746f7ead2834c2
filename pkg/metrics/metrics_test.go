package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, g prometheus.Gatherer) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(g).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestServerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := NewServerMetrics(reg, "orders")
	server.Requests.WithLabelValues("create_order", "201").Inc()
	server.LatencyMS.WithLabelValues("create_order").Observe(12)

	body := scrape(t, reg)
	assert.Contains(t, body, `storefront_orders_http_requests_total{handler="create_order",status="201"} 1`)
	assert.Contains(t, body, `storefront_orders_http_request_duration_ms_count{handler="create_order"} 1`)
}
