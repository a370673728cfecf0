package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New("storefront")

	m.ObserveRequest(http.MethodPost, "/api/order/create", http.StatusOK, 20*time.Millisecond)
	m.IncOrdersPlaced()
	m.IncStockConflict()
	m.IncStockConflict()

	require.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/order/create", "200")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.OrdersPlacedTotal))
	require.Equal(t, float64(2), testutil.ToFloat64(m.StockConflictsTotal))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "storefront_orders_placed_total 1")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.IncOrdersPlaced()
		m.IncStockConflict()
		m.IncEventPublishFailure()
		m.IncRateLimited()
	})
}
