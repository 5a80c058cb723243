package evaluation

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brigade/internal/analytics"
)

func TestNewMetricsCollector(t *testing.T) {
	collector := NewMetricsCollector()

	assert.NotNil(t, collector.Registry())
	assert.Len(t, collector.metrics, 4)
}

func TestObserveAnalyzer(t *testing.T) {
	collector := NewMetricsCollector()

	collector.ObserveAnalyzer(analytics.ModuleMenu, 3*time.Millisecond)
	collector.ObserveAnalyzer(analytics.ModuleMenu, 5*time.Millisecond)
	collector.ObserveAnalyzer(analytics.ModuleKitchen, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(collector.metrics["analyzer_duration"]))
}

func TestRecordDashboard(t *testing.T) {
	collector := NewMetricsCollector()
	dash := &analytics.Dashboard{
		RestaurantID: 12,
		HealthScore:  64,
		HealthBreakdown: []analytics.HealthCategory{
			{Category: "Menu Health", Score: 70},
			{Category: "Revenue Trend", Score: 55},
		},
		Alerts: []analytics.FeedItem{
			{Source: analytics.ModuleInventory, Severity: analytics.SeverityCritical},
			{Source: analytics.ModuleInventory, Severity: analytics.SeverityCritical},
			{Source: analytics.ModuleKitchen, Severity: analytics.SeverityHigh},
		},
	}

	collector.RecordDashboard(dash)
	collector.RecordDashboard(dash)

	health := collector.metrics["health"].(*prometheus.GaugeVec)
	assert.Equal(t, 64.0, testutil.ToFloat64(health.WithLabelValues("12")))

	category := collector.metrics["category"].(*prometheus.GaugeVec)
	assert.Equal(t, 55.0, testutil.ToFloat64(category.WithLabelValues("12", "Revenue Trend")))

	alerts := collector.metrics["alerts"].(*prometheus.CounterVec)
	assert.Equal(t, 4.0, testutil.ToFloat64(alerts.WithLabelValues("inventory", "critical")))
	assert.Equal(t, 2.0, testutil.ToFloat64(alerts.WithLabelValues("kitchen", "high")))
}

func TestHandler(t *testing.T) {
	collector := NewMetricsCollector()
	collector.RecordDashboard(&analytics.Dashboard{RestaurantID: 1, HealthScore: 50})

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `health_score{restaurant="1"} 50`)
}
