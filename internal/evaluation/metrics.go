package evaluation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brigade/internal/analytics"
)

// MetricsCollector handles metrics collection and reporting
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

var _ analytics.Recorder = (*MetricsCollector)(nil)

// NewMetricsCollector creates a collector with its own registry
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	analyzerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyzer_duration_seconds",
			Help:    "Time taken by one analyzer run",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"analyzer"},
	)

	healthGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "health_score",
			Help: "Latest overall health score per restaurant",
		},
		[]string{"restaurant"},
	)

	categoryGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "category_score",
			Help: "Latest health sub-score per restaurant and category",
		},
		[]string{"restaurant", "category"},
	)

	alertCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_emitted_total",
			Help: "Alerts surfaced on computed dashboards",
		},
		[]string{"source", "severity"},
	)

	metrics := map[string]prometheus.Collector{
		"analyzer_duration": analyzerDuration,
		"health":            healthGauge,
		"category":          categoryGauge,
		"alerts":            alertCounter,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}
	registry.MustRegister(collectors.NewGoCollector())

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
	}
}

// Registry exposes the collector's registry
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler serves the registry in the prometheus exposition format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{Registry: mc.registry})
}

// ObserveAnalyzer records how long one analyzer took
func (mc *MetricsCollector) ObserveAnalyzer(m analytics.Module, d time.Duration) {
	if histogram, ok := mc.metrics["analyzer_duration"].(*prometheus.HistogramVec); ok {
		histogram.WithLabelValues(string(m)).Observe(d.Seconds())
	}
}

// RecordDashboard records the scores and alerts of a computed dashboard
func (mc *MetricsCollector) RecordDashboard(d *analytics.Dashboard) {
	restaurant := strconv.FormatUint(uint64(d.RestaurantID), 10)

	if gauge, ok := mc.metrics["health"].(*prometheus.GaugeVec); ok {
		gauge.WithLabelValues(restaurant).Set(float64(d.HealthScore))
	}
	if gauge, ok := mc.metrics["category"].(*prometheus.GaugeVec); ok {
		for _, c := range d.HealthBreakdown {
			gauge.WithLabelValues(restaurant, c.Category).Set(float64(c.Score))
		}
	}
	if counter, ok := mc.metrics["alerts"].(*prometheus.CounterVec); ok {
		for _, a := range d.Alerts {
			counter.WithLabelValues(string(a.Source), string(a.Severity)).Inc()
		}
	}
}
