package monitoring

import (
	"sort"
	"sync"
	"time"

	"brigade/internal/analytics"
)

// Monitor keeps the latest dashboard per restaurant and analyzer run counters
type Monitor struct {
	dashboards   map[uint]*analytics.Dashboard
	analyzerRuns map[analytics.Module]int
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// Snapshot summarizes the last dashboard computed for a restaurant
type Snapshot struct {
	RestaurantID uint      `json:"restaurant_id"`
	HealthScore  int       `json:"health_score"`
	ActiveAlerts int       `json:"active_alerts"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Status is the process-level view served on the status endpoint
type Status struct {
	UptimeSeconds float64                  `json:"uptime_seconds"`
	AnalyzerRuns  map[analytics.Module]int `json:"analyzer_runs"`
	Restaurants   []Snapshot               `json:"restaurants"`
}

var _ analytics.Recorder = (*Monitor)(nil)

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		dashboards:   make(map[uint]*analytics.Dashboard),
		analyzerRuns: make(map[analytics.Module]int),
		startTime:    time.Now(),
	}
}

// ObserveAnalyzer counts an analyzer run
func (m *Monitor) ObserveAnalyzer(mod analytics.Module, _ time.Duration) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.analyzerRuns[mod]++
}

// RecordDashboard stores d as the restaurant's latest dashboard
func (m *Monitor) RecordDashboard(d *analytics.Dashboard) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.dashboards[d.RestaurantID] = d
}

// Latest returns the last dashboard recorded for a restaurant
func (m *Monitor) Latest(restaurantID uint) (*analytics.Dashboard, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	d, ok := m.dashboards[restaurantID]
	return d, ok
}

// Status returns a copy of the current state
func (m *Monitor) Status() Status {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	runs := make(map[analytics.Module]int, len(m.analyzerRuns))
	for k, v := range m.analyzerRuns {
		runs[k] = v
	}

	snapshots := make([]Snapshot, 0, len(m.dashboards))
	for id, d := range m.dashboards {
		snapshots = append(snapshots, Snapshot{
			RestaurantID: id,
			HealthScore:  d.HealthScore,
			ActiveAlerts: d.QuickStats.ActiveAlerts,
			GeneratedAt:  d.GeneratedAt,
		})
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].RestaurantID < snapshots[j].RestaurantID })

	return Status{
		UptimeSeconds: time.Since(m.startTime).Seconds(),
		AnalyzerRuns:  runs,
		Restaurants:   snapshots,
	}
}

// Reset clears all snapshots and counters
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.dashboards = make(map[uint]*analytics.Dashboard)
	m.analyzerRuns = make(map[analytics.Module]int)
}
