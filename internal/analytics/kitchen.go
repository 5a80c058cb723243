package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"brigade/internal/models"
)

// KitchenReport is the output of AnalyzeKitchen
type KitchenReport struct {
	StationPerformance []StationPerformance    `json:"station_performance"`
	ItemPrepTimes      []ItemPrepTime          `json:"item_prep_times"`
	Bottlenecks        []Bottleneck            `json:"bottlenecks"`
	RushPeriods        []RushPeriod            `json:"rush_periods"`
	Throughput         *Throughput             `json:"throughput"`
	EfficiencyRatings  []EfficiencyRating      `json:"efficiency_ratings"`
	Recommendations    []KitchenRecommendation `json:"recommendations"`
}

// StationPerformance holds prep-time statistics for one station
type StationPerformance struct {
	Station          string  `json:"station"`
	TotalItems       int     `json:"total_items"`
	LoadPct          float64 `json:"load_pct"`
	AvgMinutes       float64 `json:"avg_minutes"`
	MedianMinutes    float64 `json:"median_minutes"`
	P95Minutes       float64 `json:"p95_minutes"`
	MinMinutes       float64 `json:"min_minutes"`
	MaxMinutes       float64 `json:"max_minutes"`
	StdDev           float64 `json:"std_dev"`
	ConsistencyScore float64 `json:"consistency_score"`
	UniqueItems      int     `json:"unique_items"`
	RecentAvg        float64 `json:"recent_avg"`
	Trend            Trend   `json:"trend"`
	TrendPct         float64 `json:"trend_pct"`
}

// ItemPrepTime holds prep-time statistics and delay risk for one menu item
type ItemPrepTime struct {
	Item            string  `json:"item"`
	Station         string  `json:"station"`
	OrderCount      int     `json:"order_count"`
	AvgMinutes      float64 `json:"avg_minutes"`
	ExpectedMinutes float64 `json:"expected_minutes"`
	EfficiencyPct   float64 `json:"efficiency_pct"`
	StdDev          float64 `json:"std_dev"`
	MinMinutes      float64 `json:"min_minutes"`
	MaxMinutes      float64 `json:"max_minutes"`
	DelayRiskPct    float64 `json:"delay_risk_pct"`
}

// Bottleneck is a station running well above the kitchen-wide average
type Bottleneck struct {
	Station     string   `json:"station"`
	AvgMinutes  float64  `json:"avg_minutes"`
	KitchenAvg  float64  `json:"kitchen_avg"`
	AboveAvgBy  float64  `json:"above_avg_by"`
	ImpactScore float64  `json:"impact_score"`
	Consistency float64  `json:"consistency"`
	Severity    Severity `json:"severity"`
	Trend       Trend    `json:"trend"`
}

// RushPeriod is the kitchen load for one hour of the day
type RushPeriod struct {
	Hour           int     `json:"hour"`
	Label          string  `json:"label"`
	ItemsProcessed int     `json:"items_processed"`
	AvgPrepMinutes float64 `json:"avg_prep_minutes"`
	IsRush         bool    `json:"is_rush"`
	LoadFactor     float64 `json:"load_factor"`
}

// Throughput summarizes order flow through the kitchen
type Throughput struct {
	TotalCompleted          int     `json:"total_completed"`
	OrdersPerDay            float64 `json:"orders_per_day"`
	ItemsPerDay             float64 `json:"items_per_day"`
	AvgOrderCompletionMins  float64 `json:"avg_order_completion_minutes"`
	MedianCompletionMinutes float64 `json:"median_completion_minutes"`
	P95CompletionMinutes    float64 `json:"p95_completion_minutes"`
	AvgPrepMinutes          float64 `json:"avg_prep_minutes"`
	StationsActive          int     `json:"stations_active"`
	CompletionRate          float64 `json:"completion_rate"`
}

// EfficiencyRating grades a station's actual against expected prep time
type EfficiencyRating struct {
	Station       string  `json:"station"`
	EfficiencyPct float64 `json:"efficiency_pct"`
	Rating        string  `json:"rating"`
	ItemsHandled  int     `json:"items_handled"`
}

// KitchenRecommendation is an actionable kitchen finding
type KitchenRecommendation struct {
	Type     string   `json:"type"`
	Station  string   `json:"station"`
	Message  string   `json:"message"`
	Action   string   `json:"action"`
	Priority Severity `json:"priority"`
}

// KitchenSummary is the view the operations dashboard reads
type KitchenSummary struct {
	AvgPrepMinutes  float64  `json:"avg_prep_minutes"`
	CompletionRate  float64  `json:"completion_rate"`
	BottleneckCount int      `json:"bottleneck_count"`
	WorstBottleneck Severity `json:"worst_bottleneck_severity,omitempty"`
	OrdersPerDay    float64  `json:"orders_per_day"`
	StationsActive  int      `json:"stations_active"`
}

// Module implements Report
func (r *KitchenReport) Module() Module { return ModuleKitchen }

// Empty implements Report
func (r *KitchenReport) Empty() bool { return r.Throughput == nil }

// Feed implements Report
func (r *KitchenReport) Feed() []FeedItem {
	feed := make([]FeedItem, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		feed = append(feed, FeedItem{Source: ModuleKitchen, Item: rec.Station, Message: rec.Message, Severity: rec.Priority, Action: rec.Action})
	}
	return feed
}

// Summary returns the throughput view; bottlenecks are ordered by impact so the first is the worst
func (r *KitchenReport) Summary() KitchenSummary {
	if r.Throughput == nil {
		return KitchenSummary{}
	}
	s := KitchenSummary{
		AvgPrepMinutes:  r.Throughput.AvgPrepMinutes,
		CompletionRate:  r.Throughput.CompletionRate,
		BottleneckCount: len(r.Bottlenecks),
		OrdersPerDay:    r.Throughput.OrdersPerDay,
		StationsActive:  r.Throughput.StationsActive,
	}
	if len(r.Bottlenecks) > 0 {
		s.WorstBottleneck = r.Bottlenecks[0].Severity
	}
	return s
}

func emptyKitchenReport() *KitchenReport {
	return &KitchenReport{
		StationPerformance: []StationPerformance{},
		ItemPrepTimes:      []ItemPrepTime{},
		Bottlenecks:        []Bottleneck{},
		RushPeriods:        []RushPeriod{},
		EfficiencyRatings:  []EfficiencyRating{},
		Recommendations:    []KitchenRecommendation{},
	}
}

type stationSample struct {
	name   string
	times  []float64
	recent []float64
	items  map[uint]struct{}
}

type itemSample struct {
	name     string
	station  string
	expected float64
	times    []float64
}

// AnalyzeKitchen computes station, item and throughput statistics from prep records
func AnalyzeKitchen(ds *Dataset, now time.Time, p Policy) *KitchenReport {
	if len(ds.PrepRecords) == 0 {
		return emptyKitchenReport()
	}
	menu := ds.menuIndex()
	recentStart := now.AddDate(0, 0, -p.RecentWindowDays)

	var stations []*stationSample
	stationIdx := map[string]*stationSample{}
	var items []*itemSample
	itemIdx := map[uint]*itemSample{}
	var allTimes []float64
	var hourly [24]struct {
		count int
		total float64
	}
	hoursSeen := map[int]bool{}

	for _, rec := range ds.PrepRecords {
		station := rec.Station
		mi := menu[rec.MenuItemID]
		if station == "" {
			station = models.DefaultPrepStation
			if mi != nil {
				station = mi.Station()
			}
		}

		if rec.StartedAt != nil && rec.ActualMinutes != nil && *rec.ActualMinutes != 0 {
			h := rec.StartedAt.Hour()
			hourly[h].count++
			hourly[h].total += *rec.ActualMinutes
			hoursSeen[h] = true
		}

		if !rec.Measured() {
			continue
		}
		minutes := *rec.ActualMinutes
		allTimes = append(allTimes, minutes)

		ss, ok := stationIdx[station]
		if !ok {
			ss = &stationSample{name: station, items: map[uint]struct{}{}}
			stationIdx[station] = ss
			stations = append(stations, ss)
		}
		ss.times = append(ss.times, minutes)
		if rec.StartedAt != nil && !rec.StartedAt.Before(recentStart) {
			ss.recent = append(ss.recent, minutes)
		}

		if mi == nil {
			continue
		}
		ss.items[mi.ID] = struct{}{}
		is, ok := itemIdx[mi.ID]
		if !ok {
			is = &itemSample{name: mi.Name}
			itemIdx[mi.ID] = is
			items = append(items, is)
		}
		is.times = append(is.times, minutes)
		is.station = station
		is.expected = mi.AvgPrepMinutes
	}

	report := emptyKitchenReport()
	totalMeasured := float64(len(allTimes))
	kitchenAvg := sum(allTimes) / math.Max(totalMeasured, 1)

	for _, ss := range stations {
		report.StationPerformance = append(report.StationPerformance, stationStats(ss, totalMeasured))
	}

	for _, is := range items {
		report.ItemPrepTimes = append(report.ItemPrepTimes, itemStats(is))
	}
	sort.SliceStable(report.ItemPrepTimes, func(i, j int) bool {
		return report.ItemPrepTimes[i].AvgMinutes > report.ItemPrepTimes[j].AvgMinutes
	})

	for _, sp := range report.StationPerformance {
		if sp.AvgMinutes <= kitchenAvg*p.BottleneckFactor {
			continue
		}
		severity := SeverityMedium
		if sp.AvgMinutes > kitchenAvg*1.7 {
			severity = SeverityCritical
		} else if sp.AvgMinutes > kitchenAvg*1.5 {
			severity = SeverityHigh
		}
		report.Bottlenecks = append(report.Bottlenecks, Bottleneck{
			Station:     sp.Station,
			AvgMinutes:  sp.AvgMinutes,
			KitchenAvg:  round1(kitchenAvg),
			AboveAvgBy:  round1(sp.AvgMinutes - kitchenAvg),
			ImpactScore: round2(sp.LoadPct * (sp.AvgMinutes - kitchenAvg) / 100),
			Consistency: sp.ConsistencyScore,
			Severity:    severity,
			Trend:       sp.Trend,
		})
	}
	sort.SliceStable(report.Bottlenecks, func(i, j int) bool {
		return report.Bottlenecks[i].ImpactScore > report.Bottlenecks[j].ImpactScore
	})

	meanHourly := float64(0)
	for _, h := range hourly {
		meanHourly += float64(h.count)
	}
	meanHourly /= math.Max(float64(len(hoursSeen)), 1)
	for hour, h := range hourly {
		if h.count == 0 {
			continue
		}
		report.RushPeriods = append(report.RushPeriods, RushPeriod{
			Hour:           hour,
			Label:          fmt.Sprintf("%02d:00", hour),
			ItemsProcessed: h.count,
			AvgPrepMinutes: round1(h.total / float64(h.count)),
			IsRush:         float64(h.count) > meanHourly*p.RushFactor,
			LoadFactor:     round2(ratio(float64(h.count), meanHourly)),
		})
	}

	report.Throughput = kitchenThroughput(ds.Orders, now, totalMeasured, kitchenAvg, len(stations))

	for _, sp := range report.StationPerformance {
		var effTotal float64
		var n int
		for _, it := range report.ItemPrepTimes {
			if it.Station == sp.Station {
				effTotal += it.EfficiencyPct
				n++
			}
		}
		eff := 100.0
		if n > 0 {
			eff = effTotal / float64(n)
		}
		report.EfficiencyRatings = append(report.EfficiencyRatings, EfficiencyRating{
			Station:       sp.Station,
			EfficiencyPct: round1(eff),
			Rating:        efficiencyRating(eff),
			ItemsHandled:  sp.TotalItems,
		})
	}

	report.Recommendations = kitchenRecommendations(report)

	sort.SliceStable(report.StationPerformance, func(i, j int) bool {
		return report.StationPerformance[i].LoadPct > report.StationPerformance[j].LoadPct
	})
	report.ItemPrepTimes = head(report.ItemPrepTimes, p.TopKitchenItems)
	return report
}

func stationStats(ss *stationSample, totalMeasured float64) StationPerformance {
	times := sortedCopy(ss.times)
	avg := mean(times)
	std := sampleStdDev(times)
	recentAvg := avg
	if len(ss.recent) > 0 {
		recentAvg = mean(ss.recent)
	}
	trendPct := round1((recentAvg - avg) / math.Max(avg, 1) * 100)
	trend := TrendStable
	if trendPct > 10 {
		trend = TrendSlowing
	} else if trendPct < -10 {
		trend = TrendImproving
	}
	return StationPerformance{
		Station:          ss.name,
		TotalItems:       len(times),
		LoadPct:          round1(pct(float64(len(times)), totalMeasured)),
		AvgMinutes:       round1(avg),
		MedianMinutes:    round1(median(times)),
		P95Minutes:       round1(percentile(times, 0.95)),
		MinMinutes:       round1(times[0]),
		MaxMinutes:       round1(times[len(times)-1]),
		StdDev:           round1(std),
		ConsistencyScore: round1(math.Max(0, 100-std*10)),
		UniqueItems:      len(ss.items),
		RecentAvg:        round1(recentAvg),
		Trend:            trend,
		TrendPct:         trendPct,
	}
}

func itemStats(is *itemSample) ItemPrepTime {
	times := sortedCopy(is.times)
	avg := mean(times)
	expected := is.expected
	if expected == 0 {
		expected = avg
	}
	std := sampleStdDev(times)
	var risk float64
	if std > 0 {
		z := (expected - avg) / std
		risk = round1(clamp(50-z*30, 0, 100))
	} else if avg > expected {
		risk = 80
	}
	return ItemPrepTime{
		Item:            is.name,
		Station:         is.station,
		OrderCount:      len(times),
		AvgMinutes:      round1(avg),
		ExpectedMinutes: expected,
		EfficiencyPct:   round1(expected / math.Max(avg, 0.1) * 100),
		StdDev:          round1(std),
		MinMinutes:      round1(times[0]),
		MaxMinutes:      round1(times[len(times)-1]),
		DelayRiskPct:    risk,
	}
}

func kitchenThroughput(orders []models.Order, now time.Time, totalMeasured, kitchenAvg float64, stations int) *Throughput {
	var completed int
	var completion []float64
	var first time.Time
	for _, o := range orders {
		if first.IsZero() || o.CreatedAt.Before(first) {
			first = o.CreatedAt
		}
		if !o.IsCompleted() {
			continue
		}
		completed++
		if o.CompletedAt != nil && !o.CreatedAt.IsZero() {
			completion = append(completion, o.CompletedAt.Sub(o.CreatedAt).Minutes())
		}
	}
	activeDays := 30.0
	if !first.IsZero() {
		activeDays = math.Max(math.Floor(now.Sub(first).Hours()/24), 1)
	}
	sorted := sortedCopy(completion)
	return &Throughput{
		TotalCompleted:          completed,
		OrdersPerDay:            round1(float64(completed) / activeDays),
		ItemsPerDay:             round1(totalMeasured / activeDays),
		AvgOrderCompletionMins:  round1(mean(sorted)),
		MedianCompletionMinutes: round1(median(sorted)),
		P95CompletionMinutes:    round1(percentile(sorted, 0.95)),
		AvgPrepMinutes:          round1(kitchenAvg),
		StationsActive:          stations,
		CompletionRate:          round1(pct(float64(completed), float64(len(orders)))),
	}
}

func efficiencyRating(eff float64) string {
	switch {
	case eff >= 95:
		return "excellent"
	case eff >= 80:
		return "good"
	case eff >= 60:
		return "needs_improvement"
	}
	return "poor"
}

func kitchenRecommendations(r *KitchenReport) []KitchenRecommendation {
	recs := []KitchenRecommendation{}
	for _, bn := range r.Bottlenecks {
		if bn.Severity == SeverityCritical {
			recs = append(recs, KitchenRecommendation{
				Type:     "bottleneck",
				Station:  bn.Station,
				Message:  fmt.Sprintf("CRITICAL: %s is %.1f min above kitchen average. This station alone causes %.1f minutes of systemic delay.", bn.Station, bn.AboveAvgBy, bn.ImpactScore),
				Action:   "Add staff or split station load immediately",
				Priority: SeverityCritical,
			})
		} else if bn.Trend == TrendSlowing {
			recs = append(recs, KitchenRecommendation{
				Type:     "bottleneck",
				Station:  bn.Station,
				Message:  fmt.Sprintf("%s is slowing down and already %.1f min above average. Investigate equipment or staffing issues.", bn.Station, bn.AboveAvgBy),
				Action:   "Audit station workflow",
				Priority: SeverityHigh,
			})
		}
	}

	risky := 0
	for _, it := range r.ItemPrepTimes {
		if it.DelayRiskPct <= 60 {
			continue
		}
		if risky == 3 {
			break
		}
		risky++
		recs = append(recs, KitchenRecommendation{
			Type:     "delay_risk",
			Station:  it.Station,
			Message:  fmt.Sprintf("%s has %.1f%% delay risk (avg %.1f min vs %.1f min expected).", it.Item, it.DelayRiskPct, it.AvgMinutes, it.ExpectedMinutes),
			Action:   "Pre-prep ingredients or adjust expected time",
			Priority: SeverityMedium,
		})
	}

	var peak *RushPeriod
	for i := range r.RushPeriods {
		rp := &r.RushPeriods[i]
		if rp.IsRush && (peak == nil || rp.LoadFactor > peak.LoadFactor) {
			peak = rp
		}
	}
	if peak != nil {
		recs = append(recs, KitchenRecommendation{
			Type:     "staffing",
			Station:  "all",
			Message:  fmt.Sprintf("Peak kitchen load at %s (%.1fx normal volume). Ensure full staffing.", peak.Label, peak.LoadFactor),
			Action:   "Schedule additional staff during rush",
			Priority: SeverityHigh,
		})
	}

	for _, sp := range r.StationPerformance {
		if sp.ConsistencyScore >= 60 {
			continue
		}
		recs = append(recs, KitchenRecommendation{
			Type:     "consistency",
			Station:  sp.Station,
			Message:  fmt.Sprintf("%s has low consistency (score: %.1f). Prep times vary widely, which points to a skill gap or process issue.", sp.Station, sp.ConsistencyScore),
			Action:   "Standardize procedures and train staff",
			Priority: SeverityMedium,
		})
	}

	if r.Throughput != nil && r.Throughput.CompletionRate < 90 {
		recs = append(recs, KitchenRecommendation{
			Type:     "completion",
			Station:  "all",
			Message:  fmt.Sprintf("Order completion rate is %.1f%%, below the 90%% target.", r.Throughput.CompletionRate),
			Action:   "Investigate cancellation/abandonment causes",
			Priority: SeverityHigh,
		})
	}
	return recs
}
