package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sourcegraph/conc"
)

// Health categories of the dashboard breakdown
const (
	CategoryMenu         = "Menu Health"
	CategoryRevenueTrend = "Revenue Trend"
	CategoryKitchen      = "Kitchen Efficiency"
	CategoryInventory    = "Inventory Status"
	CategoryReservations = "Reservation Reliability"
)

// neutralScore is the sub-score of a module that had no data
const neutralScore = 50

// Reports holds one result per analyzer
type Reports struct {
	Inventory    *InventoryReport
	Kitchen      *KitchenReport
	Menu         *MenuReport
	Reservations *ReservationReport
	Revenue      *RevenueReport
}

// All returns the reports in feed order
func (r Reports) All() []Report {
	return []Report{r.Inventory, r.Kitchen, r.Menu, r.Reservations, r.Revenue}
}

// Dashboard is the cross-domain operations view
type Dashboard struct {
	RestaurantID    uint             `json:"restaurant_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	HealthScore     int              `json:"health_score"`
	HealthBreakdown []HealthCategory `json:"health_breakdown"`
	QuickStats      QuickStats       `json:"quick_stats"`
	Alerts          []FeedItem       `json:"alerts"`
	Risks           []Risk           `json:"risks"`
	Opportunities   []Opportunity    `json:"opportunities"`
	Modules         ModuleSummaries  `json:"ai_modules"`
}

// HealthCategory is one weighted sub-score of the health score
type HealthCategory struct {
	Category string  `json:"category"`
	Score    int     `json:"score"`
	Weight   float64 `json:"weight"`
	Detail   string  `json:"detail"`
}

// QuickStats is the same-day snapshot. Money fields are minor units.
type QuickStats struct {
	TodayOrders      int     `json:"today_orders"`
	TodayRevenue     int64   `json:"today_revenue"`
	YesterdayRevenue int64   `json:"yesterday_revenue"`
	DayOverDayChange float64 `json:"day_over_day_change"`
	PendingOrders    int     `json:"pending_orders"`
	MenuItems        int     `json:"menu_items"`
	TotalRevenue30d  int64   `json:"total_revenue_30d"`
	AvgOrderValue    int64   `json:"avg_order_value"`
	ActiveAlerts     int     `json:"active_alerts"`
}

// Risk is a rule-based threat to today's operations
type Risk struct {
	Risk     string   `json:"risk"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Opportunity is a rule-based revenue opportunity
type Opportunity struct {
	Opportunity string   `json:"opportunity"`
	Potential   Severity `json:"potential"`
	Detail      string   `json:"detail"`
}

// ModuleSummaries carries each analyzer's summary view
type ModuleSummaries struct {
	Menu         MenuSummary        `json:"menu_engineering"`
	Revenue      RevenueSummary     `json:"revenue"`
	Kitchen      KitchenSummary     `json:"kitchen"`
	Inventory    InventorySummary   `json:"inventory"`
	Reservations ReservationSummary `json:"reservations"`
}

// TimeFunc wraps one analyzer run, e.g. to record its duration
type TimeFunc func(m Module, run func())

// RunAnalyzers runs the five analyzers concurrently and waits for all of them.
// A nil timer runs them untimed.
func RunAnalyzers(ds *Dataset, now time.Time, p Policy, timer TimeFunc) Reports {
	if timer == nil {
		timer = func(_ Module, run func()) { run() }
	}
	var r Reports
	var wg conc.WaitGroup
	wg.Go(func() { timer(ModuleInventory, func() { r.Inventory = AnalyzeInventory(ds, now, p) }) })
	wg.Go(func() { timer(ModuleKitchen, func() { r.Kitchen = AnalyzeKitchen(ds, now, p) }) })
	wg.Go(func() { timer(ModuleMenu, func() { r.Menu = AnalyzeMenu(ds, now, p) }) })
	wg.Go(func() { timer(ModuleReservations, func() { r.Reservations = AnalyzeReservations(ds, now, p) }) })
	wg.Go(func() { timer(ModuleRevenue, func() { r.Revenue = AnalyzeRevenue(ds, now, p) }) })
	wg.Wait()
	return r
}

// BuildDashboard runs every analyzer and aggregates the results
func BuildDashboard(ds *Dataset, now time.Time, p Policy) *Dashboard {
	return Aggregate(ds, RunAnalyzers(ds, now, p, nil), now, p)
}

// Aggregate combines analyzer reports into the operations dashboard
func Aggregate(ds *Dataset, r Reports, now time.Time, p Policy) *Dashboard {
	breakdown := healthBreakdown(r, p)
	var weighted, totalWeight float64
	for _, c := range breakdown {
		weighted += float64(c.Score) * c.Weight
		totalWeight += c.Weight
	}

	alerts := aggregateFeed(r, p.AlertLimits)
	stats := quickStats(ds, now)
	stats.MenuItems = r.Menu.Summary.TotalItems
	stats.TotalRevenue30d = r.Revenue.Trends.TotalRevenue
	stats.AvgOrderValue = r.Revenue.Trends.AvgOrderValue
	stats.ActiveAlerts = len(alerts)

	top := head(alerts, p.TopAlerts)

	return &Dashboard{
		RestaurantID:    ds.RestaurantID,
		GeneratedAt:     now,
		HealthScore:     int(math.RoundToEven(ratio(weighted, totalWeight))),
		HealthBreakdown: breakdown,
		QuickStats:      stats,
		Alerts:          top,
		Risks:           risks(r),
		Opportunities:   opportunities(r, p.Currency),
		Modules: ModuleSummaries{
			Menu:         r.Menu.Summary,
			Revenue:      r.Revenue.Summary(),
			Kitchen:      r.Kitchen.Summary(),
			Inventory:    r.Inventory.Summary,
			Reservations: r.Reservations.Summary(),
		},
	}
}

func score(v float64) int {
	return int(math.RoundToEven(clamp(v, 0, 100)))
}

func healthBreakdown(r Reports, p Policy) []HealthCategory {
	noData := func(category string, weight float64) HealthCategory {
		return HealthCategory{Category: category, Score: neutralScore, Weight: weight, Detail: "No data"}
	}
	out := make([]HealthCategory, 0, 5)

	if r.Menu.Empty() {
		out = append(out, noData(CategoryMenu, p.Weights.Menu))
	} else {
		s := r.Menu.Summary
		total := math.Max(float64(s.TotalItems), 1)
		stars := float64(s.Stars) / total * 100
		dogs := float64(s.Dogs) / total * 100
		foodCost := math.Max(0, 100-math.Max(0, s.AvgFoodCostPct-25)*3)
		out = append(out, HealthCategory{
			Category: CategoryMenu,
			Score:    score(stars*1.5 + foodCost*0.5 - dogs),
			Weight:   p.Weights.Menu,
			Detail:   fmt.Sprintf("%d Stars, %d Dogs, %.1f%% avg food cost", s.Stars, s.Dogs, s.AvgFoodCostPct),
		})
	}

	if r.Revenue.Empty() {
		out = append(out, noData(CategoryRevenueTrend, p.Weights.Revenue))
	} else {
		t := r.Revenue.Trends
		out = append(out, HealthCategory{
			Category: CategoryRevenueTrend,
			Score:    score(50 + t.WeekOverWeekGrowth*2),
			Weight:   p.Weights.Revenue,
			Detail:   fmt.Sprintf("%+.1f%% WoW growth, %s is peak day", t.WeekOverWeekGrowth, t.PeakDay),
		})
	}

	if r.Kitchen.Empty() {
		out = append(out, noData(CategoryKitchen, p.Weights.Kitchen))
	} else {
		tp := r.Kitchen.Throughput
		out = append(out, HealthCategory{
			Category: CategoryKitchen,
			Score:    score(tp.CompletionRate*0.6 + math.Max(0, 40-(tp.AvgPrepMinutes-8)*5)),
			Weight:   p.Weights.Kitchen,
			Detail: fmt.Sprintf("%.1f min avg prep, %d bottleneck(s), %.1f%% completion",
				tp.AvgPrepMinutes, len(r.Kitchen.Bottlenecks), tp.CompletionRate),
		})
	}

	if r.Inventory.Empty() {
		out = append(out, noData(CategoryInventory, p.Weights.Inventory))
	} else {
		s := r.Inventory.Summary
		out = append(out, HealthCategory{
			Category: CategoryInventory,
			Score:    score(100 - float64(s.CriticalItems)*25 - float64(s.LowStockItems)*10 - float64(s.HighSpoilageItems)*5),
			Weight:   p.Weights.Inventory,
			Detail:   fmt.Sprintf("%d critical, %d low, %d spoilage risk", s.CriticalItems, s.LowStockItems, s.HighSpoilageItems),
		})
	}

	if r.Reservations.Empty() {
		out = append(out, noData(CategoryReservations, p.Weights.Reservations))
	} else {
		ns := r.Reservations.NoShowAnalysis
		lost := float64(r.Reservations.RevenueImpact.EstimatedRevenueLost)
		out = append(out, HealthCategory{
			Category: CategoryReservations,
			Score:    score(ns.CompletionRate - ns.NoShowRate),
			Weight:   p.Weights.Reservations,
			Detail: fmt.Sprintf("%.1f%% no-show, %.1f%% completion, ~%s lost",
				ns.NoShowRate, ns.CompletionRate, formatMoney(lost, p.Currency)),
		})
	}
	return out
}

// aggregateFeed takes each source's leading items up to its limit and orders them by severity.
// Revenue anomalies are included only when limits.Revenue is positive.
func aggregateFeed(r Reports, limits AlertLimits) []FeedItem {
	var feed []FeedItem
	feed = append(feed, head(r.Inventory.Feed(), limits.Inventory)...)
	feed = append(feed, head(r.Kitchen.Feed(), limits.Kitchen)...)
	feed = append(feed, head(r.Menu.Feed(), limits.Menu)...)
	feed = append(feed, head(r.Reservations.Feed(), limits.Reservations)...)
	feed = append(feed, head(r.Revenue.Feed(), limits.Revenue)...)
	if feed == nil {
		feed = []FeedItem{}
	}
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Severity.Rank() < feed[j].Severity.Rank() })
	return feed
}

func quickStats(ds *Dataset, now time.Time) QuickStats {
	today := dayKey(now)
	yesterday := dayKey(now.AddDate(0, 0, -1))
	var s QuickStats
	for _, o := range ds.Orders {
		day := dayKey(o.CreatedAt)
		if day == today {
			s.TodayOrders++
		}
		if o.IsOpen() {
			s.PendingOrders++
		}
		if o.IsCancelled() {
			continue
		}
		switch day {
		case today:
			s.TodayRevenue += o.Total
		case yesterday:
			s.YesterdayRevenue += o.Total
		}
	}
	if s.YesterdayRevenue != 0 {
		s.DayOverDayChange = round1(pct(float64(s.TodayRevenue-s.YesterdayRevenue), float64(s.YesterdayRevenue)))
	}
	return s
}

func risks(r Reports) []Risk {
	out := []Risk{}
	if n := r.Inventory.Summary.CriticalItems; n > 0 {
		out = append(out, Risk{
			Risk:     "Stock-out risk",
			Severity: SeverityCritical,
			Detail:   fmt.Sprintf("%d items out of stock, menu items may be unavailable", n),
		})
	}
	if r.Reservations.NoShowAnalysis.NoShowRate > 20 {
		out = append(out, Risk{
			Risk:     "High no-show rate",
			Severity: SeverityHigh,
			Detail:   "Over 20% of reservations are no-shows, revenue is leaking",
		})
	}
	if n := len(r.Kitchen.Bottlenecks); n > 0 {
		sev := r.Kitchen.Bottlenecks[0].Severity
		if sev == "" {
			sev = SeverityMedium
		}
		out = append(out, Risk{
			Risk:     "Kitchen bottleneck",
			Severity: sev,
			Detail:   fmt.Sprintf("%d station(s) above average, orders could be delayed", n),
		})
	}
	if dogs := r.Menu.Summary.Dogs; dogs > 3 {
		out = append(out, Risk{
			Risk:     "Menu dead weight",
			Severity: SeverityMedium,
			Detail:   fmt.Sprintf("%d Dog items on menu with low popularity and low profit", dogs),
		})
	}
	return out
}

func opportunities(r Reports, currency string) []Opportunity {
	out := []Opportunity{}
	if puzzles := r.Menu.Summary.Puzzles; puzzles > 0 {
		out = append(out, Opportunity{
			Opportunity: "Promote high-margin items",
			Potential:   SeverityHigh,
			Detail:      fmt.Sprintf("%d Puzzle items have high margins but low sales, promote them to convert to Stars", puzzles),
		})
	}
	if lost := r.Reservations.RevenueImpact.EstimatedRevenueLost; lost > 0 {
		out = append(out, Opportunity{
			Opportunity: "Recover no-show revenue",
			Potential:   SeverityHigh,
			Detail:      fmt.Sprintf("~%s lost to no-shows, deposits could recover 60%%+", formatMoney(float64(lost), currency)),
		})
	}
	if ob := r.Reservations.Overbooking; ob.RecommendedRate > 5 {
		out = append(out, Opportunity{
			Opportunity: "Implement controlled overbooking",
			Potential:   SeverityMedium,
			Detail: fmt.Sprintf("Accept %.1f%% more bookings to recover ~%s/month",
				ob.RecommendedRate, formatMoney(float64(ob.PotentialMonthlyRecovery), currency)),
		})
	}
	if growth := r.Revenue.Trends.WeekOverWeekGrowth; growth > 10 {
		out = append(out, Opportunity{
			Opportunity: "Capitalize on growth momentum",
			Potential:   SeverityHigh,
			Detail:      fmt.Sprintf("%.1f%% WoW growth, make sure inventory and staffing scale with it", growth),
		})
	}
	return out
}
