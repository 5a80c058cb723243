package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brigade/internal/models"
)

func emptyReports() Reports {
	return Reports{
		Inventory:    emptyInventoryReport(),
		Kitchen:      emptyKitchenReport(),
		Menu:         emptyMenuReport(),
		Reservations: emptyReservationReport(),
		Revenue:      emptyRevenueReport(),
	}
}

func TestBuildDashboard_NoDataIsNeutral(t *testing.T) {
	d := BuildDashboard(emptyDataset(), testNow, DefaultPolicy())

	assert.Equal(t, 50, d.HealthScore)
	require.Len(t, d.HealthBreakdown, 5)
	var weight float64
	for _, c := range d.HealthBreakdown {
		assert.Equal(t, 50, c.Score, c.Category)
		assert.Equal(t, "No data", c.Detail)
		weight += c.Weight
	}
	assert.Equal(t, 100.0, weight)
	assert.Empty(t, d.Alerts)
	assert.NotNil(t, d.Alerts)
	assert.Empty(t, d.Risks)
	assert.Empty(t, d.Opportunities)
	assert.Equal(t, QuickStats{}, d.QuickStats)
}

func TestBuildDashboard_Idempotent(t *testing.T) {
	ds := reservationDataset()
	ds.MenuItems = kitchenDataset().MenuItems
	ds.PrepRecords = kitchenDataset().PrepRecords
	ds.Inventory = []models.InventoryItem{{ID: 1, Name: "Tomatoes", Quantity: 10, Unit: "kg", CostPerUnit: 100, LowStockThreshold: 5}}
	ds.Movements = sixtyOut(1)

	first, err := json.Marshal(BuildDashboard(ds, testNow, DefaultPolicy()))
	require.NoError(t, err)
	second, err := json.Marshal(BuildDashboard(ds, testNow, DefaultPolicy()))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestBuildDashboard_ReservationScore(t *testing.T) {
	d := BuildDashboard(reservationDataset(), testNow, DefaultPolicy())

	byCategory := map[string]HealthCategory{}
	for _, c := range d.HealthBreakdown {
		byCategory[c.Category] = c
	}
	assert.Equal(t, 60, byCategory[CategoryReservations].Score)
	assert.Equal(t, "20.0% no-show, 80.0% completion, ~40 KES lost", byCategory[CategoryReservations].Detail)
	assert.Equal(t, 50, byCategory[CategoryMenu].Score)

	// menu 50*20, revenue 50*25, kitchen 50*20, inventory 50*15, reservations 60*20
	assert.Equal(t, 52, d.HealthScore)
	assert.Equal(t, 20.0, d.Modules.Reservations.NoShowRate)
}

func TestHealthBreakdown_ClampsScores(t *testing.T) {
	r := emptyReports()
	r.Menu.Summary = MenuSummary{TotalItems: 1, Dogs: 1, AvgFoodCostPct: 300}
	r.Revenue.Trends.TotalOrders = 1
	r.Revenue.Trends.WeekOverWeekGrowth = 500
	r.Kitchen.Throughput = &Throughput{CompletionRate: 100}
	r.Inventory.Summary = InventorySummary{TotalItems: 10, CriticalItems: 10}
	r.Reservations.NoShowAnalysis = NoShowAnalysis{TotalReservations: 4, NoShowRate: 100}

	scores := map[string]int{}
	for _, c := range healthBreakdown(r, DefaultPolicy()) {
		assert.GreaterOrEqual(t, c.Score, 0, c.Category)
		assert.LessOrEqual(t, c.Score, 100, c.Category)
		scores[c.Category] = c.Score
	}
	assert.Equal(t, 0, scores[CategoryMenu])
	assert.Equal(t, 100, scores[CategoryRevenueTrend])
	assert.Equal(t, 100, scores[CategoryKitchen])
	assert.Equal(t, 0, scores[CategoryInventory])
	assert.Equal(t, 0, scores[CategoryReservations])
}

func TestAggregateFeed_CapsAndRanks(t *testing.T) {
	r := emptyReports()
	for i := 0; i < 6; i++ {
		r.Inventory.Alerts = append(r.Inventory.Alerts, InventoryAlert{Item: "inv", Message: "low", Severity: SeverityWarning})
	}
	// beyond the inventory cap, so it never reaches the feed
	r.Inventory.Alerts = append(r.Inventory.Alerts, InventoryAlert{Item: "late", Severity: SeverityCritical})
	for i := 0; i < 4; i++ {
		r.Kitchen.Recommendations = append(r.Kitchen.Recommendations, KitchenRecommendation{Station: "grill", Priority: SeverityLow})
	}
	r.Menu.Recommendations = []MenuRecommendation{{Item: "Soup", Priority: SeverityMedium}}
	r.Reservations.Recommendations = []ReservationAdvice{{Message: "deposits", Priority: SeverityCritical}}

	feed := aggregateFeed(r, DefaultPolicy().AlertLimits)
	require.Len(t, feed, 10)

	assert.Equal(t, ModuleReservations, feed[0].Source)
	assert.Equal(t, "", feed[0].Item)
	for i := 1; i <= 5; i++ {
		assert.Equal(t, ModuleInventory, feed[i].Source)
	}
	assert.Equal(t, ModuleMenu, feed[6].Source)
	for _, f := range feed[7:] {
		assert.Equal(t, ModuleKitchen, f.Source)
	}
	for i := 1; i < len(feed); i++ {
		assert.LessOrEqual(t, feed[i-1].Severity.Rank(), feed[i].Severity.Rank())
	}
	for _, f := range feed {
		assert.NotEqual(t, "late", f.Item)
	}
}

func TestAggregate_TruncatesAlertsButCountsAll(t *testing.T) {
	r := emptyReports()
	for i := 0; i < 5; i++ {
		r.Inventory.Alerts = append(r.Inventory.Alerts, InventoryAlert{Severity: SeverityWarning})
	}
	for i := 0; i < 3; i++ {
		r.Kitchen.Recommendations = append(r.Kitchen.Recommendations, KitchenRecommendation{Priority: SeverityHigh})
		r.Menu.Recommendations = append(r.Menu.Recommendations, MenuRecommendation{Priority: SeverityMedium})
	}

	d := Aggregate(emptyDataset(), r, testNow, DefaultPolicy())
	assert.Len(t, d.Alerts, 8)
	assert.Equal(t, 11, d.QuickStats.ActiveAlerts)
}

func TestRisksAndOpportunities(t *testing.T) {
	r := emptyReports()
	r.Inventory.Summary.CriticalItems = 2
	r.Reservations.NoShowAnalysis.NoShowRate = 25
	r.Reservations.RevenueImpact.EstimatedRevenueLost = 250000
	r.Reservations.Overbooking = Overbooking{RecommendedRate: 17.5, PotentialMonthlyRecovery: 120000}
	r.Kitchen.Bottlenecks = []Bottleneck{{Station: "grill", Severity: SeverityCritical}, {Station: "fry", Severity: SeverityMedium}}
	r.Menu.Summary = MenuSummary{TotalItems: 10, Dogs: 4, Puzzles: 2}
	r.Revenue.Trends.WeekOverWeekGrowth = 12.5

	got := risks(r)
	require.Len(t, got, 4)
	assert.Equal(t, Risk{Risk: "Stock-out risk", Severity: SeverityCritical, Detail: "2 items out of stock, menu items may be unavailable"}, got[0])
	assert.Equal(t, SeverityHigh, got[1].Severity)
	assert.Equal(t, "Kitchen bottleneck", got[2].Risk)
	assert.Equal(t, SeverityCritical, got[2].Severity)
	assert.Equal(t, SeverityMedium, got[3].Severity)

	opps := opportunities(r, "KES")
	require.Len(t, opps, 4)
	assert.Equal(t, "Promote high-margin items", opps[0].Opportunity)
	assert.Equal(t, "~2,500 KES lost to no-shows, deposits could recover 60%+", opps[1].Detail)
	assert.Equal(t, "Accept 17.5% more bookings to recover ~1,200 KES/month", opps[2].Detail)
	assert.Equal(t, SeverityMedium, opps[2].Potential)
	assert.Equal(t, "Capitalize on growth momentum", opps[3].Opportunity)
}

func TestQuickStats(t *testing.T) {
	ds := emptyDataset()
	ds.Orders = []models.Order{
		order(1, daysAgo(0, 9), models.OrderStatusServed, 3000),
		order(2, daysAgo(0, 10), models.OrderStatusPending, 1000),
		order(3, daysAgo(0, 11), models.OrderStatusCancelled, 8000),
		order(4, daysAgo(1, 12), models.OrderStatusServed, 2000),
		order(5, daysAgo(2, 12), models.OrderStatusPrep, 500),
	}

	s := quickStats(ds, testNow)
	assert.Equal(t, 3, s.TodayOrders)
	assert.Equal(t, int64(4000), s.TodayRevenue)
	assert.Equal(t, int64(2000), s.YesterdayRevenue)
	assert.Equal(t, 100.0, s.DayOverDayChange)
	assert.Equal(t, 2, s.PendingOrders)

	ds.Orders = ds.Orders[:3]
	assert.Equal(t, 0.0, quickStats(ds, testNow).DayOverDayChange)
}

func TestAggregateFeed_RevenueAnomaliesOptIn(t *testing.T) {
	r := emptyReports()
	r.Revenue.Anomalies = []RevenueAnomaly{
		{Date: "2025-03-09", Type: "spike", DeviationPct: 250},
		{Date: "2025-03-10", Type: "dip", DeviationPct: -60},
		{Date: "2025-03-11", Type: "spike", DeviationPct: 120},
	}
	r.Kitchen.Recommendations = []KitchenRecommendation{{Station: "grill", Priority: SeverityHigh}}

	limits := DefaultPolicy().AlertLimits
	for _, f := range aggregateFeed(r, limits) {
		assert.NotEqual(t, ModuleRevenue, f.Source)
	}

	limits.Revenue = 2
	feed := aggregateFeed(r, limits)
	require.Len(t, feed, 3)
	assert.Equal(t, ModuleKitchen, feed[0].Source)
	assert.Equal(t, ModuleRevenue, feed[1].Source)
	assert.Equal(t, "2025-03-09", feed[1].Item)
	assert.Equal(t, SeverityInfo, feed[1].Severity)
	assert.Equal(t, "2025-03-10", feed[2].Item)
}

func TestBuildDashboard_NegativeLimitsYieldNothing(t *testing.T) {
	ds := reservationDataset()
	ds.MenuItems = kitchenDataset().MenuItems
	ds.PrepRecords = kitchenDataset().PrepRecords
	ds.Inventory = []models.InventoryItem{{ID: 1, Name: "Tomatoes", Quantity: 1, Unit: "kg", CostPerUnit: 100, LowStockThreshold: 5}}
	ds.Movements = sixtyOut(1)

	p := DefaultPolicy()
	p.TopAlerts = -1
	p.UpsellTopN = -1
	p.TopKitchenItems = -1
	p.ForecastDays = -1
	p.AlertLimits = AlertLimits{Inventory: -1, Kitchen: -1, Menu: -1, Reservations: -1, Revenue: -1}

	var d *Dashboard
	require.NotPanics(t, func() { d = BuildDashboard(ds, testNow, p) })
	assert.Empty(t, d.Alerts)
	assert.NotNil(t, d.Alerts)

	reports := RunAnalyzers(ds, testNow, p, nil)
	assert.Empty(t, reports.Kitchen.ItemPrepTimes)
	assert.Empty(t, reports.Menu.UpsellPairs)
	assert.Empty(t, reports.Revenue.Forecast)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	tests := []struct {
		name   string
		mutate func(p *Policy)
	}{
		{"zero usage window", func(p *Policy) { p.UsageWindowDays = 0 }},
		{"zero recent window", func(p *Policy) { p.RecentWindowDays = 0 }},
		{"negative top alerts", func(p *Policy) { p.TopAlerts = -1 }},
		{"negative upsell top n", func(p *Policy) { p.UpsellTopN = -1 }},
		{"negative top kitchen items", func(p *Policy) { p.TopKitchenItems = -1 }},
		{"negative forecast days", func(p *Policy) { p.ForecastDays = -1 }},
		{"negative revenue limit", func(p *Policy) { p.AlertLimits.Revenue = -1 }},
		{"zero weights", func(p *Policy) { p.Weights = HealthWeights{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
