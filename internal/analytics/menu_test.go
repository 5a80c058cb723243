package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brigade/internal/models"
)

func TestAnalyzeMenu_Classification(t *testing.T) {
	ds := emptyDataset()
	ds.MenuItems = []models.MenuItem{
		{ID: 1, Name: "Steak", Category: "Mains", Price: 1000, CostPrice: 300},
		{ID: 2, Name: "Soup", Category: "Starters", Price: 500, CostPrice: 400},
	}
	ds.Orders = []models.Order{
		order(1, daysAgo(2, 19), models.OrderStatusServed, 11000, line(1, 10, 1000), line(2, 2, 500)),
		order(2, daysAgo(2, 20), models.OrderStatusCancelled, 50000, line(2, 100, 500)),
	}

	report := AnalyzeMenu(ds, testNow, DefaultPolicy())
	require.Len(t, report.Matrix, 2)

	steak := report.Matrix[0]
	assert.Equal(t, "Steak", steak.Name)
	assert.Equal(t, ClassStar, steak.Classification)
	assert.Equal(t, 10, steak.QtySold)
	assert.Equal(t, int64(10000), steak.Revenue)
	assert.Equal(t, int64(7000), steak.Contribution)
	assert.Equal(t, 30.0, steak.FoodCostPct)
	assert.Equal(t, PeriodDinner, steak.PeakPeriod)

	soup := report.Matrix[1]
	assert.Equal(t, ClassDog, soup.Classification)
	assert.Equal(t, 80.0, soup.FoodCostPct)

	assert.Equal(t, 1, report.Summary.Stars)
	assert.Equal(t, 1, report.Summary.Dogs)

	var soupActions []string
	for _, rec := range report.Recommendations {
		if rec.Item == "Soup" {
			soupActions = append(soupActions, rec.Action)
		}
	}
	assert.Contains(t, soupActions, "Reduce food cost")
}

func TestAnalyzeMenu_ParetoBoundary(t *testing.T) {
	ds := emptyDataset()
	revenues := []int64{400, 5000, 1500, 2500, 600}
	var lines []models.OrderItem
	for i, rev := range revenues {
		id := uint(i + 1)
		ds.MenuItems = append(ds.MenuItems, models.MenuItem{ID: id, Name: string(rune('A' + i)), Price: rev, CostPrice: rev / 2})
		lines = append(lines, line(id, 1, rev))
	}
	ds.Orders = []models.Order{order(1, daysAgo(1, 13), models.OrderStatusServed, 10000, lines...)}

	report := AnalyzeMenu(ds, testNow, DefaultPolicy())
	pareto := report.Pareto
	require.Len(t, pareto.Items, len(revenues))
	assert.Equal(t, 3, pareto.ItemsFor80Pct)
	assert.Equal(t, 60.0, pareto.ConcentrationRatio)

	k := pareto.ItemsFor80Pct
	assert.GreaterOrEqual(t, pareto.Items[k-1].CumulativePct, 80.0)
	assert.Less(t, pareto.Items[k-2].CumulativePct, 80.0)
	for i := 1; i < len(pareto.Items); i++ {
		assert.GreaterOrEqual(t, pareto.Items[i-1].Revenue, pareto.Items[i].Revenue)
	}
}

func TestUpsellPairs_LiftAtOneIsWeak(t *testing.T) {
	ds := emptyDataset()
	ds.MenuItems = []models.MenuItem{{ID: 1, Name: "Burger"}, {ID: 2, Name: "Fries"}}
	for i := uint(1); i <= 10; i++ {
		ds.Orders = append(ds.Orders, order(i, daysAgo(1, 12), models.OrderStatusServed, 1500, line(1, 1, 1000), line(2, 1, 500)))
	}

	pairs := UpsellPairs(ds, 10)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Burger", pairs[0].ItemA)
	assert.Equal(t, "Fries", pairs[0].ItemB)
	assert.Equal(t, 10, pairs[0].CoOccurrence)
	assert.Equal(t, 100.0, pairs[0].SupportPct)
	assert.Equal(t, 1.0, pairs[0].Lift)
	assert.Equal(t, "weak", pairs[0].Strength)
}

func TestLiftStrength(t *testing.T) {
	assert.Equal(t, "weak", liftStrength(1.19))
	assert.Equal(t, "moderate", liftStrength(1.2))
	assert.Equal(t, "moderate", liftStrength(1.99))
	assert.Equal(t, "strong", liftStrength(2))
}

func TestAnalyzeMenu_Empty(t *testing.T) {
	report := AnalyzeMenu(emptyDataset(), testNow, DefaultPolicy())
	assert.True(t, report.Empty())
	assert.Empty(t, report.Matrix)
	assert.NotNil(t, report.UpsellPairs)
	assert.Empty(t, report.Feed())
}

func TestAnalyzeMenu_IgnoresSalesOutsideUsageWindow(t *testing.T) {
	ds := emptyDataset()
	ds.MenuItems = []models.MenuItem{
		{ID: 1, Name: "Burger", Price: 1000, CostPrice: 400},
		{ID: 2, Name: "Fries", Price: 500, CostPrice: 100},
	}
	ds.Orders = []models.Order{
		order(1, daysAgo(40, 12), models.OrderStatusServed, 55000, line(1, 50, 1000), line(2, 10, 500)),
		order(2, daysAgo(2, 12), models.OrderStatusServed, 4000, line(1, 4, 1000)),
	}

	report := AnalyzeMenu(ds, testNow, DefaultPolicy())
	require.Len(t, report.Matrix, 2)

	burger := report.Matrix[0]
	assert.Equal(t, "Burger", burger.Name)
	assert.Equal(t, 4, burger.QtySold)
	assert.Equal(t, int64(4000), burger.Revenue)
	assert.Equal(t, 2.0, burger.SellThrough)

	fries := report.Matrix[1]
	assert.Equal(t, 0, fries.QtySold)
	assert.Equal(t, ClassStar, burger.Classification)
	assert.Equal(t, ClassDog, fries.Classification)
	assert.Equal(t, 2, report.Summary.TotalDaysAnalyzed)
	assert.Empty(t, report.UpsellPairs)
}

func TestMenuSummary_OptimizationScore(t *testing.T) {
	item := func(class Classification, foodCost float64, trend Trend) MenuItemAnalysis {
		return MenuItemAnalysis{Classification: class, FoodCostPct: foodCost, Trend: trend}
	}
	cases := []struct {
		name   string
		matrix []MenuItemAnalysis
		want   int
	}{
		{
			name:   "all stars clamps at 100",
			matrix: []MenuItemAnalysis{item(ClassStar, 30, TrendStable), item(ClassStar, 30, TrendStable)},
			want:   100,
		},
		{
			name: "mixed menu",
			matrix: []MenuItemAnalysis{
				item(ClassStar, 40, TrendRising),
				item(ClassPlowhorse, 40, TrendStable),
				item(ClassDog, 40, TrendStable),
				item(ClassDog, 40, TrendStable),
			},
			// 0.25*130 + 0.5*70 - 40*0.5 + 1*3 = 50.5
			want: 51,
		},
		{
			name:   "all dogs with costly food clamps at 0",
			matrix: []MenuItemAnalysis{item(ClassDog, 90, TrendFalling), item(ClassDog, 90, TrendStable)},
			want:   0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, menuSummary(tc.matrix, 30).MenuOptimizationScore)
		})
	}
}
