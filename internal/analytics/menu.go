package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"brigade/internal/models"
)

// Classification is a menu engineering quadrant
type Classification string

const (
	ClassStar      Classification = "Star"
	ClassPlowhorse Classification = "Plowhorse"
	ClassPuzzle    Classification = "Puzzle"
	ClassDog       Classification = "Dog"
)

// Peak periods of the day for a menu item
const (
	PeriodLunch  = "lunch"
	PeriodDinner = "dinner"
	PeriodAllDay = "all-day"
)

const uncategorized = "Uncategorized"

// MenuReport is the output of AnalyzeMenu
type MenuReport struct {
	Matrix              []MenuItemAnalysis    `json:"matrix"`
	CategoryPerformance []CategoryPerformance `json:"category_performance"`
	Pareto              Pareto                `json:"pareto"`
	Recommendations     []MenuRecommendation  `json:"recommendations"`
	Summary             MenuSummary           `json:"summary"`
	UpsellPairs         []UpsellPair          `json:"upsell_pairs"`
}

// MenuItemAnalysis is one row of the engineering matrix. Money fields are minor units.
type MenuItemAnalysis struct {
	ID             uint           `json:"id"`
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	Price          int64          `json:"price"`
	CostPrice      int64          `json:"cost_price"`
	Margin         int64          `json:"margin"`
	MarginPct      float64        `json:"margin_pct"`
	FoodCostPct    float64        `json:"food_cost_pct"`
	QtySold        int            `json:"qty_sold"`
	Revenue        int64          `json:"revenue"`
	Contribution   int64          `json:"contribution"`
	PopularityPct  float64        `json:"popularity_pct"`
	SellThrough    float64        `json:"sell_through_per_day"`
	Classification Classification `json:"classification"`
	Trend          Trend          `json:"trend"`
	TrendPct       float64        `json:"trend_pct"`
	PeakPeriod     string         `json:"peak_period"`
	LunchOrders    int            `json:"lunch_orders"`
	DinnerOrders   int            `json:"dinner_orders"`
}

// CategoryPerformance aggregates the matrix per menu category
type CategoryPerformance struct {
	Category          string  `json:"category"`
	ItemCount         int     `json:"item_count"`
	TotalQtySold      int     `json:"total_qty_sold"`
	TotalRevenue      int64   `json:"total_revenue"`
	RevenueSharePct   float64 `json:"revenue_share_pct"`
	TotalContribution int64   `json:"total_contribution"`
	AvgFoodCostPct    float64 `json:"avg_food_cost_pct"`
	AvgMarginPct      float64 `json:"avg_margin_pct"`
}

// Pareto describes revenue concentration across items
type Pareto struct {
	Items              []ParetoItem `json:"items"`
	ItemsFor80Pct      int          `json:"items_for_80_pct"`
	ConcentrationRatio float64      `json:"concentration_ratio"`
}

// ParetoItem is an item's rank and cumulative revenue share
type ParetoItem struct {
	Rank          int     `json:"rank"`
	Name          string  `json:"name"`
	Revenue       int64   `json:"revenue"`
	CumulativePct float64 `json:"cumulative_pct"`
}

// MenuRecommendation is an actionable menu finding
type MenuRecommendation struct {
	Item     string   `json:"item"`
	Action   string   `json:"action"`
	Reason   string   `json:"reason"`
	Priority Severity `json:"priority"`
	Impact   string   `json:"impact"`
}

// MenuSummary is the aggregate view the operations dashboard reads
type MenuSummary struct {
	TotalItems            int     `json:"total_items"`
	TotalRevenue          int64   `json:"total_revenue"`
	AvgMarginPct          float64 `json:"avg_margin_pct"`
	AvgFoodCostPct        float64 `json:"avg_food_cost_pct"`
	MenuOptimizationScore int     `json:"menu_optimization_score"`
	Stars                 int     `json:"stars"`
	Plowhorses            int     `json:"plowhorses"`
	Puzzles               int     `json:"puzzles"`
	Dogs                  int     `json:"dogs"`
	RisingItems           int     `json:"rising_items"`
	FallingItems          int     `json:"falling_items"`
	TotalDaysAnalyzed     int     `json:"total_days_analyzed"`
}

// UpsellPair is an item pair frequently ordered together
type UpsellPair struct {
	ItemA        string  `json:"item_a"`
	ItemB        string  `json:"item_b"`
	CoOccurrence int     `json:"co_occurrence"`
	SupportPct   float64 `json:"support_pct"`
	Lift         float64 `json:"lift"`
	Strength     string  `json:"strength"`
}

// Module implements Report
func (r *MenuReport) Module() Module { return ModuleMenu }

// Empty implements Report
func (r *MenuReport) Empty() bool { return r.Summary.TotalItems == 0 }

// Feed implements Report
func (r *MenuReport) Feed() []FeedItem {
	feed := make([]FeedItem, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		feed = append(feed, FeedItem{Source: ModuleMenu, Item: rec.Item, Message: rec.Reason, Severity: rec.Priority, Action: rec.Action})
	}
	return feed
}

func emptyMenuReport() *MenuReport {
	return &MenuReport{
		Matrix:              []MenuItemAnalysis{},
		CategoryPerformance: []CategoryPerformance{},
		Pareto:              Pareto{Items: []ParetoItem{}},
		Recommendations:     []MenuRecommendation{},
		UpsellPairs:         []UpsellPair{},
	}
}

type itemSales struct {
	qty, recent, older, lunch, dinner int
	revenue                           int64
}

// AnalyzeMenu builds the menu engineering matrix from non-cancelled orders
// placed within the usage window
func AnalyzeMenu(ds *Dataset, now time.Time, p Policy) *MenuReport {
	if len(ds.MenuItems) == 0 {
		return emptyMenuReport()
	}
	recentStart := now.AddDate(0, 0, -p.RecentWindowDays)
	windowStart := now.AddDate(0, 0, -p.UsageWindowDays)
	olderDays := math.Max(float64(p.UsageWindowDays-p.RecentWindowDays), 1)

	orders := ordersSince(ds.activeOrders(), windowStart)
	sales := map[uint]*itemSales{}
	totalQty := 0
	for _, o := range orders {
		hour := o.CreatedAt.Hour()
		for _, line := range o.Items {
			s, ok := sales[line.MenuItemID]
			if !ok {
				s = &itemSales{}
				sales[line.MenuItemID] = s
			}
			s.qty += line.Quantity
			s.revenue += line.LineTotal()
			totalQty += line.Quantity
			switch {
			case !o.CreatedAt.Before(recentStart):
				s.recent += line.Quantity
			case !o.CreatedAt.Before(windowStart):
				s.older += line.Quantity
			}
			if hour >= 11 && hour < 15 {
				s.lunch += line.Quantity
			} else if hour >= 18 && hour < 23 {
				s.dinner += line.Quantity
			}
		}
	}
	if len(sales) == 0 {
		totalQty = 1
	}

	n := float64(len(ds.MenuItems))
	avgPopularity := float64(totalQty) / n
	var marginSum float64
	for i := range ds.MenuItems {
		marginSum += float64(ds.MenuItems[i].Margin())
	}
	avgMargin := marginSum / n

	totalDays := 30
	var first time.Time
	for _, o := range orders {
		if first.IsZero() || o.CreatedAt.Before(first) {
			first = o.CreatedAt
		}
	}
	if !first.IsZero() {
		totalDays = int(math.Max(math.Floor(now.Sub(first).Hours()/24), 1))
	}

	report := emptyMenuReport()
	for i := range ds.MenuItems {
		mi := &ds.MenuItems[i]
		s := sales[mi.ID]
		if s == nil {
			s = &itemSales{}
		}
		margin := mi.Margin()
		price := math.Max(float64(mi.Price), 1)

		popular := float64(s.qty) >= avgPopularity
		profitable := float64(margin) >= avgMargin
		class := ClassDog
		switch {
		case popular && profitable:
			class = ClassStar
		case popular:
			class = ClassPlowhorse
		case profitable:
			class = ClassPuzzle
		}

		recentDaily := float64(s.recent) / float64(p.RecentWindowDays)
		var olderDaily, trendPct float64
		if s.older > 0 {
			olderDaily = float64(s.older) / olderDays
			trendPct = round1((recentDaily - olderDaily) / olderDaily * 100)
		}
		trend := TrendStable
		if trendPct > 15 {
			trend = TrendRising
		} else if trendPct < -15 {
			trend = TrendFalling
		}

		peak := PeriodAllDay
		if float64(s.lunch) > float64(s.dinner)*1.5 {
			peak = PeriodLunch
		} else if float64(s.dinner) > float64(s.lunch)*1.5 {
			peak = PeriodDinner
		}

		report.Matrix = append(report.Matrix, MenuItemAnalysis{
			ID:             mi.ID,
			Name:           mi.Name,
			Category:       mi.Category,
			Price:          mi.Price,
			CostPrice:      mi.CostPrice,
			Margin:         margin,
			MarginPct:      round1(float64(margin) / price * 100),
			FoodCostPct:    round1(float64(mi.CostPrice) / price * 100),
			QtySold:        s.qty,
			Revenue:        s.revenue,
			Contribution:   int64(s.qty) * margin,
			PopularityPct:  round1(pct(float64(s.qty), float64(totalQty))),
			SellThrough:    round2(float64(s.qty) / float64(totalDays)),
			Classification: class,
			Trend:          trend,
			TrendPct:       trendPct,
			PeakPeriod:     peak,
			LunchOrders:    s.lunch,
			DinnerOrders:   s.dinner,
		})
	}

	report.CategoryPerformance = categoryPerformance(report.Matrix)
	report.Pareto = revenuePareto(report.Matrix)
	report.Recommendations = menuRecommendations(report.Matrix, report.CategoryPerformance, p.Currency)
	report.Summary = menuSummary(report.Matrix, totalDays)
	report.UpsellPairs = upsellPairs(ds, orders, p.UpsellTopN)

	sort.SliceStable(report.Matrix, func(i, j int) bool {
		return report.Matrix[i].Revenue > report.Matrix[j].Revenue
	})
	return report
}

func menuSummary(matrix []MenuItemAnalysis, totalDays int) MenuSummary {
	s := MenuSummary{TotalItems: len(matrix), TotalDaysAnalyzed: totalDays}
	var foodCost, marginPct float64
	for _, m := range matrix {
		s.TotalRevenue += m.Revenue
		foodCost += m.FoodCostPct
		marginPct += m.MarginPct
		switch m.Classification {
		case ClassStar:
			s.Stars++
		case ClassPlowhorse:
			s.Plowhorses++
		case ClassPuzzle:
			s.Puzzles++
		case ClassDog:
			s.Dogs++
		}
		switch m.Trend {
		case TrendRising:
			s.RisingItems++
		case TrendFalling:
			s.FallingItems++
		}
	}
	n := float64(len(matrix))
	s.AvgFoodCostPct = round1(ratio(foodCost, n))
	s.AvgMarginPct = round1(ratio(marginPct, n))
	starsShare := ratio(float64(s.Stars), n)
	dogsShare := ratio(float64(s.Dogs), n)
	score := starsShare*130 + (1-dogsShare)*70 - s.AvgFoodCostPct*0.5 + float64(s.RisingItems)*3
	s.MenuOptimizationScore = int(math.Round(clamp(score, 0, 100)))
	return s
}

func categoryPerformance(matrix []MenuItemAnalysis) []CategoryPerformance {
	type acc struct {
		perf               CategoryPerformance
		foodCost, marginPc float64
	}
	var order []string
	cats := map[string]*acc{}
	var totalRevenue int64
	for _, m := range matrix {
		name := m.Category
		if name == "" {
			name = uncategorized
		}
		a, ok := cats[name]
		if !ok {
			a = &acc{perf: CategoryPerformance{Category: name}}
			cats[name] = a
			order = append(order, name)
		}
		a.perf.ItemCount++
		a.perf.TotalQtySold += m.QtySold
		a.perf.TotalRevenue += m.Revenue
		a.perf.TotalContribution += m.Contribution
		a.foodCost += m.FoodCostPct
		a.marginPc += m.MarginPct
		totalRevenue += m.Revenue
	}
	if totalRevenue == 0 {
		totalRevenue = 1
	}
	out := make([]CategoryPerformance, 0, len(order))
	for _, name := range order {
		a := cats[name]
		a.perf.RevenueSharePct = round1(float64(a.perf.TotalRevenue) / float64(totalRevenue) * 100)
		a.perf.AvgFoodCostPct = round1(ratio(a.foodCost, float64(a.perf.ItemCount)))
		a.perf.AvgMarginPct = round1(ratio(a.marginPc, float64(a.perf.ItemCount)))
		out = append(out, a.perf)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })
	return out
}

func revenuePareto(matrix []MenuItemAnalysis) Pareto {
	sorted := make([]MenuItemAnalysis, len(matrix))
	copy(sorted, matrix)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Revenue > sorted[j].Revenue })

	var total int64
	for _, m := range sorted {
		total += m.Revenue
	}
	if total == 0 {
		total = 1
	}

	pareto := Pareto{Items: make([]ParetoItem, 0, len(sorted))}
	var cumulative int64
	for i, m := range sorted {
		cumulative += m.Revenue
		item := ParetoItem{
			Rank:          i + 1,
			Name:          m.Name,
			Revenue:       m.Revenue,
			CumulativePct: round1(float64(cumulative) / float64(total) * 100),
		}
		if pareto.ItemsFor80Pct == 0 && item.CumulativePct >= 80 {
			pareto.ItemsFor80Pct = item.Rank
		}
		pareto.Items = append(pareto.Items, item)
	}
	if pareto.ItemsFor80Pct == 0 {
		pareto.ItemsFor80Pct = len(pareto.Items)
	}
	pareto.ConcentrationRatio = round1(pct(float64(pareto.ItemsFor80Pct), float64(len(pareto.Items))))
	return pareto
}

func menuRecommendations(matrix []MenuItemAnalysis, cats []CategoryPerformance, currency string) []MenuRecommendation {
	recs := []MenuRecommendation{}
	for _, m := range matrix {
		switch m.Classification {
		case ClassDog:
			if m.Trend == TrendFalling {
				recs = append(recs, MenuRecommendation{
					Item:     m.Name,
					Action:   "Remove from menu",
					Reason:   fmt.Sprintf("Low popularity (%d sold), low margin (%.1f%%), and declining trend (%.1f%%)", m.QtySold, m.MarginPct, m.TrendPct),
					Priority: SeverityHigh,
					Impact:   "Frees menu space for higher-performing items",
				})
			} else {
				recs = append(recs, MenuRecommendation{
					Item:     m.Name,
					Action:   "Reinvent or rebrand",
					Reason:   fmt.Sprintf("Low performance (%d sold, %.1f%% margin) but stable; consider a recipe refresh or repositioning", m.QtySold, m.MarginPct),
					Priority: SeverityMedium,
					Impact:   "Could convert Dog to Puzzle with better positioning",
				})
			}
		case ClassPuzzle:
			recs = append(recs, MenuRecommendation{
				Item:     m.Name,
				Action:   "Promote prominently",
				Reason:   fmt.Sprintf("High margin (%.1f%%) but only %d sold. Feature as chef's special, add to upsell prompts.", m.MarginPct, m.QtySold),
				Priority: SeverityHigh,
				Impact:   fmt.Sprintf("Each additional sale adds %s profit", formatMoney(float64(m.Margin), currency)),
			})
		case ClassPlowhorse:
			recs = append(recs, MenuRecommendation{
				Item:     m.Name,
				Action:   "Optimize cost or increase price",
				Reason:   fmt.Sprintf("Popular (%d sold) but food cost is %.1f%%; reduce portion cost or raise price 5-10%%", m.QtySold, m.FoodCostPct),
				Priority: SeverityMedium,
				Impact:   fmt.Sprintf("10%% price increase adds ~%s revenue", formatMoney(float64(m.Revenue)*0.1, currency)),
			})
		}

		if m.FoodCostPct > 35 {
			priority := SeverityMedium
			if m.FoodCostPct > 45 {
				priority = SeverityHigh
			}
			recs = append(recs, MenuRecommendation{
				Item:     m.Name,
				Action:   "Reduce food cost",
				Reason:   fmt.Sprintf("Food cost at %.1f%% exceeds 35%% target. Review suppliers, portion sizes, or ingredient substitutions.", m.FoodCostPct),
				Priority: priority,
				Impact:   "Reducing to 30% adds significant profit margin",
			})
		}

		if m.Trend == TrendRising && (m.Classification == ClassStar || m.Classification == ClassPuzzle) {
			recs = append(recs, MenuRecommendation{
				Item:     m.Name,
				Action:   "Capitalize on momentum",
				Reason:   fmt.Sprintf("Trending up %.1f%%; ensure ingredients are stocked and consider featuring in marketing.", m.TrendPct),
				Priority: SeverityMedium,
				Impact:   "Ride the trend to maximize revenue capture",
			})
		}
	}

	for _, c := range cats {
		if c.AvgFoodCostPct <= 40 {
			continue
		}
		recs = append(recs, MenuRecommendation{
			Item:     "Category: " + c.Category,
			Action:   "Audit category food costs",
			Reason:   fmt.Sprintf("Average food cost %.1f%% across %d items, above healthy threshold", c.AvgFoodCostPct, c.ItemCount),
			Priority: SeverityHigh,
			Impact:   fmt.Sprintf("Category generates %.1f%% of revenue", c.RevenueSharePct),
		})
	}
	return recs
}

type itemPair struct{ a, b uint }

// UpsellPairs mines item pairs that co-occur on non-cancelled orders and returns the
// topN by co-occurrence count. Ties keep first-seen order.
func UpsellPairs(ds *Dataset, topN int) []UpsellPair {
	return upsellPairs(ds, ds.activeOrders(), topN)
}

func upsellPairs(ds *Dataset, orders []models.Order, topN int) []UpsellPair {
	if len(orders) == 0 {
		return []UpsellPair{}
	}

	freq := map[uint]int{}
	counts := map[itemPair]int{}
	var seen []itemPair
	for _, o := range orders {
		ids := distinctItemIDs(o.Items)
		for _, id := range ids {
			freq[id]++
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pair := itemPair{ids[i], ids[j]}
				if counts[pair] == 0 {
					seen = append(seen, pair)
				}
				counts[pair]++
			}
		}
	}
	sort.SliceStable(seen, func(i, j int) bool { return counts[seen[i]] > counts[seen[j]] })
	seen = head(seen, topN)

	names := map[uint]string{}
	for _, mi := range ds.MenuItems {
		names[mi.ID] = mi.Name
	}
	nameOf := func(id uint) string {
		if name, ok := names[id]; ok {
			return name
		}
		return "Unknown"
	}

	total := float64(len(orders))
	pairs := make([]UpsellPair, 0, len(seen))
	for _, pair := range seen {
		count := counts[pair]
		expected := (float64(freq[pair.a]) / total) * (float64(freq[pair.b]) / total) * total
		lift := round2(float64(count) / math.Max(expected, 0.01))
		pairs = append(pairs, UpsellPair{
			ItemA:        nameOf(pair.a),
			ItemB:        nameOf(pair.b),
			CoOccurrence: count,
			SupportPct:   round1(float64(count) / total * 100),
			Lift:         lift,
			Strength:     liftStrength(lift),
		})
	}
	return pairs
}

// liftStrength grades association strength. A lift of exactly 1 means no association,
// yet anything under 1.2 is reported as weak rather than negative.
func liftStrength(lift float64) string {
	switch {
	case lift >= 2:
		return "strong"
	case lift >= 1.2:
		return "moderate"
	}
	return "weak"
}
