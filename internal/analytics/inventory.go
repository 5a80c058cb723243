package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"brigade/internal/models"
)

// StockStatus classifies an item's stock position
type StockStatus string

const (
	StockCritical StockStatus = "critical"
	StockLow      StockStatus = "low"
	StockReorder  StockStatus = "reorder"
	StockOK       StockStatus = "ok"
)

func (s StockStatus) priority() int {
	switch s {
	case StockCritical:
		return 0
	case StockLow:
		return 1
	case StockReorder:
		return 2
	case StockOK:
		return 3
	}
	return 4
}

// Velocity classifies how fast an item is consumed
type Velocity string

const (
	VelocityFast   Velocity = "fast"
	VelocityMedium Velocity = "medium"
	VelocitySlow   Velocity = "slow"
)

// ABCClass is the Pareto tier of an item by monthly spend
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

const noUsageDepletion = "N/A (no usage)"

// InventoryReport is the output of AnalyzeInventory
type InventoryReport struct {
	Predictions   []InventoryPrediction  `json:"predictions"`
	Alerts        []InventoryAlert       `json:"alerts"`
	Summary       InventorySummary       `json:"summary"`
	CategoryStats InventoryCategoryStats `json:"category_stats"`
	Heatmap       []HeatmapCell          `json:"heatmap"`
}

// InventoryPrediction is the per-item forecast
type InventoryPrediction struct {
	ID                  uint        `json:"id"`
	Name                string      `json:"name"`
	Unit                string      `json:"unit"`
	CurrentStock        float64     `json:"current_stock"`
	CurrentValue        float64     `json:"current_value"`
	CostPerUnit         float64     `json:"cost_per_unit"`
	LowStockThreshold   int         `json:"low_stock_threshold"`
	Status              StockStatus `json:"status"`
	DailyUsageAvg       float64     `json:"daily_usage_avg"`
	DailyUsageRecent    float64     `json:"daily_usage_recent_7d"`
	ConsumptionTrend    Trend       `json:"consumption_trend"`
	ConsumptionTrendPct float64     `json:"consumption_trend_pct"`
	Velocity            Velocity    `json:"velocity"`
	TotalConsumed       float64     `json:"total_consumed_30d"`
	TotalRestocked      float64     `json:"total_restocked_30d"`
	PeakUsageDay        string      `json:"peak_usage_day"`
	DayOfWeekPattern    []DayUsage  `json:"dow_pattern"`
	DaysUntilDepletion  *float64    `json:"days_until_depletion"`
	DepletionDate       string      `json:"depletion_date"`
	ReorderPoint        float64     `json:"reorder_point"`
	OptimalOrderQty     float64     `json:"optimal_order_qty"`
	SafetyStockLevel    float64     `json:"safety_stock_level"`
	LeadTimeDays        float64     `json:"lead_time_days"`
	SpoilageRisk        float64     `json:"spoilage_risk"`
	SpoilageWindow      string      `json:"spoilage_window,omitempty"`
	WastePct            float64     `json:"waste_pct"`
	WasteQty            float64     `json:"waste_qty_30d"`
	MonthlySpend        float64     `json:"monthly_spend"`
	ABCClass            ABCClass    `json:"abc_class"`
}

// DayUsage is consumption attributed to one weekday
type DayUsage struct {
	Day   string  `json:"day"`
	Usage float64 `json:"usage"`
}

// InventoryAlert flags an item needing attention
type InventoryAlert struct {
	Item     string   `json:"item"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Action   string   `json:"action"`
}

// InventorySummary is the aggregate view the operations dashboard reads
type InventorySummary struct {
	TotalItems          int          `json:"total_items"`
	TotalInventoryValue float64      `json:"total_inventory_value"`
	TotalMonthlySpend   float64      `json:"total_monthly_spend"`
	CriticalItems       int          `json:"critical_items"`
	LowStockItems       int          `json:"low_stock_items"`
	ReorderItems        int          `json:"reorder_items"`
	OKItems             int          `json:"ok_items"`
	HighSpoilageItems   int          `json:"high_spoilage_items"`
	FastMovers          int          `json:"fast_movers"`
	SlowMovers          int          `json:"slow_movers"`
	AlertsCount         int          `json:"alerts_count"`
	ABCBreakdown        ABCBreakdown `json:"abc_breakdown"`
}

// ABCBreakdown counts items per class
type ABCBreakdown struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
}

// InventoryCategoryStats groups predictions by class, velocity and status
type InventoryCategoryStats struct {
	ByABC      map[ABCClass]ClassStats    `json:"by_abc"`
	ByVelocity map[Velocity]VelocityStats `json:"by_velocity"`
	ByStatus   map[StockStatus]int        `json:"by_status"`
}

// ClassStats totals one ABC class
type ClassStats struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
	Spend float64 `json:"spend"`
}

// VelocityStats lists up to five example items of a velocity class
type VelocityStats struct {
	Count int      `json:"count"`
	Items []string `json:"items"`
}

// HeatmapCell is one item's 0-100 stock health
type HeatmapCell struct {
	Name     string      `json:"name"`
	Health   int         `json:"health"`
	Status   StockStatus `json:"status"`
	ABCClass ABCClass    `json:"abc_class"`
}

// Module implements Report
func (r *InventoryReport) Module() Module { return ModuleInventory }

// Empty implements Report
func (r *InventoryReport) Empty() bool { return r.Summary.TotalItems == 0 }

// Feed implements Report
func (r *InventoryReport) Feed() []FeedItem {
	feed := make([]FeedItem, 0, len(r.Alerts))
	for _, a := range r.Alerts {
		feed = append(feed, FeedItem{Source: ModuleInventory, Item: a.Item, Message: a.Message, Severity: a.Severity, Action: a.Action})
	}
	return feed
}

func emptyInventoryReport() *InventoryReport {
	return &InventoryReport{
		Predictions: []InventoryPrediction{},
		Alerts:      []InventoryAlert{},
		CategoryStats: InventoryCategoryStats{
			ByABC:      map[ABCClass]ClassStats{},
			ByVelocity: map[Velocity]VelocityStats{},
			ByStatus:   map[StockStatus]int{},
		},
		Heatmap: []HeatmapCell{},
	}
}

// AnalyzeInventory forecasts depletion, reorder needs and spoilage for every inventory item
func AnalyzeInventory(ds *Dataset, now time.Time, p Policy) *InventoryReport {
	if len(ds.Inventory) == 0 {
		return emptyInventoryReport()
	}

	windowStart := now.AddDate(0, 0, -p.UsageWindowDays)
	recentStart := now.AddDate(0, 0, -p.RecentWindowDays)

	byItem := make(map[uint][]models.StockMovement)
	for _, m := range ds.Movements {
		if m.CreatedAt.Before(windowStart) {
			continue
		}
		byItem[m.InventoryItemID] = append(byItem[m.InventoryItemID], m)
	}

	report := emptyInventoryReport()
	var totalValue, totalSpend float64
	for _, item := range ds.Inventory {
		pred, alerts := predictItem(item, byItem[item.ID], now, recentStart, p)
		report.Predictions = append(report.Predictions, pred)
		report.Alerts = append(report.Alerts, alerts...)
		totalValue += pred.CurrentValue
		totalSpend += pred.MonthlySpend
	}

	report.Predictions = classifyABC(report.Predictions, p)

	s := &report.Summary
	s.TotalItems = len(report.Predictions)
	s.TotalInventoryValue = round2(totalValue)
	s.TotalMonthlySpend = round2(totalSpend)
	for _, pred := range report.Predictions {
		switch pred.Status {
		case StockCritical:
			s.CriticalItems++
		case StockLow:
			s.LowStockItems++
		case StockReorder:
			s.ReorderItems++
		case StockOK:
			s.OKItems++
		}
		if pred.SpoilageRisk >= 70 {
			s.HighSpoilageItems++
		}
		switch pred.Velocity {
		case VelocityFast:
			s.FastMovers++
		case VelocitySlow:
			s.SlowMovers++
		}
		switch pred.ABCClass {
		case ClassA:
			s.ABCBreakdown.A++
		case ClassB:
			s.ABCBreakdown.B++
		default:
			s.ABCBreakdown.C++
		}
	}

	sort.SliceStable(report.Predictions, func(i, j int) bool {
		a, b := report.Predictions[i], report.Predictions[j]
		if a.Status.priority() != b.Status.priority() {
			return a.Status.priority() < b.Status.priority()
		}
		return depletionSortKey(a) < depletionSortKey(b)
	})
	sort.SliceStable(report.Alerts, func(i, j int) bool {
		return alertRank(report.Alerts[i].Severity) < alertRank(report.Alerts[j].Severity)
	})
	s.AlertsCount = len(report.Alerts)

	report.CategoryStats = inventoryCategoryStats(report.Predictions)
	report.Heatmap = stockHeatmap(report.Predictions)
	return report
}

func depletionSortKey(p InventoryPrediction) float64 {
	if p.DaysUntilDepletion == nil || *p.DaysUntilDepletion == 0 {
		return 9999
	}
	return *p.DaysUntilDepletion
}

func alertRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

func predictItem(item models.InventoryItem, movements []models.StockMovement, now, recentStart time.Time, p Policy) (InventoryPrediction, []InventoryAlert) {
	var totalOut, totalIn, recentOut, olderOut, waste float64
	var dow [7]float64
	for _, m := range movements {
		switch m.Type {
		case models.MovementOut:
			totalOut += m.Quantity
			if m.CreatedAt.Before(recentStart) {
				olderOut += m.Quantity
			} else {
				recentOut += m.Quantity
			}
			if m.IsWaste() {
				waste += m.Quantity
			}
			dow[weekdayIndex(m.CreatedAt)] += m.Quantity
		case models.MovementIn:
			totalIn += m.Quantity
		}
	}

	daysTracked := math.Max(float64(p.UsageWindowDays), 1)
	olderDays := math.Max(float64(p.UsageWindowDays-p.RecentWindowDays), 1)
	dailyUsage := totalOut / daysTracked

	recentDaily := dailyUsage
	if recentOut > 0 {
		recentDaily = recentOut / float64(p.RecentWindowDays)
	}
	olderDaily := dailyUsage
	if olderOut > 0 {
		olderDaily = olderOut / olderDays
	}

	var trendPct float64
	if olderDaily > 0 {
		trendPct = round1((recentDaily - olderDaily) / olderDaily * 100)
	}
	trend := TrendStable
	if trendPct > 10 {
		trend = TrendAccelerating
	} else if trendPct < -10 {
		trend = TrendDecelerating
	}

	adjusted := dailyUsage
	if recentDaily > 0 {
		adjusted = recentDaily
	}

	var daysLeft *float64
	depletionDate := noUsageDepletion
	if adjusted > 0 {
		d := round1(item.Quantity / adjusted)
		daysLeft = &d
		depletionDate = now.Add(time.Duration(d * 24 * float64(time.Hour))).Format("2006-01-02")
	}

	var spoilage float64
	if item.ExpiryDays > 0 && daysLeft != nil {
		expiry := float64(item.ExpiryDays)
		spoilage = round1(clamp((1-adjusted*expiry/math.Max(item.Quantity, 0.01))*100, 0, 100))
		if *daysLeft > expiry {
			spoilage = math.Max(spoilage, 80)
		}
	}
	var spoilageWindow string
	if item.ExpiryDays > 0 && spoilage > 50 {
		spoilageWindow = fmt.Sprintf("Use within %d days or risk waste", item.ExpiryDays)
	}

	reorderPoint := adjusted * (p.LeadTimeDays + p.SafetyStockDays)

	unitCost := item.CostPerUnit
	if unitCost == 0 {
		unitCost = 1
	}
	annualDemand := adjusted * 365
	var eoq float64
	if annualDemand > 0 {
		holding := math.Max(unitCost*p.HoldingCostRate, 0.01)
		eoq = round1(math.Sqrt(2 * annualDemand * p.OrderCost / holding))
	}

	status := StockOK
	switch {
	case item.Quantity <= 0:
		status = StockCritical
	case item.Quantity <= float64(item.LowStockThreshold):
		status = StockLow
	case item.Quantity <= reorderPoint:
		status = StockReorder
	}

	// The baseline here is the 30-day average itself, so fast and slow are only
	// reachable through float edge cases. Kept as-is pending product direction.
	baseline := totalOut / daysTracked
	velocity := VelocityMedium
	if dailyUsage >= baseline*1.3 {
		velocity = VelocityFast
	} else if dailyUsage <= baseline*0.5 {
		velocity = VelocitySlow
	}

	wastePct := round1(pct(waste, totalOut))

	pattern := make([]DayUsage, 7)
	peakDay, peakUsage := weekdayNames[0], -1.0
	for i, name := range weekdayNames {
		pattern[i] = DayUsage{Day: name, Usage: round1(dow[i])}
		if pattern[i].Usage > peakUsage {
			peakDay, peakUsage = name, pattern[i].Usage
		}
	}

	var alerts []InventoryAlert
	switch status {
	case StockCritical:
		alerts = append(alerts, InventoryAlert{
			Item:     item.Name,
			Message:  fmt.Sprintf("OUT OF STOCK: %s! Immediately reorder %.0f %s.", item.Name, math.Round(eoq), item.Unit),
			Severity: SeverityCritical,
			Action:   "reorder_now",
		})
	case StockLow:
		alerts = append(alerts, InventoryAlert{
			Item:     item.Name,
			Message:  fmt.Sprintf("Low stock: %g %s remaining (threshold: %d). Depletes by %s.", item.Quantity, item.Unit, item.LowStockThreshold, depletionDate),
			Severity: SeverityWarning,
			Action:   "reorder_soon",
		})
	case StockReorder:
		alerts = append(alerts, InventoryAlert{
			Item:     item.Name,
			Message:  fmt.Sprintf("Approaching reorder point (%.1f %s). Current: %g %s.", reorderPoint, item.Unit, item.Quantity, item.Unit),
			Severity: SeverityInfo,
			Action:   "plan_reorder",
		})
	}
	if spoilage >= 70 {
		alerts = append(alerts, InventoryAlert{
			Item:     item.Name,
			Message:  fmt.Sprintf("High spoilage risk (%.1f%%): %s. Consider promoting in daily specials.", spoilage, spoilageWindow),
			Severity: SeverityWarning,
			Action:   "use_or_promote",
		})
	}
	if wastePct > 15 {
		alerts = append(alerts, InventoryAlert{
			Item:     item.Name,
			Message:  fmt.Sprintf("High waste rate (%.1f%%) over %d days. Review portion sizes or storage.", wastePct, p.UsageWindowDays),
			Severity: SeverityWarning,
			Action:   "reduce_waste",
		})
	}
	if trend == TrendAccelerating && trendPct > 25 {
		alerts = append(alerts, InventoryAlert{
			Item:     item.Name,
			Message:  fmt.Sprintf("Usage accelerating +%.1f%%: adjust reorder frequency.", trendPct),
			Severity: SeverityInfo,
			Action:   "increase_frequency",
		})
	}

	pred := InventoryPrediction{
		ID:                  item.ID,
		Name:                item.Name,
		Unit:                item.Unit,
		CurrentStock:        item.Quantity,
		CurrentValue:        round2(item.Quantity * item.CostPerUnit),
		CostPerUnit:         item.CostPerUnit,
		LowStockThreshold:   item.LowStockThreshold,
		Status:              status,
		DailyUsageAvg:       round2(dailyUsage),
		DailyUsageRecent:    round2(recentDaily),
		ConsumptionTrend:    trend,
		ConsumptionTrendPct: trendPct,
		Velocity:            velocity,
		TotalConsumed:       round1(totalOut),
		TotalRestocked:      round1(totalIn),
		PeakUsageDay:        peakDay,
		DayOfWeekPattern:    pattern,
		DaysUntilDepletion:  daysLeft,
		DepletionDate:       depletionDate,
		ReorderPoint:        round1(reorderPoint),
		OptimalOrderQty:     eoq,
		SafetyStockLevel:    round1(adjusted * p.SafetyStockDays),
		LeadTimeDays:        p.LeadTimeDays,
		SpoilageRisk:        spoilage,
		SpoilageWindow:      spoilageWindow,
		WastePct:            wastePct,
		WasteQty:            round1(waste),
		MonthlySpend:        round2(totalIn * item.CostPerUnit),
	}
	return pred, alerts
}

// classifyABC orders predictions by monthly spend and assigns Pareto classes
func classifyABC(preds []InventoryPrediction, p Policy) []InventoryPrediction {
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].MonthlySpend > preds[j].MonthlySpend
	})
	var total float64
	for _, pred := range preds {
		total += pred.MonthlySpend
	}
	var cumulative float64
	for i := range preds {
		cumulative += preds[i].MonthlySpend
		share := pct(cumulative, total)
		switch {
		case share <= p.ABCClassAPct:
			preds[i].ABCClass = ClassA
		case share <= p.ABCClassBPct:
			preds[i].ABCClass = ClassB
		default:
			preds[i].ABCClass = ClassC
		}
	}
	return preds
}

func inventoryCategoryStats(preds []InventoryPrediction) InventoryCategoryStats {
	stats := InventoryCategoryStats{
		ByABC:      map[ABCClass]ClassStats{},
		ByVelocity: map[Velocity]VelocityStats{},
		ByStatus:   map[StockStatus]int{},
	}
	for _, pred := range preds {
		class := pred.ABCClass
		if class == "" {
			class = ClassC
		}
		cs := stats.ByABC[class]
		cs.Count++
		cs.Value += pred.CurrentValue
		cs.Spend += pred.MonthlySpend
		stats.ByABC[class] = cs

		vs := stats.ByVelocity[pred.Velocity]
		vs.Count++
		if len(vs.Items) < 5 {
			vs.Items = append(vs.Items, pred.Name)
		}
		stats.ByVelocity[pred.Velocity] = vs

		stats.ByStatus[pred.Status]++
	}
	for class, cs := range stats.ByABC {
		cs.Value = round2(cs.Value)
		cs.Spend = round2(cs.Spend)
		stats.ByABC[class] = cs
	}
	return stats
}

func stockHeatmap(preds []InventoryPrediction) []HeatmapCell {
	cells := make([]HeatmapCell, 0, len(preds))
	for _, pred := range preds {
		var stock float64
		switch pred.Status {
		case StockCritical:
			stock = 0
		case StockLow:
			stock = 10
		case StockReorder:
			stock = 25
		default:
			stock = 40
		}
		spoil := math.Max(0, 30-pred.SpoilageRisk*0.3)
		waste := math.Max(0, 15-pred.WastePct*0.5)
		var trend float64
		switch pred.ConsumptionTrend {
		case TrendStable:
			trend = 15
		case TrendDecelerating:
			trend = 12
		default:
			trend = math.Max(0, 15-math.Abs(pred.ConsumptionTrendPct)*0.2)
		}
		health := int(clamp(math.Round(stock+spoil+waste+trend), 0, 100))
		cells = append(cells, HeatmapCell{Name: pred.Name, Health: health, Status: pred.Status, ABCClass: pred.ABCClass})
	}
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].Health < cells[j].Health })
	return cells
}
