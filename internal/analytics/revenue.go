package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"brigade/internal/models"
)

// Day periods used to label hours
const (
	PeriodBreakfast = "breakfast"
	PeriodAfternoon = "afternoon"
	PeriodOffPeak   = "off-peak"
)

// dailySeriesLimit bounds the daily series in the report output
const dailySeriesLimit = 30

// RevenueReport is the output of AnalyzeRevenue. Money fields are minor units.
type RevenueReport struct {
	DailyRevenue      []DailyRevenue    `json:"daily_revenue"`
	HourlyPattern     []HourlyRevenue   `json:"hourly_pattern"`
	WeeklyPattern     []WeekdayRevenue  `json:"weekly_pattern"`
	RevenueByType     []TypeRevenue     `json:"revenue_by_type"`
	RevenueByCategory []CategoryRevenue `json:"revenue_by_category"`
	CheckAnalysis     CheckAnalysis     `json:"check_analysis"`
	SpendingSegments  *SpendingSegments `json:"spending_segments"`
	Anomalies         []RevenueAnomaly  `json:"anomalies"`
	Forecast          []ForecastDay     `json:"forecast"`
	Trends            RevenueTrends     `json:"trends"`
}

// DailyRevenue is one day of the revenue time series
type DailyRevenue struct {
	Date     string `json:"date"`
	Revenue  int64  `json:"revenue"`
	Orders   int    `json:"orders"`
	Items    int    `json:"items"`
	AvgCheck int64  `json:"avg_check"`
	MA7      int64  `json:"ma_7"`
	MA14     int64  `json:"ma_14"`
}

// HourlyRevenue is the per-day average for one hour of the day
type HourlyRevenue struct {
	Hour         int     `json:"hour"`
	Label        string  `json:"label"`
	AvgRevenue   int64   `json:"avg_revenue"`
	AvgOrders    float64 `json:"avg_orders"`
	TotalRevenue int64   `json:"total_revenue"`
	TotalOrders  int     `json:"total_orders"`
	IsPeak       bool    `json:"is_peak"`
	Period       string  `json:"period"`
}

// WeekdayRevenue is the per-day average for one weekday
type WeekdayRevenue struct {
	Day          string  `json:"day"`
	AvgRevenue   int64   `json:"avg_revenue"`
	AvgOrders    float64 `json:"avg_orders"`
	TotalRevenue int64   `json:"total_revenue"`
	TotalOrders  int     `json:"total_orders"`
	DaysSampled  int     `json:"days_sampled"`
}

// TypeRevenue is revenue for one order type
type TypeRevenue struct {
	Type     models.OrderType `json:"type"`
	Revenue  int64            `json:"revenue"`
	Orders   int              `json:"orders"`
	SharePct float64          `json:"share_pct"`
	AvgCheck int64            `json:"avg_check"`
}

// CategoryRevenue is line revenue for one menu category
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  int64   `json:"revenue"`
	SharePct float64 `json:"share_pct"`
	QtySold  int     `json:"qty_sold"`
}

// CheckAnalysis summarizes order totals
type CheckAnalysis struct {
	AvgCheck    int64 `json:"avg_check"`
	MedianCheck int64 `json:"median_check"`
	P25         int64 `json:"p25"`
	P75         int64 `json:"p75"`
	MinCheck    int64 `json:"min_check"`
	MaxCheck    int64 `json:"max_check"`
}

// SpendingSegments splits orders into spender tiers by check size
type SpendingSegments struct {
	HighSpenders   SpendSegment `json:"high_spenders"`
	MediumSpenders SpendSegment `json:"medium_spenders"`
	LowSpenders    SpendSegment `json:"low_spenders"`
}

// SpendSegment counts orders in a tier. Threshold is zero for the medium tier.
type SpendSegment struct {
	Count     int   `json:"count"`
	Threshold int64 `json:"threshold,omitempty"`
}

// RevenueAnomaly is a day whose revenue deviates at least AnomalyZThreshold deviations from the mean
type RevenueAnomaly struct {
	Date         string  `json:"date"`
	Revenue      int64   `json:"revenue"`
	Expected     int64   `json:"expected"`
	DeviationPct float64 `json:"deviation_pct"`
	Type         string  `json:"type"`
	ZScore       float64 `json:"z_score"`
}

// ForecastDay is the prediction for one future calendar day
type ForecastDay struct {
	Date             string `json:"date"`
	Day              string `json:"day"`
	PredictedRevenue int64  `json:"predicted_revenue"`
	ConfidenceLow    int64  `json:"confidence_low"`
	ConfidenceHigh   int64  `json:"confidence_high"`
	ConfidencePct    int    `json:"confidence_pct"`
}

// DayRevenue names a date and its revenue
type DayRevenue struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
}

// RevenueTrends is the headline summary of the revenue report
type RevenueTrends struct {
	TotalRevenue         int64      `json:"total_revenue"`
	TotalOrders          int        `json:"total_orders"`
	AvgDailyRevenue      int64      `json:"avg_daily_revenue"`
	AvgOrderValue        int64      `json:"avg_order_value"`
	MedianOrderValue     int64      `json:"median_order_value"`
	Last7DaysRevenue     int64      `json:"last_7_days_revenue"`
	WeekOverWeekGrowth   float64    `json:"week_over_week_growth"`
	MonthOverMonthGrowth *float64   `json:"month_over_month_growth"`
	RevenueVelocityPeak  float64    `json:"revenue_velocity_peak"`
	PeakHour             string     `json:"peak_hour"`
	PeakDay              string     `json:"peak_day"`
	BestDay              DayRevenue `json:"best_day"`
	WorstDay             DayRevenue `json:"worst_day"`
}

// Module implements Report
func (r *RevenueReport) Module() Module { return ModuleRevenue }

// Empty implements Report
func (r *RevenueReport) Empty() bool { return r.Trends.TotalOrders == 0 }

// Feed implements Report. Anomalies surface as informational items.
func (r *RevenueReport) Feed() []FeedItem {
	feed := make([]FeedItem, 0, len(r.Anomalies))
	for _, a := range r.Anomalies {
		feed = append(feed, FeedItem{
			Source:   ModuleRevenue,
			Item:     a.Date,
			Message:  fmt.Sprintf("Revenue %s on %s (%+.1f%% vs average)", a.Type, a.Date, a.DeviationPct),
			Severity: SeverityInfo,
			Action:   "Review what drove the change",
		})
	}
	return feed
}

func emptyRevenueReport() *RevenueReport {
	return &RevenueReport{
		DailyRevenue:      []DailyRevenue{},
		HourlyPattern:     []HourlyRevenue{},
		WeeklyPattern:     []WeekdayRevenue{},
		RevenueByType:     []TypeRevenue{},
		RevenueByCategory: []CategoryRevenue{},
		Anomalies:         []RevenueAnomaly{},
		Forecast:          []ForecastDay{},
		Trends:            RevenueTrends{PeakHour: "N/A", PeakDay: "N/A", BestDay: DayRevenue{Date: "N/A"}, WorstDay: DayRevenue{Date: "N/A"}},
	}
}

type dayBucket struct {
	date    string
	revenue int64
	orders  int
	items   int
}

// AnalyzeRevenue builds the revenue time series, patterns, anomalies and a 7-day forecast
func AnalyzeRevenue(ds *Dataset, now time.Time, p Policy) *RevenueReport {
	orders := ds.activeOrders()
	if len(orders) == 0 {
		return emptyRevenueReport()
	}
	report := emptyRevenueReport()
	menu := ds.menuIndex()

	days := map[string]*dayBucket{}
	var hourRev [24]int64
	var hourOrders [24]int
	var dayRev [7]int64
	var dayOrders [7]int
	var daySeen [7]map[string]struct{}
	for i := range daySeen {
		daySeen[i] = map[string]struct{}{}
	}

	type typeAcc struct {
		revenue int64
		orders  int
	}
	types := map[models.OrderType]*typeAcc{}
	var typeOrder []models.OrderType
	type catAcc struct {
		revenue int64
		qty     int
	}
	cats := map[string]*catAcc{}
	var catOrder []string
	checks := make([]float64, 0, len(orders))

	for _, o := range orders {
		key := dayKey(o.CreatedAt)
		b, ok := days[key]
		if !ok {
			b = &dayBucket{date: key}
			days[key] = b
		}
		b.revenue += o.Total
		b.orders++
		b.items += o.ItemCount()

		h := o.CreatedAt.Hour()
		hourRev[h] += o.Total
		hourOrders[h]++

		wd := weekdayIndex(o.CreatedAt)
		dayRev[wd] += o.Total
		dayOrders[wd]++
		daySeen[wd][key] = struct{}{}

		otype := o.Type
		if otype == "" {
			otype = models.OrderTypeDineIn
		}
		ta, ok := types[otype]
		if !ok {
			ta = &typeAcc{}
			types[otype] = ta
			typeOrder = append(typeOrder, otype)
		}
		ta.revenue += o.Total
		ta.orders++

		for _, line := range o.Items {
			cat := "Unknown"
			if item, ok := menu[line.MenuItemID]; ok {
				cat = item.Category
			}
			ca, ok := cats[cat]
			if !ok {
				ca = &catAcc{}
				cats[cat] = ca
				catOrder = append(catOrder, cat)
			}
			ca.revenue += line.LineTotal()
			ca.qty += line.Quantity
		}
		checks = append(checks, float64(o.Total))
	}

	series := make([]*dayBucket, 0, len(days))
	for _, b := range days {
		series = append(series, b)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].date < series[j].date })
	activeDays := float64(len(series))

	revs := make([]float64, len(series))
	daily := make([]DailyRevenue, len(series))
	for i, b := range series {
		revs[i] = float64(b.revenue)
		daily[i] = DailyRevenue{
			Date:     b.date,
			Revenue:  b.revenue,
			Orders:   b.orders,
			Items:    b.items,
			AvgCheck: int64(ratio(float64(b.revenue), float64(b.orders))),
			MA7:      trailingMean(revs, i, 7),
			MA14:     trailingMean(revs, i, 14),
		}
	}

	hourly := make([]HourlyRevenue, 24)
	var hourAvgSum int64
	for h := 0; h < 24; h++ {
		hourly[h] = HourlyRevenue{
			Hour:         h,
			Label:        fmt.Sprintf("%02d:00", h),
			AvgRevenue:   int64(float64(hourRev[h]) / activeDays),
			AvgOrders:    round1(float64(hourOrders[h]) / activeDays),
			TotalRevenue: hourRev[h],
			TotalOrders:  hourOrders[h],
			Period:       dayPeriod(h),
		}
		hourAvgSum += hourly[h].AvgRevenue
	}
	peakThreshold := float64(hourAvgSum) / 24 * 1.5
	for h := range hourly {
		hourly[h].IsPeak = float64(hourly[h].AvgRevenue) >= peakThreshold
	}
	report.HourlyPattern = hourly

	weekly := make([]WeekdayRevenue, 7)
	for i := range weekly {
		sampled := int(math.Max(float64(len(daySeen[i])), 1))
		weekly[i] = WeekdayRevenue{
			Day:          weekdayNames[i],
			AvgRevenue:   int64(float64(dayRev[i]) / float64(sampled)),
			AvgOrders:    round1(float64(dayOrders[i]) / float64(sampled)),
			TotalRevenue: dayRev[i],
			TotalOrders:  dayOrders[i],
			DaysSampled:  sampled,
		}
	}
	report.WeeklyPattern = weekly

	var typeTotal int64
	for _, t := range typeOrder {
		typeTotal += types[t].revenue
	}
	for _, t := range typeOrder {
		ta := types[t]
		report.RevenueByType = append(report.RevenueByType, TypeRevenue{
			Type:     t,
			Revenue:  ta.revenue,
			Orders:   ta.orders,
			SharePct: round1(pct(float64(ta.revenue), float64(typeTotal))),
			AvgCheck: int64(ratio(float64(ta.revenue), float64(ta.orders))),
		})
	}
	sort.SliceStable(report.RevenueByType, func(i, j int) bool {
		return report.RevenueByType[i].Revenue > report.RevenueByType[j].Revenue
	})

	var catTotal int64
	for _, c := range catOrder {
		catTotal += cats[c].revenue
	}
	for _, c := range catOrder {
		ca := cats[c]
		report.RevenueByCategory = append(report.RevenueByCategory, CategoryRevenue{
			Category: c,
			Revenue:  ca.revenue,
			SharePct: round1(pct(float64(ca.revenue), float64(catTotal))),
			QtySold:  ca.qty,
		})
	}
	sort.SliceStable(report.RevenueByCategory, func(i, j int) bool {
		return report.RevenueByCategory[i].Revenue > report.RevenueByCategory[j].Revenue
	})

	sortedChecks := sortedCopy(checks)
	report.CheckAnalysis = CheckAnalysis{
		AvgCheck:    int64(mean(checks)),
		MedianCheck: int64(median(sortedChecks)),
		P25:         int64(percentile(sortedChecks, 0.25)),
		P75:         int64(percentile(sortedChecks, 0.75)),
		MinCheck:    int64(sortedChecks[0]),
		MaxCheck:    int64(sortedChecks[len(sortedChecks)-1]),
	}
	report.SpendingSegments = spendingSegments(checks, report.CheckAnalysis)

	report.Anomalies = detectAnomalies(daily, p.AnomalyZThreshold)
	report.Trends = revenueTrends(revs, len(orders), hourly, weekly, report.CheckAnalysis, daily)
	report.Forecast = forecastRevenue(now, weekly, dayOrders, revs, report.Trends.WeekOverWeekGrowth, p)

	if len(daily) > dailySeriesLimit {
		daily = daily[len(daily)-dailySeriesLimit:]
	}
	report.DailyRevenue = daily
	return report
}

// trailingMean averages up to window values strictly before index i; the first day has no history
func trailingMean(revs []float64, i, window int) int64 {
	lo := i - window
	if lo < 0 {
		lo = 0
	}
	if i == lo {
		return 0
	}
	return int64(mean(revs[lo:i]))
}

func dayPeriod(hour int) string {
	switch {
	case hour >= 6 && hour < 11:
		return PeriodBreakfast
	case hour >= 11 && hour < 15:
		return PeriodLunch
	case hour >= 15 && hour < 18:
		return PeriodAfternoon
	case hour >= 18 && hour < 22:
		return PeriodDinner
	}
	return PeriodOffPeak
}

func spendingSegments(checks []float64, ca CheckAnalysis) *SpendingSegments {
	high := int64(float64(ca.P75) * 1.5)
	low := int64(float64(ca.P25) * 0.8)
	seg := &SpendingSegments{
		HighSpenders: SpendSegment{Threshold: high},
		LowSpenders:  SpendSegment{Threshold: low},
	}
	for _, c := range checks {
		v := int64(c)
		switch {
		case v >= high:
			seg.HighSpenders.Count++
		case v <= low:
			seg.LowSpenders.Count++
		default:
			seg.MediumSpenders.Count++
		}
	}
	return seg
}

func detectAnomalies(daily []DailyRevenue, threshold float64) []RevenueAnomaly {
	out := []RevenueAnomaly{}
	if len(daily) < 7 {
		return out
	}
	revs := make([]float64, len(daily))
	for i, d := range daily {
		revs[i] = float64(d.Revenue)
	}
	m := mean(revs)
	std := populationStdDev(revs)
	if std == 0 {
		std = 1
	}
	for _, d := range daily {
		z := (float64(d.Revenue) - m) / std
		if math.Abs(z) < threshold {
			continue
		}
		kind := "dip"
		if z > 0 {
			kind = "spike"
		}
		var dev float64
		if m != 0 {
			dev = round1((float64(d.Revenue) - m) / m * 100)
		}
		out = append(out, RevenueAnomaly{
			Date:         d.Date,
			Revenue:      d.Revenue,
			Expected:     int64(m),
			DeviationPct: dev,
			Type:         kind,
			ZScore:       round2(z),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return math.Abs(out[i].ZScore) > math.Abs(out[j].ZScore) })
	return out
}

func growthPct(recent, previous float64) float64 {
	return round1((recent - previous) / math.Max(previous, 1) * 100)
}

func revenueTrends(revs []float64, totalOrders int, hourly []HourlyRevenue, weekly []WeekdayRevenue, ca CheckAnalysis, daily []DailyRevenue) RevenueTrends {
	n := len(revs)
	total := sum(revs)
	t := RevenueTrends{
		TotalRevenue:     int64(total),
		TotalOrders:      totalOrders,
		AvgDailyRevenue:  int64(ratio(total, float64(n))),
		AvgOrderValue:    ca.AvgCheck,
		MedianOrderValue: ca.MedianCheck,
		Last7DaysRevenue: int64(total),
	}
	if n >= 7 {
		t.Last7DaysRevenue = int64(sum(revs[n-7:]))
	}
	if n >= 14 {
		t.WeekOverWeekGrowth = growthPct(sum(revs[n-7:]), sum(revs[n-14:n-7]))
	}
	if n >= 28 {
		mom := growthPct(sum(revs[n-14:]), sum(revs[n-28:n-14]))
		t.MonthOverMonthGrowth = &mom
	}

	var peakOrders []float64
	for _, h := range hourly {
		if h.IsPeak {
			peakOrders = append(peakOrders, h.AvgOrders)
		}
	}
	t.RevenueVelocityPeak = round1(mean(peakOrders))

	peakHour := hourly[0]
	for _, h := range hourly[1:] {
		if h.AvgRevenue > peakHour.AvgRevenue {
			peakHour = h
		}
	}
	t.PeakHour = peakHour.Label
	peakDay := weekly[0]
	for _, d := range weekly[1:] {
		if d.AvgRevenue > peakDay.AvgRevenue {
			peakDay = d
		}
	}
	t.PeakDay = peakDay.Day

	best, worst := daily[0], daily[0]
	for _, d := range daily[1:] {
		if d.Revenue > best.Revenue {
			best = d
		}
		if d.Revenue < worst.Revenue {
			worst = d
		}
	}
	t.BestDay = DayRevenue{Date: best.Date, Revenue: best.Revenue}
	t.WorstDay = DayRevenue{Date: worst.Date, Revenue: worst.Revenue}
	return t
}

// forecastRevenue projects the next ForecastDays days from weekday averages and dampened weekly growth.
// Weekdays with no orders fall back to the overall daily mean.
func forecastRevenue(now time.Time, weekly []WeekdayRevenue, dayOrders [7]int, revs []float64, wow float64, p Policy) []ForecastDay {
	meanRev := mean(revs)
	std := meanRev * 0.1
	if len(revs) > 1 {
		std = populationStdDev(revs)
	}
	growth := 1 + wow/100*p.GrowthDampening

	out := make([]ForecastDay, 0, max(p.ForecastDays, 0))
	for i := 1; i <= p.ForecastDays; i++ {
		day := now.AddDate(0, 0, i)
		wd := weekdayIndex(day)
		base := float64(int64(meanRev))
		if dayOrders[wd] > 0 {
			base = float64(weekly[wd].AvgRevenue)
		}
		predicted := int64(base * growth)
		spread := std * 0.7
		out = append(out, ForecastDay{
			Date:             dayKey(day),
			Day:              weekdayNames[wd],
			PredictedRevenue: predicted,
			ConfidenceLow:    int64(math.Max(0, float64(predicted)-spread)),
			ConfidenceHigh:   int64(float64(predicted) + spread),
			ConfidencePct:    int(math.Min(95, float64(60+weekly[wd].DaysSampled*8))),
		})
	}
	return out
}

// RevenueSummary is the view the operations dashboard reads
type RevenueSummary struct {
	TotalRevenue       int64   `json:"total_revenue"`
	AvgOrderValue      int64   `json:"avg_order_value"`
	Last7DaysRevenue   int64   `json:"last_7_days_revenue"`
	WeekOverWeekGrowth float64 `json:"week_over_week_growth"`
	PeakHour           string  `json:"peak_hour"`
	PeakDay            string  `json:"peak_day"`
	AnomalyCount       int     `json:"anomaly_count"`
}

// Summary returns the headline revenue view
func (r *RevenueReport) Summary() RevenueSummary {
	return RevenueSummary{
		TotalRevenue:       r.Trends.TotalRevenue,
		AvgOrderValue:      r.Trends.AvgOrderValue,
		Last7DaysRevenue:   r.Trends.Last7DaysRevenue,
		WeekOverWeekGrowth: r.Trends.WeekOverWeekGrowth,
		PeakHour:           r.Trends.PeakHour,
		PeakDay:            r.Trends.PeakDay,
		AnomalyCount:       len(r.Anomalies),
	}
}
