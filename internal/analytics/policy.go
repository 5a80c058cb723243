package analytics

import "fmt"

// Policy holds the business constants the analyzers apply.
// The zero value is not usable; start from DefaultPolicy.
type Policy struct {
	// Inventory
	UsageWindowDays  int     `yaml:"usage_window_days" json:"usage_window_days"`
	RecentWindowDays int     `yaml:"recent_window_days" json:"recent_window_days"`
	LeadTimeDays     float64 `yaml:"lead_time_days" json:"lead_time_days"`
	SafetyStockDays  float64 `yaml:"safety_stock_days" json:"safety_stock_days"`
	OrderCost        float64 `yaml:"order_cost" json:"order_cost"`
	HoldingCostRate  float64 `yaml:"holding_cost_rate" json:"holding_cost_rate"`
	ABCClassAPct     float64 `yaml:"abc_class_a_pct" json:"abc_class_a_pct"`
	ABCClassBPct     float64 `yaml:"abc_class_b_pct" json:"abc_class_b_pct"`

	// Kitchen
	BottleneckFactor float64 `yaml:"bottleneck_factor" json:"bottleneck_factor"`
	RushFactor       float64 `yaml:"rush_factor" json:"rush_factor"`
	TopKitchenItems  int     `yaml:"top_kitchen_items" json:"top_kitchen_items"`

	// Menu
	UpsellTopN int `yaml:"upsell_top_n" json:"upsell_top_n"`

	// Reservations
	OperatingHours    float64 `yaml:"operating_hours" json:"operating_hours"`
	OverbookingFactor float64 `yaml:"overbooking_factor" json:"overbooking_factor"`

	// Revenue
	ForecastDays      int     `yaml:"forecast_days" json:"forecast_days"`
	GrowthDampening   float64 `yaml:"growth_dampening" json:"growth_dampening"`
	AnomalyZThreshold float64 `yaml:"anomaly_z_threshold" json:"anomaly_z_threshold"`

	// Aggregation
	AlertLimits AlertLimits   `yaml:"alert_limits" json:"alert_limits"`
	TopAlerts   int           `yaml:"top_alerts" json:"top_alerts"`
	Weights     HealthWeights `yaml:"weights" json:"weights"`

	// Currency label used in human-readable messages
	Currency string `yaml:"currency" json:"currency"`
}

// AlertLimits caps how many items each source contributes to the cross-system feed
type AlertLimits struct {
	Inventory    int `yaml:"inventory" json:"inventory"`
	Kitchen      int `yaml:"kitchen" json:"kitchen"`
	Menu         int `yaml:"menu" json:"menu"`
	Reservations int `yaml:"reservations" json:"reservations"`
	// Revenue anomalies stay out of the feed at the default of 0
	Revenue int `yaml:"revenue" json:"revenue"`
}

// HealthWeights are the relative weights of the five health sub-scores
type HealthWeights struct {
	Menu         float64 `yaml:"menu" json:"menu"`
	Revenue      float64 `yaml:"revenue" json:"revenue"`
	Kitchen      float64 `yaml:"kitchen" json:"kitchen"`
	Inventory    float64 `yaml:"inventory" json:"inventory"`
	Reservations float64 `yaml:"reservations" json:"reservations"`
}

// DefaultPolicy returns the standard operating policy
func DefaultPolicy() Policy {
	return Policy{
		UsageWindowDays:  30,
		RecentWindowDays: 7,
		LeadTimeDays:     2,
		SafetyStockDays:  3,
		OrderCost:        500,
		HoldingCostRate:  0.25,
		ABCClassAPct:     80,
		ABCClassBPct:     95,

		BottleneckFactor: 1.2,
		RushFactor:       1.3,
		TopKitchenItems:  15,

		UpsellTopN: 10,

		OperatingHours:    12,
		OverbookingFactor: 0.7,

		ForecastDays:      7,
		GrowthDampening:   0.3,
		AnomalyZThreshold: 2,

		AlertLimits: AlertLimits{Inventory: 5, Kitchen: 3, Menu: 3, Reservations: 3},
		TopAlerts:   8,
		Weights: HealthWeights{
			Menu:         20,
			Revenue:      25,
			Kitchen:      20,
			Inventory:    15,
			Reservations: 20,
		},

		Currency: "KES",
	}
}

// Validate rejects policies the analyzers cannot apply: non-positive windows
// and negative counts or limits.
func (p Policy) Validate() error {
	if p.UsageWindowDays <= 0 {
		return fmt.Errorf("usage_window_days must be positive, got %d", p.UsageWindowDays)
	}
	if p.RecentWindowDays <= 0 {
		return fmt.Errorf("recent_window_days must be positive, got %d", p.RecentWindowDays)
	}
	counts := []struct {
		name string
		v    int
	}{
		{"top_kitchen_items", p.TopKitchenItems},
		{"upsell_top_n", p.UpsellTopN},
		{"forecast_days", p.ForecastDays},
		{"top_alerts", p.TopAlerts},
		{"alert_limits.inventory", p.AlertLimits.Inventory},
		{"alert_limits.kitchen", p.AlertLimits.Kitchen},
		{"alert_limits.menu", p.AlertLimits.Menu},
		{"alert_limits.reservations", p.AlertLimits.Reservations},
		{"alert_limits.revenue", p.AlertLimits.Revenue},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", c.name, c.v)
		}
	}
	w := p.Weights
	if w.Menu+w.Revenue+w.Kitchen+w.Inventory+w.Reservations <= 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	return nil
}
