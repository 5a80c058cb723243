package analytics

// Severity ranks alerts, recommendations, risks and opportunities
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityWarning  Severity = "warning"
	SeverityMedium   Severity = "medium"
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
)

// Rank orders severities across sources; unknown values sort last
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh, SeverityWarning:
		return 1
	case SeverityMedium:
		return 2
	case SeverityInfo, SeverityLow:
		return 3
	}
	return 5
}

// Trend labels a directional change
type Trend string

const (
	TrendStable       Trend = "stable"
	TrendAccelerating Trend = "accelerating"
	TrendDecelerating Trend = "decelerating"
	TrendSlowing      Trend = "slowing"
	TrendImproving    Trend = "improving"
	TrendRising       Trend = "rising"
	TrendFalling      Trend = "falling"
)

// Module names an analyzer as a feed source
type Module string

const (
	ModuleInventory    Module = "inventory"
	ModuleKitchen      Module = "kitchen"
	ModuleMenu         Module = "menu"
	ModuleReservations Module = "reservations"
	ModuleRevenue      Module = "revenue"
)

// FeedItem is one entry of the cross-system alert feed
type FeedItem struct {
	Source   Module   `json:"source"`
	Item     string   `json:"item"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Action   string   `json:"action"`
}

// Report is the view of an analyzer result the aggregator consumes
type Report interface {
	Module() Module
	// Empty reports whether the analyzer had no input to work from
	Empty() bool
	// Feed returns the report's alerts or recommendations in report order
	Feed() []FeedItem
}
