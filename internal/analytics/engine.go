package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Recorder observes analyzer runs and finished dashboards
type Recorder interface {
	ObserveAnalyzer(m Module, d time.Duration)
	RecordDashboard(d *Dashboard)
}

// Engine loads a restaurant's dataset and runs analyzers over it
type Engine struct {
	provider  Provider
	policy    Policy
	now       func() time.Time
	recorders []Recorder
	logger    *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the engine clock
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRecorder adds a recorder notified after each run
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorders = append(e.recorders, r) }
}

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over the given provider and policy
func NewEngine(provider Provider, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "analytics")
	return e
}

// Policy returns the policy the engine applies
func (e *Engine) Policy() Policy { return e.policy }

func (e *Engine) load(ctx context.Context, restaurantID uint) (*Dataset, time.Time, error) {
	now := e.now()
	ds, err := e.provider.Dataset(ctx, restaurantID, now)
	if err != nil {
		return nil, now, fmt.Errorf("load dataset for restaurant %d: %w", restaurantID, err)
	}
	return ds, now, nil
}

func (e *Engine) timed(m Module, run func()) {
	start := time.Now()
	run()
	elapsed := time.Since(start)
	for _, r := range e.recorders {
		r.ObserveAnalyzer(m, elapsed)
	}
	e.logger.Debug("analyzer finished", "analyzer", m, "duration", elapsed)
}

// Inventory runs the inventory analyzer for a restaurant
func (e *Engine) Inventory(ctx context.Context, restaurantID uint) (*InventoryReport, error) {
	ds, now, err := e.load(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	var r *InventoryReport
	e.timed(ModuleInventory, func() { r = AnalyzeInventory(ds, now, e.policy) })
	return r, nil
}

// Kitchen runs the kitchen analyzer for a restaurant
func (e *Engine) Kitchen(ctx context.Context, restaurantID uint) (*KitchenReport, error) {
	ds, now, err := e.load(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	var r *KitchenReport
	e.timed(ModuleKitchen, func() { r = AnalyzeKitchen(ds, now, e.policy) })
	return r, nil
}

// Menu runs the menu engineering analyzer for a restaurant
func (e *Engine) Menu(ctx context.Context, restaurantID uint) (*MenuReport, error) {
	ds, now, err := e.load(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	var r *MenuReport
	e.timed(ModuleMenu, func() { r = AnalyzeMenu(ds, now, e.policy) })
	return r, nil
}

// Reservations runs the reservation analyzer for a restaurant
func (e *Engine) Reservations(ctx context.Context, restaurantID uint) (*ReservationReport, error) {
	ds, now, err := e.load(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	var r *ReservationReport
	e.timed(ModuleReservations, func() { r = AnalyzeReservations(ds, now, e.policy) })
	return r, nil
}

// Revenue runs the revenue forecast analyzer for a restaurant
func (e *Engine) Revenue(ctx context.Context, restaurantID uint) (*RevenueReport, error) {
	ds, now, err := e.load(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	var r *RevenueReport
	e.timed(ModuleRevenue, func() { r = AnalyzeRevenue(ds, now, e.policy) })
	return r, nil
}

// Dashboard runs all analyzers concurrently over one dataset and aggregates them
func (e *Engine) Dashboard(ctx context.Context, restaurantID uint) (*Dashboard, error) {
	ds, now, err := e.load(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	reports := RunAnalyzers(ds, now, e.policy, e.timed)
	d := Aggregate(ds, reports, now, e.policy)
	for _, r := range e.recorders {
		r.RecordDashboard(d)
	}
	empty := 0
	for _, rep := range reports.All() {
		if rep.Empty() {
			empty++
		}
	}
	e.logger.Info("dashboard built",
		"restaurant_id", restaurantID,
		"health_score", d.HealthScore,
		"alerts", d.QuickStats.ActiveAlerts,
		"empty_modules", empty)
	return d, nil
}
