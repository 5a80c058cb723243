// Package store loads restaurant datasets from the relational database
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinzhu/gorm"

	"brigade/internal/analytics"
	"brigade/internal/models"
)

// ErrRestaurantNotFound is returned when no restaurant matches the lookup
var ErrRestaurantNotFound = errors.New("restaurant not found")

// movementWindow bounds how much stock history is loaded
const movementWindow = 30 * 24 * time.Hour

// Store is a gorm-backed analytics.Provider
type Store struct {
	db           *gorm.DB
	lookbackDays int
	logger       *slog.Logger
}

// New creates a Store that loads lookbackDays of orders and reservations
func New(db *gorm.DB, lookbackDays int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, lookbackDays: lookbackDays, logger: logger.With("component", "store")}
}

var _ analytics.Provider = (*Store)(nil)

// Restaurant fetches a restaurant by id
func (s *Store) Restaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	return s.findRestaurant(ctx, "id = ?", id)
}

// RestaurantByTenant resolves the restaurant owned by a tenant
func (s *Store) RestaurantByTenant(ctx context.Context, tenantID uint) (*models.Restaurant, error) {
	return s.findRestaurant(ctx, "tenant_id = ?", tenantID)
}

func (s *Store) findRestaurant(ctx context.Context, query string, arg uint) (*models.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var r models.Restaurant
	err := s.db.Where(query, arg).Order("id").First(&r).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query restaurant: %w", err)
	}
	return &r, nil
}

// Dataset loads everything the analyzers need, one query per entity kind
func (s *Store) Dataset(ctx context.Context, restaurantID uint, now time.Time) (*analytics.Dataset, error) {
	start := time.Now()
	if _, err := s.Restaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	since := now.AddDate(0, 0, -s.lookbackDays)
	ds := &analytics.Dataset{RestaurantID: restaurantID}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"menu items", func() error {
			return s.db.Where("restaurant_id = ?", restaurantID).Order("id").Find(&ds.MenuItems).Error
		}},
		{"orders", func() error {
			return s.db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
				Where("restaurant_id = ? AND created_at >= ? AND created_at <= ?", restaurantID, since, now).
				Order("created_at, id").
				Find(&ds.Orders).Error
		}},
		{"prep records", func() error {
			recs, err := s.prepRecords(restaurantID, since, now)
			ds.PrepRecords = recs
			return err
		}},
		{"inventory", func() error {
			return s.db.Where("restaurant_id = ?", restaurantID).Order("id").Find(&ds.Inventory).Error
		}},
		{"stock movements", func() error {
			if len(ds.Inventory) == 0 {
				return nil
			}
			ids := make([]uint, len(ds.Inventory))
			for i, item := range ds.Inventory {
				ids[i] = item.ID
			}
			return s.db.Where("inventory_item_id IN (?) AND created_at >= ? AND created_at <= ?", ids, now.Add(-movementWindow), now).
				Order("created_at, id").
				Find(&ds.Movements).Error
		}},
		{"tables", func() error {
			return s.db.Where("restaurant_id = ?", restaurantID).Order("table_number").Find(&ds.Tables).Error
		}},
		{"reservations", func() error {
			return s.db.Where("restaurant_id = ? AND reservation_date >= ?", restaurantID, since).
				Order("reservation_date, id").
				Find(&ds.Reservations).Error
		}},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step.fn(); err != nil {
			return nil, fmt.Errorf("load %s: %w", step.name, err)
		}
	}

	s.logger.Debug("dataset loaded",
		"restaurant_id", restaurantID,
		"orders", len(ds.Orders),
		"prep_records", len(ds.PrepRecords),
		"reservations", len(ds.Reservations),
		"elapsed", time.Since(start))
	return ds, nil
}

// prepRow is a prep_times row joined with its order line's menu item
type prepRow struct {
	ID            uint
	OrderItemID   uint
	Station       string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	ActualMinutes *float64
	MenuItemID    uint
}

func (s *Store) prepRecords(restaurantID uint, since, now time.Time) ([]models.PrepRecord, error) {
	var rows []prepRow
	err := s.db.Table("prep_times").
		Select("prep_times.id, prep_times.order_item_id, prep_times.station, prep_times.started_at, "+
			"prep_times.completed_at, prep_times.actual_minutes, order_items.menu_item_id").
		Joins("JOIN order_items ON order_items.id = prep_times.order_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.restaurant_id = ? AND orders.created_at >= ? AND orders.created_at <= ?", restaurantID, since, now).
		Order("prep_times.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	recs := make([]models.PrepRecord, len(rows))
	for i, r := range rows {
		recs[i] = models.PrepRecord{
			ID:            r.ID,
			OrderItemID:   r.OrderItemID,
			Station:       r.Station,
			StartedAt:     r.StartedAt,
			CompletedAt:   r.CompletedAt,
			ActualMinutes: r.ActualMinutes,
			MenuItemID:    r.MenuItemID,
		}
	}
	return recs, nil
}
