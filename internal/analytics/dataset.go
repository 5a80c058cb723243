package analytics

import (
	"context"
	"sort"
	"time"

	"brigade/internal/models"
)

// Dataset is the bulk snapshot of one restaurant's records that every analyzer reads.
// Orders include all statuses; analyzers filter what they need.
type Dataset struct {
	RestaurantID uint
	MenuItems    []models.MenuItem
	Orders       []models.Order
	PrepRecords  []models.PrepRecord
	Inventory    []models.InventoryItem
	Movements    []models.StockMovement
	Tables       []models.Table
	Reservations []models.Reservation
}

// Provider loads a restaurant's dataset with one fetch per entity kind
type Provider interface {
	Dataset(ctx context.Context, restaurantID uint, now time.Time) (*Dataset, error)
}

func (ds *Dataset) menuIndex() map[uint]*models.MenuItem {
	idx := make(map[uint]*models.MenuItem, len(ds.MenuItems))
	for i := range ds.MenuItems {
		idx[ds.MenuItems[i].ID] = &ds.MenuItems[i]
	}
	return idx
}

// activeOrders returns the non-cancelled orders
func (ds *Dataset) activeOrders() []models.Order {
	out := make([]models.Order, 0, len(ds.Orders))
	for _, o := range ds.Orders {
		if !o.IsCancelled() {
			out = append(out, o)
		}
	}
	return out
}

// ordersSince keeps the orders created at or after start
func ordersSince(orders []models.Order, start time.Time) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !o.CreatedAt.Before(start) {
			out = append(out, o)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// daysBetween counts whole days from a to b, like a calendar date difference
func daysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}

// weekdayIndex maps Monday to 0 and Sunday to 6
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func distinctItemIDs(lines []models.OrderItem) []uint {
	set := map[uint]struct{}{}
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if _, ok := set[l.MenuItemID]; ok {
			continue
		}
		set[l.MenuItemID] = struct{}{}
		ids = append(ids, l.MenuItemID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
