package analytics

import (
	"time"

	"brigade/internal/models"
)

// Friday afternoon
var testNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func daysAgo(days int, hour int) time.Time {
	d := testNow.AddDate(0, 0, -days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrFloat(f float64) *float64 { return &f }

func ptrUint(u uint) *uint { return &u }

func order(id uint, at time.Time, status models.OrderStatus, total int64, lines ...models.OrderItem) models.Order {
	return models.Order{
		ID:           id,
		RestaurantID: 1,
		Status:       status,
		Type:         models.OrderTypeDineIn,
		Total:        total,
		CreatedAt:    at,
		Items:        lines,
	}
}

func line(menuItemID uint, qty int, unitPrice int64) models.OrderItem {
	return models.OrderItem{MenuItemID: menuItemID, Quantity: qty, UnitPrice: unitPrice}
}

func emptyDataset() *Dataset {
	return &Dataset{RestaurantID: 1}
}
