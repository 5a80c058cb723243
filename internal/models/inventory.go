package models

import (
	"strings"
	"time"
)

// InventoryItem represents a stocked ingredient or supply
type InventoryItem struct {
	ID                uint    `gorm:"primary_key" json:"id"`
	RestaurantID      uint    `gorm:"index" json:"restaurant_id"`
	Name              string  `gorm:"column:item_name" json:"item_name"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	CostPerUnit       float64 `json:"cost_per_unit"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	ExpiryDays        int     `json:"expiry_days"`
}

// StockMovement records a change to an inventory item's quantity
type StockMovement struct {
	ID              uint         `gorm:"primary_key" json:"id"`
	InventoryItemID uint         `gorm:"index" json:"inventory_item_id"`
	Type            MovementType `gorm:"column:movement_type;type:varchar(10)" json:"movement_type"`
	Quantity        float64      `json:"quantity"`
	Reason          string       `json:"reason"`
	CreatedAt       time.Time    `gorm:"index" json:"created_at"`
}

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementIn     MovementType = "in"
	MovementOut    MovementType = "out"
	MovementAdjust MovementType = "adjust"
)

// IsWaste reports whether the movement is an outbound waste event
func (m *StockMovement) IsWaste() bool {
	return m.Type == MovementOut && strings.Contains(strings.ToLower(m.Reason), "waste")
}
