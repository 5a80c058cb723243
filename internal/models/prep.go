package models

import "time"

// PrepRecord is a kitchen timing log for one order line.
// ActualMinutes is nil until the line has been measured.
type PrepRecord struct {
	ID            uint       `gorm:"primary_key" json:"id"`
	OrderItemID   uint       `gorm:"index" json:"order_item_id"`
	Station       string     `json:"station"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ActualMinutes *float64   `json:"actual_minutes,omitempty"`

	// MenuItemID is resolved through the order line when records are loaded
	MenuItemID uint `gorm:"-" json:"menu_item_id"`
}

// TableName matches the prep timing table
func (PrepRecord) TableName() string {
	return "prep_times"
}

// Measured reports whether the record carries a usable duration
func (p *PrepRecord) Measured() bool {
	return p.ActualMinutes != nil
}
