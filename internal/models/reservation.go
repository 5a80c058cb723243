package models

import (
	"strconv"
	"strings"
	"time"
)

// Reservation represents a table booking.
// Date is the calendar day; Time is the wall-clock "HH:MM" slot and may be empty.
type Reservation struct {
	ID              uint              `gorm:"primary_key" json:"id"`
	RestaurantID    uint              `gorm:"index" json:"restaurant_id"`
	TableID         *uint             `json:"table_id,omitempty"`
	CustomerName    string            `json:"customer_name"`
	PartySize       int               `json:"party_size"`
	Date            time.Time         `gorm:"column:reservation_date" json:"reservation_date"`
	Time            string            `gorm:"column:reservation_time" json:"reservation_time"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          ReservationStatus `gorm:"type:varchar(20)" json:"status"`
	DepositPaid     bool              `json:"deposit_paid"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ReservationStatus represents the lifecycle state of a booking
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

// Hour returns the booked hour of day. ok is false when Time is empty or malformed.
func (r *Reservation) Hour() (hour int, ok bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(r.Time), ":")
	h, err := strconv.Atoi(head)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
