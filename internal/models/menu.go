package models

// MenuItem represents a dish on the menu. Price and CostPrice are minor currency units.
type MenuItem struct {
	ID             uint    `gorm:"primary_key" json:"id"`
	RestaurantID   uint    `gorm:"index" json:"restaurant_id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Price          int64   `json:"price"`
	CostPrice      int64   `json:"cost_price"`
	IsAvailable    bool    `json:"is_available"`
	PrepStation    string  `json:"prep_station"`
	AvgPrepMinutes float64 `json:"avg_prep_minutes"`
}

// Default prep settings applied when a menu item leaves them blank
const (
	DefaultPrepStation    = "main"
	DefaultAvgPrepMinutes = 10.0
)

// Station returns the prep station, falling back to the default station
func (mi *MenuItem) Station() string {
	if mi.PrepStation == "" {
		return DefaultPrepStation
	}
	return mi.PrepStation
}

// Margin returns price minus cost in minor units
func (mi *MenuItem) Margin() int64 {
	return mi.Price - mi.CostPrice
}
