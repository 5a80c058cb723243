package models

// Restaurant is the unit every analysis is scoped to
type Restaurant struct {
	ID       uint   `gorm:"primary_key" json:"id"`
	TenantID uint   `gorm:"index" json:"tenant_id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
}

// Table represents a dining table that can be reserved
type Table struct {
	ID           uint `gorm:"primary_key" json:"id"`
	RestaurantID uint `gorm:"index" json:"restaurant_id"`
	Number       int  `gorm:"column:table_number" json:"table_number"`
	Capacity     int  `json:"capacity"`
}

// TableName keeps the table out of the way of SQL keywords
func (Table) TableName() string {
	return "dining_tables"
}
