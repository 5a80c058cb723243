package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL dialect
	_ "github.com/mattn/go-sqlite3"              // SQLite driver

	"brigade/internal/models"
)

// Open connects to the configured database. driver is "sqlite3" or "postgres".
func Open(driver, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite3" {
		// sqlite allows a single writer, and every ":memory:" connection is a fresh database
		db.DB().SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates the tables for every persisted model
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Restaurant{},
		&models.Table{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PrepRecord{},
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.Reservation{},
	).Error
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
