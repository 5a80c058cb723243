package database

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jinzhu/gorm"

	"brigade/internal/models"
)

// ErrAlreadySeeded is returned when the restaurant already exists
var ErrAlreadySeeded = errors.New("restaurant already seeded")

var demoMenu = []models.MenuItem{
	{Name: "Nyama Choma", Category: "Mains", Price: 120000, CostPrice: 52000, PrepStation: "grill", AvgPrepMinutes: 22},
	{Name: "Grilled Tilapia", Category: "Mains", Price: 95000, CostPrice: 41000, PrepStation: "grill", AvgPrepMinutes: 18},
	{Name: "Chicken Pilau", Category: "Mains", Price: 65000, CostPrice: 21000, PrepStation: "stove", AvgPrepMinutes: 12},
	{Name: "Beef Stew", Category: "Mains", Price: 70000, CostPrice: 30000, PrepStation: "stove", AvgPrepMinutes: 10},
	{Name: "Vegetable Samosa", Category: "Starters", Price: 25000, CostPrice: 6000, PrepStation: "fryer", AvgPrepMinutes: 6},
	{Name: "Kachumbari", Category: "Starters", Price: 20000, CostPrice: 4000, PrepStation: "cold", AvgPrepMinutes: 4},
	{Name: "Chips Masala", Category: "Sides", Price: 35000, CostPrice: 9000, PrepStation: "fryer", AvgPrepMinutes: 8},
	{Name: "Ugali", Category: "Sides", Price: 15000, CostPrice: 3000, PrepStation: "stove", AvgPrepMinutes: 5},
	{Name: "Mandazi", Category: "Desserts", Price: 15000, CostPrice: 3500, PrepStation: "pastry", AvgPrepMinutes: 5},
	{Name: "Passion Juice", Category: "Drinks", Price: 18000, CostPrice: 5000, PrepStation: "bar", AvgPrepMinutes: 3},
	{Name: "Dawa Cocktail", Category: "Drinks", Price: 45000, CostPrice: 14000, PrepStation: "bar", AvgPrepMinutes: 4},
	{Name: "Lobster Thermidor", Category: "Mains", Price: 380000, CostPrice: 250000, PrepStation: "", AvgPrepMinutes: 0},
}

// popularity weights, parallel to demoMenu
var demoWeights = []int{14, 10, 16, 9, 12, 8, 15, 11, 6, 13, 5, 1}

var demoInventory = []struct {
	item      models.InventoryItem
	dailyUse  float64
	restockTo float64
}{
	{models.InventoryItem{Name: "Beef", Unit: "kg", Quantity: 18, CostPerUnit: 850, LowStockThreshold: 10, ExpiryDays: 5}, 6, 40},
	{models.InventoryItem{Name: "Tilapia", Unit: "kg", Quantity: 6, CostPerUnit: 700, LowStockThreshold: 8, ExpiryDays: 3}, 4, 25},
	{models.InventoryItem{Name: "Rice", Unit: "kg", Quantity: 60, CostPerUnit: 180, LowStockThreshold: 20, ExpiryDays: 180}, 5, 80},
	{models.InventoryItem{Name: "Maize Flour", Unit: "kg", Quantity: 45, CostPerUnit: 90, LowStockThreshold: 15, ExpiryDays: 120}, 3, 60},
	{models.InventoryItem{Name: "Potatoes", Unit: "kg", Quantity: 0, CostPerUnit: 80, LowStockThreshold: 25, ExpiryDays: 21}, 9, 70},
	{models.InventoryItem{Name: "Tomatoes", Unit: "kg", Quantity: 12, CostPerUnit: 120, LowStockThreshold: 10, ExpiryDays: 6}, 3, 30},
	{models.InventoryItem{Name: "Passion Fruit", Unit: "kg", Quantity: 9, CostPerUnit: 250, LowStockThreshold: 5, ExpiryDays: 7}, 1.5, 20},
	{models.InventoryItem{Name: "Saffron", Unit: "g", Quantity: 40, CostPerUnit: 900, LowStockThreshold: 5, ExpiryDays: 365}, 0, 0},
}

var demoTables = []int{2, 2, 4, 4, 4, 6, 6, 8}

// order volume by hour of day, 0 outside service
var demoHourly = map[int]int{
	7: 1, 8: 2, 9: 1, 11: 2, 12: 5, 13: 6, 14: 3, 15: 1, 16: 1, 17: 2, 18: 4, 19: 6, 20: 5, 21: 2,
}

var demoSlots = []string{"12:00", "12:30", "13:00", "18:00", "18:30", "19:00", "19:30", "20:00", "21:00"}

// Seed writes a deterministic demo history of the given number of days ending at now.
// The same arguments always produce the same rows.
func Seed(db *gorm.DB, restaurantID uint, days int, now time.Time) error {
	if days <= 0 {
		return fmt.Errorf("seed days must be positive, got %d", days)
	}
	var existing int
	if err := db.Model(&models.Restaurant{}).Where("id = ?", restaurantID).Count(&existing).Error; err != nil {
		return fmt.Errorf("check restaurant %d: %w", restaurantID, err)
	}
	if existing > 0 {
		return fmt.Errorf("restaurant %d: %w", restaurantID, ErrAlreadySeeded)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin seed: %w", tx.Error)
	}
	s := &seeder{
		tx:    tx,
		rid:   restaurantID,
		rng:   rand.New(rand.NewSource(int64(restaurantID)*7919 + int64(days))),
		now:   now.UTC(),
		days:  days,
		today: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if err := s.run(); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

type seeder struct {
	tx    *gorm.DB
	rid   uint
	rng   *rand.Rand
	now   time.Time
	today time.Time
	days  int
	menu  []models.MenuItem
}

func (s *seeder) run() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"restaurant", s.restaurant},
		{"tables", s.tables},
		{"menu", s.menuItems},
		{"orders", s.orders},
		{"inventory", s.inventory},
		{"reservations", s.reservations},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}
	return nil
}

func (s *seeder) restaurant() error {
	r := models.Restaurant{ID: s.rid, TenantID: s.rid, Name: "Brigade Demo Kitchen", Address: "Moi Avenue, Nairobi"}
	return s.tx.Create(&r).Error
}

func (s *seeder) tables() error {
	for i, capacity := range demoTables {
		t := models.Table{RestaurantID: s.rid, Number: i + 1, Capacity: capacity}
		if err := s.tx.Create(&t).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) menuItems() error {
	for _, tmpl := range demoMenu {
		item := tmpl
		item.RestaurantID = s.rid
		item.IsAvailable = true
		if err := s.tx.Create(&item).Error; err != nil {
			return err
		}
		s.menu = append(s.menu, item)
	}
	return nil
}

func (s *seeder) pickMenuItem() int {
	total := 0
	for _, w := range demoWeights {
		total += w
	}
	n := s.rng.Intn(total)
	for i, w := range demoWeights {
		if n < w {
			return i
		}
		n -= w
	}
	return len(demoWeights) - 1
}

func (s *seeder) orders() error {
	types := []models.OrderType{models.OrderTypeDineIn, models.OrderTypeDineIn, models.OrderTypeTakeout, models.OrderTypeDelivery}
	for offset := s.days - 1; offset >= 0; offset-- {
		day := s.today.AddDate(0, 0, -offset)
		weekend := day.Weekday() == time.Friday || day.Weekday() == time.Saturday
		for hour := 0; hour < 24; hour++ {
			volume := demoHourly[hour]
			if weekend {
				volume += volume / 2
			}
			for n := 0; n < volume; n++ {
				created := day.Add(time.Duration(hour)*time.Hour + time.Duration(s.rng.Intn(60))*time.Minute)
				if created.After(s.now) {
					continue
				}
				if err := s.order(created, types[s.rng.Intn(len(types))]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *seeder) order(created time.Time, kind models.OrderType) error {
	o := models.Order{RestaurantID: s.rid, Type: kind, CreatedAt: created}
	if kind == models.OrderTypeDineIn {
		table := 1 + s.rng.Intn(len(demoTables))
		o.TableNumber = &table
	}

	longest := 0.0
	lines := 1 + s.rng.Intn(4)
	minutes := make([]float64, 0, lines)
	for i := 0; i < lines; i++ {
		item := s.menu[s.pickMenuItem()]
		line := models.OrderItem{MenuItemID: item.ID, Quantity: 1 + s.rng.Intn(2), UnitPrice: item.Price}
		o.Items = append(o.Items, line)
		o.Total += line.LineTotal()

		avg := item.AvgPrepMinutes
		if avg == 0 {
			avg = models.DefaultAvgPrepMinutes
		}
		m := avg * (0.8 + 0.6*s.rng.Float64())
		minutes = append(minutes, m)
		if m > longest {
			longest = m
		}
	}

	switch roll := s.rng.Intn(100); {
	case roll < 4:
		o.Status = models.OrderStatusCancelled
	case s.now.Sub(created) < 40*time.Minute:
		o.Status = models.OrderStatusPrep
	default:
		o.Status = models.OrderStatusServed
		done := created.Add(time.Duration((longest + 5) * float64(time.Minute)))
		o.CompletedAt = &done
	}

	if err := s.tx.Create(&o).Error; err != nil {
		return err
	}
	if o.Status != models.OrderStatusServed {
		return nil
	}
	for i, line := range o.Items {
		item := s.menuByID(line.MenuItemID)
		started := created.Add(2 * time.Minute)
		finished := started.Add(time.Duration(minutes[i] * float64(time.Minute)))
		actual := minutes[i]
		rec := models.PrepRecord{
			OrderItemID:   line.ID,
			Station:       item.PrepStation,
			StartedAt:     &started,
			CompletedAt:   &finished,
			ActualMinutes: &actual,
		}
		if err := s.tx.Create(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) menuByID(id uint) models.MenuItem {
	for _, m := range s.menu {
		if m.ID == id {
			return m
		}
	}
	return models.MenuItem{}
}

func (s *seeder) inventory() error {
	lookback := s.days
	if lookback > 30 {
		lookback = 30
	}
	for _, tmpl := range demoInventory {
		item := tmpl.item
		item.RestaurantID = s.rid
		if err := s.tx.Create(&item).Error; err != nil {
			return err
		}
		for offset := lookback - 1; offset >= 0; offset-- {
			at := s.today.AddDate(0, 0, -offset).Add(22 * time.Hour)
			if at.After(s.now) {
				continue
			}
			if tmpl.dailyUse > 0 {
				used := tmpl.dailyUse * (0.7 + 0.6*s.rng.Float64())
				if err := s.movement(item.ID, models.MovementOut, used, "kitchen usage", at); err != nil {
					return err
				}
			}
			if s.rng.Intn(10) == 0 && tmpl.dailyUse > 0 {
				if err := s.movement(item.ID, models.MovementOut, tmpl.dailyUse*0.3, "waste: spoiled", at.Add(time.Minute)); err != nil {
					return err
				}
			}
			if offset%7 == 0 && tmpl.restockTo > 0 {
				if err := s.movement(item.ID, models.MovementIn, tmpl.restockTo/2, "supplier delivery", at.Add(-14*time.Hour)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *seeder) movement(itemID uint, kind models.MovementType, qty float64, reason string, at time.Time) error {
	m := models.StockMovement{InventoryItemID: itemID, Type: kind, Quantity: qty, Reason: reason, CreatedAt: at}
	return s.tx.Create(&m).Error
}

func (s *seeder) reservations() error {
	names := []string{"Achieng", "Baraka", "Chebet", "Kamau", "Muthoni", "Njoroge", "Otieno", "Wanjiru", "Kiprop", "Zawadi"}
	for offset := s.days - 1; offset >= -7; offset-- {
		day := s.today.AddDate(0, 0, -offset)
		count := 4 + s.rng.Intn(6)
		for n := 0; n < count; n++ {
			party := 1 + s.rng.Intn(8)
			lead := s.rng.Intn(10)
			r := models.Reservation{
				RestaurantID:    s.rid,
				CustomerName:    names[s.rng.Intn(len(names))],
				PartySize:       party,
				Date:            day,
				Time:            demoSlots[s.rng.Intn(len(demoSlots))],
				DurationMinutes: 90,
				DepositPaid:     s.rng.Intn(10) < 3,
				CreatedAt:       day.AddDate(0, 0, -lead).Add(10 * time.Hour),
			}
			table := s.tableFor(party)
			r.TableID = &table
			r.Status = s.reservationStatus(day, r.DepositPaid)
			if err := s.tx.Create(&r).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// tableFor returns the id of the smallest table that fits the party
func (s *seeder) tableFor(party int) uint {
	var t models.Table
	err := s.tx.Where("restaurant_id = ? AND capacity >= ?", s.rid, party).Order("capacity, table_number").First(&t).Error
	if err != nil {
		return 0
	}
	return t.ID
}

func (s *seeder) reservationStatus(day time.Time, deposit bool) models.ReservationStatus {
	if !day.Before(s.today) {
		return models.ReservationConfirmed
	}
	noShowOdds := 14
	if deposit {
		noShowOdds = 5
	}
	switch roll := s.rng.Intn(100); {
	case roll < noShowOdds:
		return models.ReservationNoShow
	case roll < noShowOdds+8:
		return models.ReservationCancelled
	default:
		return models.ReservationCompleted
	}
}
