// Package dbtest opens throwaway in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pedro5g/forfly/internal/db"
	"github.com/pedro5g/forfly/internal/models"
)

// Open returns a migrated database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection keeps transactions from tripping over shared-cache table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return conn
}

func SeedManager(t *testing.T, conn *gorm.DB, name, email string) (models.User, models.Restaurant) {
	t.Helper()

	manager := models.User{Name: name, Email: email, Role: models.RoleManager}
	if err := conn.Create(&manager).Error; err != nil {
		t.Fatalf("seed manager: %v", err)
	}
	restaurant := models.Restaurant{Name: name + "'s Pizza", ManagerID: &manager.ID}
	if err := conn.Create(&restaurant).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return manager, restaurant
}

func SeedCustomer(t *testing.T, conn *gorm.DB, name, email string) models.User {
	t.Helper()

	customer := models.User{Name: name, Email: email, Role: models.RoleCustomer}
	if err := conn.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func SeedProduct(t *testing.T, conn *gorm.DB, restaurantID, name string, priceInCents int64) models.Product {
	t.Helper()

	product := models.Product{RestaurantID: restaurantID, Name: name, PriceInCents: priceInCents, Available: true}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// SeedOrder inserts an order directly, bypassing price lookup, so tests can
// control status, total and creation time.
func SeedOrder(t *testing.T, conn *gorm.DB, o models.Order) models.Order {
	t.Helper()

	if o.Status == "" {
		o.Status = models.StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.CreatedAt = o.CreatedAt.UTC()
	if err := conn.Create(&o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}
