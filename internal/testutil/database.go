// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"testing"

	"pennywise/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.User{},
	&models.Currency{},
	&models.ExchangeRate{},
	&models.Category{},
	&models.Expense{},
	&models.BudgetGroup{},
	&models.Budget{},
	&models.AuditLog{},
}

// Currencies seeded into every test database. XTS is inactive.
var seedCurrencies = []models.Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2, IsActive: true},
	{Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, IsActive: true},
	{Code: "GBP", Name: "British Pound", Symbol: "£", DecimalPlaces: 2, IsActive: true},
	{Code: "XTS", Name: "Testing Code", Symbol: "", DecimalPlaces: 2, IsActive: false},
}

// SetupTestDB creates a private in-memory SQLite database with all models
// migrated and the currency registry seeded. Each call gets its own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", nextID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	for _, c := range seedCurrencies {
		c := c
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("failed to seed currency %s: %v", c.Code, err)
		}
	}

	t.Cleanup(func() { TeardownTestDB(t, db) })
	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
