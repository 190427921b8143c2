// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"backoffice-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens a private in-memory SQLite database with the schema migrated.
// A single connection keeps every goroutine on the same in-memory database.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Target{}, &models.Invoice{}, &models.AuditLog{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, name string, role models.UserRole) models.User {
	t.Helper()
	u := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateTarget(t testing.TB, db *gorm.DB, owner *uint, typ models.TargetType, key string, amount int64) models.Target {
	t.Helper()
	tg := models.Target{
		OwnerID:      owner,
		TargetType:   typ,
		TargetPeriod: key,
		TargetAmount: decimal.NewFromInt(amount),
		IsActive:     true,
	}
	if err := db.Create(&tg).Error; err != nil {
		t.Fatalf("create target: %v", err)
	}
	return tg
}

var invoiceSeq int

func CreateInvoice(t testing.TB, db *gorm.DB, createdBy *uint, status models.InvoiceStatus, date time.Time, amount int64) models.Invoice {
	t.Helper()
	invoiceSeq++
	inv := models.Invoice{
		InvoiceNumber: fmt.Sprintf("INV-%05d", invoiceSeq),
		CustomerName:  "Acme",
		InvoiceDate:   date,
		Status:        status,
		TotalAmount:   decimal.NewFromInt(amount),
		CreatedBy:     createdBy,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func UintPtr(v uint) *uint { return &v }

// Noon returns 12:00 UTC on the given day.
func Noon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
