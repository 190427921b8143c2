package store

import (
	"context"
	"time"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStore struct {
	db *gorm.DB
}

func NewInvoiceStore(db *gorm.DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

// SumRevenue sums total_amount over invoices with the requested status whose
// invoice_date lies in the inclusive period range.
func (s *InvoiceStore) SumRevenue(ctx context.Context, q attainment.RevenueQuery) (attainment.Revenue, error) {
	status := q.Status
	if status == "" {
		status = models.InvoicePaid
	}

	dbq := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("status = ?", status).
		Where("invoice_date >= ? AND invoice_date <= ?", q.Period.Start, q.Period.End)
	if q.Attribution.OwnerID != nil {
		dbq = dbq.Where("created_by = ?", *q.Attribution.OwnerID)
	}

	var row struct {
		Total decimal.Decimal
		Count int64
	}
	if err := dbq.Scan(&row).Error; err != nil {
		return attainment.Revenue{}, wrap("sum revenue", err)
	}
	return attainment.Revenue{Total: row.Total, Count: row.Count}, nil
}

type InvoiceFilter struct {
	Status    models.InvoiceStatus
	CreatedBy *uint
	From      *time.Time
	To        *time.Time
}

func (s *InvoiceStore) List(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	dbq := s.db.WithContext(ctx).Model(&models.Invoice{})
	if f.Status != "" {
		dbq = dbq.Where("status = ?", f.Status)
	}
	if f.CreatedBy != nil {
		dbq = dbq.Where("created_by = ?", *f.CreatedBy)
	}
	if f.From != nil {
		dbq = dbq.Where("invoice_date >= ?", *f.From)
	}
	if f.To != nil {
		dbq = dbq.Where("invoice_date <= ?", *f.To)
	}

	var invoices []models.Invoice
	if err := dbq.Order("invoice_date DESC").Order("id DESC").Find(&invoices).Error; err != nil {
		return nil, wrap("list invoices", err)
	}
	return invoices, nil
}

func (s *InvoiceStore) Get(ctx context.Context, id uint) (models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	return inv, wrap("get invoice", err)
}

func (s *InvoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	return wrap("create invoice", s.db.WithContext(ctx).Create(inv).Error)
}

func (s *InvoiceStore) Save(ctx context.Context, inv *models.Invoice) error {
	return wrap("save invoice", s.db.WithContext(ctx).Save(inv).Error)
}

func (s *InvoiceStore) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("invoice_number = ?", number).Count(&count).Error
	if err != nil {
		return false, wrap("check invoice number", err)
	}
	return count > 0, nil
}
