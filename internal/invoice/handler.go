package invoice

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"backoffice-backend/internal/audit"
	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/logging"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type CreateInvoiceRequest struct {
	InvoiceNumber string           `json:"invoice_number"`
	CustomerName  string           `json:"customer_name"`
	InvoiceDate   string           `json:"invoice_date"` // "2025-07-15" veya RFC3339
	Status        string           `json:"status"`       // boşsa DRAFT
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	CreatedBy     *uint            `json:"created_by"` // sales için yok sayılır
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// allowedTransitions: CANCELLED son durumdur.
var allowedTransitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoiceDraft:   {models.InvoicePending, models.InvoicePaid, models.InvoiceCancelled},
	models.InvoicePending: {models.InvoicePaid, models.InvoiceCancelled},
	models.InvoicePaid:    {models.InvoiceCancelled},
}

func canTransition(from, to models.InvoiceStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// parseDate reads bare dates as midnight in loc so they land in the same
// period windows the attainment report resolves.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func writeAudit(c *fiber.Ctx, db *gorm.DB, logger *slog.Logger, action models.AuditAction, id uint, desc string, before, after any) {
	userID, _ := auth.CurrentUserID(c)
	err := audit.WriteLog(c.UserContext(), db, audit.LogOptions{
		UserID:      userID,
		UserName:    auth.CurrentUserName(c),
		EntityType:  models.EntityInvoice,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
	if err != nil {
		logger.Error("audit kaydı yazılamadı",
			"entity_type", models.EntityInvoice,
			"entity_id", id,
			"action", action,
			logging.FieldUserID, userID,
			logging.FieldError, err.Error())
	}
}

// POST /api/invoices
func CreateInvoiceHandler(db *gorm.DB, loc *time.Location, logger *slog.Logger) fiber.Handler {
	invoices := store.NewInvoiceStore(db)
	logger = logging.WithComponent(logger, logging.ComponentAudit)

	return func(c *fiber.Ctx) error {
		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.InvoiceNumber = strings.TrimSpace(body.InvoiceNumber)
		if body.InvoiceNumber == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invoice_number zorunlu")
		}
		if body.TotalAmount == nil || body.TotalAmount.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "total_amount zorunlu ve negatif olamaz")
		}

		date, err := parseDate(body.InvoiceDate, loc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invoice_date formatı YYYY-MM-DD olmalı")
		}

		status := models.InvoiceDraft
		if body.Status != "" {
			status = models.InvoiceStatus(strings.ToUpper(body.Status))
			if !status.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "status geçersiz")
			}
		}

		createdBy := body.CreatedBy
		if role, _ := auth.CurrentRole(c); role == models.RoleSales || createdBy == nil {
			if self, ok := auth.CurrentUserID(c); ok {
				createdBy = &self
			}
		}

		inv := models.Invoice{
			InvoiceNumber: body.InvoiceNumber,
			CustomerName:  strings.TrimSpace(body.CustomerName),
			InvoiceDate:   date,
			Status:        status,
			TotalAmount:   *body.TotalAmount,
			CreatedBy:     createdBy,
		}
		if status == models.InvoicePaid {
			now := time.Now()
			inv.PaidAt = &now
		}

		exists, err := invoices.NumberExists(c.UserContext(), inv.InvoiceNumber)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Faturalar sorgulanamadı")
		}
		if exists {
			return fiber.NewError(fiber.StatusConflict, "Bu fatura numarası zaten kayıtlı")
		}

		if err := invoices.Create(c.UserContext(), &inv); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura oluşturulamadı")
		}

		writeAudit(c, db, logger, models.AuditActionCreate, inv.ID, "Fatura oluşturuldu: "+inv.InvoiceNumber, nil, inv)
		return c.Status(fiber.StatusCreated).JSON(inv)
	}
}

// GET /api/invoices?status=PAID&from=2025-07-01&to=2025-07-31&created_by=3
func ListInvoicesHandler(db *gorm.DB, loc *time.Location) fiber.Handler {
	invoices := store.NewInvoiceStore(db)

	return func(c *fiber.Ctx) error {
		var f store.InvoiceFilter

		if raw := c.Query("status"); raw != "" {
			f.Status = models.InvoiceStatus(strings.ToUpper(raw))
			if !f.Status.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "status geçersiz")
			}
		}
		if raw := c.Query("from"); raw != "" {
			from, err := time.ParseInLocation(dateLayout, raw, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from formatı YYYY-MM-DD olmalı")
			}
			f.From = &from
		}
		if raw := c.Query("to"); raw != "" {
			to, err := time.ParseInLocation(dateLayout, raw, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to formatı YYYY-MM-DD olmalı")
			}
			// gün sonuna kadar dahil
			end := to.AddDate(0, 0, 1).Add(-time.Millisecond)
			f.To = &end
		}
		if raw := c.Query("created_by"); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || n == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "created_by geçersiz")
			}
			id := uint(n)
			f.CreatedBy = &id
		}

		if role, _ := auth.CurrentRole(c); role == models.RoleSales {
			self, ok := auth.CurrentUserID(c)
			if !ok {
				return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
			}
			f.CreatedBy = &self
		}

		list, err := invoices.List(c.UserContext(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Faturalar listelenemedi")
		}
		if list == nil {
			list = []models.Invoice{}
		}
		return c.JSON(list)
	}
}

// PUT /api/invoices/:id/status (admin, manager, finance)
func UpdateInvoiceStatusHandler(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	invoices := store.NewInvoiceStore(db)
	logger = logging.WithComponent(logger, logging.ComponentAudit)

	return func(c *fiber.Ctx) error {
		n, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz fatura ID")
		}

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		next := models.InvoiceStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
		if !next.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "status geçersiz")
		}

		inv, err := invoices.Get(c.UserContext(), uint(n))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura okunamadı")
		}
		if !canTransition(inv.Status, next) {
			return fiber.NewError(fiber.StatusConflict, "Fatura "+string(inv.Status)+" durumundan "+string(next)+" durumuna geçemez")
		}
		before := inv

		inv.Status = next
		if next == models.InvoicePaid {
			now := time.Now()
			inv.PaidAt = &now
		} else {
			inv.PaidAt = nil
		}

		if err := invoices.Save(c.UserContext(), &inv); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura güncellenemedi")
		}

		writeAudit(c, db, logger, models.AuditActionUpdate, inv.ID, "Fatura durumu: "+string(before.Status)+" -> "+string(next), before, inv)
		return c.JSON(inv)
	}
}
