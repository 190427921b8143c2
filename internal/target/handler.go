package target

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/audit"
	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/logging"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/period"
	"backoffice-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateTargetRequest struct {
	OwnerID      *uint            `json:"owner_id"` // nil: şirket geneli
	TargetType   string           `json:"target_type"`
	TargetPeriod string           `json:"target_period"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	IsActive     *bool            `json:"is_active"`
	Notes        string           `json:"notes"`
}

type UpdateTargetRequest struct {
	TargetPeriod *string          `json:"target_period"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	IsActive     *bool            `json:"is_active"`
	Notes        *string          `json:"notes"`
}

func parseID(c *fiber.Ctx) (uint, error) {
	n, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz hedef ID")
	}
	return uint(n), nil
}

func storeError(err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	}
	return fiber.NewError(fiber.StatusInternalServerError, failMsg)
}

// validate alanları kontrol eder ve (owner, tip, dönem) için ikinci bir aktif
// hedef oluşmasını engeller.
func validate(ctx context.Context, db *gorm.DB, t models.Target) error {
	if !t.TargetType.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "target_type MONTHLY, QUARTERLY veya YEARLY olmalı")
	}
	if err := period.Validate(t.TargetPeriod, t.TargetType); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if t.TargetAmount.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "target_amount negatif olamaz")
	}

	if t.OwnerID != nil {
		if _, err := store.NewUserStore(db).Get(ctx, *t.OwnerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "owner_id için kullanıcı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı sorgulanamadı")
		}
	}

	if !t.IsActive {
		return nil
	}
	dup, err := store.NewTargetStore(db).HasActiveDuplicate(ctx, t, t.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Hedefler sorgulanamadı")
	}
	if dup {
		return fiber.NewError(fiber.StatusConflict, "Bu dönem için aktif bir hedef zaten var")
	}
	return nil
}

func writeAudit(c *fiber.Ctx, db *gorm.DB, logger *slog.Logger, action models.AuditAction, id uint, desc string, before, after any) {
	userID, _ := auth.CurrentUserID(c)
	err := audit.WriteLog(c.UserContext(), db, audit.LogOptions{
		UserID:      userID,
		UserName:    auth.CurrentUserName(c),
		EntityType:  models.EntityTarget,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
	if err != nil {
		logger.Error("audit kaydı yazılamadı",
			"entity_type", models.EntityTarget,
			"entity_id", id,
			"action", action,
			logging.FieldUserID, userID,
			logging.FieldError, err.Error())
	}
}

// GET /api/targets?owner_id=&target_type=&period=&active=true
// sales rolü sadece kendi hedeflerini görür.
func ListTargetsHandler(db *gorm.DB) fiber.Handler {
	targets := store.NewTargetStore(db)

	return func(c *fiber.Ctx) error {
		var q attainment.TargetQuery

		if raw := c.Query("owner_id"); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || n == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "owner_id geçersiz")
			}
			id := uint(n)
			q.OwnerID = &id
		}
		if c.Query("scope") == "company" {
			q.CompanyOnly = true
		}
		if raw := c.Query("target_type"); raw != "" {
			q.Type = models.TargetType(strings.ToUpper(raw))
			if !q.Type.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "target_type geçersiz")
			}
		}
		if p := c.Query("period"); p != "" {
			q.Periods = []string{p}
		}
		q.ActiveOnly = c.QueryBool("active", false)

		if role, _ := auth.CurrentRole(c); role == models.RoleSales {
			self, ok := auth.CurrentUserID(c)
			if !ok {
				return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
			}
			q.OwnerID = &self
			q.CompanyOnly = false
		}

		list, err := targets.ListTargets(c.UserContext(), q)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hedefler listelenemedi")
		}
		if list == nil {
			list = []models.Target{}
		}
		return c.JSON(list)
	}
}

// GET /api/targets/:id
func GetTargetHandler(db *gorm.DB) fiber.Handler {
	targets := store.NewTargetStore(db)

	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		t, err := targets.Get(c.UserContext(), id)
		if err != nil {
			return storeError(err, "Hedef bulunamadı", "Hedef okunamadı")
		}

		if role, _ := auth.CurrentRole(c); role == models.RoleSales {
			self, _ := auth.CurrentUserID(c)
			if t.OwnerID == nil || *t.OwnerID != self {
				return fiber.NewError(fiber.StatusForbidden, "Sadece kendi hedeflerinizi görüntüleyebilirsiniz")
			}
		}
		return c.JSON(t)
	}
}

// POST /api/targets (admin, manager)
func CreateTargetHandler(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	logger = logging.WithComponent(logger, logging.ComponentAudit)
	targets := store.NewTargetStore(db)

	return func(c *fiber.Ctx) error {
		var body CreateTargetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.TargetAmount == nil {
			return fiber.NewError(fiber.StatusBadRequest, "target_amount zorunlu")
		}

		t := models.Target{
			OwnerID:      body.OwnerID,
			TargetType:   models.TargetType(strings.ToUpper(strings.TrimSpace(body.TargetType))),
			TargetPeriod: strings.TrimSpace(body.TargetPeriod),
			TargetAmount: *body.TargetAmount,
			IsActive:     true,
			Notes:        strings.TrimSpace(body.Notes),
		}
		if body.IsActive != nil {
			t.IsActive = *body.IsActive
		}
		t.CreatedBy, _ = auth.CurrentUserID(c)

		if err := validate(c.UserContext(), db, t); err != nil {
			return err
		}

		if err := targets.Create(c.UserContext(), &t); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hedef oluşturulamadı")
		}

		writeAudit(c, db, logger, models.AuditActionCreate, t.ID, "Hedef oluşturuldu: "+t.TargetPeriod, nil, t)
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// PUT /api/targets/:id (admin, manager)
// Sahip ve tip değiştirilemez; yanlış girildiyse hedef silinip yeniden oluşturulur.
func UpdateTargetHandler(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	logger = logging.WithComponent(logger, logging.ComponentAudit)
	targets := store.NewTargetStore(db)

	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateTargetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := targets.Get(c.UserContext(), id)
		if err != nil {
			return storeError(err, "Hedef bulunamadı", "Hedef okunamadı")
		}
		before := t

		if body.TargetPeriod != nil {
			t.TargetPeriod = strings.TrimSpace(*body.TargetPeriod)
		}
		if body.TargetAmount != nil {
			t.TargetAmount = *body.TargetAmount
		}
		if body.IsActive != nil {
			t.IsActive = *body.IsActive
		}
		if body.Notes != nil {
			t.Notes = strings.TrimSpace(*body.Notes)
		}

		if err := validate(c.UserContext(), db, t); err != nil {
			return err
		}

		if err := targets.Save(c.UserContext(), &t); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hedef güncellenemedi")
		}

		writeAudit(c, db, logger, models.AuditActionUpdate, t.ID, "Hedef güncellendi: "+t.TargetPeriod, before, t)
		return c.JSON(t)
	}
}

// DELETE /api/targets/:id (admin, manager)
func DeleteTargetHandler(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	logger = logging.WithComponent(logger, logging.ComponentAudit)
	targets := store.NewTargetStore(db)

	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		t, err := targets.Get(c.UserContext(), id)
		if err != nil {
			return storeError(err, "Hedef bulunamadı", "Hedef okunamadı")
		}

		if err := targets.Delete(c.UserContext(), id); err != nil {
			return storeError(err, "Hedef bulunamadı", "Hedef silinemedi")
		}

		writeAudit(c, db, logger, models.AuditActionDelete, id, "Hedef silindi: "+t.TargetPeriod, t, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
