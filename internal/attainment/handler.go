package attainment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Reporter is the part of Service the HTTP layer needs.
type Reporter interface {
	ForOwner(ctx context.Context, q OwnerQuery) ([]Result, error)
	BatchReport(ctx context.Context, req BatchRequest) ([]UserReport, error)
}

var errForbiddenOwner = errors.New("sales users can only view their own targets")

func success(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func failure(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func parseTargetType(raw string, def models.TargetType) (models.TargetType, error) {
	if raw == "" {
		return def, nil
	}
	tt := models.TargetType(strings.ToUpper(strings.TrimSpace(raw)))
	if !tt.Valid() {
		return "", fmt.Errorf("targetType geçersiz: %s", raw)
	}
	return tt, nil
}

func parseUintList(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("geçersiz kullanıcı ID: %s", part)
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}

// resolveOwner: sales rolü sadece kendi hedeflerini görebilir, diğer roller
// userId query'si ile istediği kullanıcıyı seçer.
func resolveOwner(c *fiber.Ctx) (*uint, error) {
	role, ok := auth.CurrentRole(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	var requested *uint
	if raw := c.Query("userId"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "userId geçersiz")
		}
		id := uint(n)
		requested = &id
	}

	if role != models.RoleSales {
		return requested, nil
	}

	self, ok := auth.CurrentUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}
	if requested != nil && *requested != self {
		return nil, errForbiddenOwner
	}
	return &self, nil
}

// GET /api/reports/attainment?userId=1&targetType=MONTHLY&scope=company
func AttainmentHandler(svc Reporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetType, err := parseTargetType(c.Query("targetType"), models.TargetMonthly)
		if err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}

		ownerID, err := resolveOwner(c)
		if err != nil {
			var fe *fiber.Error
			switch {
			case errors.As(err, &fe):
				return failure(c, fe.Code, fe.Message)
			case errors.Is(err, errForbiddenOwner):
				return failure(c, fiber.StatusForbidden, "Sadece kendi hedeflerinizi görüntüleyebilirsiniz")
			default:
				return failure(c, fiber.StatusInternalServerError, err.Error())
			}
		}

		q := OwnerQuery{OwnerID: ownerID, Type: targetType}
		if ownerID == nil && c.Query("scope") == "company" {
			q.CompanyOnly = true
		}

		results, err := svc.ForOwner(c.UserContext(), q)
		if err != nil {
			return failure(c, fiber.StatusInternalServerError, "Hedef gerçekleşmeleri hesaplanamadı")
		}
		if results == nil {
			results = []Result{}
		}
		return success(c, results)
	}
}

// GET /api/reports/attainment/batch?targetType=MONTHLY&periods=6&role=sales&userIds=1,2
func BatchReportHandler(svc Reporter, defaultPeriods int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetType, err := parseTargetType(c.Query("targetType"), models.TargetMonthly)
		if err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}

		periods := c.QueryInt("periods", defaultPeriods)
		if periods < 1 || periods > 60 {
			return failure(c, fiber.StatusBadRequest, "periods 1 ile 60 arasında olmalı")
		}

		userIDs, err := parseUintList(c.Query("userIds"))
		if err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}

		var roles []models.UserRole
		if raw := c.Query("role"); raw != "" {
			role := models.UserRole(strings.ToLower(raw))
			if !role.Valid() {
				return failure(c, fiber.StatusBadRequest, "role geçersiz")
			}
			roles = append(roles, role)
		}

		reports, err := svc.BatchReport(c.UserContext(), BatchRequest{
			UserIDs:    userIDs,
			Roles:      roles,
			TargetType: targetType,
			Periods:    periods,
		})
		if err != nil {
			return failure(c, fiber.StatusInternalServerError, "Toplu rapor oluşturulamadı")
		}
		if reports == nil {
			reports = []UserReport{}
		}
		return success(c, reports)
	}
}
