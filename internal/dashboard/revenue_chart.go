package dashboard

import (
	"strconv"
	"strings"
	"time"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/period"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type RevenueChartPoint struct {
	Label        string          `json:"label"` // dönem anahtarı: 2025-07, 2025-Q3, 2025
	Revenue      decimal.Decimal `json:"revenue"`
	InvoiceCount int64           `json:"invoice_count"`
}

type RevenueChartResponse struct {
	OwnerID      *uint               `json:"owner_id"` // nil: şirket geneli
	Period       models.TargetType   `json:"period"`
	From         string              `json:"from"`
	To           string              `json:"to"`
	Points       []RevenueChartPoint `json:"points"`
	GrandTotal   decimal.Decimal     `json:"grand_total"`
	InvoiceCount int64               `json:"invoice_count"`
}

// GET /api/dashboard/revenue-chart?period=monthly&count=12&owner_id=3
// Sadece PAID faturalar sayılır. sales rolü kendi cirosunu görür.
func RevenueChartHandler(revenue attainment.RevenueAggregator, loc *time.Location, now func() time.Time) fiber.Handler {
	if now == nil {
		now = time.Now
	}

	return func(c *fiber.Ctx) error {
		typ := models.TargetType(strings.ToUpper(c.Query("period", "monthly")))
		if !typ.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "period monthly, quarterly veya yearly olmalı")
		}

		count := c.QueryInt("count", 0)
		if count == 0 {
			switch typ {
			case models.TargetQuarterly:
				count = 8
			case models.TargetYearly:
				count = 5
			default:
				count = 12
			}
		}
		if count < 1 || count > 60 {
			return fiber.NewError(fiber.StatusBadRequest, "count 1 ile 60 arasında olmalı")
		}

		var ownerID *uint
		if raw := c.Query("owner_id"); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || n == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "owner_id geçersiz")
			}
			id := uint(n)
			ownerID = &id
		}
		if role, _ := auth.CurrentRole(c); role == models.RoleSales {
			self, ok := auth.CurrentUserID(c)
			if !ok {
				return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
			}
			ownerID = &self
		}

		keys := period.Recent(typ, count, now(), loc)
		resp := RevenueChartResponse{
			OwnerID:    ownerID,
			Period:     typ,
			Points:     make([]RevenueChartPoint, 0, len(keys)),
			GrandTotal: decimal.Zero,
		}

		for i, key := range keys {
			rng, err := period.Resolve(key, typ, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Dönem hesaplanamadı")
			}
			if i == 0 {
				resp.From = rng.Start.Format("2006-01-02")
			}
			resp.To = rng.End.Format("2006-01-02")

			rev, err := revenue.SumRevenue(c.UserContext(), attainment.RevenueQuery{
				Period:      rng,
				Attribution: attainment.AttributionFilter{OwnerID: ownerID},
				Status:      models.InvoicePaid,
			})
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
			}

			resp.Points = append(resp.Points, RevenueChartPoint{
				Label:        key,
				Revenue:      rev.Total,
				InvoiceCount: rev.Count,
			})
			resp.GrandTotal = resp.GrandTotal.Add(rev.Total)
			resp.InvoiceCount += rev.Count
		}

		return c.JSON(resp)
	}
}
