package dashboard_test

import (
	"testing"
	"time"

	"backoffice-backend/internal/dashboard"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/store"
	"backoffice-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func TestRevenueChart(t *testing.T) {
	db := testutil.OpenDB(t)
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	s1 := testutil.CreateUser(t, db, "s1", models.RoleSales)
	testutil.CreateInvoice(t, db, &s1.ID, models.InvoicePaid, testutil.Noon(2025, 6, 10), 100)
	testutil.CreateInvoice(t, db, &s1.ID, models.InvoicePaid, testutil.Noon(2025, 7, 10), 200)
	testutil.CreateInvoice(t, db, nil, models.InvoicePaid, testutil.Noon(2025, 7, 11), 50)
	testutil.CreateInvoice(t, db, &s1.ID, models.InvoicePending, testutil.Noon(2025, 7, 12), 999)

	now := func() time.Time { return time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC) }
	handler := dashboard.RevenueChartHandler(store.NewInvoiceStore(db), time.UTC, now)

	adminApp := fiber.New()
	adminApp.Use(testutil.AsUser(admin))
	adminApp.Get("/chart", handler)

	var resp dashboard.RevenueChartResponse
	if status := testutil.Do(t, adminApp, "GET", "/chart?count=3", nil, &resp); status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(resp.Points) != 3 || resp.Points[0].Label != "2025-05" || resp.Points[2].Label != "2025-07" {
		t.Fatalf("unexpected points: %+v", resp.Points)
	}
	if !resp.Points[2].Revenue.Equal(decimal.NewFromInt(250)) || !resp.GrandTotal.Equal(decimal.NewFromInt(350)) {
		t.Errorf("company revenue: july=%s total=%s", resp.Points[2].Revenue, resp.GrandTotal)
	}
	if resp.From != "2025-05-01" || resp.To != "2025-07-31" {
		t.Errorf("range = %s..%s", resp.From, resp.To)
	}

	salesApp := fiber.New()
	salesApp.Use(testutil.AsUser(s1))
	salesApp.Get("/chart", handler)

	if status := testutil.Do(t, salesApp, "GET", "/chart?count=2&owner_id=999", nil, &resp); status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if resp.OwnerID == nil || *resp.OwnerID != s1.ID || !resp.GrandTotal.Equal(decimal.NewFromInt(300)) {
		t.Errorf("sales chart should be pinned to the caller: %+v", resp)
	}

	if status := testutil.Do(t, adminApp, "GET", "/chart?period=weekly", nil, nil); status != fiber.StatusBadRequest {
		t.Errorf("weekly = %d, want 400", status)
	}
}
