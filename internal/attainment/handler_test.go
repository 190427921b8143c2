package attainment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type stubReporter struct {
	lastOwner OwnerQuery
	lastBatch BatchRequest
	results   []Result
	reports   []UserReport
	err       error
}

func (s *stubReporter) ForOwner(_ context.Context, q OwnerQuery) ([]Result, error) {
	s.lastOwner = q
	return s.results, s.err
}

func (s *stubReporter) BatchReport(_ context.Context, req BatchRequest) ([]UserReport, error) {
	s.lastBatch = req
	return s.reports, s.err
}

func newTestApp(svc Reporter, userID uint, role models.UserRole) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, userID)
		c.Locals(auth.CtxUserRoleKey, role)
		return c.Next()
	})
	app.Get("/reports/attainment", AttainmentHandler(svc))
	app.Get("/reports/attainment/batch", BatchReportHandler(svc, 6))
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doGet(t *testing.T, app *fiber.App, url string) (int, envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("response is not JSON: %s", body)
	}
	return resp.StatusCode, env
}

func TestAttainmentHandler_Success(t *testing.T) {
	owner := uint(5)
	svc := &stubReporter{results: []Result{{
		TargetID:       1,
		OwnerID:        &owner,
		TargetType:     models.TargetMonthly,
		TargetPeriod:   "2025-07",
		TargetAmount:   decimal.NewFromInt(3_000_000),
		AchievedAmount: decimal.NewFromInt(1_500_000),
		Percentage:     50,
	}}}
	app := newTestApp(svc, 1, models.RoleManager)

	status, env := doGet(t, app, "/reports/attainment?userId=5&targetType=monthly")
	if status != fiber.StatusOK || !env.Success {
		t.Fatalf("unexpected response %d %+v", status, env)
	}
	if svc.lastOwner.OwnerID == nil || *svc.lastOwner.OwnerID != 5 || svc.lastOwner.Type != models.TargetMonthly {
		t.Errorf("unexpected query: %+v", svc.lastOwner)
	}

	var results []Result
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Percentage != 50 || !results[0].AchievedAmount.Equal(decimal.NewFromInt(1_500_000)) {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestAttainmentHandler_EmptyListIsNotNull(t *testing.T) {
	app := newTestApp(&stubReporter{}, 1, models.RoleAdmin)

	status, env := doGet(t, app, "/reports/attainment")
	if status != fiber.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("expected empty array, got %d %s", status, env.Data)
	}
}

func TestAttainmentHandler_StoreFailureIs500(t *testing.T) {
	app := newTestApp(&stubReporter{err: errors.New("db down")}, 1, models.RoleAdmin)

	status, env := doGet(t, app, "/reports/attainment?targetType=MONTHLY")
	if status != fiber.StatusInternalServerError || env.Success || env.Error == "" {
		t.Fatalf("unexpected response %d %+v", status, env)
	}
}

func TestAttainmentHandler_BadTargetType(t *testing.T) {
	app := newTestApp(&stubReporter{}, 1, models.RoleAdmin)

	status, env := doGet(t, app, "/reports/attainment?targetType=WEEKLY")
	if status != fiber.StatusBadRequest || env.Success {
		t.Fatalf("unexpected response %d %+v", status, env)
	}
}

func TestAttainmentHandler_SalesRestrictedToSelf(t *testing.T) {
	svc := &stubReporter{}
	app := newTestApp(svc, 9, models.RoleSales)

	status, _ := doGet(t, app, "/reports/attainment?userId=3")
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}

	status, _ = doGet(t, app, "/reports/attainment?scope=company")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if svc.lastOwner.OwnerID == nil || *svc.lastOwner.OwnerID != 9 || svc.lastOwner.CompanyOnly {
		t.Errorf("sales caller should be pinned to own id: %+v", svc.lastOwner)
	}
}

func TestAttainmentHandler_CompanyScope(t *testing.T) {
	svc := &stubReporter{}
	app := newTestApp(svc, 1, models.RoleFinance)

	if status, _ := doGet(t, app, "/reports/attainment?scope=company&targetType=YEARLY"); status != fiber.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if !svc.lastOwner.CompanyOnly || svc.lastOwner.OwnerID != nil || svc.lastOwner.Type != models.TargetYearly {
		t.Errorf("unexpected query: %+v", svc.lastOwner)
	}
}

func TestBatchReportHandler(t *testing.T) {
	svc := &stubReporter{reports: []UserReport{{UserID: 1, UserName: "Ayşe", Role: models.RoleSales, Results: []Result{}}}}
	app := newTestApp(svc, 1, models.RoleAdmin)

	status, env := doGet(t, app, "/reports/attainment/batch?targetType=QUARTERLY&periods=4&userIds=1,2&role=sales")
	if status != fiber.StatusOK || !env.Success {
		t.Fatalf("unexpected response %d %+v", status, env)
	}
	req := svc.lastBatch
	if req.TargetType != models.TargetQuarterly || req.Periods != 4 || len(req.UserIDs) != 2 || len(req.Roles) != 1 {
		t.Errorf("unexpected batch request: %+v", req)
	}

	var reports []UserReport
	if err := json.Unmarshal(env.Data, &reports); err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].Results == nil {
		t.Errorf("unexpected reports: %+v", reports)
	}
}

func TestBatchReportHandler_Defaults(t *testing.T) {
	svc := &stubReporter{}
	app := newTestApp(svc, 1, models.RoleAdmin)

	if status, _ := doGet(t, app, "/reports/attainment/batch"); status != fiber.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if svc.lastBatch.Periods != 6 || svc.lastBatch.TargetType != models.TargetMonthly {
		t.Errorf("defaults not applied: %+v", svc.lastBatch)
	}
}

func TestBatchReportHandler_Validation(t *testing.T) {
	app := newTestApp(&stubReporter{}, 1, models.RoleAdmin)

	for _, url := range []string{
		"/reports/attainment/batch?periods=0",
		"/reports/attainment/batch?periods=61",
		"/reports/attainment/batch?userIds=1,x",
		"/reports/attainment/batch?role=owner",
	} {
		if status, env := doGet(t, app, url); status != fiber.StatusBadRequest || env.Success {
			t.Errorf("%s: expected 400, got %d", url, status)
		}
	}
}
