package attainment_test

import (
	"context"
	"testing"
	"time"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/store"
	"backoffice-backend/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestAttainmentAgainstDatabase(t *testing.T) {
	db := testutil.OpenDB(t)
	u1 := testutil.CreateUser(t, db, "u1", models.RoleSales)
	u2 := testutil.CreateUser(t, db, "u2", models.RoleSales)

	testutil.CreateTarget(t, db, &u1.ID, models.TargetMonthly, "2025-07", 3_000_000)
	testutil.CreateTarget(t, db, nil, models.TargetMonthly, "2025-07", 4_000_000)

	testutil.CreateInvoice(t, db, &u1.ID, models.InvoicePaid, time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC), 1_000_000)
	testutil.CreateInvoice(t, db, &u1.ID, models.InvoicePaid, time.Date(2025, 7, 20, 15, 0, 0, 0, time.UTC), 500_000)
	testutil.CreateInvoice(t, db, &u1.ID, models.InvoicePending, time.Date(2025, 7, 21, 15, 0, 0, 0, time.UTC), 700_000)
	testutil.CreateInvoice(t, db, &u2.ID, models.InvoicePaid, time.Date(2025, 7, 22, 15, 0, 0, 0, time.UTC), 500_000)

	svc := attainment.NewService(store.NewTargetStore(db), store.NewInvoiceStore(db), store.NewUserStore(db), attainment.Options{
		Location:    time.UTC,
		Concurrency: 3,
		Now:         func() time.Time { return time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC) },
	})
	ctx := context.Background()

	own, err := svc.ForOwner(ctx, attainment.OwnerQuery{OwnerID: &u1.ID, Type: models.TargetMonthly})
	if err != nil {
		t.Fatalf("ForOwner: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("expected 1 result, got %+v", own)
	}
	if !own[0].AchievedAmount.Equal(decimal.NewFromInt(1_500_000)) || own[0].Percentage != 50.0 {
		t.Errorf("got %s / %v, want 1500000 / 50", own[0].AchievedAmount, own[0].Percentage)
	}
	if own[0].OwnerName != "u1" {
		t.Errorf("owner name = %q", own[0].OwnerName)
	}

	company, err := svc.ForOwner(ctx, attainment.OwnerQuery{CompanyOnly: true, Type: models.TargetMonthly})
	if err != nil {
		t.Fatalf("ForOwner company: %v", err)
	}
	if len(company) != 1 || !company[0].AchievedAmount.Equal(decimal.NewFromInt(2_000_000)) || company[0].Percentage != 50.0 {
		t.Errorf("unexpected company result: %+v", company)
	}

	reports, err := svc.BatchReport(ctx, attainment.BatchRequest{TargetType: models.TargetMonthly, Periods: 3})
	if err != nil {
		t.Fatalf("BatchReport: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 user reports, got %d", len(reports))
	}
	if len(reports[0].Results) != 1 || reports[0].Results[0].Percentage != 50.0 {
		t.Errorf("unexpected report for u1: %+v", reports[0])
	}
	if len(reports[1].Results) != 0 {
		t.Errorf("u2 has no targets, expected empty results: %+v", reports[1])
	}
}
