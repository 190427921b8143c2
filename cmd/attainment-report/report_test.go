package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/store"
	"backoffice-backend/internal/testutil"
)

func TestOptionsRequest(t *testing.T) {
	req, err := options{TargetType: "quarterly", Periods: 4, Role: "SALES", Users: "3, 5"}.request()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TargetType != models.TargetQuarterly || req.Periods != 4 || len(req.Roles) != 1 || len(req.UserIDs) != 2 {
		t.Errorf("unexpected request: %+v", req)
	}

	for _, bad := range []options{
		{TargetType: "WEEKLY", Periods: 1},
		{TargetType: "MONTHLY", Periods: 0},
		{TargetType: "MONTHLY", Periods: 1, Role: "boss"},
		{TargetType: "MONTHLY", Periods: 1, Users: "1,abc"},
	} {
		if _, err := bad.request(); err == nil {
			t.Errorf("%+v: expected error", bad)
		}
	}
}

func TestRun(t *testing.T) {
	db := testutil.OpenDB(t)
	s1 := testutil.CreateUser(t, db, "ayse", models.RoleSales)
	testutil.CreateUser(t, db, "mehmet", models.RoleSales)
	testutil.CreateUser(t, db, "boss", models.RoleManager)
	testutil.CreateTarget(t, db, &s1.ID, models.TargetMonthly, "2025-07", 3_000_000)
	testutil.CreateInvoice(t, db, &s1.ID, models.InvoicePaid, testutil.Noon(2025, 7, 10), 1_500_000)

	users := store.NewUserStore(db)
	svc := attainment.NewService(store.NewTargetStore(db), store.NewInvoiceStore(db), users, attainment.Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC) },
	})

	var out, progress bytes.Buffer
	err := run(context.Background(), options{TargetType: "MONTHLY", Periods: 2}, svc, users, &out, &progress)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{"ayse", "2025-07", "3000000.00", "1500000.00", "50.00%", "mehmet"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "boss") {
		t.Errorf("managers should not be in the default sales report:\n%s", text)
	}
	if progress.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestRun_Quiet(t *testing.T) {
	db := testutil.OpenDB(t)
	users := store.NewUserStore(db)
	svc := attainment.NewService(store.NewTargetStore(db), store.NewInvoiceStore(db), users, attainment.Options{})

	var out bytes.Buffer
	if err := run(context.Background(), options{TargetType: "YEARLY", Periods: 1}, svc, users, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out.String()), "USER") {
		t.Errorf("expected only the header, got %q", out.String())
	}
}

type countingReporter struct {
	next  reporter
	calls [][]uint
}

func (c *countingReporter) BatchReport(ctx context.Context, req attainment.BatchRequest) ([]attainment.UserReport, error) {
	c.calls = append(c.calls, req.UserIDs)
	return c.next.BatchReport(ctx, req)
}

func TestRun_ChunksUsers(t *testing.T) {
	db := testutil.OpenDB(t)
	for _, name := range []string{"a", "b", "c"} {
		testutil.CreateUser(t, db, name, models.RoleSales)
	}
	users := store.NewUserStore(db)
	svc := &countingReporter{next: attainment.NewService(store.NewTargetStore(db), store.NewInvoiceStore(db), users, attainment.Options{})}

	var out bytes.Buffer
	if err := run(context.Background(), options{TargetType: "MONTHLY", Periods: 1, ChunkSize: 2}, svc, users, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(svc.calls) != 2 || len(svc.calls[0]) != 2 || len(svc.calls[1]) != 1 {
		t.Fatalf("expected chunks of 2 and 1, got %v", svc.calls)
	}
	for _, name := range []string{"a", "b", "c"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("output missing user %q:\n%s", name, out.String())
		}
	}
}
