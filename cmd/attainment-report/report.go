package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/models"

	"github.com/schollz/progressbar/v3"
)

type options struct {
	TargetType string
	Periods    int
	Role       string
	Users      string
	Quiet      bool
	// ChunkSize is how many users go into one BatchReport call.
	ChunkSize int
}

type reporter interface {
	BatchReport(ctx context.Context, req attainment.BatchRequest) ([]attainment.UserReport, error)
}

func (o options) request() (attainment.BatchRequest, error) {
	tt := models.TargetType(strings.ToUpper(o.TargetType))
	if !tt.Valid() {
		return attainment.BatchRequest{}, fmt.Errorf("geçersiz hedef tipi %q", o.TargetType)
	}
	if o.Periods < 1 || o.Periods > 60 {
		return attainment.BatchRequest{}, fmt.Errorf("periods 1 ile 60 arasında olmalı, %d verildi", o.Periods)
	}

	req := attainment.BatchRequest{TargetType: tt, Periods: o.Periods}
	if o.Role != "" {
		role := models.UserRole(strings.ToLower(o.Role))
		if !role.Valid() {
			return attainment.BatchRequest{}, fmt.Errorf("geçersiz rol %q", o.Role)
		}
		req.Roles = []models.UserRole{role}
	}
	for _, part := range strings.Split(o.Users, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return attainment.BatchRequest{}, fmt.Errorf("geçersiz kullanıcı ID %q", part)
		}
		req.UserIDs = append(req.UserIDs, uint(id))
	}
	return req, nil
}

// run resolves the user list first so the progress bar can advance per chunk
// of users, then prints one table row per (user, period).
func run(ctx context.Context, opts options, svc reporter, users attainment.UserDirectory, out, progress io.Writer) error {
	req, err := opts.request()
	if err != nil {
		return err
	}

	roles := req.Roles
	if len(req.UserIDs) == 0 && len(roles) == 0 {
		roles = []models.UserRole{models.RoleSales}
	}
	list, err := users.ListUsers(ctx, attainment.UserQuery{IDs: req.UserIDs, Roles: roles, ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("kullanıcılar okunamadı: %w", err)
	}

	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions(len(list),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("raporlar"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	chunk := max(opts.ChunkSize, 1)
	reports := make([]attainment.UserReport, 0, len(list))
	for start := 0; start < len(list); start += chunk {
		end := min(start+chunk, len(list))
		ids := make([]uint, 0, end-start)
		for _, u := range list[start:end] {
			ids = append(ids, u.ID)
		}

		part, err := svc.BatchReport(ctx, attainment.BatchRequest{
			UserIDs:    ids,
			TargetType: req.TargetType,
			Periods:    req.Periods,
		})
		if err != nil {
			return fmt.Errorf("kullanıcı %d-%d raporu: %w", ids[0], ids[len(ids)-1], err)
		}
		reports = append(reports, part...)
		if bar != nil {
			_ = bar.Add(len(ids))
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return printTable(out, reports)
}

func printTable(out io.Writer, reports []attainment.UserReport) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "USER\tNAME\tPERIOD\tTARGET\tACHIEVED\tINVOICES\tPERCENT\t")
	for _, r := range reports {
		if len(r.Results) == 0 {
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\t-\t-\t\n", r.UserID, r.UserName)
			continue
		}
		for _, res := range r.Results {
			pct := fmt.Sprintf("%.2f%%", res.Percentage)
			if res.Error != "" {
				pct = "hata: " + res.Error
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t\n",
				r.UserID, r.UserName, res.TargetPeriod,
				res.TargetAmount.StringFixed(2), res.AchievedAmount.StringFixed(2),
				res.InvoiceCount, pct)
		}
	}
	return tw.Flush()
}
