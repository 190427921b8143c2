// Command attainment-report prints the batch attainment report for a set of
// users without going through the HTTP API.
//
//	attainment-report -type MONTHLY -periods 6 -role sales [-users 1,2]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/database"
	"backoffice-backend/internal/logging"
	"backoffice-backend/internal/store"
)

func main() {
	var opts options
	flag.StringVar(&opts.TargetType, "type", "MONTHLY", "hedef tipi: MONTHLY, QUARTERLY, YEARLY")
	flag.IntVar(&opts.Periods, "periods", 0, "geriye dönük dönem sayısı (0: REPORT_DEFAULT_PERIODS)")
	flag.StringVar(&opts.Role, "role", "", "rol filtresi (users verilmezse varsayılan sales)")
	flag.StringVar(&opts.Users, "users", "", "virgülle ayrılmış kullanıcı ID'leri")
	flag.BoolVar(&opts.Quiet, "quiet", false, "ilerleme çubuğunu gizle")
	flag.Parse()

	cfg := config.Load()
	logger := logging.WithComponent(logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), logging.ComponentCLI)

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("config geçersiz", logging.FieldError, err.Error())
		os.Exit(1)
	}
	if opts.Periods == 0 {
		opts.Periods = cfg.ReportDefaultPeriods
	}
	opts.ChunkSize = cfg.ReportConcurrency

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Error("veritabanı açılamadı", logging.FieldError, err.Error())
		os.Exit(1)
	}
	defer database.Close(db)

	users := store.NewUserStore(db)
	svc := attainment.NewService(store.NewTargetStore(db), store.NewInvoiceStore(db), users, attainment.Options{
		Location:    cfg.Location(),
		Concurrency: cfg.ReportConcurrency,
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var progress io.Writer = os.Stderr
	if opts.Quiet {
		progress = nil
	}
	if err := run(ctx, opts, svc, users, os.Stdout, progress); err != nil {
		fmt.Fprintln(os.Stderr, "hata:", err)
		os.Exit(1)
	}
}
