package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice-backend/internal/config"
	"backoffice-backend/internal/database"
	"backoffice-backend/internal/logging"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("config geçersiz", logging.FieldError, err.Error())
		os.Exit(1)
	}

	// Tutarlar JSON'da string değil sayı olarak dönsün
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.DBAutoMigrate {
		if err := database.Migrate(cfg.DBDriver, cfg.DatabaseDSN, logger); err != nil {
			logger.Error("migration başarısız", logging.FieldError, err.Error())
			os.Exit(1)
		}
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Error("veritabanı açılamadı", logging.FieldError, err.Error())
		os.Exit(1)
	}

	app := newApp(cfg, db, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sunucu başlatılıyor", "port", cfg.HTTPPort)
		errCh <- app.Listen(":" + cfg.HTTPPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("kapatma sinyali alındı", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("sunucu durdu", logging.FieldError, err.Error())
		}
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("sunucu düzgün kapatılamadı", logging.FieldError, err.Error())
	}
	if err := database.Close(db); err != nil {
		logger.Error("veritabanı kapatılamadı", logging.FieldError, err.Error())
	}
	logger.Info("sunucu kapandı")
}
