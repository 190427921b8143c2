package main

import (
	"errors"
	"log/slog"
	"strings"

	"backoffice-backend/internal/admin"
	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/audit"
	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/dashboard"
	"backoffice-backend/internal/invoice"
	"backoffice-backend/internal/logging"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/store"
	"backoffice-backend/internal/target"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

func newApp(cfg *config.Config, db *gorm.DB, logger *slog.Logger) *fiber.App {
	httpLogger := logging.WithComponent(logger, logging.ComponentHTTP)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			httpLogger.Error("unexpected error", logging.FieldPath, c.Path(), logging.FieldError, err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logging.RequestLogger(logger))

	// CORS origins'i virgülle ayrılmış string'den temizle
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	reports := attainment.NewService(
		store.NewTargetStore(db),
		store.NewInvoiceStore(db),
		store.NewUserStore(db),
		attainment.Options{
			Location:    cfg.Location(),
			Concurrency: cfg.ReportConcurrency,
			Logger:      logger,
		},
	)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg.JWTSecret))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Kullanıcı yönetimi (admin)
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Post("/users", admin.CreateUserHandler(db))
	adminRoutes.Get("/users", admin.ListUsersHandler(db))
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler(db))

	// Hedefler
	writers := auth.RequireRole(models.RoleAdmin, models.RoleManager)
	protected.Get("/targets", target.ListTargetsHandler(db))
	protected.Get("/targets/:id", target.GetTargetHandler(db))
	protected.Post("/targets", writers, target.CreateTargetHandler(db, logger))
	protected.Put("/targets/:id", writers, target.UpdateTargetHandler(db, logger))
	protected.Delete("/targets/:id", writers, target.DeleteTargetHandler(db, logger))

	// Faturalar
	protected.Post("/invoices", invoice.CreateInvoiceHandler(db, cfg.Location(), logger))
	protected.Get("/invoices", invoice.ListInvoicesHandler(db, cfg.Location()))
	protected.Put("/invoices/:id/status",
		auth.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleFinance),
		invoice.UpdateInvoiceStatusHandler(db, logger))

	// Hedef gerçekleşme raporları
	protected.Get("/reports/attainment", attainment.AttainmentHandler(reports))
	protected.Get("/reports/attainment/batch",
		auth.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleFinance),
		attainment.BatchReportHandler(reports, cfg.ReportDefaultPeriods))

	// Dashboard
	protected.Get("/dashboard/revenue-chart", dashboard.RevenueChartHandler(store.NewInvoiceStore(db), cfg.Location(), nil))

	// Audit log
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler(db))
	protected.Post("/audit-logs/:id/undo", auth.RequireRole(models.RoleAdmin), audit.UndoAuditLogHandler(db, logger))

	return app
}
