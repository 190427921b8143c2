package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"backoffice-backend/internal/logging"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

// Migrate bekleyen migration'ları uygular. Ana havuzu etkilememek için ayrı
// bir bağlantı açılır; migrate.Close sürücüyle birlikte bağlantıyı da kapatır.
func Migrate(driver, dsn string, logger *slog.Logger) error {
	logger = logging.WithComponent(logger, logging.ComponentDatabase)

	m, err := newMigrator(driver, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration çalıştırılamadı: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration versiyonu okunamadı: %w", err)
	}
	logger.Info("migration tamamlandı", "version", version, "dirty", dirty)
	return nil
}

func newMigrator(driver, dsn string) (_ *migrate.Migrate, err error) {
	if driver != DriverPostgres && driver != DriverMySQL {
		return nil, fmt.Errorf("desteklenmeyen veritabanı sürücüsü: %q", driver)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("migration kaynağı açılamadı: %w", err)
	}
	defer func() {
		if err != nil {
			_ = src.Close()
		}
	}()

	var (
		sqlDB *sql.DB
		drv   migratedb.Driver
	)
	switch driver {
	case DriverPostgres:
		if sqlDB, err = sql.Open("pgx", dsn); err != nil {
			return nil, fmt.Errorf("migration bağlantısı açılamadı: %w", err)
		}
		drv, err = migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	case DriverMySQL:
		normalized, nerr := NormalizeMySQLDSN(dsn)
		if nerr != nil {
			return nil, nerr
		}
		if sqlDB, err = sql.Open("mysql", normalized); err != nil {
			return nil, fmt.Errorf("migration bağlantısı açılamadı: %w", err)
		}
		drv, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	}
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migration sürücüsü oluşturulamadı: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, drv)
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("migrate oluşturulamadı: %w", err)
	}
	return m, nil
}
