package database

import (
	"fmt"
	"log/slog"
	"time"

	"backoffice-backend/internal/config"
	"backoffice-backend/internal/logging"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Open veritabanına bağlanır ve havuz ayarlarını yapar. Şema migration'ları
// ayrıca Migrate ile uygulanır.
func Open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	logger = logging.WithComponent(logger, logging.ComponentDatabase)

	dialector, err := Dialector(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logging.GormWriter{Logger: logger}, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB alınamadı: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("veritabanı bağlantısı kuruldu", "driver", cfg.DBDriver)
	return db, nil
}

// Close alttaki bağlantı havuzunu kapatır.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Dialector DB_DRIVER değerine göre GORM dialector'ünü seçer.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		normalized, err := NormalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		return mysql.Open(normalized), nil
	default:
		return nil, fmt.Errorf("desteklenmeyen veritabanı sürücüsü: %q", driver)
	}
}

// NormalizeMySQLDSN parseTime ve multiStatements seçeneklerini açar. İlki
// DATETIME kolonlarının time.Time olarak okunması, ikincisi çok komutlu
// migration dosyaları için gerekli.
func NormalizeMySQLDSN(dsn string) (string, error) {
	c, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("geçersiz mysql DSN: %w", err)
	}
	c.ParseTime = true
	c.MultiStatements = true
	if c.Loc == nil {
		c.Loc = time.UTC
	}
	return c.FormatDSN(), nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
