package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string
	DBDriver      string // postgres | mysql
	DatabaseDSN   string
	DBAutoMigrate bool
	JWTSecret     string
	CORSOrigins   string

	LogLevel  string
	LogFormat string // text | json

	// Raporlama
	ReportTimezone       string
	ReportConcurrency    int
	ReportDefaultPeriods int

	// Load sırasında okunamayan değerler; Validate bunları da raporlar.
	parseProblems []string
}

const (
	defaultPostgresDSN = "host=localhost user=postgres password=postgres dbname=backoffice port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

// Load, .env dosyası varsa önce onu okur, sonra ortam değişkenlerinden config oluşturur.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultPostgresDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		ReportTimezone: getEnv("REPORT_TIMEZONE", "UTC"),
	}
	cfg.DBAutoMigrate = cfg.getEnvBool("DB_AUTO_MIGRATE", true)
	cfg.ReportConcurrency = cfg.getEnvInt("REPORT_CONCURRENCY", 8)
	cfg.ReportDefaultPeriods = cfg.getEnvInt("REPORT_DEFAULT_PERIODS", 6)

	return cfg
}

// Warnings production için riskli varsayılanları döner. Logger kurulduktan
// sonra loglanır.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.DatabaseDSN == defaultPostgresDSN {
		warnings = append(warnings, "DATABASE_DSN varsayılan değer kullanılıyor, production için kendi bağlantı bilgisini tanımla")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		warnings = append(warnings, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için kendi domain'ini tanımla")
	}
	return warnings
}

// Validate tüm hataları toplayıp tek bir hata olarak döner.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.parseProblems...)

	if port, err := strconv.Atoi(c.HTTPPort); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.HTTPPort))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case "postgres", "mysql":
	default:
		problems = append(problems, fmt.Sprintf("invalid db driver '%s': must be one of [postgres mysql]", c.DBDriver))
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		problems = append(problems, "DATABASE_DSN cannot be empty")
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid report timezone '%s': %v", c.ReportTimezone, err))
	}
	if c.ReportConcurrency < 1 || c.ReportConcurrency > 64 {
		problems = append(problems, fmt.Sprintf("invalid report concurrency %d: must be between 1 and 64", c.ReportConcurrency))
	}
	if c.ReportDefaultPeriods < 1 || c.ReportDefaultPeriods > 60 {
		problems = append(problems, fmt.Sprintf("invalid report default periods %d: must be between 1 and 60", c.ReportDefaultPeriods))
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(problems, "; "))
	}
	return nil
}

// Location raporlarda kullanılan saat dilimi. Validate edilmiş config için hata vermez.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.parseProblems = append(c.parseProblems, fmt.Sprintf("invalid %s '%s': must be a number", key, v))
		return def
	}
	return n
}

func (c *Config) getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.parseProblems = append(c.parseProblems, fmt.Sprintf("invalid %s '%s': must be true or false", key, v))
		return def
	}
	return b
}
