package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTPPort:             "8080",
		DBDriver:             "postgres",
		DatabaseDSN:          "host=localhost dbname=backoffice",
		JWTSecret:            strings.Repeat("s", 32),
		LogLevel:             "info",
		LogFormat:            "text",
		ReportTimezone:       "UTC",
		ReportConcurrency:    4,
		ReportDefaultPeriods: 6,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid postgres config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid mysql config",
			mutate:  func(c *Config) { c.DBDriver = "mysql"; c.DatabaseDSN = "user:pw@tcp(localhost:3306)/backoffice" },
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.HTTPPort = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.HTTPPort = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown db driver",
			mutate:      func(c *Config) { c.DBDriver = "oracle" },
			wantErr:     true,
			errorString: "invalid db driver 'oracle'",
		},
		{
			name:        "missing jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT_SECRET is required",
		},
		{
			name:        "short jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "short" },
			wantErr:     true,
			errorString: "JWT_SECRET must be at least 32 characters",
		},
		{
			name:        "unknown timezone",
			mutate:      func(c *Config) { c.ReportTimezone = "Mars/Olympus" },
			wantErr:     true,
			errorString: "invalid report timezone 'Mars/Olympus'",
		},
		{
			name:        "zero concurrency",
			mutate:      func(c *Config) { c.ReportConcurrency = 0 },
			wantErr:     true,
			errorString: "invalid report concurrency 0",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.HTTPPort = "0"
	cfg.DBDriver = "sqlite"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"invalid port 0", "invalid db driver 'sqlite'"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DATABASE_DSN", "user:pw@tcp(db:3306)/bo")
	t.Setenv("REPORT_CONCURRENCY", "3")
	t.Setenv("REPORT_DEFAULT_PERIODS", "not-a-number")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg := Load()

	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.DBDriver != "mysql" {
		t.Errorf("DBDriver = %q, want mysql", cfg.DBDriver)
	}
	if cfg.ReportConcurrency != 3 {
		t.Errorf("ReportConcurrency = %d, want 3", cfg.ReportConcurrency)
	}
	if cfg.ReportDefaultPeriods != 6 {
		t.Errorf("ReportDefaultPeriods = %d, want default 6", cfg.ReportDefaultPeriods)
	}
	if cfg.DBAutoMigrate {
		t.Error("DBAutoMigrate should be false")
	}
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := validConfig()
	cfg.ReportTimezone = "nowhere"
	if got := cfg.Location(); got != time.UTC {
		t.Errorf("expected UTC fallback, got %s", got)
	}
}

func TestLoad_MalformedNumbersReachValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("REPORT_CONCURRENCY", "abc")
	t.Setenv("DB_AUTO_MIGRATE", "sometimes")

	err := Load().Validate()
	if err == nil {
		t.Fatal("expected validation error for malformed values")
	}
	for _, want := range []string{
		"invalid REPORT_CONCURRENCY 'abc': must be a number",
		"invalid DB_AUTO_MIGRATE 'sometimes': must be true or false",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not contain %q", err, want)
		}
	}
}

func TestWarnings(t *testing.T) {
	cfg := validConfig()
	if w := cfg.Warnings(); len(w) != 0 {
		t.Errorf("expected no warnings, got %v", w)
	}

	cfg.DatabaseDSN = defaultPostgresDSN
	cfg.CORSOrigins = defaultCORSOrigins
	if w := cfg.Warnings(); len(w) != 2 {
		t.Errorf("expected 2 warnings, got %v", w)
	}
}
