package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "development-secret")
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("PHARMACY_NEAR_EXPIRY_WINDOW", "168h")
}

func TestLoadReadsEnvironment(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_AUTH_RATE_LIMIT", "2.5")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("PHARMACY_NEAR_EXPIRY_WINDOW", "720h")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Address() != cfg.Server.Host+":9090" {
		t.Errorf("server address = %s", cfg.Server.Address())
	}
	if cfg.Server.AuthRateLimit != 2.5 {
		t.Errorf("AuthRateLimit = %v, want 2.5", cfg.Server.AuthRateLimit)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("unparsable int should fall back to 25, got %d", cfg.Database.MaxOpenConns)
	}
	if got := strings.Join(cfg.CORS.AllowedOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("AllowedOrigins = %q", got)
	}
	if cfg.Pharmacy.NearExpiryWindow != 30*24*time.Hour {
		t.Errorf("NearExpiryWindow = %v", cfg.Pharmacy.NearExpiryWindow)
	}
	if !cfg.Tracing.Enabled {
		t.Error("tracing should be enabled")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}, "JWT_SECRET is required"},
		{"short secret in production", map[string]string{"APP_ENV": "production", "DB_PASSWORD": "x"}, "at least 32 characters"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, `DB_DRIVER "mysql" is not supported`},
		{"memory in production", map[string]string{"APP_ENV": "production", "DB_DRIVER": DriverMemory, "JWT_SECRET": strings.Repeat("s", 32)}, "DB_DRIVER=memory"},
		{"password outside development", map[string]string{"APP_ENV": "staging"}, "DB_PASSWORD is required"},
		{"sslmode disabled in production", map[string]string{"APP_ENV": "production", "DB_PASSWORD": "x", "DB_SSLMODE": "disable", "JWT_SECRET": strings.Repeat("s", 32)}, "DB_SSLMODE=disable"},
		{"non-positive expiry window", map[string]string{"PHARMACY_NEAR_EXPIRY_WINDOW": "0s"}, "PHARMACY_NEAR_EXPIRY_WINDOW must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestMemoryDriverAllowedInDevelopment(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", DriverMemory)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Driver = %q", cfg.Database.Driver)
	}
}
