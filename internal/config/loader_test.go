package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {
	allKeys := []string{
		"ROOMBOOKING_HTTP_PORT",
		"ROOMBOOKING_SQLITE_DSN",
		"ROOMBOOKING_TIMEZONE",
		"ROOMBOOKING_LOG_LEVEL",
		"ROOMBOOKING_CACHE_TTL",
		"ROOMBOOKING_RATE_LIMIT_RPS",
		"ROOMBOOKING_RATE_LIMIT_BURST",
	}

	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, key := range allKeys {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}
	}

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:roombooking.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.Timezone != "America/Sao_Paulo" {
			t.Fatalf("unexpected default timezone: %q", cfg.Timezone)
		}
		if cfg.CacheTTL != 30*time.Second {
			t.Fatalf("unexpected default cache TTL: %s", cfg.CacheTTL)
		}
	})

	t.Run("parses numeric and duration fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ROOMBOOKING_HTTP_PORT", "9090")
		t.Setenv("ROOMBOOKING_SQLITE_DSN", "file:/tmp/booking.db")
		t.Setenv("ROOMBOOKING_TIMEZONE", "UTC")
		t.Setenv("ROOMBOOKING_CACHE_TTL", "2m")
		t.Setenv("ROOMBOOKING_RATE_LIMIT_RPS", "5.5")
		t.Setenv("ROOMBOOKING_RATE_LIMIT_BURST", "10")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/booking.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.CacheTTL != 2*time.Minute {
			t.Fatalf("expected cache TTL 2m, got %s", cfg.CacheTTL)
		}
		if cfg.RateLimitRPS != 5.5 || cfg.RateLimitBurst != 10 {
			t.Fatalf("unexpected rate limit values: %v / %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
		}
	})

	t.Run("reports every invalid variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ROOMBOOKING_HTTP_PORT", "zero")
		t.Setenv("ROOMBOOKING_CACHE_TTL", "-5s")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, key := range []string{"ROOMBOOKING_HTTP_PORT", "ROOMBOOKING_CACHE_TTL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected error to name %s, got %q", key, err.Error())
			}
		}
	})

	t.Run("rejects unknown timezones", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ROOMBOOKING_TIMEZONE", "Mars/Olympus")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown timezone")
		}
	})

	t.Run("resolves the configured location", func(t *testing.T) {
		cfg := Config{Timezone: "UTC"}
		if loc := cfg.Location(); loc != time.UTC {
			t.Fatalf("expected UTC, got %v", loc)
		}
	})
}
