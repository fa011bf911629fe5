package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking
// service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	Timezone       string
	LogLevel       string
	CacheTTL       time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load parses configuration values from the current process environment.
//
// Every value has a sensible default; variables that are set but malformed
// are reported together in a localized error message.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:roombooking.db?_foreign_keys=on",
		Timezone:       "America/Sao_Paulo",
		LogLevel:       "info",
		CacheTTL:       30 * time.Second,
		RateLimitRPS:   20,
		RateLimitBurst: 40,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tz := strings.TrimSpace(os.Getenv("ROOMBOOKING_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "ROOMBOOKING_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	if level := strings.TrimSpace(os.Getenv("ROOMBOOKING_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMBOOKING_CACHE_TTL")
		} else {
			cfg.CacheTTL = ttl
		}
	}

	if rpsValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_RATE_LIMIT_RPS")); rpsValue != "" {
		rps, err := strconv.ParseFloat(rpsValue, 64)
		if err != nil || rps <= 0 {
			invalid = append(invalid, "ROOMBOOKING_RATE_LIMIT_RPS")
		} else {
			cfg.RateLimitRPS = rps
		}
	}

	if burstValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_RATE_LIMIT_BURST")); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "ROOMBOOKING_RATE_LIMIT_BURST")
		} else {
			cfg.RateLimitBurst = burst
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente com valores inválidos: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Location resolves the configured timezone. Load validated it already, so a
// failure here falls back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
