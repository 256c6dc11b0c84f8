// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the storefront process. Defaults are chosen
// for local development; production deployments override via environment.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `env:"ADDR" envDefault:":8080"`

	// RedisAddr points at the durable key-value store backing the
	// catalog, carts and orders.
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// OrderLogPath is the SQLite file for the order lifecycle audit log.
	// Empty disables audit logging.
	OrderLogPath string `env:"ORDER_LOG_PATH" envDefault:"./data/orderlog.db"`

	// AdminEmail and AdminPassword gate the dashboard endpoints. This is a
	// placeholder credential, not a security boundary.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@localhost"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"changeme"`

	// JWTSecret signs admin session tokens.
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-do-not-use"`

	// SessionTTL bounds the lifetime of an admin session token.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// GeocodeURL is the base URL of the reverse-geocoding collaborator.
	// Empty disables the map feature; checkout falls back to manual entry.
	GeocodeURL string `env:"GEOCODE_URL" envDefault:""`

	// ServiceName identifies this process in traces and logs.
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"lahma-store"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}
