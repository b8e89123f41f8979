// Package config loads process configuration from the environment, with an
// optional .env file for local development. Configuration is read once at
// startup and treated as immutable afterwards.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the top-level configuration for the trailcast service.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server     ServerConfig
	Database   DatabaseConfig
	Weather    WeatherConfig
	Tiles      TilesConfig
	Conditions ConditionsConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"APP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// DatabaseConfig holds connection pool settings. An empty URL disables the
// database; trail report endpoints then run on in-memory storage.
type DatabaseConfig struct {
	URL             string        `envconfig:"DATABASE_URL"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	ConnectTimeout  time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
}

// WeatherConfig holds upstream forecast provider settings.
type WeatherConfig struct {
	BaseURL    string        `envconfig:"OPEN_METEO_BASE_URL" default:"https://api.open-meteo.com/v1/forecast"`
	Timeout    time.Duration `envconfig:"WEATHER_TIMEOUT" default:"12s"`
	MaxRetries int           `envconfig:"WEATHER_MAX_RETRIES" default:"2"`
}

// TilesConfig holds tile rendering and caching settings.
type TilesConfig struct {
	TTL time.Duration `envconfig:"TILE_TTL" default:"30m"`
}

// ConditionsConfig holds condition inference cache settings.
type ConditionsConfig struct {
	PointTTL   time.Duration `envconfig:"POINT_CACHE_TTL" default:"15m"`
	HistoryTTL time.Duration `envconfig:"HISTORY_CACHE_TTL" default:"30m"`
}

// RateLimitConfig holds per-client request rate limits.
type RateLimitConfig struct {
	RequestsPerMinute int `envconfig:"RATE_LIMIT_RPM" default:"120"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables take
// precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment configuration: %w", err)
	}
	return &cfg, nil
}

// IsLocal reports whether the service runs in local development mode.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
