// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"energy-calculator/pkg/database"
)

// Config is the root configuration for all binaries.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Webhook  WebhookConfig
	Session  SessionConfig
	Chart    ChartConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

// DatabaseConfig controls the optional lead audit store.
type DatabaseConfig struct {
	Enabled         bool          `env:"DB_ENABLED" envDefault:"false"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"energy"`
	Password        string        `env:"DB_PASSWORD"`
	Database        string        `env:"DB_NAME" envDefault:"energy_calculator"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`
}

// Postgres converts the settings into the connection pool configuration.
func (d DatabaseConfig) Postgres() *database.Config {
	return &database.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// WebhookConfig controls lead delivery. An empty URL disables delivery; the
// questionnaire still accepts submissions.
type WebhookConfig struct {
	URL       string        `env:"WEBHOOK_URL"`
	Timeout   time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	QueueSize int           `env:"WEBHOOK_QUEUE_SIZE" envDefault:"100"`
}

// SessionConfig controls questionnaire session housekeeping.
type SessionConfig struct {
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

// ChartConfig bounds the live chart store. Charts are swept on the session
// sweep interval.
type ChartConfig struct {
	MaxLive int           `env:"CHART_MAX_LIVE" envDefault:"10000"`
	IdleTTL time.Duration `env:"CHART_IDLE_TTL" envDefault:"30m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port))
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required when DB_ENABLED=true"))
		}
		if c.Database.Database == "" {
			errs = append(errs, errors.New("DB_NAME is required when DB_ENABLED=true"))
		}
		if c.Database.MaxOpenConns <= 0 {
			errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive: %d", c.Database.MaxOpenConns))
		}
	}

	if c.Webhook.URL != "" {
		u, err := url.Parse(c.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("WEBHOOK_URL must be an absolute http(s) URL: %q", c.Webhook.URL))
		}
	}
	if c.Webhook.Timeout <= 0 {
		errs = append(errs, errors.New("WEBHOOK_TIMEOUT must be positive"))
	}
	if c.Webhook.QueueSize <= 0 {
		errs = append(errs, errors.New("WEBHOOK_QUEUE_SIZE must be positive"))
	}

	if c.Session.IdleTTL <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must be positive"))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL must be positive"))
	}

	if c.Chart.MaxLive <= 0 {
		errs = append(errs, fmt.Errorf("CHART_MAX_LIVE must be positive: %d", c.Chart.MaxLive))
	}
	if c.Chart.IdleTTL <= 0 {
		errs = append(errs, errors.New("CHART_IDLE_TTL must be positive"))
	}

	return errors.Join(errs...)
}
