package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled should default to false")
	}
	if cfg.Webhook.Timeout != 10*time.Second {
		t.Errorf("Webhook.Timeout = %v, want 10s", cfg.Webhook.Timeout)
	}
	if cfg.Chart.MaxLive != 10000 || cfg.Chart.IdleTTL != 30*time.Minute {
		t.Errorf("Chart = %+v, want 10000 live / 30m idle", cfg.Chart)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/lead")
	t.Setenv("SESSION_IDLE_TTL", "5m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Webhook.URL != "https://hooks.example.com/lead" {
		t.Errorf("Webhook.URL = %q", cfg.Webhook.URL)
	}
	if cfg.Session.IdleTTL != 5*time.Minute {
		t.Errorf("Session.IdleTTL = %v, want 5m", cfg.Session.IdleTTL)
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	t.Setenv("WEBHOOK_TIMEOUT", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "SERVER_PORT",
		},
		{
			name: "database enabled without host",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Host = ""
			},
			wantErr: "DB_HOST",
		},
		{
			name:    "relative webhook url",
			mutate:  func(c *Config) { c.Webhook.URL = "/hooks/lead" },
			wantErr: "WEBHOOK_URL",
		},
		{
			name:    "zero queue",
			mutate:  func(c *Config) { c.Webhook.QueueSize = 0 },
			wantErr: "WEBHOOK_QUEUE_SIZE",
		},
		{
			name:    "unbounded chart store",
			mutate:  func(c *Config) { c.Chart.MaxLive = 0 },
			wantErr: "CHART_MAX_LIVE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_Postgres(t *testing.T) {
	d := DatabaseConfig{Host: "pg", Port: 5432, User: "u", Database: "leads", SSLMode: "disable", MaxOpenConns: 7}
	pg := d.Postgres()
	if pg.Host != "pg" || pg.Database != "leads" || pg.MaxOpenConns != 7 {
		t.Errorf("Postgres() = %+v", pg)
	}
}
