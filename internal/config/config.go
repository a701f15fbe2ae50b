package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "evreserve/libs/config"
)

// Config defines reservations service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"RESERVATIONS_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		// DSN selects the Postgres record store; empty keeps the
		// in-memory store.
		DSN string `yaml:"dsn" env:"RESERVATIONS_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"RESERVATIONS_REDIS_ADDR"`
		Password string `yaml:"password" env:"RESERVATIONS_REDIS_PASSWORD"`
		TTL      int    `yaml:"ttlSeconds" env:"RESERVATIONS_REDIS_TTL"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret" env:"RESERVATIONS_JWT_SECRET"`
	} `yaml:"auth"`
	Notify struct {
		WebhookURL string `yaml:"webhookUrl" env:"RESERVATIONS_NOTIFY_WEBHOOK_URL"`
	} `yaml:"notify"`
	Reaper struct {
		IntervalSeconds int  `yaml:"intervalSeconds" env:"RESERVATIONS_REAPER_INTERVAL"`
		Disabled        bool `yaml:"disabled" env:"RESERVATIONS_REAPER_DISABLED"`
	} `yaml:"reaper"`
	Seed struct {
		File string `yaml:"file" env:"RESERVATIONS_SEED_FILE"`
	} `yaml:"seed"`
}

// Load reads configuration via the shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.TTL = 300
	cfg.Reaper.IntervalSeconds = 60

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheTTL returns the redis cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// ReaperInterval returns the sweep interval as a duration.
func (c *Config) ReaperInterval() time.Duration {
	if c.Reaper.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Reaper.IntervalSeconds) * time.Second
}
