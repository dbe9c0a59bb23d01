package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr       string        `env:"SERVER_ADDR" envDefault:":8080"`
	AdminAddr        string        `env:"ADMIN_ADDR" envDefault:":9091"`
	RedisAddr        string        `env:"REDIS_ADDR,required"`
	PostgresURL      string        `env:"POSTGRES_URL,required"`
	SiteCacheTTL     time.Duration `env:"SITE_CACHE_TTL" envDefault:"5m"`
	BeaconBaseURL    string        `env:"BEACON_BASE_URL" envDefault:"https://cdn.consentgate.io"`
	WebhookSecret    string        `env:"WEBHOOK_SECRET,required"`
	ScriptRateLimit  float64       `env:"SCRIPT_RATE_LIMIT" envDefault:"50"`
	ScriptRateBurst  int           `env:"SCRIPT_RATE_BURST" envDefault:"100"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
	SweepConcurrency int           `env:"SWEEP_CONCURRENCY" envDefault:"8"`
	SweepRateLimit   float64       `env:"SWEEP_RATE_LIMIT" envDefault:"20"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
