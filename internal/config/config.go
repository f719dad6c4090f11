package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	HTTPAddr string `env:"LOOT_HTTP_ADDR" envDefault:":8080" validate:"required"`
	// GRPCAddr empty disables the gRPC listener
	GRPCAddr string `env:"LOOT_GRPC_ADDR" envDefault:":9090"`
	// DataDir holds catalogs/ and tables/
	DataDir   string `env:"LOOT_DATA_DIR" envDefault:"configs" validate:"required"`
	LogConfig string `env:"LOOT_LOG_CONFIG" envDefault:"configs/logging.yaml"`
	// WatchInterval 0 disables hot reload
	WatchInterval time.Duration `env:"LOOT_WATCH_INTERVAL" envDefault:"2s"`
	CacheSize     int           `env:"LOOT_CACHE_SIZE" envDefault:"256" validate:"gt=0"`
	CacheTTL      time.Duration `env:"LOOT_CACHE_TTL" envDefault:"10m"`
	MaxTrials     int           `env:"LOOT_MAX_TRIALS" envDefault:"100000" validate:"gt=0"`
	// MaxStack bounds the copies one drop may produce; loot.MaxStack caps it
	MaxStack      int           `env:"LOOT_MAX_STACK" envDefault:"1000" validate:"gt=0,lte=1048576"`
	ShutdownGrace time.Duration `env:"LOOT_SHUTDOWN_GRACE" envDefault:"10s" validate:"gt=0"`
}

// Load reads .env files if present, then the environment.
func Load(files ...string) (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.WatchInterval < 0 {
		return nil, fmt.Errorf("invalid config: LOOT_WATCH_INTERVAL must be >= 0")
	}
	return cfg, nil
}
