package shared

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"securetodo/internal/core/util"
)

// AppConfig general application configurations
type AppConfig struct {
	// Storage
	DatabasePath string `env:"DATABASE_PATH, default=todo.db"`
	LogQueries   bool   `env:"LOG_QUERIES, default=false"`

	// Password hashing
	PasswordScheme string `env:"PASSWORD_SCHEME, default=sha256"`
	BcryptCost     int    `env:"BCRYPT_COST, default=10"`

	// Background workers
	Workers     int `env:"WORKERS, default=4"`
	WorkerQueue int `env:"WORKER_QUEUE, default=64"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// Environment
	Environment string `env:"ENVIRONMENT, default=development"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		DatabasePath:   "todo.db",
		PasswordScheme: util.SchemeSHA256,
		BcryptCost:     10,
		Workers:        4,
		WorkerQueue:    64,
		LogLevel:       "info",
		Environment:    "development",
	}
}

// LoadConfig reads configuration from environment variables.
func LoadConfig(ctx context.Context) (*AppConfig, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*AppConfig, error) {
	var cfg AppConfig

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.PasswordScheme {
	case util.SchemeSHA256, util.SchemeBcrypt:
	default:
		return fmt.Errorf("config: unknown PASSWORD_SCHEME %q", c.PasswordScheme)
	}

	if c.DatabasePath == "" {
		return fmt.Errorf("config: DATABASE_PATH must not be empty")
	}

	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
