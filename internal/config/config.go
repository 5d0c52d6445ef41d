// Package config loads server settings from COURTSIDE_* environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Addr               string `env:"ADDR" envDefault:":8080"`
	Env                string `env:"ENV" envDefault:"development"`
	DBPath             string `env:"DB_PATH" envDefault:"courtside.db"`
	StaticDir          string `env:"STATIC_DIR" envDefault:"static"`
	CSRFKey            string `env:"CSRF_KEY"`
	AdminEmail         string `env:"ADMIN_EMAIL"`
	AdminPassword      string `env:"ADMIN_PASSWORD"`
	SlowQueryMs        int    `env:"SLOW_QUERY_MS" envDefault:"100"`
	SlowRequestMs      int    `env:"SLOW_REQUEST_MS" envDefault:"200"`
	RateLimitPerSecond int    `env:"RATE_LIMIT_PER_SECOND" envDefault:"10"`
}

// Load reads an optional .env file, then parses COURTSIDE_* variables.
// Variables already set in the environment win over .env entries.
// POST: Returns a validated Config or an error naming the bad setting
func Load(files ...string) (Config, error) {
	// A missing .env is normal outside development; a broken one is not.
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "COURTSIDE_"})
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be expressed as struct tags.
func (c Config) Validate() error {
	if c.CSRFKey != "" {
		key, err := hex.DecodeString(c.CSRFKey)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("COURTSIDE_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
	}
	if c.IsProduction() && c.CSRFKey == "" {
		return fmt.Errorf("COURTSIDE_CSRF_KEY is required in production")
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("COURTSIDE_RATE_LIMIT_PER_SECOND must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("COURTSIDE_ADMIN_EMAIL and COURTSIDE_ADMIN_PASSWORD must be set together")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// CSRFKeyBytes decodes the configured key.
// PRE: Validate() == nil and CSRFKey is set
func (c Config) CSRFKeyBytes() []byte {
	key, _ := hex.DecodeString(c.CSRFKey)
	return key
}
