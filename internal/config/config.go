package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/crypto"
)

// Config holds the client-resident core's runtime configuration. There is
// no network listener and no database URL — everything here scopes to
// the local encrypted store and its key derivation. The vision capability
// deadline is the fixed vision.Deadline constant, not a config field.
type Config struct {
	Environment string `envconfig:"ENV" default:"development"`

	// StorePath is the bbolt database file backing the State-Check
	// Repository.
	StorePath string `envconfig:"STORE_PATH" default:"facemirror.db"`

	// KeySecret is the passphrase PBKDF2 derives the AES-256 key from.
	KeySecret string `envconfig:"KEY_SECRET" required:"true"`

	// PBKDF2Iterations must be at least crypto.MinIterations.
	PBKDF2Iterations int `envconfig:"PBKDF2_ITERATIONS" default:"210000"`

	// BaselineHistoryLimit bounds how many historical baselines the
	// repository retains (spec §3.4 supplemented feature).
	BaselineHistoryLimit int `envconfig:"BASELINE_HISTORY_LIMIT" default:"30"`

	// RecentStateCheckLimit bounds getRecentStateChecks' default window.
	RecentStateCheckLimit int `envconfig:"RECENT_STATE_CHECK_LIMIT" default:"7"`
}

// Load reads configuration from the environment, validating the PBKDF2
// iteration floor.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.PBKDF2Iterations < crypto.MinIterations {
		return nil, fmt.Errorf("load config: PBKDF2_ITERATIONS must be >= %d, got %d", crypto.MinIterations, cfg.PBKDF2Iterations)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
