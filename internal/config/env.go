package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// ServerConfig holds the settings for `taxcalc serve`.
type ServerConfig struct {
	Addr            string        `env:"TAXCALC_ADDR" envDefault:":8080"`
	Store           string        `env:"TAXCALC_STORE" envDefault:"memory"`
	SQLitePath      string        `env:"TAXCALC_SQLITE_PATH" envDefault:"taxcalc.db"`
	LogLevel        string        `env:"TAXCALC_LOG_LEVEL" envDefault:"info"`
	LogJSON         bool          `env:"TAXCALC_LOG_JSON" envDefault:"false"`
	RulesFile       string        `env:"TAXCALC_RULES_FILE"`
	ShutdownTimeout time.Duration `env:"TAXCALC_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServerConfig reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func LoadServerConfig() (ServerConfig, error) {
	_ = godotenv.Load()

	var cfg ServerConfig
	if err := ParseEnv(&cfg); err != nil {
		return ServerConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate checks the settings that env parsing cannot.
func (c ServerConfig) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("TAXCALC_SQLITE_PATH is required when TAXCALC_STORE=%s", StoreSQLite)
		}
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreMemory, StoreSQLite)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("TAXCALC_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
