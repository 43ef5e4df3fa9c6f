package config

import (
	"github.com/caarlos0/env/v11"

	"stablefund/internal/config/configs"
)

// Config aggregates all configuration sections for the escrow service.
// Fields are populated from environment variables using the caarlos0/env
// library; nested structs are tagged with envPrefix so their fields are
// parsed with the given prefix. See the types in the configs package for
// defaults. Use Load to construct a Config.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev). Informational.
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP configures the HTTP server (HTTP_ prefix).
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger (LOG_ prefix).
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection (PSQL_ prefix).
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Escrow carries the escrow deployment parameters (ESCROW_ prefix):
	// token and custody addresses, custody mode, ledger store.
	Escrow configs.Escrow `envPrefix:"ESCROW_"`
}

// Load reads configuration from environment variables into a Config. All
// fields fall back to their declared defaults when unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
