package config

import (
	"fmt"
	"strings"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store selects and locates the relational store shared by the server and
// the seed command.
type Store struct {
	Driver      string `env:"IDLE_RPG_STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"IDLE_RPG_SQLITE_PATH" envDefault:"data/idle-rpg.sqlite"`
	PostgresDSN string `env:"IDLE_RPG_POSTGRES_DSN"`
}

// Validate reports configuration that cannot open a store.
func (s Store) Validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case DriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DriverPostgres:
		if strings.TrimSpace(s.PostgresDSN) == "" {
			return fmt.Errorf("postgres dsn is required")
		}
	default:
		return fmt.Errorf("unsupported store driver %q", s.Driver)
	}
	return nil
}
