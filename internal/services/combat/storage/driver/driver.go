// Package driver opens the configured relational store.
package driver

import (
	"fmt"
	"strings"

	"github.com/louisbranch/idle-rpg/internal/platform/config"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/postgres"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/sqlite"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/sqlstore"
)

// Open validates cfg and opens the selected backend with migrations applied.
func Open(cfg config.Store) (*sqlstore.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("store config: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.DriverPostgres:
		store, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	}
}
