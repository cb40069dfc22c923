// Package combat parses combat command flags and composes the HTTP server.
package combat

import (
	"context"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"

	entrypoint "github.com/louisbranch/idle-rpg/internal/platform/cmd"
	"github.com/louisbranch/idle-rpg/internal/platform/config"
	server "github.com/louisbranch/idle-rpg/internal/services/combat/app"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/engine"
)

// Config holds combat command configuration.
type Config struct {
	Port           int     `env:"IDLE_RPG_COMBAT_PORT"       envDefault:"8090"`
	Addr           string  `env:"IDLE_RPG_COMBAT_ADDR"`
	FleeChance     float64 `env:"IDLE_RPG_FLEE_CHANCE"       envDefault:"0.9"`
	DefendHeal     int     `env:"IDLE_RPG_DEFEND_HEAL"       envDefault:"5"`
	SwaggerEnabled bool    `env:"IDLE_RPG_SWAGGER_ENABLED"   envDefault:"true"`
	Store          config.Store
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "combat HTTP port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "combat HTTP listen address, overrides -port")
	fs.Float64Var(&cfg.FleeChance, "flee-chance", cfg.FleeChance, "probability a flee attempt succeeds")
	fs.IntVar(&cfg.DefendHeal, "defend-heal", cfg.DefendHeal, "health restored by defend")
	fs.BoolVar(&cfg.SwaggerEnabled, "swagger", cfg.SwaggerEnabled, "serve API docs under /docs/")
	fs.StringVar(&cfg.Store.Driver, "store-driver", cfg.Store.Driver, "store driver: sqlite or postgres")
	fs.StringVar(&cfg.Store.SQLitePath, "sqlite-path", cfg.Store.SQLitePath, "sqlite database path")
	fs.StringVar(&cfg.Store.PostgresDSN, "postgres-dsn", cfg.Store.PostgresDSN, "postgres connection string")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HTTPAddr resolves the listen address.
func (c Config) HTTPAddr() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// Run builds the combat server and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCombat, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:       cfg.HTTPAddr(),
			Store:          cfg.Store,
			Rules:          engine.Config{FleeChance: cfg.FleeChance, DefendHeal: cfg.DefendHeal},
			SwaggerEnabled: cfg.SwaggerEnabled,
		}); err != nil {
			return fmt.Errorf("serve combat: %w", err)
		}
		return nil
	})
}
