// Package seed parses seed command flags and applies a catalog manifest.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	entrypoint "github.com/louisbranch/idle-rpg/internal/platform/cmd"
	"github.com/louisbranch/idle-rpg/internal/platform/config"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/driver"
	"github.com/louisbranch/idle-rpg/internal/tools/seed"
)

// Config holds seed command configuration.
type Config struct {
	ManifestPath string `env:"IDLE_RPG_SEED_MANIFEST"`
	Verbose      bool   `env:"IDLE_RPG_SEED_VERBOSE"`
	Store        config.Store
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ManifestPath, "manifest", cfg.ManifestPath, "YAML catalog manifest (default: embedded local-dev)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose output")
	fs.StringVar(&cfg.Store.Driver, "store-driver", cfg.Store.Driver, "store driver: sqlite or postgres")
	fs.StringVar(&cfg.Store.SQLitePath, "sqlite-path", cfg.Store.SQLitePath, "sqlite database path")
	fs.StringVar(&cfg.Store.PostgresDSN, "postgres-dsn", cfg.Store.PostgresDSN, "postgres connection string")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the store, applies the manifest and prints a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		return run(ctx, cfg, out)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := driver.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := seed.NewRunner(seed.Config{ManifestPath: cfg.ManifestPath, Verbose: cfg.Verbose}, store).Run(ctx)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	fmt.Fprintf(out, "Seeded %d areas, %d items, %d monsters, %d experience levels\n",
		summary.Areas, summary.Items, summary.Monsters, summary.ExperienceLevels)
	fmt.Fprintf(out, "Characters: %d created, %d already present\n",
		summary.CharactersCreated, summary.CharactersSkipped)
	return nil
}
