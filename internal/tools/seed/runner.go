package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/items"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/loot"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

// Store is the persistence surface the runner writes through.
type Store interface {
	storage.CatalogStore
	leveling.Store
	CreateCharacter(ctx context.Context, character storage.Character, stats storage.CombatStats) error
	AddInventoryItem(ctx context.Context, characterID string, itemID int64, amount int) error
}

// Config holds runner settings.
type Config struct {
	// ManifestPath selects the YAML manifest; empty uses the embedded local-dev one.
	ManifestPath string
	Verbose      bool
}

// Summary counts what one run wrote.
type Summary struct {
	Areas             int
	Items             int
	Monsters          int
	ExperienceLevels  int
	CharactersCreated int
	CharactersSkipped int
}

// Runner applies one manifest to a store.
type Runner struct {
	cfg   Config
	store Store
	errW  io.Writer
}

// NewRunner builds a Runner writing verbose logs to stderr.
func NewRunner(cfg Config, store Store) *Runner {
	return &Runner{cfg: cfg, store: store, errW: os.Stderr}
}

// Run loads and applies the configured manifest.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	manifest, err := LoadManifest(r.cfg.ManifestPath)
	if err != nil {
		return Summary{}, err
	}
	return r.RunManifest(ctx, manifest)
}

// RunManifest applies a manifest directly. Catalog rows are upserted;
// characters are created once and keep their progress on later runs.
func (r *Runner) RunManifest(ctx context.Context, manifest Manifest) (Summary, error) {
	if r == nil || r.store == nil {
		return Summary{}, errors.New("store is required")
	}
	if err := ValidateManifest(manifest); err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, area := range manifest.TrainingAreas {
		if err := r.store.PutTrainingArea(ctx, storage.TrainingArea{Name: area.Name, Description: area.Description}); err != nil {
			return summary, fmt.Errorf("put training area %q: %w", area.Name, err)
		}
		summary.Areas++
	}
	for _, item := range manifest.Items {
		if err := r.store.PutItem(ctx, toItem(item)); err != nil {
			return summary, fmt.Errorf("put item %d: %w", item.ID, err)
		}
		summary.Items++
	}
	for _, monster := range manifest.Monsters {
		if err := r.store.PutMonster(ctx, toMonster(monster), toLoot(monster.Loot)); err != nil {
			return summary, fmt.Errorf("put monster %d: %w", monster.ID, err)
		}
		summary.Monsters++
	}
	if len(manifest.ExperienceLevels) > 0 {
		if err := r.store.PutExperienceTable(ctx, leveling.Table(manifest.ExperienceLevels)); err != nil {
			return summary, fmt.Errorf("put experience table: %w", err)
		}
		summary.ExperienceLevels = len(manifest.ExperienceLevels)
	}
	r.logf("catalog %s: %d areas, %d items, %d monsters", manifest.Name, summary.Areas, summary.Items, summary.Monsters)

	table := leveling.DefaultTable
	if len(manifest.ExperienceLevels) > 0 {
		table = leveling.Table(manifest.ExperienceLevels)
	}
	skills, err := leveling.NewService(r.store, table)
	if err != nil {
		return summary, fmt.Errorf("leveling service: %w", err)
	}
	for _, character := range manifest.Characters {
		created, err := r.applyCharacter(ctx, skills, character)
		if err != nil {
			return summary, err
		}
		if created {
			summary.CharactersCreated++
		} else {
			summary.CharactersSkipped++
		}
	}
	return summary, nil
}

func (r *Runner) applyCharacter(ctx context.Context, skills *leveling.Service, character ManifestCharacter) (bool, error) {
	err := r.store.CreateCharacter(ctx,
		storage.Character{ID: character.ID, Name: character.Name, Gold: character.Gold},
		storage.CombatStats{
			Health:    character.Health,
			MaxHealth: character.MaxHealth,
			Power:     character.Power,
			Toughness: character.Toughness,
		},
	)
	if errors.Is(err, storage.ErrAlreadyExists) {
		r.logf("character %s exists, skipping", character.ID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create character %s: %w", character.ID, err)
	}
	for _, stack := range character.Inventory {
		if err := r.store.AddInventoryItem(ctx, character.ID, stack.ItemID, stack.Amount); err != nil {
			return true, fmt.Errorf("grant item %d to %s: %w", stack.ItemID, character.ID, err)
		}
	}
	for _, skill := range character.Skills {
		level, err := skills.AddExperience(ctx, character.ID, skill.Skill, skill.Experience)
		if err != nil {
			return true, fmt.Errorf("grant %s experience to %s: %w", skill.Skill, character.ID, err)
		}
		if level != leveling.NoLevelChange {
			r.logf("character %s reached %s level %d", character.ID, skill.Skill, level)
		}
	}
	r.logf("character %s created", character.ID)
	return true, nil
}

func (r *Runner) logf(format string, args ...any) {
	if r == nil || !r.cfg.Verbose || r.errW == nil {
		return
	}
	_, _ = fmt.Fprintf(r.errW, format+"\n", args...)
}

func toItem(item ManifestItem) storage.Item {
	effects := make([]items.Effect, 0, len(item.Effects))
	for _, effect := range item.Effects {
		effects = append(effects, items.Effect{Effect: effect.Effect, Value: effect.Value})
	}
	return storage.Item{
		ID:          item.ID,
		Name:        item.Name,
		Category:    item.Category,
		Value:       item.Value,
		Description: item.Description,
		Effects:     effects,
	}
}

func toMonster(monster ManifestMonster) storage.Monster {
	return storage.Monster{
		ID:         monster.ID,
		Name:       monster.Name,
		Area:       monster.Area,
		Health:     monster.Health,
		Power:      monster.Power,
		Toughness:  monster.Toughness,
		GoldMin:    monster.GoldMin,
		GoldMax:    monster.GoldMax,
		Experience: monster.Experience,
	}
}

func toLoot(rows []ManifestLoot) []loot.Entry {
	entries := make([]loot.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, loot.Entry{ItemID: row.ItemID, Quantity: row.Quantity, DropProbability: row.DropProbability})
	}
	return entries
}
