// Package storage defines persistence contracts for combat service state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/items"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/loot"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrConflict indicates a revision check failed on write.
	ErrConflict = errors.New("revision conflict")
	// ErrInsufficientAmount indicates an inventory removal larger than the stack.
	ErrInsufficientAmount = errors.New("insufficient amount")
)

// Character is the persisted character identity and wallet.
type Character struct {
	ID        string
	Name      string
	Gold      int
	CreatedAt time.Time
}

// CombatStats is a character's persisted combat profile.
type CombatStats struct {
	CharacterID string
	Health      int
	MaxHealth   int
	Power       int
	Toughness   int
}

// TrainingArea groups monsters by location.
type TrainingArea struct {
	Name        string
	Description string
}

// Monster is a monster template. Health is the base health an encounter
// starts with.
type Monster struct {
	ID         int64
	Name       string
	Area       string
	Health     int
	Power      int
	Toughness  int
	GoldMin    int
	GoldMax    int
	Experience int
}

// Item is a catalog item and its consumable effects.
type Item struct {
	ID          int64
	Name        string
	Category    string
	Value       int
	Description string
	Effects     []items.Effect
}

// InventoryItem is a stack of one item held by a character.
type InventoryItem struct {
	CharacterID string
	Item        Item
	Amount      int
}

// Skill is a character's progress in one skill.
type Skill struct {
	Skill string
	leveling.Progress
}

// RewardStep names one independently applied reward side effect.
type RewardStep string

const (
	RewardStepGold       RewardStep = "gold"
	RewardStepExperience RewardStep = "experience"
	RewardStepLoot       RewardStep = "loot"
)

// RewardIntent records the rewards owed for a won encounter, keyed by the
// turn that decided it, and which steps have been applied.
type RewardIntent struct {
	TurnID            string
	CharacterID       string
	Gold              int
	Experience        int
	LootItemID        int64
	LootQuantity      int
	GoldApplied       bool
	ExperienceApplied bool
	LootApplied       bool
	CreatedAt         time.Time
}

// Pending reports whether any step is still unapplied. A step with nothing to
// grant counts as applied.
func (r RewardIntent) Pending() bool {
	return len(r.PendingSteps()) > 0
}

// PendingSteps lists unapplied steps in application order.
func (r RewardIntent) PendingSteps() []RewardStep {
	var steps []RewardStep
	if !r.GoldApplied && r.Gold > 0 {
		steps = append(steps, RewardStepGold)
	}
	if !r.ExperienceApplied && r.Experience > 0 {
		steps = append(steps, RewardStepExperience)
	}
	if !r.LootApplied && r.LootItemID != 0 && r.LootQuantity > 0 {
		steps = append(steps, RewardStepLoot)
	}
	return steps
}

// WithEmptyStepsApplied flags steps with nothing to grant as applied so the
// stored row leaves the pending set once its real steps are done.
func (r RewardIntent) WithEmptyStepsApplied() RewardIntent {
	if r.Gold <= 0 {
		r.GoldApplied = true
	}
	if r.Experience <= 0 {
		r.ExperienceApplied = true
	}
	if r.LootItemID == 0 || r.LootQuantity <= 0 {
		r.LootApplied = true
	}
	return r
}

// RewardGrant is one reward step to apply. Skill and Progress are read only
// for the experience step and carry the skill standing after the grant.
type RewardGrant struct {
	TurnID   string
	Step     RewardStep
	Skill    string
	Progress leveling.Progress
}

// SessionStore persists combat session records. Writes are compare-and-swap
// on the record revision and return the stored record with its new revision.
type SessionStore interface {
	GetCombatSession(ctx context.Context, characterID string) (session.Record, error)
	CreateCombatSession(ctx context.Context, characterID string) (session.Record, error)
	PutCombatSession(ctx context.Context, rec session.Record) (session.Record, error)
	ClearCombatSession(ctx context.Context, characterID string, revision int64) (session.Record, error)
}

// CharacterStore persists characters and their combat stats.
type CharacterStore interface {
	CreateCharacter(ctx context.Context, character Character, stats CombatStats) error
	GetCharacter(ctx context.Context, characterID string) (Character, error)
	GetCombatStats(ctx context.Context, characterID string) (CombatStats, error)
	UpdateHealth(ctx context.Context, characterID string, health int) error
	CreditGold(ctx context.Context, characterID string, amount int) error
}

// MonsterStore reads monster reference data.
type MonsterStore interface {
	GetMonster(ctx context.Context, monsterID int64) (Monster, error)
	ListMonsters(ctx context.Context, area string) ([]Monster, error)
	ListTrainingAreas(ctx context.Context) ([]TrainingArea, error)
	GetMonsterLoot(ctx context.Context, monsterID int64) ([]loot.Entry, error)
}

// InventoryStore persists character inventories.
type InventoryStore interface {
	GetInventoryItem(ctx context.Context, characterID string, itemID int64) (InventoryItem, error)
	AddInventoryItem(ctx context.Context, characterID string, itemID int64, amount int) error
	RemoveInventoryItem(ctx context.Context, characterID string, itemID int64, amount int) error
}

// SkillStore persists skill progress.
type SkillStore interface {
	leveling.Store
	ListSkills(ctx context.Context, characterID string) ([]Skill, error)
}

// ExperienceTableStore reads the level threshold table.
type ExperienceTableStore interface {
	GetExperienceTable(ctx context.Context) (leveling.Table, error)
}

// RewardStore persists reward intents.
type RewardStore interface {
	// CreateRewardIntent inserts intent unless the turn already has one and
	// returns the stored row either way.
	CreateRewardIntent(ctx context.Context, intent RewardIntent) (RewardIntent, error)
	GetRewardIntent(ctx context.Context, turnID string) (RewardIntent, error)
	ListPendingRewardIntents(ctx context.Context, characterID string) ([]RewardIntent, error)
	// ApplyRewardStep performs the step's side effect and flags it applied
	// atomically. It reports false, with no side effect, when the step was
	// already applied.
	ApplyRewardStep(ctx context.Context, grant RewardGrant) (bool, error)
}

// CatalogStore writes reference data.
type CatalogStore interface {
	PutTrainingArea(ctx context.Context, area TrainingArea) error
	PutMonster(ctx context.Context, monster Monster, table []loot.Entry) error
	PutItem(ctx context.Context, item Item) error
	PutExperienceTable(ctx context.Context, table leveling.Table) error
}

// Store is the full combat persistence surface.
type Store interface {
	SessionStore
	CharacterStore
	MonsterStore
	InventoryStore
	SkillStore
	ExperienceTableStore
	RewardStore
	CatalogStore
	Close() error
}
