// Package engine runs combat encounters: it loads a character's session,
// resolves one action against the staged monster retaliation, persists the
// result and settles rewards.
package engine

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/platform/id"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/idle-rpg/internal/services/combat/domain/engine"

// Config tunes combat rules.
type Config struct {
	// FleeChance is the probability in [0, 1] that a flee attempt succeeds.
	FleeChance float64
	// DefendHeal is the health restored by defend before retaliation lands.
	DefendHeal int
}

// DefaultConfig returns the standard rules.
func DefaultConfig() Config {
	return Config{FleeChance: 0.9, DefendHeal: 5}
}

// Validate checks rule bounds.
func (c Config) Validate() error {
	if c.FleeChance < 0 || c.FleeChance > 1 {
		return fmt.Errorf("flee chance %v is outside [0, 1]", c.FleeChance)
	}
	if c.DefendHeal < 0 {
		return fmt.Errorf("defend heal must not be negative")
	}
	return nil
}

// Random is the engine's source of dice and probability draws.
type Random interface {
	Intn(n int) int
	Float64() float64
}

// Deps are the collaborators an Engine calls.
type Deps struct {
	Sessions   storage.SessionStore
	Characters storage.CharacterStore
	Monsters   storage.MonsterStore
	Inventory  storage.InventoryStore
	Skills     storage.SkillStore
	Rewards    storage.RewardStore
	Leveling   *leveling.Service
	Random     Random
	// NewTurnID defaults to id.NewID.
	NewTurnID func() (string, error)
	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

// Engine resolves combat for all characters. Requests for one character are
// serialized in-process; writes are additionally revision-checked so a second
// process cannot silently overwrite a turn.
type Engine struct {
	sessions   storage.SessionStore
	characters storage.CharacterStore
	monsters   storage.MonsterStore
	inventory  storage.InventoryStore
	skills     storage.SkillStore
	rewards    storage.RewardStore
	leveling   *leveling.Service
	rng        Random
	newTurnID  func() (string, error)
	tracer     trace.Tracer
	cfg        Config
	locks      *characterLocks
}

// New builds an Engine.
func New(deps Deps, cfg Config) (*Engine, error) {
	switch {
	case deps.Sessions == nil:
		return nil, fmt.Errorf("session store is required")
	case deps.Characters == nil:
		return nil, fmt.Errorf("character store is required")
	case deps.Monsters == nil:
		return nil, fmt.Errorf("monster store is required")
	case deps.Inventory == nil:
		return nil, fmt.Errorf("inventory store is required")
	case deps.Skills == nil:
		return nil, fmt.Errorf("skill store is required")
	case deps.Rewards == nil:
		return nil, fmt.Errorf("reward store is required")
	case deps.Leveling == nil:
		return nil, fmt.Errorf("leveling service is required")
	case deps.Random == nil:
		return nil, fmt.Errorf("random source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	newTurnID := deps.NewTurnID
	if newTurnID == nil {
		newTurnID = id.NewID
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Engine{
		sessions:   deps.Sessions,
		characters: deps.Characters,
		monsters:   deps.Monsters,
		inventory:  deps.Inventory,
		skills:     deps.Skills,
		rewards:    deps.Rewards,
		leveling:   deps.Leveling,
		rng:        deps.Random,
		newTurnID:  newTurnID,
		tracer:     tracer,
		cfg:        cfg,
		locks:      newCharacterLocks(),
	}, nil
}

var (
	errCharacterMissing = apperrors.New(apperrors.CodeCharacterMissing, "character is required")
	errCombatNotFound   = apperrors.New(apperrors.CodeCombatNotFound, "combat session not found")
	errCharacterUnknown = apperrors.New(apperrors.CodeCharacterNotFound, "character not found")
	errRevision         = apperrors.New(apperrors.CodeRevisionConflict, "combat session changed by another request, retry")
)

// storeErr maps a store failure: a missing record becomes notFound, anything
// else is an upstream failure described by op.
func storeErr(err error, notFound *apperrors.Error, op string) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, storage.ErrNotFound) {
		return notFound
	}
	return apperrors.Upstream(op, err)
}

func (e *Engine) load(ctx context.Context, characterID string) (session.Session, error) {
	rec, err := e.sessions.GetCombatSession(ctx, characterID)
	if err != nil {
		return session.Session{}, storeErr(err, errCombatNotFound, "load combat session")
	}
	s, err := session.Decode(rec)
	if err != nil {
		// Undecodable JSON cannot be resumed either; treat it like a partial record.
		return session.Session{CharacterID: characterID, Status: session.StatusCorrupt, Revision: rec.Revision}, nil
	}
	return s, nil
}

func (e *Engine) persist(ctx context.Context, s session.Session) (session.Session, error) {
	rec, err := session.Encode(s)
	if err != nil {
		return session.Session{}, apperrors.Wrap(apperrors.CodeUnknown, "encode combat session", err)
	}
	stored, err := e.sessions.PutCombatSession(ctx, rec)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return session.Session{}, errRevision
		}
		return session.Session{}, storeErr(err, errCombatNotFound, "persist combat session")
	}
	s.Revision = stored.Revision
	return s, nil
}

func (e *Engine) clear(ctx context.Context, s session.Session) (session.Session, error) {
	stored, err := e.sessions.ClearCombatSession(ctx, s.CharacterID, s.Revision)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return session.Session{}, errRevision
		}
		return session.Session{}, storeErr(err, errCombatNotFound, "clear combat session")
	}
	return session.Idle(s.CharacterID, stored.Revision), nil
}

// Get returns the character's current session.
func (e *Engine) Get(ctx context.Context, characterID string) (session.Session, error) {
	if characterID == "" {
		return session.Session{}, errCharacterMissing
	}
	return e.load(ctx, characterID)
}

// Create makes the character's idle session, returning the existing one when
// already present.
func (e *Engine) Create(ctx context.Context, characterID string) (session.Session, error) {
	if characterID == "" {
		return session.Session{}, errCharacterMissing
	}
	unlock := e.locks.lock(characterID)
	defer unlock()

	rec, err := e.sessions.CreateCombatSession(ctx, characterID)
	if err != nil {
		return session.Session{}, storeErr(err, errCharacterUnknown, "create combat session")
	}
	s, err := session.Decode(rec)
	if err != nil {
		return session.Session{CharacterID: characterID, Status: session.StatusCorrupt, Revision: rec.Revision}, nil
	}
	return s, nil
}
