package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/items"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/loot"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/mechanics"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Action is a player command.
type Action string

const (
	ActionStart   Action = "start"
	ActionAttack  Action = "attack"
	ActionDefend  Action = "defend"
	ActionUseItem Action = "use_item"
	ActionFlee    Action = "flee"
)

// ParseAction validates a raw action name.
func ParseAction(raw string) (Action, error) {
	raw = strings.TrimSpace(raw)
	switch action := Action(raw); action {
	case ActionStart, ActionAttack, ActionDefend, ActionUseItem, ActionFlee:
		return action, nil
	case "":
		return "", apperrors.New(apperrors.CodeActionMissing, "action is required")
	default:
		return "", apperrors.WithMetadata(apperrors.CodeActionUnknown,
			fmt.Sprintf("unknown action: %s", raw),
			map[string]string{"action": raw})
	}
}

// ActRequest is one turn. TargetID is the monster for start and the
// inventory item for use_item.
type ActRequest struct {
	Action   Action
	TargetID int64
}

// Result is the session after a turn. Rewards and Level are set only when
// this turn decided a win; Level only when the combat skill levelled up.
type Result struct {
	Session session.Session
	Rewards *session.Rewards
	Level   *int
}

var (
	errTargetMissing  = apperrors.New(apperrors.CodeTargetMissing, "target id is required")
	errInactive       = apperrors.New(apperrors.CodeCombatInactive, "no active combat, start an encounter first")
	errCorrupt        = apperrors.New(apperrors.CodeCombatCorrupt, "combat session is inconsistent, reset combat")
	errMonsterUnknown = apperrors.New(apperrors.CodeMonsterNotFound, "monster not found")
	errItemUnknown    = apperrors.New(apperrors.CodeItemNotFound, "item not found in inventory")
)

// Act resolves one player action for characterID.
func (e *Engine) Act(ctx context.Context, characterID string, req ActRequest) (res Result, err error) {
	ctx, span := e.tracer.Start(ctx, "combat.act", trace.WithAttributes(
		attribute.String("combat.character_id", characterID),
		attribute.String("combat.action", string(req.Action)),
	))
	defer func() {
		endSpan(span, err)
		if err == nil && res.Session.Outcome != nil {
			span.SetAttributes(attribute.String("combat.outcome", string(res.Session.Outcome.Status)))
		}
		span.End()
	}()

	if characterID == "" {
		return Result{}, errCharacterMissing
	}
	if _, err := ParseAction(string(req.Action)); err != nil {
		return Result{}, err
	}
	if (req.Action == ActionStart || req.Action == ActionUseItem) && req.TargetID <= 0 {
		return Result{}, errTargetMissing
	}

	unlock := e.locks.lock(characterID)
	defer unlock()

	current, err := e.load(ctx, characterID)
	if err != nil {
		return Result{}, err
	}
	if req.Action == ActionStart {
		return e.start(ctx, current, req.TargetID)
	}

	switch current.Status {
	case session.StatusCorrupt:
		return Result{}, errCorrupt
	case session.StatusIdle:
		return Result{}, errInactive
	case session.StatusResolved:
		return Result{Session: current}, nil
	}
	return e.turn(ctx, current, req)
}

func (e *Engine) start(ctx context.Context, current session.Session, monsterID int64) (Result, error) {
	switch current.Status {
	case session.StatusActive, session.StatusResolved:
		return Result{Session: current}, nil
	case session.StatusCorrupt:
		return Result{}, errCorrupt
	}

	stats, err := e.characters.GetCombatStats(ctx, current.CharacterID)
	if err != nil {
		return Result{}, storeErr(err, errCharacterUnknown, "load combat stats")
	}
	template, err := e.monsters.GetMonster(ctx, monsterID)
	if err != nil {
		return Result{}, storeErr(err, errMonsterUnknown, "load monster")
	}

	player := session.Player{
		CharacterID: current.CharacterID,
		Combatant: session.Combatant{
			Health:    stats.Health,
			MaxHealth: stats.MaxHealth,
			Power:     stats.Power,
			Toughness: stats.Toughness,
		},
	}
	// Monster templates only carry base health, so it doubles as the max.
	monster := session.Monster{
		ID:         template.ID,
		Name:       template.Name,
		Area:       template.Area,
		GoldMin:    template.GoldMin,
		GoldMax:    template.GoldMax,
		Experience: template.Experience,
		Combatant: session.Combatant{
			Health:    template.Health,
			MaxHealth: template.Health,
			Power:     template.Power,
			Toughness: template.Toughness,
		},
	}
	next, err := e.persist(ctx, session.Begin(current, player, monster))
	if err != nil {
		return Result{}, err
	}
	return Result{Session: next}, nil
}

// turn runs one action on an active session. Nothing is persisted if a
// branch fails, except store writes the branch had already issued.
func (e *Engine) turn(ctx context.Context, current session.Session, req ActRequest) (Result, error) {
	turnID, err := e.newTurnID()
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeUnknown, "generate turn id", err)
	}

	next := current.Clone()
	player, monster := next.Player, next.Monster

	staged := mechanics.RollDamage(e.rng, monster.Power, player.Toughness)
	next.LastActions = session.LastActions{Monster: session.Did(session.VerbAttacks, staged)}

	switch req.Action {
	case ActionAttack:
		dealt := mechanics.RollDamage(e.rng, player.Power, monster.Toughness)
		monster.Health = mechanics.AssignDamage(monster.Health, dealt)
		if mechanics.IsDead(monster.Health) {
			rewards, err := e.rollRewards(ctx, *monster)
			if err != nil {
				return Result{}, err
			}
			next.LastActions = session.LastActions{Player: session.Did(session.VerbAttacks, dealt)}
			next.Resolve(session.Outcome{Status: session.PlayerWins, Rewards: &rewards, TurnID: turnID})
			break
		}
		if err := e.takeHit(ctx, player, staged); err != nil {
			return Result{}, err
		}
		next.LastActions.Player = session.Did(session.VerbAttacks, dealt)

	case ActionDefend:
		before := player.Health
		player.Health = mechanics.AssignHealing(player.Health, player.MaxHealth, e.cfg.DefendHeal)
		healed := player.Health - before
		if err := e.takeHit(ctx, player, staged); err != nil {
			return Result{}, err
		}
		next.LastActions.Player = session.Did(session.VerbHeals, healed)

	case ActionUseItem:
		action, err := e.useItemInCombat(ctx, player, req.TargetID)
		if err != nil {
			return Result{}, err
		}
		if err := e.takeHit(ctx, player, staged); err != nil {
			return Result{}, err
		}
		next.LastActions.Player = action

	case ActionFlee:
		if e.rng.Float64() < e.cfg.FleeChance {
			next.LastActions = session.LastActions{Player: &session.Action{Action: session.VerbFlees}}
			next.Resolve(session.Outcome{Status: session.PlayerFlees, TurnID: turnID})
			break
		}
		if err := e.takeHit(ctx, player, staged); err != nil {
			return Result{}, err
		}
		next.LastActions.Player = &session.Action{Action: session.VerbFleeFails}
	}

	if mechanics.IsDead(player.Health) {
		next.ForceLoss(turnID)
	}

	stored, err := e.persist(ctx, next)
	if err != nil {
		return Result{}, err
	}

	res := Result{Session: stored}
	if stored.Outcome != nil && stored.Outcome.Status == session.PlayerWins {
		res.Rewards = stored.Outcome.Rewards
		if level := e.settle(ctx, stored.CharacterID, *stored.Outcome); level != leveling.NoLevelChange {
			res.Level = &level
		}
	}
	return res, nil
}

// takeHit applies the staged retaliation and writes the player's health
// through to the character record.
func (e *Engine) takeHit(ctx context.Context, player *session.Player, damage int) error {
	player.Health = mechanics.AssignDamage(player.Health, damage)
	if err := e.characters.UpdateHealth(ctx, player.CharacterID, player.Health); err != nil {
		return storeErr(err, errCharacterUnknown, "update player health")
	}
	return nil
}

func (e *Engine) useItemInCombat(ctx context.Context, player *session.Player, itemID int64) (*session.Action, error) {
	held, err := e.inventory.GetInventoryItem(ctx, player.CharacterID, itemID)
	if err != nil {
		return nil, storeErr(err, errItemUnknown, "load inventory item")
	}
	target := player.Combatant
	results, err := items.Apply(&target, held.Item.Effects)
	if err != nil {
		return nil, err
	}
	if err := e.consume(ctx, player.CharacterID, itemID); err != nil {
		return nil, err
	}
	player.Combatant = target
	return &session.Action{Action: session.VerbUsesItem, Item: held.Item.Name, Results: results}, nil
}

func (e *Engine) consume(ctx context.Context, characterID string, itemID int64) error {
	err := e.inventory.RemoveInventoryItem(ctx, characterID, itemID, 1)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrInsufficientAmount):
		return apperrors.New(apperrors.CodeInsufficientAmount, "not enough of that item")
	default:
		return storeErr(err, errItemUnknown, "consume inventory item")
	}
}

func (e *Engine) rollRewards(ctx context.Context, monster session.Monster) (session.Rewards, error) {
	table, err := e.monsters.GetMonsterLoot(ctx, monster.ID)
	if err != nil {
		return session.Rewards{}, storeErr(err, nil, "load loot table")
	}
	rewards := session.Rewards{
		Gold:       rollGold(e.rng, monster.GoldMin, monster.GoldMax),
		Experience: monster.Experience,
	}
	if drop, ok := loot.Resolve(e.rng, table); ok {
		rewards.Loot = []loot.Drop{drop}
	}
	return rewards, nil
}

// rollGold draws uniformly from [lo, hi].
func rollGold(rng Random, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, apperrors.PublicMessage(err))
	span.SetAttributes(attribute.String("combat.error_code", string(apperrors.CodeOf(err))))
}
