package engine

import (
	"context"
	"errors"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/items"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
)

var errInEncounter = apperrors.New(apperrors.CodeCombatInProgress, "cannot use items outside the combat menu during an active encounter")

// ItemUse is the result of consuming an item outside combat.
type ItemUse struct {
	Item      string
	Results   []string
	Health    int
	MaxHealth int
}

// UseItem consumes one unit of an inventory item outside an encounter and
// applies its effects to the character's persisted stats.
func (e *Engine) UseItem(ctx context.Context, characterID string, itemID int64) (ItemUse, error) {
	if characterID == "" {
		return ItemUse{}, errCharacterMissing
	}
	if itemID <= 0 {
		return ItemUse{}, errTargetMissing
	}
	unlock := e.locks.lock(characterID)
	defer unlock()

	current, err := e.load(ctx, characterID)
	switch {
	case err == nil:
		if current.InEncounter() {
			return ItemUse{}, errInEncounter
		}
	case !errors.Is(err, errCombatNotFound):
		return ItemUse{}, err
	}

	held, err := e.inventory.GetInventoryItem(ctx, characterID, itemID)
	if err != nil {
		return ItemUse{}, storeErr(err, errItemUnknown, "load inventory item")
	}
	stats, err := e.characters.GetCombatStats(ctx, characterID)
	if err != nil {
		return ItemUse{}, storeErr(err, errCharacterUnknown, "load combat stats")
	}

	target := session.Combatant{
		Health:    stats.Health,
		MaxHealth: stats.MaxHealth,
		Power:     stats.Power,
		Toughness: stats.Toughness,
	}
	results, err := items.Apply(&target, held.Item.Effects)
	if err != nil {
		return ItemUse{}, err
	}
	if err := e.consume(ctx, characterID, itemID); err != nil {
		return ItemUse{}, err
	}
	if target.Health != stats.Health {
		if err := e.characters.UpdateHealth(ctx, characterID, target.Health); err != nil {
			return ItemUse{}, storeErr(err, errCharacterUnknown, "update player health")
		}
	}
	return ItemUse{Item: held.Item.Name, Results: results, Health: target.Health, MaxHealth: target.MaxHealth}, nil
}
