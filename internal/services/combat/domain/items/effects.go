// Package items applies consumable item effects to combat stats.
package items

import (
	"fmt"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/mechanics"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
)

// EffectRestoreHealth heals by the effect value, up to max health.
const EffectRestoreHealth = "restore_health"

// ErrHealthFull rejects healing a character at full health.
var ErrHealthFull = apperrors.New(apperrors.CodeHealthFull, "character health is already full")

// Effect is one consumable effect attached to an item.
type Effect struct {
	Effect string `json:"effect"`
	Value  int    `json:"effect_value"`
}

// Apply runs effects in order against target and returns one result line per
// effect. On error target may be partially updated; callers apply effects to
// a copy and discard it on failure.
func Apply(target *session.Combatant, effects []Effect) ([]string, error) {
	if target == nil {
		return nil, fmt.Errorf("effect target is required")
	}
	results := make([]string, 0, len(effects))
	for _, effect := range effects {
		switch effect.Effect {
		case EffectRestoreHealth:
			if target.Health >= target.MaxHealth {
				return nil, ErrHealthFull
			}
			before := target.Health
			target.Health = mechanics.AssignHealing(target.Health, target.MaxHealth, effect.Value)
			results = append(results, fmt.Sprintf("restored %d health", target.Health-before))
		default:
			return nil, apperrors.WithMetadata(
				apperrors.CodeUnknownEffect,
				fmt.Sprintf("unknown effect type: %s", effect.Effect),
				map[string]string{"effect": effect.Effect},
			)
		}
	}
	return results, nil
}
