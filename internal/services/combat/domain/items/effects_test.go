package items

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
)

func TestApplyRestoreHealthClamps(t *testing.T) {
	target := session.Combatant{Health: 15, MaxHealth: 20}
	results, err := Apply(&target, []Effect{{Effect: EffectRestoreHealth, Value: 10}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if target.Health != 20 {
		t.Fatalf("health = %d, want 20", target.Health)
	}
	if len(results) != 1 || results[0] != "restored 5 health" {
		t.Fatalf("results = %v", results)
	}
}

func TestApplyRestoreHealthRejectsFullHealth(t *testing.T) {
	target := session.Combatant{Health: 20, MaxHealth: 20}
	_, err := Apply(&target, []Effect{{Effect: EffectRestoreHealth, Value: 10}})
	if !errors.Is(err, ErrHealthFull) {
		t.Fatalf("err = %v, want ErrHealthFull", err)
	}
}

func TestApplyUnknownEffect(t *testing.T) {
	target := session.Combatant{Health: 1, MaxHealth: 20}
	_, err := Apply(&target, []Effect{{Effect: "teleport"}})
	if apperrors.CodeOf(err) != apperrors.CodeUnknownEffect {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeUnknownEffect)
	}
}

func TestApplyMultipleEffectsInOrder(t *testing.T) {
	target := session.Combatant{Health: 2, MaxHealth: 20}
	results, err := Apply(&target, []Effect{
		{Effect: EffectRestoreHealth, Value: 5},
		{Effect: EffectRestoreHealth, Value: 5},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if target.Health != 12 || len(results) != 2 {
		t.Fatalf("health = %d results = %v", target.Health, results)
	}
}
