package engine

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

var errAreaMissing = apperrors.New(apperrors.CodeAreaMissing, "area is required")

// TrainingAreas lists the areas monsters can be fought in.
func (e *Engine) TrainingAreas(ctx context.Context) ([]storage.TrainingArea, error) {
	areas, err := e.monsters.ListTrainingAreas(ctx)
	if err != nil {
		return nil, apperrors.Upstream("list training areas", err)
	}
	return areas, nil
}

// Monsters lists the monsters of one area.
func (e *Engine) Monsters(ctx context.Context, area string) ([]storage.Monster, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, errAreaMissing
	}
	monsters, err := e.monsters.ListMonsters(ctx, area)
	if err != nil {
		return nil, apperrors.Upstream("list monsters", err)
	}
	return monsters, nil
}

// Skills returns the character's skill levels.
func (e *Engine) Skills(ctx context.Context, characterID string) ([]storage.Skill, error) {
	if characterID == "" {
		return nil, errCharacterMissing
	}
	if _, err := e.characters.GetCharacter(ctx, characterID); err != nil {
		return nil, storeErr(err, errCharacterUnknown, "load character")
	}
	skills, err := e.skills.ListSkills(ctx, characterID)
	if err != nil {
		return nil, apperrors.Upstream("list skills", err)
	}
	return skills, nil
}
