package engine

import (
	"context"
	"log"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errUndecided = apperrors.New(apperrors.CodeOutcomeUndecided, "combat outcome is not decided yet")

// Reset ends a decided encounter and returns the idle session.
//
// An idle session is returned unchanged. A corrupt session is force-cleared
// regardless of outcome. An active encounter is rejected. A loss restores
// the character to half of the max health captured in the session. A win replays pending rewards first and is
// only cleared once its reward intent is recorded.
func (e *Engine) Reset(ctx context.Context, characterID string) (res session.Session, err error) {
	ctx, span := e.tracer.Start(ctx, "combat.reset", trace.WithAttributes(
		attribute.String("combat.character_id", characterID),
	))
	defer func() {
		endSpan(span, err)
		span.End()
	}()

	if characterID == "" {
		return session.Session{}, errCharacterMissing
	}
	unlock := e.locks.lock(characterID)
	defer unlock()

	current, err := e.load(ctx, characterID)
	if err != nil {
		return session.Session{}, err
	}
	span.SetAttributes(attribute.String("combat.status", string(current.Status)))

	switch current.Status {
	case session.StatusIdle:
		return current, nil
	case session.StatusCorrupt:
		log.Printf("clearing corrupt combat session character_id=%s revision=%d", characterID, current.Revision)
		return e.clear(ctx, current)
	case session.StatusActive:
		return session.Session{}, errUndecided
	}

	switch current.Outcome.Status {
	case session.PlayerWins:
		// Steps that fail again stay pending; only losing the intent blocks the reset.
		if _, err := e.replay(ctx, current); err != nil {
			return session.Session{}, err
		}
	case session.PlayerLoses:
		if err := e.characters.UpdateHealth(ctx, characterID, current.Player.MaxHealth/2); err != nil {
			return session.Session{}, storeErr(err, errCharacterUnknown, "restore player health")
		}
	}
	return e.clear(ctx, current)
}
