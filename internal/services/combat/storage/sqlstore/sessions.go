package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

// GetCombatSession returns the raw session record for a character.
func (s *Store) GetCombatSession(ctx context.Context, characterID string) (session.Record, error) {
	if err := s.ready(ctx); err != nil {
		return session.Record{}, err
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return session.Record{}, fmt.Errorf("character id is required")
	}

	rec := session.Record{CharacterID: characterID}
	var state, player, monster sql.NullString
	err := s.queryRow(ctx,
		`SELECT state, player, monster, revision
		   FROM combat_sessions
		  WHERE character_id = ?`,
		characterID,
	).Scan(&state, &player, &monster, &rec.Revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Record{}, storage.ErrNotFound
		}
		return session.Record{}, fmt.Errorf("get combat session: %w", err)
	}
	rec.State = jsonBytes(state)
	rec.Player = jsonBytes(player)
	rec.Monster = jsonBytes(monster)
	return rec, nil
}

// CreateCombatSession inserts an idle record for an existing character. An
// existing record is returned unchanged.
func (s *Store) CreateCombatSession(ctx context.Context, characterID string) (session.Record, error) {
	if err := s.ready(ctx); err != nil {
		return session.Record{}, err
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return session.Record{}, fmt.Errorf("character id is required")
	}

	err := s.withTx(ctx, func(t tx) error {
		var found int
		if err := t.queryRow(ctx, `SELECT 1 FROM characters WHERE id = ?`, characterID).Scan(&found); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("check character: %w", err)
		}
		return insertIdleSession(ctx, t, characterID, s.now().UnixMilli())
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return session.Record{}, err
		}
		return session.Record{}, fmt.Errorf("create combat session: %w", err)
	}
	return s.GetCombatSession(ctx, characterID)
}

func insertIdleSession(ctx context.Context, t tx, characterID string, nowMillis int64) error {
	_, err := t.exec(ctx,
		`INSERT INTO combat_sessions (character_id, state, player, monster, revision, updated_at)
		 VALUES (?, NULL, NULL, NULL, 0, ?)
		 ON CONFLICT (character_id) DO NOTHING`,
		characterID, nowMillis,
	)
	return err
}

// PutCombatSession writes rec when the stored revision still equals
// rec.Revision and returns the record with its incremented revision.
func (s *Store) PutCombatSession(ctx context.Context, rec session.Record) (session.Record, error) {
	if err := s.ready(ctx); err != nil {
		return session.Record{}, err
	}
	rec.CharacterID = strings.TrimSpace(rec.CharacterID)
	if rec.CharacterID == "" {
		return session.Record{}, fmt.Errorf("character id is required")
	}

	var revision int64
	err := s.queryRow(ctx,
		`UPDATE combat_sessions
		    SET state = ?, player = ?, monster = ?, revision = revision + 1, updated_at = ?
		  WHERE character_id = ? AND revision = ?
		RETURNING revision`,
		nullJSON(rec.State),
		nullJSON(rec.Player),
		nullJSON(rec.Monster),
		toMillis(s.now()),
		rec.CharacterID,
		rec.Revision,
	).Scan(&revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Record{}, s.missOrConflict(ctx, rec.CharacterID)
		}
		return session.Record{}, fmt.Errorf("put combat session: %w", err)
	}
	rec.Revision = revision
	return rec, nil
}

// ClearCombatSession nulls all three columns in one statement, guarded by
// the same revision check as PutCombatSession.
func (s *Store) ClearCombatSession(ctx context.Context, characterID string, revision int64) (session.Record, error) {
	return s.PutCombatSession(ctx, session.Record{CharacterID: characterID, Revision: revision})
}

func (s *Store) missOrConflict(ctx context.Context, characterID string) error {
	var found int
	err := s.queryRow(ctx, `SELECT 1 FROM combat_sessions WHERE character_id = ?`, characterID).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("check combat session: %w", err)
	}
	return storage.ErrConflict
}
