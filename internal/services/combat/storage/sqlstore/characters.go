package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

// CreateCharacter inserts a character together with its combat stats, one
// row per skill and its idle combat session.
func (s *Store) CreateCharacter(ctx context.Context, character storage.Character, stats storage.CombatStats) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	character.ID = strings.TrimSpace(character.ID)
	character.Name = strings.TrimSpace(character.Name)
	if character.ID == "" {
		return fmt.Errorf("character id is required")
	}
	if character.Name == "" {
		return fmt.Errorf("character name is required")
	}
	if stats.MaxHealth <= 0 {
		return fmt.Errorf("max health must be greater than zero")
	}
	if stats.Health <= 0 || stats.Health > stats.MaxHealth {
		stats.Health = stats.MaxHealth
	}
	createdAt := character.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	err := s.withTx(ctx, func(t tx) error {
		if _, err := t.exec(ctx,
			`INSERT INTO characters (id, name, gold, created_at) VALUES (?, ?, ?, ?)`,
			character.ID, character.Name, character.Gold, toMillis(createdAt),
		); err != nil {
			return err
		}
		if _, err := t.exec(ctx,
			`INSERT INTO character_combat_stats (character_id, health, max_health, power, toughness)
			 VALUES (?, ?, ?, ?, ?)`,
			character.ID, stats.Health, stats.MaxHealth, stats.Power, stats.Toughness,
		); err != nil {
			return err
		}
		for _, skill := range leveling.Skills {
			if _, err := t.exec(ctx,
				`INSERT INTO character_skills (character_id, skill, experience, level) VALUES (?, ?, 0, 1)`,
				character.ID, skill,
			); err != nil {
				return err
			}
		}
		return insertIdleSession(ctx, t, character.ID, toMillis(createdAt))
	})
	if err != nil {
		if s.uniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create character: %w", err)
	}
	return nil
}

// GetCharacter returns one character by ID.
func (s *Store) GetCharacter(ctx context.Context, characterID string) (storage.Character, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Character{}, err
	}
	var character storage.Character
	var createdAt int64
	err := s.queryRow(ctx,
		`SELECT id, name, gold, created_at FROM characters WHERE id = ?`,
		strings.TrimSpace(characterID),
	).Scan(&character.ID, &character.Name, &character.Gold, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Character{}, storage.ErrNotFound
		}
		return storage.Character{}, fmt.Errorf("get character: %w", err)
	}
	character.CreatedAt = fromMillis(createdAt)
	return character, nil
}

// GetCombatStats returns the persisted combat profile of a character.
func (s *Store) GetCombatStats(ctx context.Context, characterID string) (storage.CombatStats, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CombatStats{}, err
	}
	stats := storage.CombatStats{CharacterID: strings.TrimSpace(characterID)}
	err := s.queryRow(ctx,
		`SELECT health, max_health, power, toughness
		   FROM character_combat_stats
		  WHERE character_id = ?`,
		stats.CharacterID,
	).Scan(&stats.Health, &stats.MaxHealth, &stats.Power, &stats.Toughness)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CombatStats{}, storage.ErrNotFound
		}
		return storage.CombatStats{}, fmt.Errorf("get combat stats: %w", err)
	}
	return stats, nil
}

// UpdateHealth sets a character's persisted health.
func (s *Store) UpdateHealth(ctx context.Context, characterID string, health int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if health < 0 {
		return fmt.Errorf("health must not be negative")
	}
	result, err := s.exec(ctx,
		`UPDATE character_combat_stats SET health = ? WHERE character_id = ?`,
		health, strings.TrimSpace(characterID),
	)
	if err != nil {
		return fmt.Errorf("update health: %w", err)
	}
	return requireRows(result)
}

const creditGoldSQL = `UPDATE characters SET gold = gold + ? WHERE id = ?`

// CreditGold adds amount to a character's gold.
func (s *Store) CreditGold(ctx context.Context, characterID string, amount int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("gold credit must not be negative")
	}
	result, err := s.exec(ctx, creditGoldSQL, amount, strings.TrimSpace(characterID))
	if err != nil {
		return fmt.Errorf("credit gold: %w", err)
	}
	return requireRows(result)
}
