package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

const rewardColumns = `turn_id, character_id, gold, experience, loot_item_id, loot_quantity,
       gold_applied, experience_applied, loot_applied, created_at`

func scanRewardIntent(scanner interface{ Scan(...any) error }) (storage.RewardIntent, error) {
	var intent storage.RewardIntent
	var goldApplied, experienceApplied, lootApplied int
	var createdAt int64
	err := scanner.Scan(
		&intent.TurnID,
		&intent.CharacterID,
		&intent.Gold,
		&intent.Experience,
		&intent.LootItemID,
		&intent.LootQuantity,
		&goldApplied,
		&experienceApplied,
		&lootApplied,
		&createdAt,
	)
	if err != nil {
		return storage.RewardIntent{}, err
	}
	intent.GoldApplied = goldApplied != 0
	intent.ExperienceApplied = experienceApplied != 0
	intent.LootApplied = lootApplied != 0
	intent.CreatedAt = fromMillis(createdAt)
	return intent, nil
}

// CreateRewardIntent inserts intent if its turn has none yet and returns the
// stored row. Steps with nothing to grant are stored as applied.
func (s *Store) CreateRewardIntent(ctx context.Context, intent storage.RewardIntent) (storage.RewardIntent, error) {
	if err := s.ready(ctx); err != nil {
		return storage.RewardIntent{}, err
	}
	intent.TurnID = strings.TrimSpace(intent.TurnID)
	if intent.TurnID == "" {
		return storage.RewardIntent{}, fmt.Errorf("turn id is required")
	}
	if strings.TrimSpace(intent.CharacterID) == "" {
		return storage.RewardIntent{}, fmt.Errorf("character id is required")
	}
	intent = intent.WithEmptyStepsApplied()
	createdAt := intent.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO reward_intents (`+rewardColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (turn_id) DO NOTHING`,
		intent.TurnID,
		intent.CharacterID,
		intent.Gold,
		intent.Experience,
		intent.LootItemID,
		intent.LootQuantity,
		boolInt(intent.GoldApplied),
		boolInt(intent.ExperienceApplied),
		boolInt(intent.LootApplied),
		toMillis(createdAt),
	)
	if err != nil {
		return storage.RewardIntent{}, fmt.Errorf("create reward intent: %w", err)
	}
	return s.GetRewardIntent(ctx, intent.TurnID)
}

// GetRewardIntent returns the intent recorded for a turn.
func (s *Store) GetRewardIntent(ctx context.Context, turnID string) (storage.RewardIntent, error) {
	if err := s.ready(ctx); err != nil {
		return storage.RewardIntent{}, err
	}
	row := s.queryRow(ctx, `SELECT `+rewardColumns+` FROM reward_intents WHERE turn_id = ?`, strings.TrimSpace(turnID))
	intent, err := scanRewardIntent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RewardIntent{}, storage.ErrNotFound
		}
		return storage.RewardIntent{}, fmt.Errorf("get reward intent: %w", err)
	}
	return intent, nil
}

// ListPendingRewardIntents returns a character's intents with unapplied
// steps, oldest first.
func (s *Store) ListPendingRewardIntents(ctx context.Context, characterID string) ([]storage.RewardIntent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx,
		`SELECT `+rewardColumns+`
		   FROM reward_intents
		  WHERE character_id = ?
		    AND (gold_applied = 0 OR experience_applied = 0 OR loot_applied = 0)
		  ORDER BY created_at ASC, turn_id ASC`,
		strings.TrimSpace(characterID),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending reward intents: %w", err)
	}
	defer rows.Close()

	var intents []storage.RewardIntent
	for rows.Next() {
		intent, err := scanRewardIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("list pending reward intents: %w", err)
		}
		if intent.Pending() {
			intents = append(intents, intent)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending reward intents: %w", err)
	}
	return intents, nil
}

func rewardColumn(step storage.RewardStep) (string, error) {
	switch step {
	case storage.RewardStepGold:
		return "gold_applied", nil
	case storage.RewardStepExperience:
		return "experience_applied", nil
	case storage.RewardStepLoot:
		return "loot_applied", nil
	default:
		return "", fmt.Errorf("unknown reward step %q", step)
	}
}

// ApplyRewardStep claims one step of an intent and performs its side effect
// in the same transaction, so a step is never credited twice.
func (s *Store) ApplyRewardStep(ctx context.Context, grant storage.RewardGrant) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	column, err := rewardColumn(grant.Step)
	if err != nil {
		return false, err
	}
	if grant.Step == storage.RewardStepExperience && strings.TrimSpace(grant.Skill) == "" {
		return false, fmt.Errorf("skill is required for experience rewards")
	}
	turnID := strings.TrimSpace(grant.TurnID)

	applied := false
	err = s.withTx(ctx, func(t tx) error {
		var characterID string
		var gold, lootQuantity, done int
		var lootItemID int64
		err := t.queryRow(ctx,
			`SELECT character_id, gold, loot_item_id, loot_quantity, `+column+`
			   FROM reward_intents WHERE turn_id = ?`,
			turnID,
		).Scan(&characterID, &gold, &lootItemID, &lootQuantity, &done)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("load reward intent: %w", err)
		}
		if done != 0 {
			return nil
		}
		claim, err := t.exec(ctx,
			`UPDATE reward_intents SET `+column+` = 1 WHERE turn_id = ? AND `+column+` = 0`,
			turnID,
		)
		if err != nil {
			return fmt.Errorf("claim reward step %s: %w", grant.Step, err)
		}
		if n, err := claim.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return nil
		}

		switch grant.Step {
		case storage.RewardStepGold:
			if gold > 0 {
				result, err := t.exec(ctx, creditGoldSQL, gold, characterID)
				if err != nil {
					return fmt.Errorf("credit gold: %w", err)
				}
				if err := requireRows(result); err != nil {
					return err
				}
			}
		case storage.RewardStepExperience:
			if _, err := t.exec(ctx, putSkillSQL, characterID, grant.Skill, grant.Progress.Experience, grant.Progress.Level); err != nil {
				return fmt.Errorf("put skill progress: %w", err)
			}
		case storage.RewardStepLoot:
			if lootItemID != 0 && lootQuantity > 0 {
				if _, err := t.exec(ctx, addInventorySQL, characterID, lootItemID, lootQuantity); err != nil {
					return fmt.Errorf("add inventory item: %w", err)
				}
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
