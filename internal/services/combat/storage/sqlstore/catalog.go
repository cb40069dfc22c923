package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/items"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/loot"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

const monsterColumns = `id, name, area, health, power, toughness, gold_min, gold_max, experience`

func scanMonster(scanner interface{ Scan(...any) error }, monster *storage.Monster) error {
	return scanner.Scan(
		&monster.ID,
		&monster.Name,
		&monster.Area,
		&monster.Health,
		&monster.Power,
		&monster.Toughness,
		&monster.GoldMin,
		&monster.GoldMax,
		&monster.Experience,
	)
}

// GetMonster returns one monster template.
func (s *Store) GetMonster(ctx context.Context, monsterID int64) (storage.Monster, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Monster{}, err
	}
	var monster storage.Monster
	row := s.queryRow(ctx, `SELECT `+monsterColumns+` FROM monsters WHERE id = ?`, monsterID)
	if err := scanMonster(row, &monster); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Monster{}, storage.ErrNotFound
		}
		return storage.Monster{}, fmt.Errorf("get monster: %w", err)
	}
	return monster, nil
}

// ListMonsters returns the monsters of one training area ordered by ID.
func (s *Store) ListMonsters(ctx context.Context, area string) ([]storage.Monster, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, fmt.Errorf("area is required")
	}
	rows, err := s.query(ctx, `SELECT `+monsterColumns+` FROM monsters WHERE area = ? ORDER BY id ASC`, area)
	if err != nil {
		return nil, fmt.Errorf("list monsters: %w", err)
	}
	defer rows.Close()

	monsters := []storage.Monster{}
	for rows.Next() {
		var monster storage.Monster
		if err := scanMonster(rows, &monster); err != nil {
			return nil, fmt.Errorf("list monsters: %w", err)
		}
		monsters = append(monsters, monster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list monsters: %w", err)
	}
	return monsters, nil
}

// ListTrainingAreas returns all training areas ordered by name.
func (s *Store) ListTrainingAreas(ctx context.Context) ([]storage.TrainingArea, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, `SELECT name, description FROM training_areas ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list training areas: %w", err)
	}
	defer rows.Close()

	areas := []storage.TrainingArea{}
	for rows.Next() {
		var area storage.TrainingArea
		if err := rows.Scan(&area.Name, &area.Description); err != nil {
			return nil, fmt.Errorf("list training areas: %w", err)
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list training areas: %w", err)
	}
	return areas, nil
}

// GetMonsterLoot returns a monster's loot table in table order.
func (s *Store) GetMonsterLoot(ctx context.Context, monsterID int64) ([]loot.Entry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx,
		`SELECT l.item_id, i.name, l.quantity, l.drop_probability
		   FROM monster_loot l
		   JOIN items i ON i.id = l.item_id
		  WHERE l.monster_id = ?
		  ORDER BY l.position ASC`,
		monsterID,
	)
	if err != nil {
		return nil, fmt.Errorf("get monster loot: %w", err)
	}
	defer rows.Close()

	var table []loot.Entry
	for rows.Next() {
		var entry loot.Entry
		if err := rows.Scan(&entry.ItemID, &entry.ItemName, &entry.Quantity, &entry.DropProbability); err != nil {
			return nil, fmt.Errorf("get monster loot: %w", err)
		}
		table = append(table, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get monster loot: %w", err)
	}
	return table, nil
}

func (s *Store) getItemEffects(ctx context.Context, itemID int64) ([]items.Effect, error) {
	rows, err := s.query(ctx,
		`SELECT effect, effect_value FROM item_effects WHERE item_id = ? ORDER BY position ASC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("get item effects: %w", err)
	}
	defer rows.Close()

	var effects []items.Effect
	for rows.Next() {
		var effect items.Effect
		if err := rows.Scan(&effect.Effect, &effect.Value); err != nil {
			return nil, fmt.Errorf("get item effects: %w", err)
		}
		effects = append(effects, effect)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get item effects: %w", err)
	}
	return effects, nil
}

// GetExperienceTable returns the level thresholds ordered by level.
func (s *Store) GetExperienceTable(ctx context.Context) (leveling.Table, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, `SELECT threshold FROM experience_levels ORDER BY level ASC`)
	if err != nil {
		return nil, fmt.Errorf("get experience table: %w", err)
	}
	defer rows.Close()

	var table leveling.Table
	for rows.Next() {
		var threshold int
		if err := rows.Scan(&threshold); err != nil {
			return nil, fmt.Errorf("get experience table: %w", err)
		}
		table = append(table, threshold)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get experience table: %w", err)
	}
	if len(table) == 0 {
		return nil, storage.ErrNotFound
	}
	return table, nil
}

// PutTrainingArea upserts a training area.
func (s *Store) PutTrainingArea(ctx context.Context, area storage.TrainingArea) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	area.Name = strings.TrimSpace(area.Name)
	if area.Name == "" {
		return fmt.Errorf("area name is required")
	}
	_, err := s.exec(ctx,
		`INSERT INTO training_areas (name, description) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET description = excluded.description`,
		area.Name, area.Description,
	)
	if err != nil {
		return fmt.Errorf("put training area: %w", err)
	}
	return nil
}

// PutMonster upserts a monster template and replaces its loot table.
func (s *Store) PutMonster(ctx context.Context, monster storage.Monster, table []loot.Entry) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if monster.ID <= 0 {
		return fmt.Errorf("monster id must be greater than zero")
	}
	if strings.TrimSpace(monster.Name) == "" {
		return fmt.Errorf("monster name is required")
	}
	if monster.GoldMax < monster.GoldMin {
		return fmt.Errorf("monster gold max must be greater than or equal to min")
	}
	for _, entry := range table {
		if entry.DropProbability < 0 || entry.DropProbability > 1 {
			return fmt.Errorf("drop probability %v is outside [0, 1]", entry.DropProbability)
		}
	}

	err := s.withTx(ctx, func(t tx) error {
		if _, err := t.exec(ctx,
			`INSERT INTO monsters (`+monsterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   name = excluded.name,
			   area = excluded.area,
			   health = excluded.health,
			   power = excluded.power,
			   toughness = excluded.toughness,
			   gold_min = excluded.gold_min,
			   gold_max = excluded.gold_max,
			   experience = excluded.experience`,
			monster.ID, strings.TrimSpace(monster.Name), monster.Area, monster.Health, monster.Power,
			monster.Toughness, monster.GoldMin, monster.GoldMax, monster.Experience,
		); err != nil {
			return err
		}
		if _, err := t.exec(ctx, `DELETE FROM monster_loot WHERE monster_id = ?`, monster.ID); err != nil {
			return err
		}
		for position, entry := range table {
			if _, err := t.exec(ctx,
				`INSERT INTO monster_loot (monster_id, position, item_id, quantity, drop_probability)
				 VALUES (?, ?, ?, ?, ?)`,
				monster.ID, position, entry.ItemID, entry.Quantity, entry.DropProbability,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put monster %d: %w", monster.ID, err)
	}
	return nil
}

// PutItem upserts a catalog item and replaces its effects.
func (s *Store) PutItem(ctx context.Context, item storage.Item) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if item.ID <= 0 {
		return fmt.Errorf("item id must be greater than zero")
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name is required")
	}

	err := s.withTx(ctx, func(t tx) error {
		if _, err := t.exec(ctx,
			`INSERT INTO items (id, name, category, value, description) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   name = excluded.name,
			   category = excluded.category,
			   value = excluded.value,
			   description = excluded.description`,
			item.ID, strings.TrimSpace(item.Name), item.Category, item.Value, item.Description,
		); err != nil {
			return err
		}
		if _, err := t.exec(ctx, `DELETE FROM item_effects WHERE item_id = ?`, item.ID); err != nil {
			return err
		}
		for position, effect := range item.Effects {
			if _, err := t.exec(ctx,
				`INSERT INTO item_effects (item_id, position, effect, effect_value) VALUES (?, ?, ?, ?)`,
				item.ID, position, effect.Effect, effect.Value,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put item %d: %w", item.ID, err)
	}
	return nil
}

// PutExperienceTable replaces the level thresholds.
func (s *Store) PutExperienceTable(ctx context.Context, table leveling.Table) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := table.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		if _, err := t.exec(ctx, `DELETE FROM experience_levels`); err != nil {
			return err
		}
		for i, threshold := range table {
			if _, err := t.exec(ctx,
				`INSERT INTO experience_levels (level, threshold) VALUES (?, ?)`,
				i+1, threshold,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put experience table: %w", err)
	}
	return nil
}
