package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

// GetInventoryItem returns one inventory stack with its item and effects.
func (s *Store) GetInventoryItem(ctx context.Context, characterID string, itemID int64) (storage.InventoryItem, error) {
	if err := s.ready(ctx); err != nil {
		return storage.InventoryItem{}, err
	}
	inv := storage.InventoryItem{CharacterID: strings.TrimSpace(characterID)}
	err := s.queryRow(ctx,
		`SELECT i.id, i.name, i.category, i.value, i.description, inv.amount
		   FROM inventories inv
		   JOIN items i ON i.id = inv.item_id
		  WHERE inv.character_id = ? AND inv.item_id = ?`,
		inv.CharacterID, itemID,
	).Scan(
		&inv.Item.ID,
		&inv.Item.Name,
		&inv.Item.Category,
		&inv.Item.Value,
		&inv.Item.Description,
		&inv.Amount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.InventoryItem{}, storage.ErrNotFound
		}
		return storage.InventoryItem{}, fmt.Errorf("get inventory item: %w", err)
	}
	effects, err := s.getItemEffects(ctx, itemID)
	if err != nil {
		return storage.InventoryItem{}, err
	}
	inv.Item.Effects = effects
	return inv, nil
}

const addInventorySQL = `INSERT INTO inventories (character_id, item_id, amount) VALUES (?, ?, ?)
 ON CONFLICT (character_id, item_id) DO UPDATE SET amount = inventories.amount + excluded.amount`

// AddInventoryItem grows a stack, creating it when absent.
func (s *Store) AddInventoryItem(ctx context.Context, characterID string, itemID int64, amount int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	_, err := s.exec(ctx, addInventorySQL, strings.TrimSpace(characterID), itemID, amount)
	if err != nil {
		return fmt.Errorf("add inventory item: %w", err)
	}
	return nil
}

// RemoveInventoryItem shrinks a stack and deletes it when it reaches zero.
func (s *Store) RemoveInventoryItem(ctx context.Context, characterID string, itemID int64, amount int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	characterID = strings.TrimSpace(characterID)
	err := s.withTx(ctx, func(t tx) error {
		var held int
		err := t.queryRow(ctx,
			`SELECT amount FROM inventories WHERE character_id = ? AND item_id = ?`,
			characterID, itemID,
		).Scan(&held)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrNotFound
			}
			return err
		}
		switch {
		case held < amount:
			return storage.ErrInsufficientAmount
		case held == amount:
			_, err = t.exec(ctx,
				`DELETE FROM inventories WHERE character_id = ? AND item_id = ?`,
				characterID, itemID,
			)
		default:
			_, err = t.exec(ctx,
				`UPDATE inventories SET amount = amount - ? WHERE character_id = ? AND item_id = ?`,
				amount, characterID, itemID,
			)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInsufficientAmount) {
			return err
		}
		return fmt.Errorf("remove inventory item: %w", err)
	}
	return nil
}
