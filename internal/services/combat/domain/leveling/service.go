package leveling

import (
	"context"
	"fmt"
)

// Progress is a character's standing in one skill.
type Progress struct {
	Experience int
	Level      int
}

// Store persists skill progress.
type Store interface {
	GetSkillProgress(ctx context.Context, characterID, skill string) (Progress, error)
	PutSkillProgress(ctx context.Context, characterID, skill string, progress Progress) error
}

// Service applies experience deltas against a threshold table.
type Service struct {
	store Store
	table Table
}

// NewService builds a Service. A nil or invalid table is rejected.
func NewService(store Store, table Table) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("skill store is required")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Service{store: store, table: table}, nil
}

// Table returns the thresholds in use.
func (s *Service) Table() Table {
	return s.table
}

// Gain reads the skill's progress and returns it with amount added and the
// level recomputed, without storing it. The level is NoLevelChange unless
// the gain crosses a threshold.
func (s *Service) Gain(ctx context.Context, characterID, skill string, amount int) (Progress, int, error) {
	current, err := s.store.GetSkillProgress(ctx, characterID, skill)
	if err != nil {
		return Progress{}, NoLevelChange, fmt.Errorf("get %s progress: %w", skill, err)
	}
	next := Progress{Experience: current.Experience + amount}
	next.Level = s.table.LevelFor(next.Experience)
	if next.Level == current.Level {
		return next, NoLevelChange, nil
	}
	return next, next.Level, nil
}

// AddExperience adds amount to the skill's experience and stores the result.
// It returns the new level when it changed, otherwise NoLevelChange.
func (s *Service) AddExperience(ctx context.Context, characterID, skill string, amount int) (int, error) {
	next, level, err := s.Gain(ctx, characterID, skill, amount)
	if err != nil {
		return NoLevelChange, err
	}
	if err := s.store.PutSkillProgress(ctx, characterID, skill, next); err != nil {
		return NoLevelChange, fmt.Errorf("put %s progress: %w", skill, err)
	}
	return level, nil
}
