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

var newSkill = leveling.Progress{Experience: 0, Level: 1}

// GetSkillProgress returns one skill's progress. A character without a row
// for the skill starts at level 1 with no experience.
func (s *Store) GetSkillProgress(ctx context.Context, characterID, skill string) (leveling.Progress, error) {
	if err := s.ready(ctx); err != nil {
		return leveling.Progress{}, err
	}
	var progress leveling.Progress
	err := s.queryRow(ctx,
		`SELECT experience, level FROM character_skills WHERE character_id = ? AND skill = ?`,
		strings.TrimSpace(characterID), skill,
	).Scan(&progress.Experience, &progress.Level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newSkill, nil
		}
		return leveling.Progress{}, fmt.Errorf("get skill progress: %w", err)
	}
	return progress, nil
}

const putSkillSQL = `INSERT INTO character_skills (character_id, skill, experience, level) VALUES (?, ?, ?, ?)
 ON CONFLICT (character_id, skill) DO UPDATE SET
   experience = excluded.experience,
   level = excluded.level`

// PutSkillProgress upserts one skill's progress.
func (s *Store) PutSkillProgress(ctx context.Context, characterID, skill string, progress leveling.Progress) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" || skill == "" {
		return fmt.Errorf("character id and skill are required")
	}
	_, err := s.exec(ctx, putSkillSQL, characterID, skill, progress.Experience, progress.Level)
	if err != nil {
		return fmt.Errorf("put skill progress: %w", err)
	}
	return nil
}

// ListSkills returns every tracked skill for a character in display order.
func (s *Store) ListSkills(ctx context.Context, characterID string) ([]storage.Skill, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx,
		`SELECT skill, experience, level FROM character_skills WHERE character_id = ?`,
		strings.TrimSpace(characterID),
	)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]leveling.Progress)
	for rows.Next() {
		var name string
		var progress leveling.Progress
		if err := rows.Scan(&name, &progress.Experience, &progress.Level); err != nil {
			return nil, fmt.Errorf("list skills: %w", err)
		}
		stored[name] = progress
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}

	skills := make([]storage.Skill, 0, len(leveling.Skills))
	for _, name := range leveling.Skills {
		progress, ok := stored[name]
		if !ok {
			progress = newSkill
		}
		skills = append(skills, storage.Skill{Skill: name, Progress: progress})
	}
	return skills, nil
}
