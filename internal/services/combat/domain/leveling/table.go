// Package leveling converts cumulative skill experience into levels.
package leveling

import (
	"errors"
	"fmt"
)

// Skill names tracked per character.
const (
	SkillCombat   = "combat"
	SkillFarming  = "farming"
	SkillFishing  = "fishing"
	SkillCrafting = "crafting"
)

// Skills lists every tracked skill in display order.
var Skills = []string{SkillCombat, SkillFarming, SkillFishing, SkillCrafting}

// NoLevelChange is returned by Gain and AddExperience when the level did not move.
const NoLevelChange = -1

// ErrInvalidTable indicates thresholds that cannot map experience to levels.
var ErrInvalidTable = errors.New("experience table must start at 0 and be strictly increasing")

// Table holds cumulative experience thresholds: Table[i] is the experience
// required to reach level i+1.
type Table []int

// DefaultTable is used when the store carries no experience levels.
var DefaultTable = Table{
	0, 83, 174, 276, 388, 512, 650, 801, 969, 1154,
	1358, 1584, 1833, 2107, 2411, 2746, 3115, 3523, 3973, 4470,
}

// Validate checks the table invariants.
func (t Table) Validate() error {
	if len(t) == 0 || t[0] != 0 {
		return ErrInvalidTable
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return fmt.Errorf("%w: level %d threshold %d <= %d", ErrInvalidTable, i+1, t[i], t[i-1])
		}
	}
	return nil
}

// LevelFor returns the level reached with experience: the number of
// thresholds not exceeding it. Experience past the last threshold stays at
// the max level.
func (t Table) LevelFor(experience int) int {
	level := 0
	for _, threshold := range t {
		if threshold > experience {
			break
		}
		level++
	}
	return level
}

// MaxLevel is the highest reachable level.
func (t Table) MaxLevel() int {
	return len(t)
}
