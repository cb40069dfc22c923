// Package mechanics holds the pure combat arithmetic: damage rolls, health
// clamping and death checks.
package mechanics

import "github.com/louisbranch/idle-rpg/internal/services/combat/domain/dice"

// DamageDieSides is the die rolled once per point of power.
const DamageDieSides = 4

// RollDamage rolls one d4 per point of power, subtracts toughness and floors
// the result at zero. Mean damage is power*2.5 - toughness; a low-power
// attacker against high toughness can deal zero indefinitely.
func RollDamage(src dice.Source, power, toughness int) int {
	if power <= 0 {
		return 0
	}
	result, err := dice.RollWithSource(src, []dice.Spec{{Sides: DamageDieSides, Count: power}})
	if err != nil {
		return 0
	}
	return max(0, result.Total-toughness)
}

// MaxDamage is the largest value RollDamage can return.
func MaxDamage(power, toughness int) int {
	if power <= 0 {
		return 0
	}
	return max(0, DamageDieSides*power-toughness)
}

// AssignDamage returns health after damage, never below zero.
func AssignDamage(health, damage int) int {
	return max(0, health-damage)
}

// AssignHealing returns health after healing, never above maxHealth.
func AssignHealing(health, maxHealth, amount int) int {
	return min(maxHealth, health+amount)
}

// IsDead reports whether health is depleted.
func IsDead(health int) bool {
	return health <= 0
}
