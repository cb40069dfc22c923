// Package dice rolls polyhedral dice against an injected random source.
package dice

import "errors"

// ErrMissingDice indicates a roll request had no dice specified.
var ErrMissingDice = errors.New("at least one die must be provided")

// ErrInvalidDiceSpec indicates a die specification has invalid fields.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and non-negative count")

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Spec describes a die to roll and how many times to roll it. A zero Count
// is valid and rolls nothing.
type Spec struct {
	Sides int
	Count int
}

// Roll captures the results for a single dice spec.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// Result captures the results from rolling multiple dice.
type Result struct {
	Rolls []Roll
	Total int
}

// RollWithSource rolls every spec in slice order using src.
//
// Given the same source state and specs, the result is identical, so tests
// pass a seeded *rand.Rand to pin outcomes.
func RollWithSource(src Source, specs []Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}

	rolls := make([]Roll, 0, len(specs))
	total := 0
	for _, spec := range specs {
		if spec.Sides <= 0 || spec.Count < 0 {
			return Result{}, ErrInvalidDiceSpec
		}

		results := make([]int, spec.Count)
		rollTotal := 0
		for i := 0; i < spec.Count; i++ {
			value := rollDie(src, spec.Sides)
			results[i] = value
			rollTotal += value
		}

		rolls = append(rolls, Roll{
			Sides:   spec.Sides,
			Results: results,
			Total:   rollTotal,
		})
		total += rollTotal
	}

	return Result{
		Rolls: rolls,
		Total: total,
	}, nil
}

// rollDie rolls a single die with the provided number of sides.
func rollDie(src Source, sides int) int {
	return src.Intn(sides) + 1
}
