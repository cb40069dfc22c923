// Package session models a character's combat encounter.
//
// A Session is Idle, Active or Resolved. Constructors only produce those
// states; Corrupt appears solely when decoding a persisted record whose
// columns are partially set, and the only operation accepting it is reset.
package session

import "github.com/louisbranch/idle-rpg/internal/services/combat/domain/loot"

// Status is the encounter lifecycle state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
	StatusCorrupt  Status = "corrupt"
)

// OutcomeStatus is the terminal result of an encounter.
type OutcomeStatus string

const (
	PlayerWins  OutcomeStatus = "player_wins"
	PlayerLoses OutcomeStatus = "player_loses"
	PlayerFlees OutcomeStatus = "player_flees"
)

// Action verbs recorded in LastActions.
const (
	VerbAttacks   = "attacks"
	VerbHeals     = "heals"
	VerbFlees     = "flees"
	VerbFleeFails = "flee"
	VerbUsesItem  = "uses_item"
)

// Combatant carries the stats shared by players and monsters.
type Combatant struct {
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`
	Power     int `json:"power"`
	Toughness int `json:"toughness"`
}

// Player is the character side of an encounter.
type Player struct {
	CharacterID string `json:"character_id"`
	Combatant
}

// Monster is the opposing side of an encounter.
type Monster struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Area       string `json:"area,omitempty"`
	GoldMin    int    `json:"gold_min"`
	GoldMax    int    `json:"gold_max"`
	Experience int    `json:"experience"`
	Combatant
}

// Action records what one side did this turn.
type Action struct {
	Action  string   `json:"action"`
	Amount  *int     `json:"amount,omitempty"`
	Item    string   `json:"item,omitempty"`
	Results []string `json:"results,omitempty"`
}

// Did builds an Action carrying an amount.
func Did(verb string, amount int) *Action {
	return &Action{Action: verb, Amount: &amount}
}

// LastActions holds the most recent action of each side.
type LastActions struct {
	Player  *Action `json:"player,omitempty"`
	Monster *Action `json:"monster,omitempty"`
}

// Rewards are granted when the player wins.
type Rewards struct {
	Gold       int         `json:"gold"`
	Experience int         `json:"experience"`
	Loot       []loot.Drop `json:"loot,omitempty"`
}

// Outcome is set exactly once per encounter. TurnID keys reward application
// so a replay never grants the same win twice.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Rewards *Rewards      `json:"rewards,omitempty"`
	TurnID  string        `json:"turn_id,omitempty"`
}

// State is the persisted encounter progress.
type State struct {
	LastActions LastActions `json:"last_actions"`
	Outcome     *Outcome    `json:"outcome,omitempty"`
}
