package session

import (
	"encoding/json"
	"fmt"
)

// Record is the storage shape: three independently nullable JSON columns.
// A nil slice is SQL NULL.
type Record struct {
	CharacterID string
	State       []byte
	Player      []byte
	Monster     []byte
	Revision    int64
}

// Decode classifies a record into a Session.
//
// All columns NULL is Idle. Player and monster both present is Active, or
// Resolved when the state carries an outcome; a missing state column is
// read as an empty state. Any other combination (exactly one column set, or
// only one combatant) is Corrupt.
func Decode(rec Record) (Session, error) {
	s := Session{CharacterID: rec.CharacterID, Revision: rec.Revision}

	var state *State
	if rec.State != nil {
		state = &State{}
		if err := json.Unmarshal(rec.State, state); err != nil {
			return Session{}, fmt.Errorf("decode combat state: %w", err)
		}
	}
	if rec.Player != nil {
		s.Player = &Player{}
		if err := json.Unmarshal(rec.Player, s.Player); err != nil {
			return Session{}, fmt.Errorf("decode combat player: %w", err)
		}
	}
	if rec.Monster != nil {
		s.Monster = &Monster{}
		if err := json.Unmarshal(rec.Monster, s.Monster); err != nil {
			return Session{}, fmt.Errorf("decode combat monster: %w", err)
		}
	}
	if state != nil {
		s.LastActions = state.LastActions
		s.Outcome = state.Outcome
	}

	set := 0
	for _, present := range []bool{state != nil, s.Player != nil, s.Monster != nil} {
		if present {
			set++
		}
	}
	switch {
	case set == 0:
		s.Status = StatusIdle
	case set == 1 || (s.Player == nil) != (s.Monster == nil):
		s.Status = StatusCorrupt
	case s.Outcome != nil:
		s.Status = StatusResolved
	default:
		s.Status = StatusActive
	}
	return s, nil
}

// Encode renders a Session into its storage shape. Corrupt sessions cannot be
// encoded; they are only ever cleared.
func Encode(s Session) (Record, error) {
	rec := Record{CharacterID: s.CharacterID, Revision: s.Revision}
	switch s.Status {
	case StatusIdle:
		return rec, nil
	case StatusActive, StatusResolved:
	default:
		return Record{}, fmt.Errorf("cannot encode %s combat session", s.Status)
	}
	if s.Player == nil || s.Monster == nil {
		return Record{}, fmt.Errorf("%s combat session requires both combatants", s.Status)
	}

	var err error
	if rec.State, err = json.Marshal(s.State()); err != nil {
		return Record{}, fmt.Errorf("encode combat state: %w", err)
	}
	if rec.Player, err = json.Marshal(s.Player); err != nil {
		return Record{}, fmt.Errorf("encode combat player: %w", err)
	}
	if rec.Monster, err = json.Marshal(s.Monster); err != nil {
		return Record{}, fmt.Errorf("encode combat monster: %w", err)
	}
	return rec, nil
}
