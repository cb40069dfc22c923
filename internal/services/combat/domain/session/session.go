package session

// Session is one character's combat record.
type Session struct {
	CharacterID string
	Status      Status
	Player      *Player
	Monster     *Monster
	LastActions LastActions
	Outcome     *Outcome
	// Revision increments on every persisted write.
	Revision int64
}

// Idle returns an idle session for characterID.
func Idle(characterID string, revision int64) Session {
	return Session{CharacterID: characterID, Status: StatusIdle, Revision: revision}
}

// Begin starts a fresh encounter on top of s, keeping its revision.
func Begin(s Session, player Player, monster Monster) Session {
	return Session{
		CharacterID: s.CharacterID,
		Status:      StatusActive,
		Player:      &player,
		Monster:     &monster,
		Revision:    s.Revision,
	}
}

// InEncounter reports whether an undecided encounter is running.
func (s Session) InEncounter() bool {
	return s.Status == StatusActive
}

// Decided reports whether the encounter has an outcome.
func (s Session) Decided() bool {
	return s.Status == StatusResolved
}

// Resolve records the outcome and moves the session to Resolved. A session
// that is not Active is left unchanged.
func (s *Session) Resolve(outcome Outcome) {
	if s.Status != StatusActive {
		return
	}
	s.Outcome = &outcome
	s.Status = StatusResolved
}

// ForceLoss overrides an outcome decided in the same turn with a loss.
// It is the only path that rewrites an outcome and is applied before the
// turn is persisted.
func (s *Session) ForceLoss(turnID string) {
	if s.Status != StatusActive && s.Status != StatusResolved {
		return
	}
	s.Outcome = &Outcome{Status: PlayerLoses, TurnID: turnID}
	s.Status = StatusResolved
}

// State returns the persisted state payload, or nil when idle.
func (s Session) State() *State {
	if s.Status == StatusIdle {
		return nil
	}
	return &State{LastActions: s.LastActions, Outcome: s.Outcome}
}

// Clone returns a deep copy so turn mutations never leak into the loaded value.
func (s Session) Clone() Session {
	out := s
	if s.Player != nil {
		p := *s.Player
		out.Player = &p
	}
	if s.Monster != nil {
		m := *s.Monster
		out.Monster = &m
	}
	out.LastActions = LastActions{
		Player:  cloneAction(s.LastActions.Player),
		Monster: cloneAction(s.LastActions.Monster),
	}
	if s.Outcome != nil {
		o := *s.Outcome
		if o.Rewards != nil {
			r := *o.Rewards
			r.Loot = append(r.Loot[:0:0], r.Loot...)
			o.Rewards = &r
		}
		out.Outcome = &o
	}
	return out
}

func cloneAction(a *Action) *Action {
	if a == nil {
		return nil
	}
	c := *a
	if a.Amount != nil {
		amount := *a.Amount
		c.Amount = &amount
	}
	c.Results = append(a.Results[:0:0], a.Results...)
	return &c
}
