package httpapi

import (
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

// sessionView keeps the three nullable columns of the stored record so
// clients can tell idle from active by null checks.
type sessionView struct {
	CharacterID string           `json:"character_id"`
	Status      string           `json:"status"`
	State       *session.State   `json:"state"`
	Player      *session.Player  `json:"player"`
	Monster     *session.Monster `json:"monster"`
	Revision    int64            `json:"revision"`
	Rewards     *session.Rewards `json:"rewards,omitempty"`
	Level       *int             `json:"level,omitempty"`
}

func newSessionView(s session.Session) sessionView {
	return sessionView{
		CharacterID: s.CharacterID,
		Status:      string(s.Status),
		State:       s.State(),
		Player:      s.Player,
		Monster:     s.Monster,
		Revision:    s.Revision,
	}
}

type replayView struct {
	Replayed []string `json:"replayed"`
	Pending  int      `json:"pending"`
	Level    *int     `json:"level,omitempty"`
}

type areaView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type monsterView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Area       string `json:"area"`
	Health     int    `json:"health"`
	Power      int    `json:"power"`
	Toughness  int    `json:"toughness"`
	GoldMin    int    `json:"gold_min"`
	GoldMax    int    `json:"gold_max"`
	Experience int    `json:"experience"`
}

func newMonsterView(m storage.Monster) monsterView {
	return monsterView{
		ID:         m.ID,
		Name:       m.Name,
		Area:       m.Area,
		Health:     m.Health,
		Power:      m.Power,
		Toughness:  m.Toughness,
		GoldMin:    m.GoldMin,
		GoldMax:    m.GoldMax,
		Experience: m.Experience,
	}
}

type itemUseView struct {
	Item      string   `json:"item"`
	Results   []string `json:"results"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
}

type skillView struct {
	Skill      string `json:"skill"`
	Experience int    `json:"experience"`
	Level      int    `json:"level"`
}
