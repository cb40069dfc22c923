// Package combatfakes provides in-memory combat storage for tests.
package combatfakes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/loot"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

// Store is an in-memory storage.Store. Errors keyed by method name are
// returned instead of running that method.
type Store struct {
	mu sync.Mutex

	Characters  map[string]storage.Character
	Stats       map[string]storage.CombatStats
	Sessions    map[string]session.Record
	Areas       map[string]storage.TrainingArea
	Monsters    map[int64]storage.Monster
	Loot        map[int64][]loot.Entry
	Items       map[int64]storage.Item
	Inventories map[string]map[int64]int
	Skills      map[string]leveling.Progress
	XPTable     leveling.Table
	Intents     map[string]storage.RewardIntent

	Errors map[string]error
	Calls  map[string]int
}

// NewStore constructs a Store with initialized maps.
func NewStore() *Store {
	return &Store{
		Characters:  make(map[string]storage.Character),
		Stats:       make(map[string]storage.CombatStats),
		Sessions:    make(map[string]session.Record),
		Areas:       make(map[string]storage.TrainingArea),
		Monsters:    make(map[int64]storage.Monster),
		Loot:        make(map[int64][]loot.Entry),
		Items:       make(map[int64]storage.Item),
		Inventories: make(map[string]map[int64]int),
		Skills:      make(map[string]leveling.Progress),
		Intents:     make(map[string]storage.RewardIntent),
		Errors:      make(map[string]error),
		Calls:       make(map[string]int),
	}
}

// CallCount returns how many times method ran or failed.
func (s *Store) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[method]
}

// SetError makes method fail with err until cleared with a nil err.
func (s *Store) SetError(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.Errors, method)
		return
	}
	s.Errors[method] = err
}

func (s *Store) fail(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failLocked(method)
}

func (s *Store) failLocked(method string) error {
	s.Calls[method]++
	return s.Errors[method]
}

func skillKey(characterID, skill string) string {
	return characterID + ":" + skill
}

func (s *Store) CreateCharacter(_ context.Context, character storage.Character, stats storage.CombatStats) error {
	if err := s.fail("CreateCharacter"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Characters[character.ID]; ok {
		return storage.ErrAlreadyExists
	}
	stats.CharacterID = character.ID
	if stats.Health <= 0 || stats.Health > stats.MaxHealth {
		stats.Health = stats.MaxHealth
	}
	s.Characters[character.ID] = character
	s.Stats[character.ID] = stats
	for _, skill := range leveling.Skills {
		s.Skills[skillKey(character.ID, skill)] = leveling.Progress{Level: 1}
	}
	s.Sessions[character.ID] = session.Record{CharacterID: character.ID}
	return nil
}

func (s *Store) GetCharacter(_ context.Context, characterID string) (storage.Character, error) {
	if err := s.fail("GetCharacter"); err != nil {
		return storage.Character{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	character, ok := s.Characters[characterID]
	if !ok {
		return storage.Character{}, storage.ErrNotFound
	}
	return character, nil
}

func (s *Store) GetCombatStats(_ context.Context, characterID string) (storage.CombatStats, error) {
	if err := s.fail("GetCombatStats"); err != nil {
		return storage.CombatStats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.Stats[characterID]
	if !ok {
		return storage.CombatStats{}, storage.ErrNotFound
	}
	return stats, nil
}

func (s *Store) UpdateHealth(_ context.Context, characterID string, health int) error {
	if err := s.fail("UpdateHealth"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.Stats[characterID]
	if !ok {
		return storage.ErrNotFound
	}
	stats.Health = health
	s.Stats[characterID] = stats
	return nil
}

func (s *Store) CreditGold(_ context.Context, characterID string, amount int) error {
	if err := s.fail("CreditGold"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	character, ok := s.Characters[characterID]
	if !ok {
		return storage.ErrNotFound
	}
	character.Gold += amount
	s.Characters[characterID] = character
	return nil
}

func (s *Store) GetCombatSession(_ context.Context, characterID string) (session.Record, error) {
	if err := s.fail("GetCombatSession"); err != nil {
		return session.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.Sessions[characterID]
	if !ok {
		return session.Record{}, storage.ErrNotFound
	}
	return rec, nil
}

func (s *Store) CreateCombatSession(_ context.Context, characterID string) (session.Record, error) {
	if err := s.fail("CreateCombatSession"); err != nil {
		return session.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Characters[characterID]; !ok {
		return session.Record{}, storage.ErrNotFound
	}
	rec, ok := s.Sessions[characterID]
	if !ok {
		rec = session.Record{CharacterID: characterID}
		s.Sessions[characterID] = rec
	}
	return rec, nil
}

func (s *Store) PutCombatSession(_ context.Context, rec session.Record) (session.Record, error) {
	if err := s.fail("PutCombatSession"); err != nil {
		return session.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.Sessions[rec.CharacterID]
	if !ok {
		return session.Record{}, storage.ErrNotFound
	}
	if current.Revision != rec.Revision {
		return session.Record{}, storage.ErrConflict
	}
	rec.Revision++
	s.Sessions[rec.CharacterID] = rec
	return rec, nil
}

func (s *Store) ClearCombatSession(ctx context.Context, characterID string, revision int64) (session.Record, error) {
	if err := s.fail("ClearCombatSession"); err != nil {
		return session.Record{}, err
	}
	return s.PutCombatSession(ctx, session.Record{CharacterID: characterID, Revision: revision})
}

func (s *Store) GetMonster(_ context.Context, monsterID int64) (storage.Monster, error) {
	if err := s.fail("GetMonster"); err != nil {
		return storage.Monster{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	monster, ok := s.Monsters[monsterID]
	if !ok {
		return storage.Monster{}, storage.ErrNotFound
	}
	return monster, nil
}

func (s *Store) ListMonsters(_ context.Context, area string) ([]storage.Monster, error) {
	if err := s.fail("ListMonsters"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	monsters := []storage.Monster{}
	for _, monster := range s.Monsters {
		if monster.Area == area {
			monsters = append(monsters, monster)
		}
	}
	sort.Slice(monsters, func(i, j int) bool { return monsters[i].ID < monsters[j].ID })
	return monsters, nil
}

func (s *Store) ListTrainingAreas(_ context.Context) ([]storage.TrainingArea, error) {
	if err := s.fail("ListTrainingAreas"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	areas := []storage.TrainingArea{}
	for _, area := range s.Areas {
		areas = append(areas, area)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].Name < areas[j].Name })
	return areas, nil
}

func (s *Store) GetMonsterLoot(_ context.Context, monsterID int64) ([]loot.Entry, error) {
	if err := s.fail("GetMonsterLoot"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]loot.Entry(nil), s.Loot[monsterID]...), nil
}

func (s *Store) GetInventoryItem(_ context.Context, characterID string, itemID int64) (storage.InventoryItem, error) {
	if err := s.fail("GetInventoryItem"); err != nil {
		return storage.InventoryItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	amount := s.Inventories[characterID][itemID]
	item, ok := s.Items[itemID]
	if amount <= 0 || !ok {
		return storage.InventoryItem{}, storage.ErrNotFound
	}
	return storage.InventoryItem{CharacterID: characterID, Item: item, Amount: amount}, nil
}

func (s *Store) AddInventoryItem(_ context.Context, characterID string, itemID int64, amount int) error {
	if err := s.fail("AddInventoryItem"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Inventories[characterID] == nil {
		s.Inventories[characterID] = make(map[int64]int)
	}
	s.Inventories[characterID][itemID] += amount
	return nil
}

func (s *Store) RemoveInventoryItem(_ context.Context, characterID string, itemID int64, amount int) error {
	if err := s.fail("RemoveInventoryItem"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	held := s.Inventories[characterID][itemID]
	switch {
	case held <= 0:
		return storage.ErrNotFound
	case held < amount:
		return storage.ErrInsufficientAmount
	case held == amount:
		delete(s.Inventories[characterID], itemID)
	default:
		s.Inventories[characterID][itemID] = held - amount
	}
	return nil
}

func (s *Store) GetSkillProgress(_ context.Context, characterID, skill string) (leveling.Progress, error) {
	if err := s.fail("GetSkillProgress"); err != nil {
		return leveling.Progress{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	progress, ok := s.Skills[skillKey(characterID, skill)]
	if !ok {
		return leveling.Progress{Level: 1}, nil
	}
	return progress, nil
}

func (s *Store) PutSkillProgress(_ context.Context, characterID, skill string, progress leveling.Progress) error {
	if err := s.fail("PutSkillProgress"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Skills[skillKey(characterID, skill)] = progress
	return nil
}

func (s *Store) ListSkills(_ context.Context, characterID string) ([]storage.Skill, error) {
	if err := s.fail("ListSkills"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	skills := make([]storage.Skill, 0, len(leveling.Skills))
	for _, name := range leveling.Skills {
		progress, ok := s.Skills[skillKey(characterID, name)]
		if !ok {
			progress = leveling.Progress{Level: 1}
		}
		skills = append(skills, storage.Skill{Skill: name, Progress: progress})
	}
	return skills, nil
}

func (s *Store) GetExperienceTable(_ context.Context) (leveling.Table, error) {
	if err := s.fail("GetExperienceTable"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.XPTable) == 0 {
		return nil, storage.ErrNotFound
	}
	return append(leveling.Table(nil), s.XPTable...), nil
}

func (s *Store) CreateRewardIntent(_ context.Context, intent storage.RewardIntent) (storage.RewardIntent, error) {
	if err := s.fail("CreateRewardIntent"); err != nil {
		return storage.RewardIntent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.Intents[intent.TurnID]; ok {
		return existing, nil
	}
	intent = intent.WithEmptyStepsApplied()
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Unix(int64(len(s.Intents)), 0).UTC()
	}
	s.Intents[intent.TurnID] = intent
	return intent, nil
}

func (s *Store) GetRewardIntent(_ context.Context, turnID string) (storage.RewardIntent, error) {
	if err := s.fail("GetRewardIntent"); err != nil {
		return storage.RewardIntent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.Intents[turnID]
	if !ok {
		return storage.RewardIntent{}, storage.ErrNotFound
	}
	return intent, nil
}

func (s *Store) ListPendingRewardIntents(_ context.Context, characterID string) ([]storage.RewardIntent, error) {
	if err := s.fail("ListPendingRewardIntents"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var intents []storage.RewardIntent
	for _, intent := range s.Intents {
		if intent.CharacterID == characterID && intent.Pending() {
			intents = append(intents, intent)
		}
	}
	sort.Slice(intents, func(i, j int) bool {
		if intents[i].CreatedAt.Equal(intents[j].CreatedAt) {
			return intents[i].TurnID < intents[j].TurnID
		}
		return intents[i].CreatedAt.Before(intents[j].CreatedAt)
	})
	return intents, nil
}

// ApplyRewardStep applies one step under the store lock. An error set for
// the step's underlying write (CreditGold, PutSkillProgress or
// AddInventoryItem) fails the step and leaves it pending.
func (s *Store) ApplyRewardStep(_ context.Context, grant storage.RewardGrant) (bool, error) {
	if err := s.fail("ApplyRewardStep"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.Intents[grant.TurnID]
	if !ok {
		return false, storage.ErrNotFound
	}
	switch grant.Step {
	case storage.RewardStepGold:
		if intent.GoldApplied {
			return false, nil
		}
		if err := s.failLocked("CreditGold"); err != nil {
			return false, err
		}
		character, ok := s.Characters[intent.CharacterID]
		if !ok {
			return false, storage.ErrNotFound
		}
		character.Gold += intent.Gold
		s.Characters[intent.CharacterID] = character
		intent.GoldApplied = true
	case storage.RewardStepExperience:
		if intent.ExperienceApplied {
			return false, nil
		}
		if err := s.failLocked("PutSkillProgress"); err != nil {
			return false, err
		}
		s.Skills[skillKey(intent.CharacterID, grant.Skill)] = grant.Progress
		intent.ExperienceApplied = true
	case storage.RewardStepLoot:
		if intent.LootApplied {
			return false, nil
		}
		if err := s.failLocked("AddInventoryItem"); err != nil {
			return false, err
		}
		if s.Inventories[intent.CharacterID] == nil {
			s.Inventories[intent.CharacterID] = make(map[int64]int)
		}
		s.Inventories[intent.CharacterID][intent.LootItemID] += intent.LootQuantity
		intent.LootApplied = true
	default:
		return false, fmt.Errorf("unknown reward step %q", grant.Step)
	}
	s.Intents[grant.TurnID] = intent
	return true, nil
}

func (s *Store) PutTrainingArea(_ context.Context, area storage.TrainingArea) error {
	if err := s.fail("PutTrainingArea"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Areas[area.Name] = area
	return nil
}

func (s *Store) PutMonster(_ context.Context, monster storage.Monster, table []loot.Entry) error {
	if err := s.fail("PutMonster"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Monsters[monster.ID] = monster
	entries := make([]loot.Entry, len(table))
	for i, entry := range table {
		if item, ok := s.Items[entry.ItemID]; ok && entry.ItemName == "" {
			entry.ItemName = item.Name
		}
		if entry.ItemName == "" {
			entry.ItemName = "item-" + strconv.FormatInt(entry.ItemID, 10)
		}
		entries[i] = entry
	}
	s.Loot[monster.ID] = entries
	return nil
}

func (s *Store) PutItem(_ context.Context, item storage.Item) error {
	if err := s.fail("PutItem"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Items[item.ID] = item
	return nil
}

func (s *Store) PutExperienceTable(_ context.Context, table leveling.Table) error {
	if err := s.fail("PutExperienceTable"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.XPTable = append(leveling.Table(nil), table...)
	return nil
}

func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)
