package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/items"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/loot"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/sqlstore"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "combat.sqlite")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = second.Close()
}

func TestCreateCharacterBootstrapsCombatState(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	createCharacter(t, store, "char-1")

	stats, err := store.GetCombatStats(ctx, "char-1")
	if err != nil {
		t.Fatalf("get combat stats: %v", err)
	}
	if stats.Health != 20 || stats.MaxHealth != 20 || stats.Power != 3 {
		t.Fatalf("stats = %+v", stats)
	}

	rec, err := store.GetCombatSession(ctx, "char-1")
	if err != nil {
		t.Fatalf("get combat session: %v", err)
	}
	if rec.State != nil || rec.Player != nil || rec.Monster != nil || rec.Revision != 0 {
		t.Fatalf("expected idle record, got %+v", rec)
	}

	skills, err := store.ListSkills(ctx, "char-1")
	if err != nil {
		t.Fatalf("list skills: %v", err)
	}
	if len(skills) != len(leveling.Skills) {
		t.Fatalf("skills = %d, want %d", len(skills), len(leveling.Skills))
	}
	for _, skill := range skills {
		if skill.Level != 1 || skill.Experience != 0 {
			t.Fatalf("skill %s = %+v, want level 1", skill.Skill, skill.Progress)
		}
	}

	err = store.CreateCharacter(ctx, storage.Character{ID: "char-1", Name: "Again"}, storage.CombatStats{MaxHealth: 10})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestGetCombatSessionMissing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetCombatSession(context.Background(), "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.CreateCombatSession(context.Background(), "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("create err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreateCombatSessionReturnsExisting(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	createCharacter(t, store, "char-1")

	rec, err := store.PutCombatSession(ctx, session.Record{CharacterID: "char-1", State: []byte(`{}`), Player: []byte(`{}`), Monster: []byte(`{}`)})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.CreateCombatSession(ctx, "char-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Revision != rec.Revision || got.Player == nil {
		t.Fatalf("create replaced existing record: %+v", got)
	}
}

func TestPutCombatSessionComparesRevision(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	createCharacter(t, store, "char-1")

	rec := session.Record{
		CharacterID: "char-1",
		State:       []byte(`{"last_actions":{}}`),
		Player:      []byte(`{"character_id":"char-1","health":20}`),
		Monster:     []byte(`{"id":1,"health":5}`),
		Revision:    0,
	}
	stored, err := store.PutCombatSession(ctx, rec)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if stored.Revision != 1 {
		t.Fatalf("revision = %d, want 1", stored.Revision)
	}

	if _, err := store.PutCombatSession(ctx, rec); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("stale put err = %v, want %v", err, storage.ErrConflict)
	}

	got, err := store.GetCombatSession(ctx, "char-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Player) != string(rec.Player) {
		t.Fatalf("player = %s, want %s", got.Player, rec.Player)
	}

	cleared, err := store.ClearCombatSession(ctx, "char-1", stored.Revision)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.Revision != 2 {
		t.Fatalf("revision = %d, want 2", cleared.Revision)
	}
	got, err = store.GetCombatSession(ctx, "char-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != nil || got.Player != nil || got.Monster != nil {
		t.Fatalf("expected cleared record, got %+v", got)
	}

	if _, err := store.PutCombatSession(ctx, session.Record{CharacterID: "ghost"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing put err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestHealthAndGoldUpdates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	createCharacter(t, store, "char-1")

	if err := store.UpdateHealth(ctx, "char-1", 7); err != nil {
		t.Fatalf("update health: %v", err)
	}
	if err := store.CreditGold(ctx, "char-1", 12); err != nil {
		t.Fatalf("credit gold: %v", err)
	}
	if err := store.CreditGold(ctx, "char-1", 3); err != nil {
		t.Fatalf("credit gold: %v", err)
	}
	stats, _ := store.GetCombatStats(ctx, "char-1")
	if stats.Health != 7 {
		t.Fatalf("health = %d, want 7", stats.Health)
	}
	character, err := store.GetCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if character.Gold != 15 {
		t.Fatalf("gold = %d, want 15", character.Gold)
	}
	if err := store.UpdateHealth(ctx, "ghost", 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedCatalog(t, store)

	areas, err := store.ListTrainingAreas(ctx)
	if err != nil {
		t.Fatalf("list areas: %v", err)
	}
	if len(areas) != 1 || areas[0].Name != "meadow" {
		t.Fatalf("areas = %+v", areas)
	}

	monsters, err := store.ListMonsters(ctx, "meadow")
	if err != nil {
		t.Fatalf("list monsters: %v", err)
	}
	if len(monsters) != 1 || monsters[0].GoldMax != 4 {
		t.Fatalf("monsters = %+v", monsters)
	}
	if empty, err := store.ListMonsters(ctx, "swamp"); err != nil || len(empty) != 0 {
		t.Fatalf("swamp monsters = %+v, %v", empty, err)
	}

	table, err := store.GetMonsterLoot(ctx, 1)
	if err != nil {
		t.Fatalf("get loot: %v", err)
	}
	if len(table) != 2 || table[0].ItemName != "Slime Goo" || table[1].ItemName != "Potion" {
		t.Fatalf("loot table order = %+v", table)
	}

	if _, err := store.GetMonster(ctx, 99); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}

	xp, err := store.GetExperienceTable(ctx)
	if err != nil {
		t.Fatalf("get experience table: %v", err)
	}
	if len(xp) != 3 || xp[2] != 200 {
		t.Fatalf("experience table = %v", xp)
	}
}

func TestExperienceTableMissing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetExperienceTable(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestInventoryStack(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedCatalog(t, store)
	createCharacter(t, store, "char-1")

	if err := store.AddInventoryItem(ctx, "char-1", 2, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddInventoryItem(ctx, "char-1", 2, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	inv, err := store.GetInventoryItem(ctx, "char-1", 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if inv.Amount != 3 || inv.Item.Name != "Potion" {
		t.Fatalf("inventory = %+v", inv)
	}
	if len(inv.Item.Effects) != 1 || inv.Item.Effects[0] != (items.Effect{Effect: items.EffectRestoreHealth, Value: 10}) {
		t.Fatalf("effects = %+v", inv.Item.Effects)
	}

	if err := store.RemoveInventoryItem(ctx, "char-1", 2, 5); !errors.Is(err, storage.ErrInsufficientAmount) {
		t.Fatalf("err = %v, want %v", err, storage.ErrInsufficientAmount)
	}
	if err := store.RemoveInventoryItem(ctx, "char-1", 2, 3); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.GetInventoryItem(ctx, "char-1", 2); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want emptied stack to be gone", err)
	}
	if err := store.RemoveInventoryItem(ctx, "char-1", 2, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestSkillProgressUpsert(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	createCharacter(t, store, "char-1")

	if err := store.PutSkillProgress(ctx, "char-1", leveling.SkillCombat, leveling.Progress{Experience: 90, Level: 2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetSkillProgress(ctx, "char-1", leveling.SkillCombat)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Experience != 90 || got.Level != 2 {
		t.Fatalf("progress = %+v", got)
	}
	fresh, err := store.GetSkillProgress(ctx, "char-2", leveling.SkillCombat)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if fresh.Level != 1 {
		t.Fatalf("missing skill level = %d, want 1", fresh.Level)
	}
}

func TestRewardIntentLifecycle(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedCatalog(t, store)
	createCharacter(t, store, "char-1")

	intent := storage.RewardIntent{TurnID: "turn-1", CharacterID: "char-1", Gold: 3, Experience: 12, LootItemID: 2, LootQuantity: 1}
	created, err := store.CreateRewardIntent(ctx, intent)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.PendingSteps()) != 3 {
		t.Fatalf("fresh intent steps = %v, want all three", created.PendingSteps())
	}

	applied, err := store.ApplyRewardStep(ctx, storage.RewardGrant{TurnID: "turn-1", Step: storage.RewardStepGold})
	if err != nil || !applied {
		t.Fatalf("apply gold = %v, %v", applied, err)
	}
	applied, err = store.ApplyRewardStep(ctx, storage.RewardGrant{TurnID: "turn-1", Step: storage.RewardStepGold})
	if err != nil || applied {
		t.Fatalf("second apply gold = %v, %v, want skipped", applied, err)
	}
	character, err := store.GetCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if character.Gold != 3 {
		t.Fatalf("gold = %d, want 3", character.Gold)
	}

	again, err := store.CreateRewardIntent(ctx, intent)
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if !again.GoldApplied {
		t.Fatal("recreate must keep applied flags")
	}

	pending, err := store.ListPendingRewardIntents(ctx, "char-1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || len(pending[0].PendingSteps()) != 2 {
		t.Fatalf("pending = %+v", pending)
	}

	progress := leveling.Progress{Experience: 12, Level: 1}
	if _, err := store.ApplyRewardStep(ctx, storage.RewardGrant{TurnID: "turn-1", Step: storage.RewardStepExperience, Skill: leveling.SkillCombat, Progress: progress}); err != nil {
		t.Fatalf("apply experience: %v", err)
	}
	if _, err := store.ApplyRewardStep(ctx, storage.RewardGrant{TurnID: "turn-1", Step: storage.RewardStepLoot}); err != nil {
		t.Fatalf("apply loot: %v", err)
	}
	skill, err := store.GetSkillProgress(ctx, "char-1", leveling.SkillCombat)
	if err != nil {
		t.Fatalf("get skill: %v", err)
	}
	if skill != progress {
		t.Fatalf("combat progress = %+v, want %+v", skill, progress)
	}
	held, err := store.GetInventoryItem(ctx, "char-1", 2)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if held.Amount != 1 {
		t.Fatalf("loot amount = %d, want 1", held.Amount)
	}

	pending, err = store.ListPendingRewardIntents(ctx, "char-1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %+v, want none", pending)
	}
	if _, err := store.ApplyRewardStep(ctx, storage.RewardGrant{TurnID: "missing", Step: storage.RewardStepGold}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.ApplyRewardStep(ctx, storage.RewardGrant{TurnID: "turn-1", Step: storage.RewardStepExperience}); err == nil {
		t.Fatal("expected experience grant without skill to be rejected")
	}
}

func TestRewardIntentWithoutLootIsNotPending(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	createCharacter(t, store, "char-1")

	created, err := store.CreateRewardIntent(ctx, storage.RewardIntent{TurnID: "turn-1", CharacterID: "char-1", Gold: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.LootApplied || !created.ExperienceApplied {
		t.Fatalf("intent = %+v, want empty steps stored as applied", created)
	}
	if _, err := store.ApplyRewardStep(ctx, storage.RewardGrant{TurnID: "turn-1", Step: storage.RewardStepGold}); err != nil {
		t.Fatalf("apply gold: %v", err)
	}
	pending, err := store.ListPendingRewardIntents(ctx, "char-1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %+v, want none", pending)
	}
}

func openTempStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "combat.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func createCharacter(t *testing.T, store *sqlstore.Store, id string) {
	t.Helper()

	err := store.CreateCharacter(context.Background(),
		storage.Character{ID: id, Name: "Hero " + id},
		storage.CombatStats{Health: 20, MaxHealth: 20, Power: 3, Toughness: 1},
	)
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
}

func seedCatalog(t *testing.T, store *sqlstore.Store) {
	t.Helper()

	ctx := context.Background()
	if err := store.PutTrainingArea(ctx, storage.TrainingArea{Name: "meadow", Description: "Soft grass"}); err != nil {
		t.Fatalf("put area: %v", err)
	}
	for _, item := range []storage.Item{
		{ID: 1, Name: "Slime Goo", Category: "material", Value: 1},
		{ID: 2, Name: "Potion", Category: "consumable", Value: 5, Effects: []items.Effect{{Effect: items.EffectRestoreHealth, Value: 10}}},
	} {
		if err := store.PutItem(ctx, item); err != nil {
			t.Fatalf("put item: %v", err)
		}
	}
	monster := storage.Monster{ID: 1, Name: "Slime", Area: "meadow", Health: 8, Power: 1, GoldMin: 1, GoldMax: 4, Experience: 12}
	table := []loot.Entry{
		{ItemID: 1, Quantity: 2, DropProbability: 0.5},
		{ItemID: 2, Quantity: 1, DropProbability: 0.1},
	}
	if err := store.PutMonster(ctx, monster, table); err != nil {
		t.Fatalf("put monster: %v", err)
	}
	if err := store.PutExperienceTable(ctx, leveling.Table{0, 100, 200}); err != nil {
		t.Fatalf("put experience table: %v", err)
	}
}
