package seed

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/sqlite"
	"github.com/louisbranch/idle-rpg/internal/testkit/combatfakes"
)

func TestRunManifest_WritesCatalogAndCharacters(t *testing.T) {
	store := combatfakes.NewStore()
	var logs bytes.Buffer
	runner := NewRunner(Config{Verbose: true}, store)
	runner.errW = &logs

	summary, err := runner.RunManifest(context.Background(), validManifest())
	if err != nil {
		t.Fatalf("run manifest: %v", err)
	}
	want := Summary{Areas: 1, Items: 2, Monsters: 1, ExperienceLevels: 3, CharactersCreated: 1}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
	if got := store.Items[1].Effects; len(got) != 1 || got[0].Value != 10 {
		t.Fatalf("potion effects = %+v", got)
	}
	if got := store.Loot[1]; len(got) != 1 || got[0].ItemID != 2 || got[0].DropProbability != 0.5 {
		t.Fatalf("slime loot = %+v", got)
	}
	if got := store.Inventories["c1"][1]; got != 2 {
		t.Fatalf("potions granted = %d, want 2", got)
	}
	if got := store.Skills["c1:combat"]; got.Experience != 12 || got.Level != 2 {
		t.Fatalf("combat progress = %+v, want 12 experience at level 2", got)
	}
	if !strings.Contains(logs.String(), "character c1 reached combat level 2") {
		t.Fatalf("logs = %q", logs.String())
	}
	if _, ok := store.Sessions["c1"]; !ok {
		t.Fatal("expected idle combat session for new character")
	}
	if !strings.Contains(logs.String(), "character c1 created") {
		t.Fatalf("logs = %q", logs.String())
	}
}

func TestRunManifest_SkipsExistingCharacters(t *testing.T) {
	store := combatfakes.NewStore()
	runner := NewRunner(Config{}, store)
	ctx := context.Background()

	if _, err := runner.RunManifest(ctx, validManifest()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	summary, err := runner.RunManifest(ctx, validManifest())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.CharactersCreated != 0 || summary.CharactersSkipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if got := store.Inventories["c1"][1]; got != 2 {
		t.Fatalf("potions = %d, want inventory granted once", got)
	}
	if got := store.Skills["c1:combat"].Experience; got != 12 {
		t.Fatalf("combat experience = %d, want granted once", got)
	}
}

func TestRunManifest_PropagatesStoreErrors(t *testing.T) {
	store := combatfakes.NewStore()
	store.SetError("PutMonster", errors.New("boom"))

	_, err := NewRunner(Config{}, store).RunManifest(context.Background(), validManifest())
	if err == nil || !strings.Contains(err.Error(), "put monster 1") {
		t.Fatalf("error = %v", err)
	}
}

func TestRunManifest_RejectsInvalidManifest(t *testing.T) {
	store := combatfakes.NewStore()
	m := validManifest()
	m.Monsters[0].Area = "moon"

	if _, err := NewRunner(Config{}, store).RunManifest(context.Background(), m); err == nil {
		t.Fatal("expected validation error")
	}
	if store.CallCount("PutTrainingArea") != 0 {
		t.Fatal("expected no writes for invalid manifest")
	}
}

func TestRunManifest_RequiresStore(t *testing.T) {
	if _, err := NewRunner(Config{}, nil).RunManifest(context.Background(), validManifest()); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestRun_LocalDevIntoSQLite(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.sqlite"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	summary, err := NewRunner(Config{}, store).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.CharactersCreated == 0 {
		t.Fatalf("summary = %+v", summary)
	}

	table, err := store.GetExperienceTable(ctx)
	if err != nil {
		t.Fatalf("experience table: %v", err)
	}
	if table.MaxLevel() != 20 {
		t.Fatalf("max level = %d, want 20", table.MaxLevel())
	}
	monsters, err := store.ListMonsters(ctx, "meadow")
	if err != nil || len(monsters) != 2 {
		t.Fatalf("meadow monsters = %+v, err %v", monsters, err)
	}
	rec, err := store.GetCombatSession(ctx, "demo-knight")
	if err != nil {
		t.Fatalf("combat session: %v", err)
	}
	s, err := session.Decode(rec)
	if err != nil || s.Status != session.StatusIdle {
		t.Fatalf("session = %+v, err %v", s, err)
	}
	held, err := store.GetInventoryItem(ctx, "demo-knight", 1)
	if err != nil || held.Amount != 3 {
		t.Fatalf("inventory = %+v, err %v", held, err)
	}

	progress, err := store.GetSkillProgress(ctx, "demo-ranger", leveling.SkillCombat)
	if err != nil || progress.Experience != 120 || progress.Level != 2 {
		t.Fatalf("ranger combat = %+v, err %v", progress, err)
	}

	again, err := NewRunner(Config{}, store).Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if again.CharactersCreated != 0 || again.CharactersSkipped != summary.CharactersCreated {
		t.Fatalf("second summary = %+v", again)
	}
}
