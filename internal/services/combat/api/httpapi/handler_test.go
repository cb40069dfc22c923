package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/louisbranch/idle-rpg/internal/platform/random"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/engine"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/items"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/loot"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
	"github.com/louisbranch/idle-rpg/internal/testkit/combatfakes"
)

const hero = "char-1"

func newTestHandler(t *testing.T) (http.Handler, *combatfakes.Store) {
	t.Helper()

	ctx := context.Background()
	store := combatfakes.NewStore()
	if err := store.CreateCharacter(ctx, storage.Character{ID: hero, Name: "Hero"},
		storage.CombatStats{Health: 40, MaxHealth: 40, Power: 50, Toughness: 5}); err != nil {
		t.Fatalf("create character: %v", err)
	}
	_ = store.PutTrainingArea(ctx, storage.TrainingArea{Name: "meadow", Description: "Soft grass."})
	_ = store.PutItem(ctx, storage.Item{ID: 10, Name: "Potion", Effects: []items.Effect{{Effect: items.EffectRestoreHealth, Value: 10}}})
	_ = store.PutItem(ctx, storage.Item{ID: 11, Name: "Slime Goo"})
	_ = store.PutMonster(ctx, storage.Monster{ID: 1, Name: "Slime", Area: "meadow", Health: 5, GoldMin: 2, GoldMax: 4, Experience: 12},
		[]loot.Entry{{ItemID: 11, Quantity: 1, DropProbability: 1}})

	svc, err := leveling.NewService(store, leveling.DefaultTable)
	if err != nil {
		t.Fatalf("leveling service: %v", err)
	}
	eng, err := engine.New(engine.Deps{
		Sessions:   store,
		Characters: store,
		Monsters:   store,
		Inventory:  store,
		Skills:     store,
		Rewards:    store,
		Leveling:   svc,
		Random:     random.New(7),
	}, engine.DefaultConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return NewHandler(eng, Options{SwaggerEnabled: true}), store
}

func do(t *testing.T, h http.Handler, method, target, characterID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if characterID != "" {
		req.Header.Set(CharacterIDHeader, characterID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	body := decode[struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}](t, rec)
	if body.Code != code {
		t.Fatalf("code = %q, want %q", body.Code, code)
	}
	if body.Message == "" {
		t.Fatal("expected error message")
	}
}

func TestCharacterHeaderRequired(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/combat"},
		{http.MethodPost, "/combat"},
		{http.MethodPut, "/combat?action=attack"},
		{http.MethodPut, "/combat/reset"},
		{http.MethodPut, "/items/use?id=10"},
		{http.MethodGet, "/characters/levels"},
	} {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			wantError(t, do(t, h, tc.method, tc.target, ""), http.StatusUnauthorized, "CHARACTER_MISSING")
		})
	}
}

func TestGetIdleSession(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/combat", hero)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Request-ID"); got == "" {
		t.Fatal("expected request id header")
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "idle" {
		t.Fatalf("status field = %v", body["status"])
	}
	for _, key := range []string{"state", "player", "monster"} {
		value, ok := body[key]
		if !ok || value != nil {
			t.Fatalf("%s = %v (present %v), want null", key, value, ok)
		}
	}
}

func TestGetUnknownCharacter(t *testing.T) {
	h, _ := newTestHandler(t)
	wantError(t, do(t, h, http.MethodGet, "/combat", "nobody"), http.StatusNotFound, "COMBAT_NOT_FOUND")
}

func TestCreateSession(t *testing.T) {
	h, store := newTestHandler(t)
	delete(store.Sessions, hero)

	rec := do(t, h, http.MethodPost, "/combat", hero)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decode[sessionView](t, rec); body.Status != "idle" || body.CharacterID != hero {
		t.Fatalf("created = %+v", body)
	}
}

func TestActValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	wantError(t, do(t, h, http.MethodPut, "/combat", hero), http.StatusBadRequest, "ACTION_MISSING")
	wantError(t, do(t, h, http.MethodPut, "/combat?action=dance", hero), http.StatusBadRequest, "ACTION_UNKNOWN")
	wantError(t, do(t, h, http.MethodPut, "/combat?action=start&id=abc", hero), http.StatusBadRequest, "INVALID_REQUEST")
	wantError(t, do(t, h, http.MethodPut, "/combat?action=start&id=-3", hero), http.StatusBadRequest, "INVALID_REQUEST")
	wantError(t, do(t, h, http.MethodPut, "/combat?action=start", hero), http.StatusBadRequest, "TARGET_MISSING")
	wantError(t, do(t, h, http.MethodPut, "/combat?action=start&id=99", hero), http.StatusNotFound, "MONSTER_NOT_FOUND")
	wantError(t, do(t, h, http.MethodPut, "/combat?action=attack", hero), http.StatusConflict, "COMBAT_INACTIVE")
}

func TestCombatRoundTrip(t *testing.T) {
	h, store := newTestHandler(t)

	rec := do(t, h, http.MethodPut, "/combat?action=start&id=1", hero)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	started := decode[sessionView](t, rec)
	if started.Status != "active" || started.Monster == nil || started.Monster.Name != "Slime" {
		t.Fatalf("started = %+v", started)
	}

	wantError(t, do(t, h, http.MethodPut, "/combat/reset", hero), http.StatusConflict, "OUTCOME_UNDECIDED")
	wantError(t, do(t, h, http.MethodPut, "/items/use?id=10", hero), http.StatusBadRequest, "COMBAT_IN_PROGRESS")

	var won sessionView
	for i := 0; i < 50; i++ {
		rec = do(t, h, http.MethodPut, "/combat?action=attack", hero)
		if rec.Code != http.StatusOK {
			t.Fatalf("attack status = %d, body %s", rec.Code, rec.Body.String())
		}
		won = decode[sessionView](t, rec)
		if won.Status == "resolved" {
			break
		}
	}
	if won.Status != "resolved" || won.State == nil || won.State.Outcome == nil {
		t.Fatalf("encounter did not resolve: %+v", won)
	}
	if won.State.Outcome.Status != "player_wins" {
		t.Fatalf("outcome = %s", won.State.Outcome.Status)
	}
	if won.Rewards == nil || won.Rewards.Gold < 2 || won.Rewards.Gold > 4 || won.Rewards.Experience != 12 {
		t.Fatalf("rewards = %+v", won.Rewards)
	}
	if got := store.Inventories[hero][11]; got != 1 {
		t.Fatalf("goo in inventory = %d, want 1", got)
	}

	rec = do(t, h, http.MethodPut, "/combat?action=start&id=1", hero)
	if rec.Code != http.StatusOK {
		t.Fatalf("start on resolved status = %d, body %s", rec.Code, rec.Body.String())
	}
	if again := decode[sessionView](t, rec); again.Status != "resolved" || again.Revision != won.Revision || again.Rewards != nil {
		t.Fatalf("start on resolved = %+v, want unchanged session", again)
	}

	rec = do(t, h, http.MethodPut, "/combat/reset", hero)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body %s", rec.Code, rec.Body.String())
	}
	if reset := decode[sessionView](t, rec); reset.Status != "idle" || reset.State != nil {
		t.Fatalf("reset = %+v", reset)
	}

	rec = do(t, h, http.MethodGet, "/characters/levels", hero)
	if rec.Code != http.StatusOK {
		t.Fatalf("levels status = %d", rec.Code)
	}
	levels := decode[[]skillView](t, rec)
	if len(levels) != len(leveling.Skills) {
		t.Fatalf("levels = %+v", levels)
	}
	for _, skill := range levels {
		if skill.Skill == leveling.SkillCombat && skill.Experience != 12 {
			t.Fatalf("combat experience = %d, want 12", skill.Experience)
		}
	}
}

func TestReplayRewardsEmpty(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPut, "/combat/rewards/replay", hero)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	replayed, ok := body["replayed"].([]any)
	if !ok || len(replayed) != 0 || body["pending"] != float64(0) {
		t.Fatalf("replay = %v", body)
	}
}

func TestUseItem(t *testing.T) {
	h, store := newTestHandler(t)
	store.Inventories[hero] = map[int64]int{10: 1}
	stats := store.Stats[hero]
	stats.Health = 25
	store.Stats[hero] = stats

	wantError(t, do(t, h, http.MethodPut, "/items/use", hero), http.StatusBadRequest, "TARGET_MISSING")
	wantError(t, do(t, h, http.MethodPut, "/items/use?id=11", hero), http.StatusNotFound, "ITEM_NOT_FOUND")

	rec := do(t, h, http.MethodPut, "/items/use?id=10", hero)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	use := decode[itemUseView](t, rec)
	if use.Item != "Potion" || use.Health != 35 || use.MaxHealth != 40 {
		t.Fatalf("use = %+v", use)
	}
	if len(use.Results) != 1 || use.Results[0] != "restored 10 health" {
		t.Fatalf("results = %v", use.Results)
	}
	if _, ok := store.Inventories[hero][10]; ok {
		t.Fatal("expected potion consumed")
	}
}

func TestCatalogRoutesSkipCharacter(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/combat/training/areas", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("areas status = %d", rec.Code)
	}
	if areas := decode[[]areaView](t, rec); len(areas) != 1 || areas[0].Name != "meadow" {
		t.Fatalf("areas = %+v", areas)
	}

	wantError(t, do(t, h, http.MethodGet, "/combat/monsters", ""), http.StatusBadRequest, "AREA_MISSING")

	rec = do(t, h, http.MethodGet, "/combat/monsters?area=meadow", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("monsters status = %d", rec.Code)
	}
	if monsters := decode[[]monsterView](t, rec); len(monsters) != 1 || monsters[0].ID != 1 || monsters[0].Experience != 12 {
		t.Fatalf("monsters = %+v", monsters)
	}
}

func TestUpstreamFailureHidesCause(t *testing.T) {
	h, store := newTestHandler(t)
	store.SetError("GetCombatSession", errors.New("disk on fire"))

	rec := do(t, h, http.MethodGet, "/combat", hero)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "disk on fire") {
		t.Fatalf("body leaked cause: %s", rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestHandler(t)
	wantError(t, do(t, h, http.MethodGet, "/nowhere", hero), http.StatusNotFound, "NOT_FOUND")
}

func TestSwaggerDocument(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/docs/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := decode[map[string]any](t, rec)
	paths, ok := doc["paths"].(map[string]any)
	if !ok || paths["/combat"] == nil {
		t.Fatalf("doc paths = %v", doc["paths"])
	}
}

func TestSwaggerDisabled(t *testing.T) {
	h := NewHandler(nil, Options{})
	if rec := do(t, h, http.MethodGet, "/docs/doc.json", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
