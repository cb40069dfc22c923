// Package httpapi exposes the combat engine over JSON HTTP.
//
// @title       Idle RPG Combat API
// @version     1.0
// @description Turn-based combat encounters for idle RPG characters.
// @BasePath    /
//
// @securityDefinitions.apikey CharacterID
// @in header
// @name X-Character-ID
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/platform/httpx"
	"github.com/louisbranch/idle-rpg/internal/platform/requestctx"
	"github.com/louisbranch/idle-rpg/internal/services/combat/api/httpapi/docs"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/engine"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

// CharacterIDHeader identifies the acting character. Authentication happens
// upstream; this service trusts the header.
const CharacterIDHeader = "X-Character-ID"

// Service is the combat surface the handlers call.
type Service interface {
	Get(ctx context.Context, characterID string) (session.Session, error)
	Create(ctx context.Context, characterID string) (session.Session, error)
	Act(ctx context.Context, characterID string, req engine.ActRequest) (engine.Result, error)
	Reset(ctx context.Context, characterID string) (session.Session, error)
	ReplayRewards(ctx context.Context, characterID string) (engine.ReplayResult, error)
	UseItem(ctx context.Context, characterID string, itemID int64) (engine.ItemUse, error)
	TrainingAreas(ctx context.Context) ([]storage.TrainingArea, error)
	Monsters(ctx context.Context, area string) ([]storage.Monster, error)
	Skills(ctx context.Context, characterID string) ([]storage.Skill, error)
}

// Options toggles optional routes.
type Options struct {
	SwaggerEnabled bool
}

type handler struct {
	svc Service
}

var errInvalidID = apperrors.New(apperrors.CodeInvalidRequest, "id must be a positive integer")

// NewHandler builds the combat HTTP handler with request id, access log and
// panic recovery middleware.
func NewHandler(svc Service, opts Options) http.Handler {
	h := &handler{svc: svc}
	router := mux.NewRouter()

	router.HandleFunc("/combat/training/areas", h.handleTrainingAreas).Methods(http.MethodGet)
	router.HandleFunc("/combat/monsters", h.handleMonsters).Methods(http.MethodGet)

	character := router.NewRoute().Subrouter()
	character.Use(mux.MiddlewareFunc(requireCharacter))
	character.HandleFunc("/combat", h.handleGet).Methods(http.MethodGet)
	character.HandleFunc("/combat", h.handleCreate).Methods(http.MethodPost)
	character.HandleFunc("/combat", h.handleAct).Methods(http.MethodPut)
	character.HandleFunc("/combat/reset", h.handleReset).Methods(http.MethodPut)
	character.HandleFunc("/combat/rewards/replay", h.handleReplay).Methods(http.MethodPut)
	character.HandleFunc("/items/use", h.handleUseItem).Methods(http.MethodPut)
	character.HandleFunc("/characters/levels", h.handleLevels).Methods(http.MethodGet)

	if opts.SwaggerEnabled {
		router.PathPrefix("/docs/").Handler(httpSwagger.Handler(
			httpSwagger.URL("/docs/doc.json"),
			httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
		))
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, apperrors.New(apperrors.CodeNotFound, "route not found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = httpx.WriteJSONError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return httpx.Chain(router, httpx.RequestID(), httpx.AccessLog(), httpx.RecoverPanic())
}

func requireCharacter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		characterID := strings.TrimSpace(r.Header.Get(CharacterIDHeader))
		if characterID == "" {
			httpx.WriteError(w, r, apperrors.New(apperrors.CodeCharacterMissing, "character header is required"))
			return
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithCharacterID(r.Context(), characterID)))
	})
}

// queryID parses an optional positive id; absent yields zero.
func queryID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// handleGet returns the character's combat session.
//
// @Summary  Get combat session
// @Tags     Combat
// @Produce  json
// @Security CharacterID
// @Success  200 {object} sessionView
// @Failure  404 {object} httpx.ErrorBody
// @Router   /combat [get]
func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), requestctx.CharacterIDFromContext(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, newSessionView(s))
}

// handleCreate creates the idle combat session.
//
// @Summary  Create combat session
// @Tags     Combat
// @Produce  json
// @Security CharacterID
// @Success  201 {object} sessionView
// @Failure  404 {object} httpx.ErrorBody
// @Router   /combat [post]
func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Create(r.Context(), requestctx.CharacterIDFromContext(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, newSessionView(s))
}

// handleAct resolves one combat action.
//
// @Summary  Act in combat
// @Tags     Combat
// @Produce  json
// @Security CharacterID
// @Param    action query string true  "start, attack, defend, use_item or flee"
// @Param    id     query int    false "monster id for start, item id for use_item"
// @Success  200 {object} sessionView
// @Failure  400 {object} httpx.ErrorBody
// @Failure  404 {object} httpx.ErrorBody
// @Failure  409 {object} httpx.ErrorBody
// @Router   /combat [put]
func (h *handler) handleAct(w http.ResponseWriter, r *http.Request) {
	action, err := engine.ParseAction(r.URL.Query().Get("action"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	id, err := queryID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	res, err := h.svc.Act(r.Context(), requestctx.CharacterIDFromContext(r.Context()), engine.ActRequest{Action: action, TargetID: id})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	view := newSessionView(res.Session)
	view.Rewards = res.Rewards
	view.Level = res.Level
	_ = httpx.WriteJSON(w, http.StatusOK, view)
}

// handleReset ends a decided encounter.
//
// @Summary  Reset combat
// @Tags     Combat
// @Produce  json
// @Security CharacterID
// @Success  200 {object} sessionView
// @Failure  404 {object} httpx.ErrorBody
// @Failure  409 {object} httpx.ErrorBody
// @Router   /combat/reset [put]
func (h *handler) handleReset(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Reset(r.Context(), requestctx.CharacterIDFromContext(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, newSessionView(s))
}

// handleReplay retries pending reward steps.
//
// @Summary  Replay pending rewards
// @Tags     Combat
// @Produce  json
// @Security CharacterID
// @Success  200 {object} replayView
// @Router   /combat/rewards/replay [put]
func (h *handler) handleReplay(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ReplayRewards(r.Context(), requestctx.CharacterIDFromContext(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	replayed := res.Replayed
	if replayed == nil {
		replayed = []string{}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, replayView{Replayed: replayed, Pending: res.Pending, Level: res.Level})
}

// handleTrainingAreas lists training areas.
//
// @Summary Training areas
// @Tags    Catalog
// @Produce json
// @Success 200 {array} areaView
// @Router  /combat/training/areas [get]
func (h *handler) handleTrainingAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.svc.TrainingAreas(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	views := make([]areaView, 0, len(areas))
	for _, area := range areas {
		views = append(views, areaView{Name: area.Name, Description: area.Description})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, views)
}

// handleMonsters lists the monsters of an area.
//
// @Summary Monsters by area
// @Tags    Catalog
// @Produce json
// @Param   area query string true "training area name"
// @Success 200 {array} monsterView
// @Failure 400 {object} httpx.ErrorBody
// @Router  /combat/monsters [get]
func (h *handler) handleMonsters(w http.ResponseWriter, r *http.Request) {
	monsters, err := h.svc.Monsters(r.Context(), r.URL.Query().Get("area"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	views := make([]monsterView, 0, len(monsters))
	for _, monster := range monsters {
		views = append(views, newMonsterView(monster))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, views)
}

// handleUseItem consumes an item outside combat.
//
// @Summary  Use item
// @Tags     Items
// @Produce  json
// @Security CharacterID
// @Param    id query int true "item id"
// @Success  200 {object} itemUseView
// @Failure  400 {object} httpx.ErrorBody
// @Failure  404 {object} httpx.ErrorBody
// @Failure  409 {object} httpx.ErrorBody
// @Router   /items/use [put]
func (h *handler) handleUseItem(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	use, err := h.svc.UseItem(r.Context(), requestctx.CharacterIDFromContext(r.Context()), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, itemUseView{
		Item:      use.Item,
		Results:   use.Results,
		Health:    use.Health,
		MaxHealth: use.MaxHealth,
	})
}

// handleLevels returns the character's skill levels.
//
// @Summary  Skill levels
// @Tags     Characters
// @Produce  json
// @Security CharacterID
// @Success  200 {array} skillView
// @Failure  404 {object} httpx.ErrorBody
// @Router   /characters/levels [get]
func (h *handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	skills, err := h.svc.Skills(r.Context(), requestctx.CharacterIDFromContext(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	views := make([]skillView, 0, len(skills))
	for _, skill := range skills {
		views = append(views, skillView{Skill: skill.Skill, Experience: skill.Experience, Level: skill.Level})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, views)
}
