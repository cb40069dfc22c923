// Package server hosts the combat HTTP process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/idle-rpg/internal/platform/config"
	"github.com/louisbranch/idle-rpg/internal/platform/random"
	"github.com/louisbranch/idle-rpg/internal/platform/timeouts"
	"github.com/louisbranch/idle-rpg/internal/services/combat/api/httpapi"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/engine"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/driver"
)

// Config defines the inputs for the combat server.
type Config struct {
	HTTPAddr          string
	Store             config.Store
	Rules             engine.Config
	SwaggerEnabled    bool
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server owns the HTTP listener and the store behind it.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	store           storage.Store
}

// NewServer opens the store and wires the engine behind the HTTP handler.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("combat rules: %w", err)
	}

	store, err := driver.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	handler, err := NewHandler(ctx, store, cfg.Rules, cfg.SwaggerEnabled)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			IdleTimeout:       timeouts.Idle,
		},
		store: store,
	}, nil
}

// NewHandler builds the combat engine over store and returns its HTTP
// surface. The experience table comes from the store, falling back to
// leveling.DefaultTable when none was seeded.
func NewHandler(ctx context.Context, store storage.Store, rules engine.Config, swaggerEnabled bool) (http.Handler, error) {
	table, err := store.GetExperienceTable(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Printf("experience table not seeded, using default levels")
		table = leveling.DefaultTable
	case err != nil:
		return nil, fmt.Errorf("load experience table: %w", err)
	}
	levels, err := leveling.NewService(store, table)
	if err != nil {
		return nil, fmt.Errorf("leveling service: %w", err)
	}
	rng, err := random.NewFromCrypto()
	if err != nil {
		return nil, fmt.Errorf("seed random source: %w", err)
	}
	eng, err := engine.New(engine.Deps{
		Sessions:   store,
		Characters: store,
		Monsters:   store,
		Inventory:  store,
		Skills:     store,
		Rewards:    store,
		Leveling:   levels,
		Random:     rng,
	}, rules)
	if err != nil {
		return nil, fmt.Errorf("combat engine: %w", err)
	}
	return httpapi.NewHandler(eng, httpapi.Options{SwaggerEnabled: swaggerEnabled}), nil
}

// Run creates and serves a combat server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init combat server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve combat: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("combat server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("combat server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the store.
func (s *Server) Close() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}
