package combat

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("combat", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8090 {
		t.Fatalf("expected default port, got %d", cfg.Port)
	}
	if got := cfg.HTTPAddr(); got != ":8090" {
		t.Fatalf("expected default addr, got %q", got)
	}
	if cfg.FleeChance != 0.9 || cfg.DefendHeal != 5 {
		t.Fatalf("expected default rules, got %v/%d", cfg.FleeChance, cfg.DefendHeal)
	}
	if !cfg.SwaggerEnabled {
		t.Fatal("expected swagger enabled by default")
	}
	if cfg.Store.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.Store.Driver)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("IDLE_RPG_COMBAT_PORT", "9000")
	t.Setenv("IDLE_RPG_FLEE_CHANCE", "0.5")
	t.Setenv("IDLE_RPG_STORE_DRIVER", "postgres")
	t.Setenv("IDLE_RPG_POSTGRES_DSN", "postgres://env/rpg")

	fs := flag.NewFlagSet("combat", flag.ContinueOnError)
	args := []string{
		"-addr", "127.0.0.1:7000",
		"-defend-heal", "8",
		"-swagger=false",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("expected env port, got %d", cfg.Port)
	}
	if got := cfg.HTTPAddr(); got != "127.0.0.1:7000" {
		t.Fatalf("expected flag addr to win, got %q", got)
	}
	if cfg.FleeChance != 0.5 {
		t.Fatalf("expected env flee chance, got %v", cfg.FleeChance)
	}
	if cfg.DefendHeal != 8 {
		t.Fatalf("expected flag defend heal, got %d", cfg.DefendHeal)
	}
	if cfg.SwaggerEnabled {
		t.Fatal("expected swagger disabled by flag")
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.PostgresDSN != "postgres://env/rpg" {
		t.Fatalf("expected env store, got %+v", cfg.Store)
	}
}

func TestParseConfigBadEnv(t *testing.T) {
	t.Setenv("IDLE_RPG_DEFEND_HEAL", "lots")
	if _, err := ParseConfig(flag.NewFlagSet("combat", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected env parse error")
	}
}
