package driver

import (
	"path/filepath"
	"testing"

	"github.com/louisbranch/idle-rpg/internal/platform/config"
)

func TestOpenSQLite(t *testing.T) {
	store, err := Open(config.Store{Driver: "SQLite", SQLitePath: filepath.Join(t.TempDir(), "nested", "rpg.sqlite")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	for _, cfg := range []config.Store{
		{Driver: "mysql"},
		{Driver: config.DriverSQLite},
		{Driver: config.DriverPostgres},
	} {
		if _, err := Open(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}
