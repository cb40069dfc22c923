// Package postgres opens the Postgres-backed combat store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/louisbranch/idle-rpg/internal/platform/storage/sqlmigrate"
	"github.com/louisbranch/idle-rpg/internal/platform/timeouts"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/postgres/migrations"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage/sqlstore"
)

const uniqueViolationCode = pq.ErrorCode("23505")

// Open connects to dsn and applies embedded migrations.
func Open(dsn string) (*sqlstore.Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.StorePing)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	if err := sqlmigrate.ApplyMigrations(ctx, sqlDB, sqlmigrate.Postgres, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlstore.New(sqlDB, sqlmigrate.Postgres, isUniqueViolation), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
