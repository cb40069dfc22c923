// Package sqlstore implements combat storage over database/sql.
//
// Queries are written once with '?' placeholders and rebound per dialect, so
// the same Store backs both the SQLite and Postgres drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/louisbranch/idle-rpg/internal/platform/storage/sqlmigrate"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
)

// Store persists combat state in a SQL database.
type Store struct {
	sqlDB           *sql.DB
	dialect         sqlmigrate.Dialect
	uniqueViolation func(error) bool
	now             func() time.Time
}

// New wraps an open, migrated database. uniqueViolation classifies driver
// errors raised by primary key or unique constraints.
func New(sqlDB *sql.DB, dialect sqlmigrate.Dialect, uniqueViolation func(error) bool) *Store {
	if uniqueViolation == nil {
		uniqueViolation = func(error) bool { return false }
	}
	return &Store{
		sqlDB:           sqlDB,
		dialect:         dialect,
		uniqueViolation: uniqueViolation,
		now:             time.Now,
	}
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.sqlDB.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.sqlDB.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.sqlDB.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// tx wraps a transaction so statements are rebound like the Store's own.
type tx struct {
	sqlTx   *sql.Tx
	dialect sqlmigrate.Dialect
}

func (t tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.sqlTx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.sqlTx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

func (s *Store) withTx(ctx context.Context, fn func(tx) error) error {
	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx{sqlTx: sqlTx, dialect: s.dialect}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// nullJSON maps a nil payload to SQL NULL. Payloads travel as strings so
// drivers never bind them as binary.
func nullJSON(payload []byte) sql.NullString {
	if payload == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(payload), Valid: true}
}

func jsonBytes(value sql.NullString) []byte {
	if !value.Valid {
		return nil
	}
	return []byte(value.String)
}

func requireRows(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
