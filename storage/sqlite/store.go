// Package sqlite provides a SQLite-backed contract store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dev-tnsq/Proof-of-Sus/storage"
	"github.com/dev-tnsq/Proof-of-Sus/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists contract state in a single key/value table.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)
var _ storage.Applier = (*Store)(nil)

// Open opens a SQLite store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key storage.Key) ([]byte, bool, error) {
	if err := s.ready(ctx); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT value FROM contract_kv WHERE key = ?", key.String(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *Store) Set(ctx context.Context, key storage.Key, value []byte) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, upsertSQL, key.String(), nonNil(value), time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Has reports whether key holds a value.
func (s *Store) Has(ctx context.Context, key storage.Key) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var found int
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT 1 FROM contract_kv WHERE key = ?", key.String(),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has %s: %w", key, err)
	}
	return true, nil
}

// Apply writes every entry inside one SQL transaction.
func (s *Store) Apply(ctx context.Context, writes []storage.Write) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	now := time.Now().UTC().UnixMilli()
	for _, w := range writes {
		if _, err := tx.ExecContext(ctx, upsertSQL, w.Key.String(), nonNil(w.Value), now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set %s: %w", w.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Keys lists every stored key name in order.
func (s *Store) Keys(ctx context.Context) ([]storage.Key, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT key FROM contract_kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []storage.Key
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		k, err := storage.ParseKey(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
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

const upsertSQL = `INSERT INTO contract_kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// value is NOT NULL; an empty write is stored as a zero-length blob.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
