// Package sqlite provides a SQLite-backed key-value substrate built on the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/workshop-planner/internal/persistence"
)

// Store implements persistence.KeyValueStore over the kv_entries table.
type Store struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper ErrorMapper
	now    func() time.Time
}

// Open opens the database described by config and applies pending migrations.
func Open(ctx context.Context, config Config) (*Store, error) {
	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}
	store := &Store{
		pool:  pool,
		retry: NewRetryHelper(DefaultRetryConfig()),
		now:   time.Now,
	}
	if _, err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Migrate applies pending embedded migrations and returns their versions.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}
	return migrator{pool: s.pool}.run(ctx, migrations)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.DB().QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set upserts value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	updatedAt := s.now().UTC().Format(time.RFC3339Nano)
	return s.retry.WithRetry(ctx, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				key, value, updatedAt)
			if err != nil {
				return fmt.Errorf("upsert %s: %w", key, err)
			}
			return nil
		})
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.retry.WithRetry(ctx, func() error {
		if _, err := s.pool.DB().ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}

// Keys returns the keys starting with prefix in lexical order. The match is
// case-sensitive.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.DB().QueryContext(ctx,
		`SELECT key FROM kv_entries WHERE instr(key, ?) = 1 OR ? = '' ORDER BY key`, prefix, prefix)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return keys, nil
}

var _ persistence.KeyValueStore = (*Store)(nil)
