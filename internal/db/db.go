// Package db provides PostgreSQL access for durable project and preference records.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/architect/internal/storage"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS architect_kv (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the key/value table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create architect_kv table: %w", err)
	}
	return nil
}

// GetValue returns the raw JSON stored under key, or nil if absent
func (db *DB) GetValue(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := db.pool.QueryRow(ctx,
		`SELECT value FROM architect_kv WHERE key = $1`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// PutValue upserts the JSON document under key
func (db *DB) PutValue(ctx context.Context, key string, value []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO architect_kv (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// KVStore adapts DB to storage.Backend.
type KVStore struct {
	db *DB
}

// NewKVStore connects, ensures the schema, and returns a storage backend.
func NewKVStore(ctx context.Context, databaseURL string) (*KVStore, error) {
	db, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &KVStore{db: db}, nil
}

// Get implements storage.Backend.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.db.GetValue(ctx, key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, storage.ErrNotFound
	}
	return value, nil
}

// Put implements storage.Backend.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	return s.db.PutValue(ctx, key, value)
}

// Close implements storage.Backend.
func (s *KVStore) Close() error {
	s.db.Close()
	return nil
}

var _ storage.Backend = (*KVStore)(nil)
