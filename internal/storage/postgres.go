package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type PostgresKV struct {
	db *sql.DB
}

func NewPostgresKV(connStr string) (*PostgresKV, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	kv := &PostgresKV{db: db}
	if err := kv.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return kv, nil
}

// value is TEXT, not JSONB: a corrupt blob must round-trip so Load can
// discard it instead of the write failing.
func (k *PostgresKV) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	_, err := k.db.Exec(schema)
	return err
}

func (k *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := k.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return []byte(value), nil
}

func (k *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := k.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (k *PostgresKV) Close() error {
	return k.db.Close()
}
