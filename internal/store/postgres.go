package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/frankfika/gitlab-issuehelper/core/db"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at TIMESTAMPTZ
)`

const kvExpiryIndex = `CREATE INDEX IF NOT EXISTS kv_entries_expires_at_idx ON kv_entries (expires_at)`

// PostgresBackend keeps values in the kv_entries table.
type PostgresBackend struct {
	db  *db.DB
	ttl time.Duration
}

// NewPostgresBackend creates the table if needed. A zero ttl stores without expiry.
func NewPostgresBackend(ctx context.Context, database *db.DB, ttl time.Duration) (*PostgresBackend, error) {
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, kvSchema); err != nil {
			return fmt.Errorf("creating kv_entries: %w", err)
		}
		if _, err := tx.Exec(ctx, kvExpiryIndex); err != nil {
			return fmt.Errorf("creating kv_entries index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PostgresBackend{db: database, ttl: ttl}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.Pool().QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %q: %w", key, err)
	}
	return value, true, nil
}

func (b *PostgresBackend) Set(ctx context.Context, key, value string) error {
	var expiresAt *time.Time
	if b.ttl > 0 {
		t := time.Now().Add(b.ttl).UTC()
		expiresAt = &t
	}

	_, err := b.db.Pool().Exec(ctx,
		`INSERT INTO kv_entries (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres set %q: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.Pool().Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres delete %q: %w", key, err)
	}
	return nil
}
