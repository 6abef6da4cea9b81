package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/groupify/backend/pkg/auth"
)

// PostgresBlacklist stores revoked tokens in a token_blacklist table with
// the token value as primary key. Duplicate inserts resolve with
// ON CONFLICT DO NOTHING, keeping concurrent logouts race-safe.
type PostgresBlacklist struct {
	db *sql.DB
}

// NewPostgresBlacklist opens a connection pool and verifies connectivity.
func NewPostgresBlacklist(url string) (*PostgresBlacklist, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresBlacklist{db: db}, nil
}

// NewPostgresBlacklistFromDB wraps an existing handle, mainly for tests.
func NewPostgresBlacklistFromDB(db *sql.DB) *PostgresBlacklist {
	return &PostgresBlacklist{db: db}
}

// EnsureSchema creates the token_blacklist table if it does not exist.
func (s *PostgresBlacklist) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS token_blacklist (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			revoked_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create token_blacklist table: %w", err)
	}
	return nil
}

// Insert records a revocation. A conflicting token is left untouched and the
// insert reports success.
func (s *PostgresBlacklist) Insert(ctx context.Context, entry auth.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_blacklist (token, user_id, revoked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO NOTHING
	`, entry.Token, entry.UserID, entry.RevokedAt)
	if err != nil {
		return fmt.Errorf("blacklist insert failed: %w", err)
	}
	return nil
}

// Lookup returns the entry for token, or nil when no row exists.
func (s *PostgresBlacklist) Lookup(ctx context.Context, token string) (*auth.Entry, error) {
	var entry auth.Entry
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, revoked_at
		FROM token_blacklist
		WHERE token = $1
	`, token).Scan(&entry.Token, &entry.UserID, &entry.RevokedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blacklist lookup failed: %w", err)
	}
	return &entry, nil
}

// DB exposes the underlying handle for health checks.
func (s *PostgresBlacklist) DB() *sql.DB {
	return s.db
}

// Close releases the connection pool.
func (s *PostgresBlacklist) Close() error {
	return s.db.Close()
}
