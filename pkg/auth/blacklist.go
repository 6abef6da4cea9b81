package auth

import (
	"context"
	"time"
)

// Entry is an append-only record of a revoked access token. Created once per
// logout and immutable thereafter.
type Entry struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	RevokedAt time.Time `json:"revoked_at"`
}

// BlacklistStore is a durable, shared record of revoked access tokens keyed
// by token value. Implementations must be safe under concurrent Insert and
// Lookup from many request handlers.
type BlacklistStore interface {
	// Insert records a revocation. Inserting a token that is already
	// blacklisted is a benign no-op, not an error: concurrent logouts for
	// the same token must both succeed with exactly one entry persisted.
	Insert(ctx context.Context, entry Entry) error

	// Lookup returns the entry for the exact token string, or nil if the
	// token has not been revoked.
	Lookup(ctx context.Context, token string) (*Entry, error)
}
