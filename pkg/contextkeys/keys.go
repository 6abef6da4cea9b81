// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the application are defined here to prevent
// typos and make key usage discoverable.
package contextkeys

import (
	"context"

	"github.com/groupify/backend/pkg/identity"
)

// Key is the type for context keys to prevent collisions.
type Key string

const (
	// UserKey contains the *identity.User resolved by the auth middleware.
	UserKey Key = "user"

	// TokenKey contains the raw bearer token string. Handlers forward it to
	// the provider's data REST surface so row security applies per caller.
	TokenKey Key = "bearer_token"

	// RequestIDKey contains the request ID string (UUID).
	RequestIDKey Key = "request_id"
)

// WithUser adds the authenticated user and its bearer token to the context.
func WithUser(ctx context.Context, user *identity.User, token string) context.Context {
	ctx = context.WithValue(ctx, UserKey, user)
	return context.WithValue(ctx, TokenKey, token)
}

// UserFrom retrieves the authenticated user, or nil.
func UserFrom(ctx context.Context) *identity.User {
	user, _ := ctx.Value(UserKey).(*identity.User)
	return user
}

// TokenFrom retrieves the raw bearer token, or "".
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFrom retrieves the request ID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
