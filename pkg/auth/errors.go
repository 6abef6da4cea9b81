package auth

import "errors"

// Error taxonomy for the token lifecycle. Each failure is a distinct,
// caller-visible outcome; the HTTP layer maps them to status codes instead of
// collapsing everything into one generic 401.
var (
	// ErrInvalidHeaderFormat indicates the Authorization header is missing
	// or does not begin with the literal "Bearer " prefix.
	ErrInvalidHeaderFormat = errors.New("auth: invalid authorization header format")

	// ErrTokenRevoked indicates the token has a blacklist entry. A revoked
	// token is never accepted, regardless of what the provider would say.
	ErrTokenRevoked = errors.New("auth: token has been revoked")

	// ErrInvalidOrExpiredToken indicates the provider rejected the token.
	ErrInvalidOrExpiredToken = errors.New("auth: invalid or expired token")

	// ErrUserNotFound indicates the provider has no user bound to the token.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrMissingRefreshToken indicates an empty refresh token was presented.
	ErrMissingRefreshToken = errors.New("auth: missing refresh token")

	// ErrInvalidRefreshToken indicates the provider rejected the refresh
	// token (expired, already rotated, or unknown).
	ErrInvalidRefreshToken = errors.New("auth: invalid refresh token")

	// ErrProviderTimeout indicates a provider or store call exceeded its
	// configured deadline.
	ErrProviderTimeout = errors.New("auth: identity provider timed out")

	// ErrProviderUnavailable indicates a generic upstream failure.
	ErrProviderUnavailable = errors.New("auth: identity provider unavailable")
)
