package identity

import "errors"

// Sentinel errors returned by Provider implementations. Callers match with
// errors.Is and translate into their own taxonomy.
var (
	// ErrInvalidCredentials indicates the provider rejected an email/password pair.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrInvalidToken indicates the provider does not recognize the access
	// token, or considers it expired.
	ErrInvalidToken = errors.New("identity: invalid or expired token")

	// ErrUserNotFound indicates the provider has no user bound to the token or id.
	ErrUserNotFound = errors.New("identity: user not found")

	// ErrInvalidGrant indicates the provider rejected a refresh token
	// (expired, already rotated, or unknown).
	ErrInvalidGrant = errors.New("identity: invalid refresh token")

	// ErrUnsupportedProvider indicates an OAuth provider name outside the
	// supported set. This is a local validation error, no network call is made.
	ErrUnsupportedProvider = errors.New("identity: unsupported oauth provider")

	// ErrUnavailable indicates a transport-level or unexpected upstream failure.
	ErrUnavailable = errors.New("identity: provider unavailable")
)
