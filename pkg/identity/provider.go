package identity

import "context"

// Provider is the external system of record for credentials and session
// issuance. All operations are opaque remote calls; this service does not
// reimplement their cryptography or session semantics.
//
// Implementations must honor context cancellation and deadlines on every call.
type Provider interface {
	// SignUp registers a new user with email and password.
	SignUp(ctx context.Context, email, password string) (*User, error)

	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// UserFromToken resolves an access token to its user.
	UserFromToken(ctx context.Context, accessToken string) (*User, error)

	// SignOut invalidates the provider's own session state for the token.
	SignOut(ctx context.Context, accessToken string) error

	// RefreshSession exchanges a refresh token for a new session pair.
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)

	// ResetPasswordForEmail sends a password reset link to the address.
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error

	// AdminUpdateUserPassword sets a new password for the user, using the
	// provider's privileged admin surface.
	AdminUpdateUserPassword(ctx context.Context, userID, newPassword string) error

	// OAuthAuthorizeURL builds the provider-hosted OAuth redirect URL.
	OAuthAuthorizeURL(provider, redirectTo string) (string, error)
}
