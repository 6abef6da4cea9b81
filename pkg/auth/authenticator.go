package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/groupify/backend/pkg/identity"
)

// bearerPrefix is matched case-sensitively with a single space, per the
// inbound contract. "bearer x" and "Bearer  x" are both malformed.
const bearerPrefix = "Bearer "

// DefaultTimeout bounds each provider or store round trip when no timeout is
// configured.
const DefaultTimeout = 5 * time.Second

// Authenticator validates, revokes and refreshes bearer sessions. The
// provider client and blacklist store are injected at construction so tests
// can substitute fakes; there is no process-wide singleton.
type Authenticator struct {
	provider  identity.Provider
	blacklist BlacklistStore
	timeout   time.Duration
	log       *logrus.Entry
	now       func() time.Time
}

// NewAuthenticator creates an Authenticator. timeout bounds each upstream
// round trip; zero means DefaultTimeout.
func NewAuthenticator(provider identity.Provider, blacklist BlacklistStore, timeout time.Duration, log *logrus.Entry) *Authenticator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = logrus.NewEntry(discard)
	}
	return &Authenticator{
		provider:  provider,
		blacklist: blacklist,
		timeout:   timeout,
		log:       log,
		now:       time.Now,
	}
}

// BearerToken extracts the token from an Authorization header value. The
// header must begin with the literal "Bearer " prefix.
func BearerToken(headerValue string) (string, error) {
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return "", ErrInvalidHeaderFormat
	}
	token := headerValue[len(bearerPrefix):]
	if token == "" || strings.HasPrefix(token, " ") {
		return "", ErrInvalidHeaderFormat
	}
	return token, nil
}

// Validate checks a bearer token and resolves it to its user. The blacklist
// lookup happens strictly before any provider call: a revoked token must be
// rejected even while the provider still considers it live. Read-only and
// idempotent.
func (a *Authenticator) Validate(ctx context.Context, headerValue string) (*identity.User, error) {
	token, err := BearerToken(headerValue)
	if err != nil {
		return nil, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	entry, err := a.blacklist.Lookup(lookupCtx, token)
	if err != nil {
		return nil, storeError("blacklist lookup", err)
	}
	if entry != nil {
		return nil, ErrTokenRevoked
	}

	userCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	user, err := a.provider.UserFromToken(userCtx, token)
	if err != nil {
		return nil, validateError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Logout revokes the presented token. The token must still validate; any
// validation failure propagates unchanged. The blacklist write is the
// authoritative revocation: once it commits, logout succeeds even if the
// provider-side sign-out fails. The write runs on a detached context so a
// cancelled request cannot roll back a committed revocation.
func (a *Authenticator) Logout(ctx context.Context, headerValue string) error {
	user, err := a.Validate(ctx, headerValue)
	if err != nil {
		return err
	}
	token, err := BearerToken(headerValue)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()
	entry := Entry{Token: token, UserID: user.ID, RevokedAt: a.now().UTC()}
	if err := a.blacklist.Insert(writeCtx, entry); err != nil {
		return storeError("blacklist insert", err)
	}

	// Courtesy call: reduces exposure upstream but never changes the outcome.
	signOutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()
	if err := a.provider.SignOut(signOutCtx, token); err != nil {
		a.log.WithError(err).WithField("user_id", user.ID).
			Warn("provider sign-out failed; token already blacklisted")
	}
	return nil
}

// Refresh exchanges a refresh token for a new session pair. The blacklist is
// not consulted: only the refresh token's validity matters here. The prior
// access token is not revoked and stays live until its natural expiry.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	refreshCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	session, err := a.provider.RefreshSession(refreshCtx, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, ErrProviderTimeout
		case errors.Is(err, identity.ErrInvalidGrant):
			return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}
	return session, nil
}

// validateError maps a provider resolution failure onto the taxonomy.
func validateError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrProviderTimeout
	case errors.Is(err, identity.ErrUserNotFound):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	case errors.Is(err, identity.ErrInvalidToken):
		return fmt.Errorf("%w: %v", ErrInvalidOrExpiredToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
}

// storeError maps a blacklist store failure onto the taxonomy.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrProviderTimeout, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, op, err)
}
