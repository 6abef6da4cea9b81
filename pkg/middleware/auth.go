package middleware

import (
	"errors"
	"net/http"

	"github.com/groupify/backend/pkg/auth"
	"github.com/groupify/backend/pkg/contextkeys"
	"github.com/groupify/backend/pkg/httputil"
)

// AuthMiddleware validates the bearer token on every request and stores the
// resolved user plus the raw token in the request context. Requests that fail
// validation never reach the wrapped handler.
func AuthMiddleware(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			user, err := authenticator.Validate(r.Context(), header)
			if err != nil {
				WriteAuthError(w, err)
				return
			}

			token, _ := auth.BearerToken(header)
			next.ServeHTTP(w, r.WithContext(contextkeys.WithUser(r.Context(), user, token)))
		})
	}
}

// WriteAuthError maps a token lifecycle error to its HTTP status and writes
// the JSON error response.
func WriteAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidHeaderFormat), errors.Is(err, auth.ErrMissingRefreshToken):
		httputil.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrInvalidOrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken):
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		httputil.WriteErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrProviderTimeout), errors.Is(err, auth.ErrProviderUnavailable):
		httputil.WriteErrorMessage(w, http.StatusBadGateway, err.Error())
	default:
		httputil.WriteInternalError(w, err)
	}
}
