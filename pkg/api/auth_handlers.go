package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/groupify/backend/pkg/contextkeys"
	"github.com/groupify/backend/pkg/httputil"
	"github.com/groupify/backend/pkg/identity"
	"github.com/groupify/backend/pkg/middleware"
)

func (s *Server) recordAuth(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAuthAttempt(operation, outcome)
	}
}

// signUp registers a new account with the identity provider and seeds the
// profile row when a username was supplied.
func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	user, err := s.provider.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.recordAuth("signup", "error")
		s.writeProviderError(w, err)
		return
	}
	s.recordAuth("signup", "ok")

	if req.Username != "" && s.profiles != nil {
		if _, err := s.profiles.Create(r.Context(), "", user.ID, req.Username); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("profile seed failed after signup")
		}
	}

	httputil.WriteCreated(w, SignUpResponse{
		Message: "signup successful, check your email to confirm the account",
		UserID:  user.ID,
		User:    user,
	})
}

// login exchanges email/password credentials for a session pair.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	sess, err := s.provider.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		s.recordAuth("login", "error")
		s.writeProviderError(w, err)
		return
	}
	s.recordAuth("login", "ok")

	httputil.WriteSuccess(w, newTokenResponse(sess))
}

// me returns the user resolved by the auth middleware.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())
	if user == nil {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"user": user})
}

// refresh exchanges a refresh token for a new session pair. The blacklist is
// deliberately not consulted here.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	sess, err := s.authenticator.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.recordAuth("refresh", "error")
		middleware.WriteAuthError(w, err)
		return
	}
	s.recordAuth("refresh", "ok")

	httputil.WriteSuccess(w, newTokenResponse(sess))
}

// logout revokes the presented bearer token. Validation happens inside the
// token lifecycle, so this route does not sit behind the auth middleware.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	err := s.authenticator.Logout(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		s.recordAuth("logout", "error")
		middleware.WriteAuthError(w, err)
		return
	}
	s.recordAuth("logout", "ok")

	httputil.WriteSuccess(w, MessageResponse{Message: "logged out"})
}

// changePassword re-verifies the current password, then rotates it through
// the provider's admin surface.
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())
	if user == nil {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}

	var req ChangePasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.CurrentPassword, "current_password") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.NewPassword, "new_password") {
		return
	}

	if _, err := s.provider.SignInWithPassword(r.Context(), user.Email, req.CurrentPassword); err != nil {
		s.recordAuth("change_password", "rejected")
		httputil.WriteUnauthorized(w, "current password is incorrect")
		return
	}

	if err := s.provider.AdminUpdateUserPassword(r.Context(), user.ID, req.NewPassword); err != nil {
		s.recordAuth("change_password", "error")
		s.writeProviderError(w, err)
		return
	}
	s.recordAuth("change_password", "ok")

	httputil.WriteSuccess(w, MessageResponse{Message: "password changed"})
}

// resetPassword starts the email recovery flow. The response does not reveal
// whether the address exists.
func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}

	if err := s.provider.ResetPasswordForEmail(r.Context(), req.Email, s.resetRedirectURL); err != nil {
		s.recordAuth("reset_password", "error")
		s.writeProviderError(w, err)
		return
	}
	s.recordAuth("reset_password", "ok")

	httputil.WriteSuccess(w, map[string]string{
		"message": "password reset email sent",
		"email":   req.Email,
	})
}

// resetPasswordConfirm completes the recovery flow. The bearer token is the
// recovery session issued by the email link; the auth middleware has already
// resolved it to its user.
func (s *Server) resetPasswordConfirm(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())
	if user == nil {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}

	var req ResetPasswordConfirmRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.NewPassword, "new_password") {
		return
	}

	if err := s.provider.AdminUpdateUserPassword(r.Context(), user.ID, req.NewPassword); err != nil {
		s.recordAuth("reset_password_confirm", "error")
		s.writeProviderError(w, err)
		return
	}
	s.recordAuth("reset_password_confirm", "ok")

	httputil.WriteSuccess(w, MessageResponse{Message: "password updated"})
}

// oauthAuthorize builds the provider-hosted OAuth entry URL for the named
// external provider.
func (s *Server) oauthAuthorize(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "provider")
	if !ok {
		return
	}
	name = strings.ToLower(name)

	redirectTo := r.URL.Query().Get("redirect_to")
	if redirectTo == "" {
		redirectTo = s.oauthRedirectURL
	}

	authURL, err := s.provider.OAuthAuthorizeURL(name, redirectTo)
	if err != nil {
		if errors.Is(err, identity.ErrUnsupportedProvider) {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		s.writeProviderError(w, err)
		return
	}

	httputil.WriteSuccess(w, OAuthURLResponse{AuthURL: authURL, Provider: name})
}

// writeProviderError maps identity provider errors onto HTTP statuses.
func (s *Server) writeProviderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, err.Error())
	case errors.Is(err, identity.ErrInvalidToken), errors.Is(err, identity.ErrInvalidGrant):
		httputil.WriteUnauthorized(w, err.Error())
	case errors.Is(err, identity.ErrUserNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, identity.ErrUnsupportedProvider):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, identity.ErrUnavailable):
		httputil.WriteBadGateway(w, err.Error())
	default:
		httputil.WriteBadGateway(w, err.Error())
	}
}
