package api

import (
	"errors"
	"net/http"

	"github.com/groupify/backend/pkg/contextkeys"
	"github.com/groupify/backend/pkg/httputil"
	"github.com/groupify/backend/pkg/profile"
)

// getProfile fetches a user's public profile. An inbound bearer token, when
// present, is forwarded so the provider's row security applies to the caller;
// anonymous reads see only rows the provider exposes publicly.
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParsePathStringOrError(w, r, "user_id")
	if !ok {
		return
	}

	bearer := ""
	if header := r.Header.Get("Authorization"); len(header) > 7 && header[:7] == "Bearer " {
		bearer = header[7:]
	}

	p, err := s.profiles.Get(r.Context(), bearer, userID)
	if err != nil {
		s.writeProfileError(w, err)
		return
	}
	httputil.WriteSuccess(w, p)
}

// updateOwnProfile patches the authenticated user's profile row.
func (s *Server) updateOwnProfile(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())
	if user == nil {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}

	var req UpdateProfileRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	p, err := s.profiles.UpdateOwn(r.Context(), contextkeys.TokenFrom(r.Context()), user.ID, req)
	if err != nil {
		s.writeProfileError(w, err)
		return
	}
	httputil.WriteSuccess(w, p)
}

func (s *Server) writeProfileError(w http.ResponseWriter, err error) {
	if errors.Is(err, profile.ErrNotFound) {
		httputil.WriteNotFoundError(w, "profile not found")
		return
	}
	httputil.WriteBadGateway(w, err.Error())
}
