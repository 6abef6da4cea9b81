package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupify/backend/pkg/profile"
)

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	env.data.profiles["user-1"] = profile.Profile{ID: "user-1", Username: "alice", Bio: "hi"}

	var resp profile.Profile
	w := env.doJSON(t, http.MethodGet, "/api/v1/users/user-1", "", nil, &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "hi", resp.Bio)
}

func TestGetProfile_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.doJSON(t, http.MethodGet, "/api/v1/users/nobody", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOwnProfile(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, "alice@example.com", "hunter22")
	env.data.profiles[sess.User.ID] = profile.Profile{ID: sess.User.ID, Username: "alice"}

	bio := "updated bio"
	var resp profile.Profile
	w := env.doJSON(t, http.MethodPut, "/api/v1/users/me", sess.AccessToken,
		UpdateProfileRequest{Bio: &bio}, &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "updated bio", resp.Bio)
	assert.Equal(t, "alice", resp.Username)
}

func TestUpdateOwnProfile_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	bio := "bio"
	w := env.doJSON(t, http.MethodPut, "/api/v1/users/me", "", UpdateProfileRequest{Bio: &bio}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// An empty update is a no-op read of the current profile.
func TestUpdateOwnProfile_EmptyPatch(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, "alice@example.com", "hunter22")
	env.data.profiles[sess.User.ID] = profile.Profile{ID: sess.User.ID, Username: "alice"}

	var resp profile.Profile
	w := env.doJSON(t, http.MethodPut, "/api/v1/users/me", sess.AccessToken, UpdateProfileRequest{}, &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", resp.Username)
}
