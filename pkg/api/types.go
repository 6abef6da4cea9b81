package api

import (
	"github.com/groupify/backend/pkg/identity"
	"github.com/groupify/backend/pkg/profile"
)

// SignUpRequest registers a new account.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// LoginRequest exchanges credentials for a session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest exchanges a refresh token for a new session pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest rotates the caller's password. The current password
// is re-verified before the change is applied.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ResetPasswordRequest starts the email recovery flow.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordConfirmRequest completes the recovery flow. The caller
// presents the recovery session token from the email link as its bearer.
type ResetPasswordConfirmRequest struct {
	NewPassword string `json:"new_password"`
}

// TokenResponse is the session pair returned by login and refresh.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in,omitempty"`
	User         *identity.User `json:"user,omitempty"`
}

// newTokenResponse shapes a provider session into the public response.
func newTokenResponse(sess *identity.Session) TokenResponse {
	return TokenResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    sess.ExpiresIn,
		User:         sess.User,
	}
}

// SignUpResponse is returned after registration.
type SignUpResponse struct {
	Message string         `json:"message"`
	UserID  string         `json:"user_id"`
	User    *identity.User `json:"user,omitempty"`
}

// MessageResponse is a bare informational response.
type MessageResponse struct {
	Message string `json:"message"`
}

// OAuthURLResponse carries the provider-hosted OAuth entry URL.
type OAuthURLResponse struct {
	AuthURL  string `json:"auth_url"`
	Provider string `json:"provider"`
}

// SendMessageRequest posts a chat message to a room.
type SendMessageRequest struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

// GenerateRequest forwards a prompt to the AI assistant.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// GenerateResponse carries the assistant's completion.
type GenerateResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

// UpdateProfileRequest patches the caller's profile; absent fields are left
// untouched.
type UpdateProfileRequest = profile.Update
