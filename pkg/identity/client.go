package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// oauthProviders is the set of OAuth providers the hosted auth surface supports.
var oauthProviders = map[string]bool{
	"google":   true,
	"github":   true,
	"facebook": true,
	"azure":    true,
}

// Config holds identity provider connection settings.
type Config struct {
	// BaseURL is the provider project URL, e.g. https://example.supabase.co
	BaseURL string
	// AnonKey is the public API key sent with every request.
	AnonKey string
	// ServiceRoleKey is the privileged key for admin operations.
	ServiceRoleKey string
	// Timeout bounds each HTTP round trip.
	Timeout time.Duration
}

// Client talks to a Supabase-compatible identity provider over its auth REST
// surface (/auth/v1) and data REST surface (/rest/v1).
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a provider client. The client is safe for concurrent use
// and should be constructed once and injected into its consumers.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("identity: base URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("identity: anon key is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceRoleKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// errorResponse covers the error payload shapes the auth surface returns.
type errorResponse struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             int    `json:"code"`
}

func (e *errorResponse) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Error != "":
		return e.Error
	}
	return "unknown provider error"
}

// do performs one request against the auth surface. bearer overrides the anon
// key as the Authorization credential when non-empty. Returns the response
// body for 2xx statuses.
func (c *Client) do(ctx context.Context, method, path, bearer string, body interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("apikey", c.anonKey)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	return data, resp.StatusCode, nil
}

// SignUp registers a new user. Depending on provider settings the response is
// either a bare user (email confirmation pending) or a full session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*User, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, authError(status, body, ErrInvalidCredentials)
	}

	var sess Session
	if err := json.Unmarshal(body, &sess); err == nil && sess.User != nil {
		return sess.User, nil
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil || user.ID == "" {
		return nil, fmt.Errorf("%w: unexpected signup response", ErrUnavailable)
	}
	return &user, nil
}

// SignInWithPassword exchanges email/password credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, authError(status, body, ErrInvalidCredentials)
	}

	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil || sess.AccessToken == "" {
		return nil, fmt.Errorf("%w: unexpected token response", ErrUnavailable)
	}
	return &sess, nil
}

// UserFromToken resolves an access token to the user it was issued for.
func (c *Client) UserFromToken(ctx context.Context, accessToken string) (*User, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, authError(status, body, ErrInvalidToken)
	case status == http.StatusNotFound:
		return nil, authError(status, body, ErrUserNotFound)
	case status >= 400:
		return nil, authError(status, body, ErrUnavailable)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", ErrUnavailable, err)
	}
	if user.ID == "" {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// SignOut asks the provider to invalidate its session state for the token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	body, status, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return authError(status, body, ErrInvalidToken)
	}
	return nil
}

// RefreshSession exchanges a refresh token for a new session pair. The
// provider rotates the refresh token; the old one is single-use.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, authError(status, body, ErrInvalidGrant)
	}

	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil || sess.AccessToken == "" {
		return nil, fmt.Errorf("%w: unexpected token response", ErrUnavailable)
	}
	return &sess, nil
}

// ResetPasswordForEmail sends a password recovery email. The auth surface
// responds 200 regardless of whether the address exists.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	body, status, err := c.do(ctx, http.MethodPost, path, "", map[string]string{"email": email})
	if err != nil {
		return err
	}
	if status >= 400 {
		return authError(status, body, ErrUnavailable)
	}
	return nil
}

// AdminUpdateUserPassword sets a new password via the privileged admin surface.
func (c *Client) AdminUpdateUserPassword(ctx context.Context, userID, newPassword string) error {
	if c.serviceKey == "" {
		return fmt.Errorf("%w: service role key not configured", ErrUnavailable)
	}
	body, status, err := c.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+url.PathEscape(userID), c.serviceKey, map[string]string{
		"password": newPassword,
	})
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusNotFound:
		return authError(status, body, ErrUserNotFound)
	case status >= 400:
		return authError(status, body, ErrUnavailable)
	}
	return nil
}

// OAuthAuthorizeURL builds the provider-hosted OAuth redirect URL. The
// provider owns the OAuth protocol itself; this only constructs the entry URL.
func (c *Client) OAuthAuthorizeURL(provider, redirectTo string) (string, error) {
	if !oauthProviders[provider] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

// authError translates a non-2xx auth response into a sentinel error carrying
// the provider's message.
func authError(status int, body []byte, sentinel error) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)
	if status >= 500 {
		sentinel = ErrUnavailable
	}
	return fmt.Errorf("%w: %s (status %d)", sentinel, er.text(), status)
}
