package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/groupify/backend/pkg/auth"
	"github.com/groupify/backend/pkg/chat"
	"github.com/groupify/backend/pkg/identity"
	"github.com/groupify/backend/pkg/profile"
	"github.com/groupify/backend/pkg/storage"
)

// fakeProvider is an in-memory identity provider. Accounts are keyed by
// email; issued access and refresh tokens are tracked so handler tests can
// drive full login/logout/refresh flows without a network.
type fakeProvider struct {
	mu       sync.Mutex
	accounts map[string]*fakeAccount
	sessions map[string]*identity.User
	refresh  map[string]*identity.User
	counter  int

	signOutCalls int
}

type fakeAccount struct {
	user     *identity.User
	password string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts: map[string]*fakeAccount{},
		sessions: map[string]*identity.User{},
		refresh:  map[string]*identity.User{},
	}
}

func (p *fakeProvider) addAccount(email, password string) *identity.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counter++
	user := &identity.User{ID: fmt.Sprintf("user-%d", p.counter), Email: email}
	p.accounts[email] = &fakeAccount{user: user, password: password}
	return user
}

func (p *fakeProvider) issueSession(user *identity.User) *identity.Session {
	p.counter++
	access := fmt.Sprintf("access-%d", p.counter)
	refreshTok := fmt.Sprintf("refresh-%d", p.counter)
	p.sessions[access] = user
	p.refresh[refreshTok] = user
	return &identity.Session{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    3600,
		RefreshToken: refreshTok,
		User:         user,
	}
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password string) (*identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[email]; exists {
		return nil, fmt.Errorf("%w: email already registered", identity.ErrInvalidCredentials)
	}
	p.counter++
	user := &identity.User{ID: fmt.Sprintf("user-%d", p.counter), Email: email}
	p.accounts[email] = &fakeAccount{user: user, password: password}
	return user, nil
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[email]
	if !ok || acct.password != password {
		return nil, identity.ErrInvalidCredentials
	}
	return p.issueSession(acct.user), nil
}

func (p *fakeProvider) UserFromToken(ctx context.Context, accessToken string) (*identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.sessions[accessToken]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return user, nil
}

func (p *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutCalls++
	delete(p.sessions, accessToken)
	return nil
}

func (p *fakeProvider) RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.refresh[refreshToken]
	if !ok {
		return nil, identity.ErrInvalidGrant
	}
	delete(p.refresh, refreshToken)
	return p.issueSession(user), nil
}

func (p *fakeProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return nil
}

func (p *fakeProvider) AdminUpdateUserPassword(ctx context.Context, userID, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, acct := range p.accounts {
		if acct.user.ID == userID {
			acct.password = newPassword
			return nil
		}
	}
	return identity.ErrUserNotFound
}

func (p *fakeProvider) OAuthAuthorizeURL(provider, redirectTo string) (string, error) {
	if provider != "google" && provider != "github" {
		return "", fmt.Errorf("%w: %q", identity.ErrUnsupportedProvider, provider)
	}
	return "https://id.example.com/auth/v1/authorize?provider=" + provider, nil
}

// fakeData is an in-memory stand-in for the provider's data REST surface,
// holding profiles and messages as generic rows.
type fakeData struct {
	mu       sync.Mutex
	profiles map[string]profile.Profile
	messages []chat.Message
	nextID   int64
}

func newFakeData() *fakeData {
	return &fakeData{profiles: map[string]profile.Profile{}}
}

func (d *fakeData) SelectRows(ctx context.Context, bearer, table string, filters map[string]string, order string, dest interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch table {
	case "profiles":
		var rows []profile.Profile
		if id, ok := filters["id"]; ok {
			if p, found := d.profiles[trimEq(id)]; found {
				rows = append(rows, p)
			}
		}
		return roundTrip(rows, dest)
	case "messages":
		var rows []chat.Message
		roomID := trimEq(filters["room_id"])
		for _, m := range d.messages {
			if m.RoomID == roomID {
				rows = append(rows, m)
			}
		}
		return roundTrip(rows, dest)
	}
	return fmt.Errorf("unknown table %q", table)
}

func (d *fakeData) InsertRow(ctx context.Context, bearer, table string, row, dest interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch table {
	case "profiles":
		var p profile.Profile
		if err := roundTrip(row, &p); err != nil {
			return err
		}
		d.profiles[p.ID] = p
		return roundTrip([]profile.Profile{p}, dest)
	case "messages":
		var m chat.Message
		if err := roundTrip(row, &m); err != nil {
			return err
		}
		d.nextID++
		m.ID = d.nextID
		m.CreatedAt = time.Now().UTC()
		d.messages = append(d.messages, m)
		return roundTrip([]chat.Message{m}, dest)
	}
	return fmt.Errorf("unknown table %q", table)
}

func (d *fakeData) UpdateRows(ctx context.Context, bearer, table string, filters map[string]string, patch, dest interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if table != "profiles" {
		return fmt.Errorf("unknown table %q", table)
	}
	id := trimEq(filters["id"])
	existing, ok := d.profiles[id]
	if !ok {
		return roundTrip([]profile.Profile{}, dest)
	}
	var upd profile.Update
	if err := roundTrip(patch, &upd); err != nil {
		return err
	}
	if upd.Username != nil {
		existing.Username = *upd.Username
	}
	if upd.AvatarURL != nil {
		existing.AvatarURL = *upd.AvatarURL
	}
	if upd.FullName != nil {
		existing.FullName = *upd.FullName
	}
	if upd.Bio != nil {
		existing.Bio = *upd.Bio
	}
	d.profiles[id] = existing
	return roundTrip([]profile.Profile{existing}, dest)
}

func trimEq(filter string) string {
	if len(filter) > 3 && filter[:3] == "eq." {
		return filter[3:]
	}
	return filter
}

func roundTrip(src, dest interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

type testEnv struct {
	server   *Server
	provider *fakeProvider
	data     *fakeData
	store    *storage.MemoryBlacklist
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	provider := newFakeProvider()
	store := storage.NewMemoryBlacklist()
	data := newFakeData()

	authenticator := auth.NewAuthenticator(provider, store, time.Second, logrus.NewEntry(log))
	server := NewServer(Options{
		Authenticator:    authenticator,
		Provider:         provider,
		Profiles:         profile.NewService(data),
		Chats:            chat.NewService(data, nil),
		Log:              logrus.NewEntry(log),
		ResetRedirectURL: "https://app.example.com/reset",
		OAuthRedirectURL: "https://app.example.com/callback",
		DefaultModel:     "llama2",
	})

	return &testEnv{server: server, provider: provider, data: data, store: store}
}

// doJSON performs a request against the server and decodes the JSON response
// into dest when non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path, bearer string, body, dest interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)

	if dest != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w
}

// newRequestWithHeader builds a request carrying a raw Authorization value,
// for malformed-header cases doJSON cannot express.
func newRequestWithHeader(t *testing.T, method, path, authorization string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", authorization)
	return req
}

func serveRaw(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)
	return w
}

// login is a shorthand for registering and signing in a fresh account.
func (e *testEnv) login(t *testing.T, email, password string) TokenResponse {
	t.Helper()
	e.provider.addAccount(email, password)

	var resp TokenResponse
	w := e.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: password}, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", w.Code, w.Body.String())
	}
	return resp
}
