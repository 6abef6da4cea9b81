// Package profile manages user-profile records stored in the provider's
// profiles table. Requests carry the caller's bearer token so the provider's
// row-level security decides visibility; this service only shapes requests
// and responses.
package profile

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound indicates the profile does not exist or the provider's row
// security denied access; the two are indistinguishable from here.
var ErrNotFound = errors.New("profile: not found")

// Profile is one row of the profiles table. The id matches the identity
// provider's user id.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// Update carries a partial profile change; nil fields are left untouched.
type Update struct {
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

func (u Update) empty() bool {
	return u.Username == nil && u.AvatarURL == nil && u.FullName == nil && u.Bio == nil
}

// DataAPI is the slice of the provider's data REST surface this service uses.
type DataAPI interface {
	SelectRows(ctx context.Context, bearer, table string, filters map[string]string, order string, dest interface{}) error
	InsertRow(ctx context.Context, bearer, table string, row, dest interface{}) error
	UpdateRows(ctx context.Context, bearer, table string, filters map[string]string, patch, dest interface{}) error
}

// Service implements profile reads and writes over the data REST surface.
type Service struct {
	data DataAPI
}

// NewService creates a profile service.
func NewService(data DataAPI) *Service {
	return &Service{data: data}
}

// Get fetches a profile by user id.
func (s *Service) Get(ctx context.Context, bearer, userID string) (*Profile, error) {
	var rows []Profile
	err := s.data.SelectRows(ctx, bearer, "profiles", map[string]string{"id": "eq." + userID}, "", &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// Create inserts a fresh profile row for a newly signed-up user. With a
// Supabase backend a database trigger usually does this; the endpoint exists
// for providers without triggers.
func (s *Service) Create(ctx context.Context, bearer, userID, username string) (*Profile, error) {
	row := map[string]string{"id": userID}
	if username != "" {
		row["username"] = username
	}
	var rows []Profile
	if err := s.data.InsertRow(ctx, bearer, "profiles", row, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile: insert returned no row")
	}
	return &rows[0], nil
}

// UpdateOwn patches the caller's own profile row.
func (s *Service) UpdateOwn(ctx context.Context, bearer, userID string, update Update) (*Profile, error) {
	if update.empty() {
		return s.Get(ctx, bearer, userID)
	}
	var rows []Profile
	err := s.data.UpdateRows(ctx, bearer, "profiles", map[string]string{"id": "eq." + userID}, update, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}
