package devauth

import (
	"context"
	"sync"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
)

// ProfileConfig seeds the development profile store with one account.
type ProfileConfig struct {
	UID      string
	Email    string
	Role     domainauth.Role // defaults to operator
	Approved bool
}

// ProfileStore implements ports.ProfileStore in memory for local development.
// It starts seeded with the configured account so the counter pages work
// immediately; additional registrations live until the process exits.
type ProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domainauth.Profile
}

// NewProfileStore builds the seeded in-memory store.
func NewProfileStore(cfg ProfileConfig) *ProfileStore {
	store := &ProfileStore{profiles: make(map[string]domainauth.Profile)}
	if cfg.UID == "" {
		return store
	}

	role := cfg.Role
	if !role.Valid() {
		role = domainauth.RoleOperator
	}
	store.profiles[cfg.UID] = domainauth.Profile{
		UID:        cfg.UID,
		Email:      cfg.Email,
		Role:       role,
		Approved:   cfg.Approved,
		IsOperator: role == domainauth.RoleOperator,
	}
	return store
}

// Get returns the stored profile for uid.
func (s *ProfileStore) Get(_ context.Context, uid string) (domainauth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[uid]
	if !ok {
		return domainauth.Profile{}, apperrors.NotFoundf("profile %q not found", uid)
	}
	return profile, nil
}

// Create stores a new profile, rejecting duplicates like the real backends.
func (s *ProfileStore) Create(_ context.Context, profile domainauth.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.UID]; exists {
		return apperrors.Conflict("profile already exists")
	}
	s.profiles[profile.UID] = profile
	return nil
}

// SetApproval flips the approval flag for uid.
func (s *ProfileStore) SetApproval(_ context.Context, uid string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[uid]
	if !ok {
		return apperrors.NotFoundf("profile %q not found", uid)
	}
	profile.Approved = approved
	s.profiles[uid] = profile
	return nil
}
