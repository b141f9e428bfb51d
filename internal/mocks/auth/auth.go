package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
	"github.com/sankulkush/UTHBUS-sub001/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenVerifier  = (*StubVerifier)(nil)
	_ ports.ProfileStore   = (*MemoryProfileStore)(nil)
	_ ports.TokenCache     = (*MemoryTokenCache)(nil)
	_ ports.SessionEvents  = (*FakeSessionStream)(nil)
	_ ports.SessionRevoker = (*RevokerSpy)(nil)
)

// StubVerifier maps tokens to identities for predictable testing.
type StubVerifier struct {
	mu         sync.Mutex
	Identities map[string]domainauth.Identity
	// Err, when set, is returned for every token.
	Err error
	// Calls counts Verify invocations.
	Calls int
}

// NewStubVerifier creates a verifier that accepts the given token→identity map.
func NewStubVerifier(identities map[string]domainauth.Identity) *StubVerifier {
	if identities == nil {
		identities = make(map[string]domainauth.Identity)
	}
	return &StubVerifier{Identities: identities}
}

func (v *StubVerifier) Verify(_ context.Context, token string) (domainauth.Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Calls++
	if v.Err != nil {
		return domainauth.Identity{}, v.Err
	}
	identity, ok := v.Identities[token]
	if !ok {
		return domainauth.Identity{}, apperrors.Unauthorized("Invalid token")
	}
	return identity, nil
}

// MemoryProfileStore is an in-memory ports.ProfileStore.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domainauth.Profile
	// GetErr, when set, is returned by Get regardless of contents.
	GetErr error
}

// NewMemoryProfileStore seeds an in-memory store.
func NewMemoryProfileStore(profiles ...domainauth.Profile) *MemoryProfileStore {
	store := &MemoryProfileStore{profiles: make(map[string]domainauth.Profile)}
	for _, p := range profiles {
		store.profiles[p.UID] = p
	}
	return store
}

func (s *MemoryProfileStore) Get(_ context.Context, uid string) (domainauth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return domainauth.Profile{}, s.GetErr
	}
	p, ok := s.profiles[uid]
	if !ok {
		return domainauth.Profile{}, apperrors.NotFoundf("profile %q not found", uid)
	}
	return p, nil
}

func (s *MemoryProfileStore) Create(_ context.Context, profile domainauth.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.UID]; exists {
		return apperrors.Conflict("profile already exists")
	}
	profile.CreatedAt = time.Now()
	s.profiles[profile.UID] = profile
	return nil
}

func (s *MemoryProfileStore) SetApproval(_ context.Context, uid string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	if !ok {
		return apperrors.NotFoundf("profile %q not found", uid)
	}
	p.Approved = approved
	s.profiles[uid] = p
	return nil
}

// MemoryTokenCache is an in-memory ports.TokenCache.
type MemoryTokenCache struct {
	mu      sync.Mutex
	entries map[string]domainauth.Principal
}

// NewMemoryTokenCache creates an empty cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{entries: make(map[string]domainauth.Principal)}
}

func (c *MemoryTokenCache) Get(_ context.Context, token string) (domainauth.Principal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[token]
	return p, ok, nil
}

func (c *MemoryTokenCache) Save(_ context.Context, entry ports.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Token] = entry.Principal
	return nil
}

func (c *MemoryTokenCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
	return nil
}

// RevokerSpy records session revocations.
type RevokerSpy struct {
	mu      sync.Mutex
	Revoked []string
	Err     error
}

func (r *RevokerSpy) Revoke(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Revoked = append(r.Revoked, uid)
	return nil
}

// RevokedUIDs returns a copy of the recorded revocations.
func (r *RevokerSpy) RevokedUIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Revoked...)
}

// FakeSessionStream is a controllable ports.SessionEvents with an unsubscribe
// spy, for watcher lifecycle tests.
type FakeSessionStream struct {
	mu            sync.Mutex
	subscriptions []*FakeSubscription
	// SubscribeErr, when set, fails Subscribe.
	SubscribeErr error
}

// Subscribe hands out a fake subscription that the test can push events into.
func (f *FakeSessionStream) Subscribe(_ context.Context, uid string) (ports.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	sub := &FakeSubscription{
		UID:    uid,
		events: make(chan domainauth.SessionEvent, 16),
	}
	f.subscriptions = append(f.subscriptions, sub)
	return sub, nil
}

// Subscriptions returns all handed-out subscriptions.
func (f *FakeSessionStream) Subscriptions() []*FakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeSubscription(nil), f.subscriptions...)
}

// CloseCalls sums Close invocations across all subscriptions.
func (f *FakeSessionStream) CloseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, sub := range f.subscriptions {
		total += sub.closeCalls()
	}
	return total
}

// FakeSubscription is the test-controlled end of a session stream.
type FakeSubscription struct {
	UID string

	mu     sync.Mutex
	events chan domainauth.SessionEvent
	closed bool
	closes int
}

func (s *FakeSubscription) Events() <-chan domainauth.SessionEvent { return s.events }

// Push delivers an event to the subscriber.
func (s *FakeSubscription) Push(event domainauth.SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- event
}

func (s *FakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

func (s *FakeSubscription) closeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}
