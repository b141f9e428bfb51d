package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
)

// TokenVerifier checks a session token's signature and expiry against the
// identity platform and returns the embedded identity. Verification is never
// implemented locally; this is a pass-through to the external verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domainauth.Identity, error)
}

// SessionRevoker ends the platform-side session for a subject (sign-out).
type SessionRevoker interface {
	Revoke(ctx context.Context, uid string) error
}

// ProfileStore persists and retrieves profile records keyed by UID.
// Records are created once and never deleted by this service.
type ProfileStore interface {
	Get(ctx context.Context, uid string) (domainauth.Profile, error)
	Create(ctx context.Context, profile domainauth.Profile) error
	SetApproval(ctx context.Context, uid string, approved bool) error
}

// CacheEntry groups parameters for TokenCache.Save.
type CacheEntry struct {
	Token     string
	Principal domainauth.Principal
	ExpiresAt time.Time
}

// TokenCache caches verified principals keyed by token so repeated relay
// verifications do not hammer the identity platform. A miss is not an error.
type TokenCache interface {
	Get(ctx context.Context, token string) (domainauth.Principal, bool, error)
	Save(ctx context.Context, entry CacheEntry) error
	Delete(ctx context.Context, token string) error
}

// Subscription is a handle on a live session-change stream. Events are
// delivered in provider order; Close detaches the subscriber and releases the
// underlying stream resources.
type Subscription interface {
	Events() <-chan domainauth.SessionEvent
	Close() error
}

// SessionEvents exposes the identity platform's live session-change stream
// for a single subject.
type SessionEvents interface {
	Subscribe(ctx context.Context, uid string) (Subscription, error)
}
