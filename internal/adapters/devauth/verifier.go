package devauth

// Package devauth provides a simple, config-driven token verifier for local
// development. It accepts any non-empty token and returns the configured
// identity, so the edge can be exercised without a live identity platform.

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
)

// Config controls the dev verifier behavior.
type Config struct {
	UID          string
	Email        string
	TokenTTL     time.Duration // default 8h when zero
	RejectTokens []string      // tokens to treat as invalid, for testing 401 paths
}

// Verifier implements ports.TokenVerifier and ports.SessionRevoker for local
// development.
type Verifier struct {
	uid    string
	email  string
	ttl    time.Duration
	reject map[string]struct{}
}

// NewVerifier validates the config and constructs a dev verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.UID == "" {
		return nil, errors.New("dev auth UID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth email is required")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	reject := make(map[string]struct{}, len(cfg.RejectTokens))
	for _, tok := range cfg.RejectTokens {
		reject[tok] = struct{}{}
	}

	return &Verifier{uid: cfg.UID, email: cfg.Email, ttl: ttl, reject: reject}, nil
}

// Verify returns the configured identity for any non-empty, non-rejected token.
func (v *Verifier) Verify(_ context.Context, token string) (domainauth.Identity, error) {
	if token == "" {
		return domainauth.Identity{}, apperrors.Unauthorized("Invalid token")
	}
	if _, rejected := v.reject[token]; rejected {
		return domainauth.Identity{}, apperrors.Unauthorized("Invalid token")
	}

	return domainauth.Identity{
		UID:       v.uid,
		Email:     v.email,
		ExpiresAt: time.Now().Add(v.ttl),
	}, nil
}

// Revoke is a no-op in development.
func (v *Verifier) Revoke(_ context.Context, _ string) error { return nil }
