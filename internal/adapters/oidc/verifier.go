package oidc

// Package oidc verifies session tokens against the identity platform using
// its published OIDC discovery document and JWKS. No verification happens
// locally beyond signature and expiry checks performed by go-oidc.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
	"golang.org/x/oauth2"
)

// VerifierConfig holds configuration for the OIDC token verifier.
type VerifierConfig struct {
	// DiscoveryURL is the issuer URL or its discovery document URL.
	DiscoveryURL string
	// ClientID is the expected token audience.
	ClientID string
	// HTTPClient is optional; a 30s-timeout client is used when nil.
	HTTPClient *http.Client
}

// Verifier implements ports.TokenVerifier over go-oidc.
type Verifier struct {
	provider *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
}

// NewVerifier performs OIDC discovery once and prepares the keyset-backed
// verifier.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	provider, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Verifier{
		provider: provider,
		verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// tokenClaims is the claim subset the edge needs from a verified token.
type tokenClaims struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}

// Verify checks signature, expiry, and audience, and maps claims to an
// Identity. Transport-level failures (unreachable JWKS) surface as upstream
// errors so callers can distinguish a broken platform from a bad token.
func (v *Verifier) Verify(ctx context.Context, token string) (domainauth.Identity, error) {
	if token == "" {
		return domainauth.Identity{}, apperrors.Unauthorized("Invalid token")
	}

	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		if isTransportError(err) {
			return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUpstream, "verify token")
		}
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "Invalid token")
	}

	var claims tokenClaims
	if claimsErr := idToken.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, apperrors.Wrap(claimsErr, apperrors.ErrCodeUnauthorized, "Invalid token")
	}
	if claims.Sub == "" {
		return domainauth.Identity{}, apperrors.Unauthorized("Invalid token")
	}

	expiresAt := idToken.Expiry
	if expiresAt.IsZero() && claims.ExpiresAt > 0 {
		expiresAt = time.Unix(claims.ExpiresAt, 0)
	}

	return domainauth.Identity{
		UID:       claims.Sub,
		Email:     claims.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// isTransportError reports whether the verification failure came from the
// network rather than the token itself.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "fetching keys")
}
