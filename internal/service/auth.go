package service

import (
	"context"
	"log/slog"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
	"github.com/sankulkush/UTHBUS-sub001/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Verifier ports.TokenVerifier
	Profiles ports.ProfileStore
	Cache    ports.TokenCache      // optional
	Sessions ports.SessionRevoker  // optional
	Logger   *slog.Logger
}

// AuthService orchestrates token verification, profile lookup, and session
// teardown by coordinating the identity platform adapters.
type AuthService struct {
	verifier ports.TokenVerifier
	profiles ports.ProfileStore
	cache    ports.TokenCache
	sessions ports.SessionRevoker
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		verifier: opts.Verifier,
		profiles: opts.Profiles,
		cache:    opts.Cache,
		sessions: opts.Sessions,
		logger:   logger,
	}
}

// VerifyToken checks the token against the identity platform and returns the
// embedded identity. This is the relay operation: verification is a
// pass-through to the external verifier, never local.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (domainauth.Identity, error) {
	if token == "" {
		return domainauth.Identity{}, apperrors.Unauthorized("Unauthorized")
	}
	return s.verifier.Verify(ctx, token)
}

// ResolvePrincipal verifies the token and merges in the profile record. A
// first sign-in without a profile creates a minimal rider record, matching
// the lifecycle rule that profiles are created once and kept forever.
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (domainauth.Principal, error) {
	if s.cache != nil {
		if principal, hit, err := s.cache.Get(ctx, token); err == nil && hit {
			return principal, nil
		} else if err != nil {
			s.logger.WarnContext(ctx, "token cache read failed", "error", err)
		}
	}

	identity, err := s.VerifyToken(ctx, token)
	if err != nil {
		return domainauth.Principal{}, err
	}

	profile, err := s.profiles.Get(ctx, identity.UID)
	if apperrors.IsNotFound(err) {
		profile = domainauth.Profile{
			UID:   identity.UID,
			Email: identity.Email,
			Role:  domainauth.RoleUser,
		}
		if createErr := s.profiles.Create(ctx, profile); createErr != nil && !apperrors.IsConflict(createErr) {
			return domainauth.Principal{}, createErr
		}
	} else if err != nil {
		return domainauth.Principal{}, err
	}

	principal := profile.Principal()

	if s.cache != nil {
		saveErr := s.cache.Save(ctx, ports.CacheEntry{
			Token:     token,
			Principal: principal,
			ExpiresAt: identity.ExpiresAt,
		})
		if saveErr != nil {
			s.logger.WarnContext(ctx, "token cache write failed", "error", saveErr)
		}
	}

	return principal, nil
}

// Snapshot resolves the token into the guard-facing auth state. All failure
// modes collapse into "no principal" (fail closed); guards never see errors.
func (s *AuthService) Snapshot(ctx context.Context, token string) domainauth.Snapshot {
	if token == "" {
		return domainauth.Snapshot{}
	}

	principal, err := s.ResolvePrincipal(ctx, token)
	if err != nil {
		if !apperrors.IsUnauthorized(err) {
			s.logger.WarnContext(ctx, "principal resolution failed, treating as signed out", "error", err)
		}
		return domainauth.Snapshot{}
	}

	return domainauth.Snapshot{Principal: &principal}
}

// Logout revokes the platform session for uid and drops the cached token.
func (s *AuthService) Logout(ctx context.Context, uid, token string) error {
	if s.cache != nil && token != "" {
		if err := s.cache.Delete(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "token cache delete failed", "error", err)
		}
	}

	if s.sessions == nil || uid == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, uid); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUpstream, "revoke session")
	}
	return nil
}

// RegisterOperatorInput groups parameters for operator registration.
type RegisterOperatorInput struct {
	Token         string
	CompanyName   string
	ContactNumber string
}

// RegisterOperator creates a pending operator profile for the token's
// subject. The profile starts unapproved; counter access stays gated until an
// admin flips the flag.
func (s *AuthService) RegisterOperator(ctx context.Context, in RegisterOperatorInput) (domainauth.Profile, error) {
	if in.CompanyName == "" {
		return domainauth.Profile{}, apperrors.ValidationField("companyName", "company name is required")
	}
	if in.ContactNumber == "" {
		return domainauth.Profile{}, apperrors.ValidationField("contactNumber", "contact number is required")
	}

	identity, err := s.VerifyToken(ctx, in.Token)
	if err != nil {
		return domainauth.Profile{}, err
	}

	profile := domainauth.Profile{
		UID:           identity.UID,
		Email:         identity.Email,
		Role:          domainauth.RoleOperator,
		CompanyName:   in.CompanyName,
		ContactNumber: in.ContactNumber,
		Approved:      false,
		IsOperator:    true,
	}
	if createErr := s.profiles.Create(ctx, profile); createErr != nil {
		return domainauth.Profile{}, createErr
	}

	// Registration changes the subject's role; a stale cached rider principal
	// must not outlive it.
	if s.cache != nil && in.Token != "" {
		if delErr := s.cache.Delete(ctx, in.Token); delErr != nil {
			s.logger.WarnContext(ctx, "token cache delete failed", "error", delErr)
		}
	}

	return profile, nil
}
