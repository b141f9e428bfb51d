package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
	"github.com/sankulkush/UTHBUS-sub001/internal/mocks"
	mockauth "github.com/sankulkush/UTHBUS-sub001/internal/mocks/auth"
	"github.com/sankulkush/UTHBUS-sub001/internal/ports"
	"github.com/sankulkush/UTHBUS-sub001/internal/service"
)

func TestAuthService_VerifyToken(t *testing.T) {
	identity := domainauth.Identity{
		UID:       "rider-1",
		Email:     "rider@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("empty token is unauthorized without calling the verifier", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		verifier := mocks.NewMockTokenVerifier(ctrl)

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: verifier,
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		_, err := svc.VerifyToken(context.Background(), "")
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
		assert.Equal(t, "Unauthorized", err.Error())
	})

	t.Run("passes the token through to the verifier", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		verifier := mocks.NewMockTokenVerifier(ctrl)
		verifier.EXPECT().Verify(gomock.Any(), "tok-1").Return(identity, nil)

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: verifier,
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		got, err := svc.VerifyToken(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, identity, got)
	})

	t.Run("verifier rejection surfaces unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		verifier := mocks.NewMockTokenVerifier(ctrl)
		verifier.EXPECT().
			Verify(gomock.Any(), "bad").
			Return(domainauth.Identity{}, apperrors.Unauthorized("Invalid token"))

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: verifier,
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		_, err := svc.VerifyToken(context.Background(), "bad")
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
		assert.Equal(t, "Invalid token", err.Error())
	})
}

func TestAuthService_ResolvePrincipal(t *testing.T) {
	identity := domainauth.Identity{
		UID:       "rider-1",
		Email:     "rider@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("cache hit skips verification entirely", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		verifier := mocks.NewMockTokenVerifier(ctrl) // no EXPECT: must not be called

		cache := mockauth.NewMemoryTokenCache()
		require.NoError(t, cache.Save(context.Background(), ports.CacheEntry{
			Token:     "tok-1",
			Principal: domainauth.Principal{UID: "rider-1", Email: "rider@example.com", Role: domainauth.RoleUser},
			ExpiresAt: identity.ExpiresAt,
		}))

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: verifier,
			Profiles: mockauth.NewMemoryProfileStore(),
			Cache:    cache,
		})

		principal, err := svc.ResolvePrincipal(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "rider-1", principal.UID)
	})

	t.Run("existing profile is merged and cached", func(t *testing.T) {
		verifier := mockauth.NewStubVerifier(map[string]domainauth.Identity{"tok-op": {
			UID:       "op-1",
			Email:     "op@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		}})
		profiles := mockauth.NewMemoryProfileStore(domainauth.Profile{
			UID:           "op-1",
			Email:         "op@example.com",
			Role:          domainauth.RoleOperator,
			CompanyName:   "Hill Lines",
			ContactNumber: "9800000000",
			Approved:      true,
			IsOperator:    true,
		})
		cache := mockauth.NewMemoryTokenCache()

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: verifier,
			Profiles: profiles,
			Cache:    cache,
		})

		principal, err := svc.ResolvePrincipal(context.Background(), "tok-op")
		require.NoError(t, err)
		require.NotNil(t, principal.Operator)
		assert.Equal(t, "Hill Lines", principal.Operator.CompanyName)
		assert.True(t, principal.IsApprovedOperator())

		cached, hit, err := cache.Get(context.Background(), "tok-op")
		require.NoError(t, err)
		require.True(t, hit)
		assert.Equal(t, principal, cached)
	})

	t.Run("first sign-in creates a minimal rider profile", func(t *testing.T) {
		verifier := mockauth.NewStubVerifier(map[string]domainauth.Identity{"tok-1": identity})
		profiles := mockauth.NewMemoryProfileStore()

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: verifier,
			Profiles: profiles,
		})

		principal, err := svc.ResolvePrincipal(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleUser, principal.Role)
		assert.Nil(t, principal.Operator)

		stored, err := profiles.Get(context.Background(), "rider-1")
		require.NoError(t, err)
		assert.Equal(t, "rider@example.com", stored.Email)
	})

	t.Run("concurrent first sign-in tolerates a create conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockProfileStore(ctrl)
		store.EXPECT().
			Get(gomock.Any(), "rider-1").
			Return(domainauth.Profile{}, apperrors.NotFound("profile not found"))
		store.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(apperrors.Conflict("profile already exists"))

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(map[string]domainauth.Identity{"tok-1": identity}),
			Profiles: store,
		})

		principal, err := svc.ResolvePrincipal(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "rider-1", principal.UID)
	})

	t.Run("profile store outage propagates", func(t *testing.T) {
		profiles := mockauth.NewMemoryProfileStore()
		profiles.GetErr = apperrors.Upstream("profile store unavailable")

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(map[string]domainauth.Identity{"tok-1": identity}),
			Profiles: profiles,
		})

		_, err := svc.ResolvePrincipal(context.Background(), "tok-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsUpstream(err))
	})
}

func TestAuthService_Snapshot(t *testing.T) {
	identity := domainauth.Identity{
		UID:       "rider-1",
		Email:     "rider@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("empty token is signed out", func(t *testing.T) {
		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(nil),
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		snap := svc.Snapshot(context.Background(), "")
		assert.False(t, snap.Loading)
		assert.Nil(t, snap.Principal)
	})

	t.Run("invalid token is signed out, not an error", func(t *testing.T) {
		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(nil),
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		snap := svc.Snapshot(context.Background(), "forged")
		assert.Nil(t, snap.Principal)
	})

	t.Run("upstream outage fails closed", func(t *testing.T) {
		verifier := mockauth.NewStubVerifier(nil)
		verifier.Err = apperrors.Upstream("identity platform unreachable")

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: verifier,
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		snap := svc.Snapshot(context.Background(), "tok-1")
		assert.Nil(t, snap.Principal)
	})

	t.Run("valid token yields the principal", func(t *testing.T) {
		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(map[string]domainauth.Identity{"tok-1": identity}),
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		snap := svc.Snapshot(context.Background(), "tok-1")
		require.NotNil(t, snap.Principal)
		assert.Equal(t, "rider-1", snap.Principal.UID)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("drops the cached token and revokes the session", func(t *testing.T) {
		cache := mockauth.NewMemoryTokenCache()
		require.NoError(t, cache.Save(context.Background(), ports.CacheEntry{
			Token:     "tok-1",
			Principal: domainauth.Principal{UID: "rider-1", Role: domainauth.RoleUser},
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		revoker := &mockauth.RevokerSpy{}

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(nil),
			Profiles: mockauth.NewMemoryProfileStore(),
			Cache:    cache,
			Sessions: revoker,
		})

		require.NoError(t, svc.Logout(context.Background(), "rider-1", "tok-1"))
		assert.Equal(t, []string{"rider-1"}, revoker.RevokedUIDs())

		_, hit, err := cache.Get(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("revoke failure maps to upstream", func(t *testing.T) {
		revoker := &mockauth.RevokerSpy{Err: assert.AnError}

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(nil),
			Profiles: mockauth.NewMemoryProfileStore(),
			Sessions: revoker,
		})

		err := svc.Logout(context.Background(), "rider-1", "tok-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsUpstream(err))
	})

	t.Run("no revoker configured is a no-op", func(t *testing.T) {
		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(nil),
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		assert.NoError(t, svc.Logout(context.Background(), "rider-1", "tok-1"))
	})
}

func TestAuthService_RegisterOperator(t *testing.T) {
	identity := domainauth.Identity{
		UID:       "op-1",
		Email:     "op@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("requires company name and contact number", func(t *testing.T) {
		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(nil),
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		_, err := svc.RegisterOperator(context.Background(), service.RegisterOperatorInput{
			Token:         "tok-op",
			ContactNumber: "9800000000",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "companyName", apperrors.GetField(err))

		_, err = svc.RegisterOperator(context.Background(), service.RegisterOperatorInput{
			Token:       "tok-op",
			CompanyName: "Hill Lines",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "contactNumber", apperrors.GetField(err))
	})

	t.Run("creates an unapproved operator profile and drops the cached token", func(t *testing.T) {
		profiles := mockauth.NewMemoryProfileStore()
		cache := mockauth.NewMemoryTokenCache()
		require.NoError(t, cache.Save(context.Background(), ports.CacheEntry{
			Token:     "tok-op",
			Principal: domainauth.Principal{UID: "op-1", Role: domainauth.RoleUser},
			ExpiresAt: identity.ExpiresAt,
		}))

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(map[string]domainauth.Identity{"tok-op": identity}),
			Profiles: profiles,
			Cache:    cache,
		})

		profile, err := svc.RegisterOperator(context.Background(), service.RegisterOperatorInput{
			Token:         "tok-op",
			CompanyName:   "Hill Lines",
			ContactNumber: "9800000000",
		})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleOperator, profile.Role)
		assert.False(t, profile.Approved)
		assert.True(t, profile.IsOperator)

		// The stale rider principal must not survive the role change.
		_, hit, err := cache.Get(context.Background(), "tok-op")
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("duplicate registration surfaces as conflict", func(t *testing.T) {
		profiles := mockauth.NewMemoryProfileStore(domainauth.Profile{
			UID:  "op-1",
			Role: domainauth.RoleOperator,
		})

		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(map[string]domainauth.Identity{"tok-op": identity}),
			Profiles: profiles,
		})

		_, err := svc.RegisterOperator(context.Background(), service.RegisterOperatorInput{
			Token:         "tok-op",
			CompanyName:   "Hill Lines",
			ContactNumber: "9800000000",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects an invalid token before touching the store", func(t *testing.T) {
		svc := service.NewAuthService(service.AuthServiceOptions{
			Verifier: mockauth.NewStubVerifier(nil),
			Profiles: mockauth.NewMemoryProfileStore(),
		})

		_, err := svc.RegisterOperator(context.Background(), service.RegisterOperatorInput{
			Token:         "forged",
			CompanyName:   "Hill Lines",
			ContactNumber: "9800000000",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}
