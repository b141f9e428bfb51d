package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sankulkush/UTHBUS-sub001/config"
	"github.com/sankulkush/UTHBUS-sub001/internal/adapters/devauth"
	"github.com/sankulkush/UTHBUS-sub001/internal/adapters/oidc"
	"github.com/sankulkush/UTHBUS-sub001/internal/adapters/profileapi"
	redisadapter "github.com/sankulkush/UTHBUS-sub001/internal/adapters/redis"
	"github.com/sankulkush/UTHBUS-sub001/internal/data"
	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	"github.com/sankulkush/UTHBUS-sub001/internal/ports"
	"github.com/sankulkush/UTHBUS-sub001/internal/service"
)

// AuthDeps contains everything needed to assemble the auth service.
type AuthDeps struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient // optional; disables caching and session events when nil
	DBPool      *pgxpool.Pool         // required when Auth.Profiles is postgres
	Logger      *slog.Logger
}

// AuthStack bundles the assembled auth service with its live-session registry.
type AuthStack struct {
	Service  *service.AuthService
	Watchers *service.WatcherRegistry
}

// BuildAuthStack wires verifier, profile store, cache, and session stream
// according to the configured mode and profile backend.
func BuildAuthStack(deps AuthDeps) (*AuthStack, error) {
	verifier, revoker, err := buildVerifier(deps)
	if err != nil {
		return nil, err
	}

	profiles, profileRevoker, err := buildProfileStore(deps)
	if err != nil {
		return nil, err
	}
	// The profile API revokes platform sessions; the dev verifier revokes its
	// own. Prefer whichever the active backend provides.
	if profileRevoker != nil {
		revoker = profileRevoker
	}

	var cache ports.TokenCache
	var events ports.SessionEvents
	if deps.RedisClient != nil {
		cache = redisadapter.NewTokenCache(deps.RedisClient, deps.Auth.CacheTTL)
		events = redisadapter.NewSessionStream(deps.RedisClient, deps.Logger)
	} else {
		// Watchers still resolve the initial snapshot; they just never hear
		// about remote sign-outs.
		events = nopSessionEvents{}
		if deps.Logger != nil {
			deps.Logger.Warn("redis not configured: token caching and session events disabled")
		}
	}

	svc := service.NewAuthService(service.AuthServiceOptions{
		Verifier: verifier,
		Profiles: profiles,
		Cache:    cache,
		Sessions: revoker,
		Logger:   deps.Logger,
	})

	watchers := service.NewWatcherRegistry(service.RegistryOptions{
		Events:   events,
		Resolver: svc,
		Logger:   deps.Logger,
	})

	return &AuthStack{Service: svc, Watchers: watchers}, nil
}

// nopSessionEvents satisfies ports.SessionEvents when no stream backend is
// configured. Subscriptions never emit.
type nopSessionEvents struct{}

func (nopSessionEvents) Subscribe(_ context.Context, _ string) (ports.Subscription, error) {
	return nopSubscription{events: make(chan domainauth.SessionEvent)}, nil
}

type nopSubscription struct {
	events chan domainauth.SessionEvent
}

func (s nopSubscription) Events() <-chan domainauth.SessionEvent { return s.events }
func (s nopSubscription) Close() error                           { close(s.events); return nil }

func buildVerifier(deps AuthDeps) (ports.TokenVerifier, ports.SessionRevoker, error) {
	switch deps.Auth.Mode {
	case config.AuthModeMock:
		v, err := devauth.NewVerifier(devauth.Config{
			UID:   deps.Auth.DevAuth.UID,
			Email: deps.Auth.DevAuth.Email,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dev auth verifier: %w", err)
		}
		return v, v, nil

	case config.AuthModeOIDC:
		v, err := oidc.NewVerifier(oidc.VerifierConfig{
			DiscoveryURL: deps.Auth.OIDC.DiscoveryURL,
			ClientID:     deps.Auth.OIDC.ClientID,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("oidc verifier: %w", err)
		}
		return v, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported auth mode %q", deps.Auth.Mode)
	}
}

func buildProfileStore(deps AuthDeps) (ports.ProfileStore, ports.SessionRevoker, error) {
	// Mock mode always uses the seeded in-memory store so local development
	// needs no profile backend at all.
	if deps.Auth.Mode == config.AuthModeMock {
		store := devauth.NewProfileStore(devauth.ProfileConfig{
			UID:      deps.Auth.DevAuth.UID,
			Email:    deps.Auth.DevAuth.Email,
			Role:     domainauth.Role(deps.Auth.DevAuth.Role),
			Approved: deps.Auth.DevAuth.Approved,
		})
		return store, nil, nil
	}

	switch deps.Auth.Profiles {
	case config.ProfileBackendAPI:
		client, err := profileapi.NewClient(profileapi.Config{
			BaseURL: deps.Auth.ProfileAPI.BaseURL,
			APIKey:  deps.Auth.ProfileAPI.APIKey,
			Timeout: deps.Auth.ProfileAPI.Timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("profile API client: %w", err)
		}
		return client, client, nil

	case config.ProfileBackendPostgres:
		if deps.DBPool == nil {
			return nil, nil, fmt.Errorf("profile backend %q requires a database connection", deps.Auth.Profiles)
		}
		return data.NewProfileRepo(deps.DBPool), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported profile backend %q", deps.Auth.Profiles)
	}
}
