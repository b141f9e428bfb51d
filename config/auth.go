package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOIDC verifies session tokens against the identity platform's
	// published keys (JWKS via OIDC discovery).
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses a config-driven verifier (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, mock)", v)
	}
}

// ProfileBackend selects where profile records live.
type ProfileBackend string

const (
	// ProfileBackendAPI reads profiles from the identity platform's REST API.
	ProfileBackendAPI ProfileBackend = "api"
	// ProfileBackendPostgres reads profiles from a self-hosted Postgres table.
	ProfileBackendPostgres ProfileBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for ProfileBackend.
func (p *ProfileBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "api", "postgres":
		*p = ProfileBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid ProfileBackend: %q (valid options: api, postgres)", v)
	}
}

// OIDCConfig contains identity platform verification configuration.
type OIDCConfig struct {
	// DiscoveryURL is the platform issuer or its discovery document URL.
	DiscoveryURL string `env:"DISCOVERY_URL"`

	// ClientID is the expected token audience.
	ClientID string `env:"CLIENT_ID" envDefault:"uthbus"`
}

// ProfileAPIConfig configures the identity platform's profile record API.
type ProfileAPIConfig struct {
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"10s"`
}

// DevAuthConfig controls the mock verifier identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UID      string `env:"UID"       envDefault:"dev-user"`
	Email    string `env:"EMAIL"     envDefault:"dev@example.com"`
	Role     string `env:"ROLE"      envDefault:"operator"`
	Approved bool   `env:"APPROVED"  envDefault:"true"`
}

// CookieConfig controls the session token cookie the relay endpoints manage.
type CookieConfig struct {
	// Name is the session cookie name.
	Name string `env:"NAME" envDefault:"auth-token"`

	// MaxAge is the cookie lifetime in seconds. Defaults to 7 days; expiry is
	// enforced by the cookie store itself, not by a server-side check.
	MaxAge int `env:"MAX_AGE" envDefault:"604800"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which token verifier to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Profiles selects the profile record backend.
	Profiles ProfileBackend `env:"PROFILE_BACKEND" envDefault:"api"`

	// ProfileAPI configuration (used when Profiles=api).
	ProfileAPI ProfileAPIConfig `envPrefix:"PROFILE_API_"`

	// Cookie configuration for the relayed session token.
	Cookie CookieConfig `envPrefix:"AUTH_COOKIE_"`

	// CacheTTL bounds how long a verified token stays cached.
	CacheTTL time.Duration `env:"AUTH_CACHE_TTL" envDefault:"5m"`
}

const maxCookieAge = 7 * 24 * 60 * 60 // 604800s, the contract's fixed lifetime

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Cookie.Name == "" {
		a.Cookie.Name = "auth-token"
	}
	if a.Cookie.MaxAge <= 0 || a.Cookie.MaxAge > maxCookieAge {
		a.Cookie.MaxAge = maxCookieAge
	}
	if a.CacheTTL <= 0 {
		a.CacheTTL = 5 * time.Minute
	}
}
