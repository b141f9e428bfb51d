package config

import "golang.org/x/net/publicsuffix"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://uthbus.example.com").
	// Used for generating absolute URLs in redirects to external pages.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
// A cookie domain equal to a public suffix (e.g. "com", "com.np") would be
// rejected by browsers; drop it rather than scope cookies too broadly.
func (h *HTTPConfig) Sanitize() {
	if h.CookieDomain == "" {
		return
	}
	if suffix, icann := publicsuffix.PublicSuffix(h.CookieDomain); icann && suffix == h.CookieDomain {
		h.CookieDomain = ""
	}
}
