package httpx

import (
	"net/http"
)

// CookieWriter centralizes the session cookie contract: name, scope, lifetime,
// and flags stay identical across the set and clear paths so browsers always
// match the same cookie.
type CookieWriter struct {
	// Name is the session cookie name.
	Name string
	// Domain optionally widens the cookie across subdomains.
	Domain string
	// MaxAge is the cookie lifetime in seconds.
	MaxAge int
	// Secure marks the cookie HTTPS-only. Off in local development.
	Secure bool
}

// DefaultCookieName is the session cookie the relay endpoints manage.
const DefaultCookieName = "auth-token"

func (c CookieWriter) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

// Set writes the session cookie carrying the token.
func (c CookieWriter) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   c.MaxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear expires the session cookie. The attributes must mirror Set, otherwise
// the browser treats it as a different cookie and keeps the original.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Read returns the session token from the request cookie, or "" when absent.
func (c CookieWriter) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return cookie.Value
}
