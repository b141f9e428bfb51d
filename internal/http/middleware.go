package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// EdgeGateConfig configures the cookie-presence gate in front of the operator
// pages.
type EdgeGateConfig struct {
	// CookieName is the session cookie to look for. Defaults to the relay
	// cookie name.
	CookieName string
	// CounterPrefix is the path prefix of the gated operator area.
	CounterPrefix string
	// LoginPath is where cookie-less counter requests are sent.
	LoginPath string
	// RegisterPath is the operator sign-up page.
	RegisterPath string
	// CounterHome is where already-signed-in visitors of the login and
	// register pages land.
	CounterHome string
}

func (c *EdgeGateConfig) applyDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.CounterPrefix == "" {
		c.CounterPrefix = "/operator/counter"
	}
	if c.LoginPath == "" {
		c.LoginPath = "/operator/login"
	}
	if c.RegisterPath == "" {
		c.RegisterPath = "/operator/register"
	}
	if c.CounterHome == "" {
		c.CounterHome = "/operator/counter"
	}
}

// EdgeGate returns a middleware implementing the coarse first-line check for
// the operator area. The check is cookie PRESENCE only; the cookie value is
// never validated here. A present-but-invalid cookie passes the gate and is
// caught by the in-page guards, so the gate can run without any upstream
// round trip.
func EdgeGate(cfg EdgeGateConfig) func(http.Handler) http.Handler {
	cfg.applyDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := r.Cookie(cfg.CookieName)
			hasCookie := err == nil

			path := r.URL.Path
			switch {
			case path == cfg.CounterPrefix || strings.HasPrefix(path, cfg.CounterPrefix+"/"):
				if !hasCookie {
					redirectToLogin(w, r, cfg.LoginPath)
					return
				}
			case path == cfg.LoginPath, path == cfg.RegisterPath:
				// Signed-in visitors skip the auth pages and resume where
				// they were headed, when the redirect target is safe.
				if hasCookie {
					target := safeRedirectPath(r.URL.Query().Get("redirect"))
					if target == "" {
						target = cfg.CounterHome
					}
					http.Redirect(w, r, target, http.StatusFound)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// redirectToLogin sends the visitor to the login page, preserving the
// originally requested path in the redirect query parameter.
func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath
	if dest := safeRedirectPath(r.URL.RequestURI()); dest != "" {
		target += "?redirect=" + url.QueryEscape(dest)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// safeRedirectPath accepts only same-site relative paths. Absolute URLs and
// scheme-relative ("//host") values are rejected so the redirect parameter
// cannot be turned into an open redirect.
func safeRedirectPath(dest string) string {
	if dest == "" || !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") {
		return ""
	}
	if strings.ContainsAny(dest, "\r\n") {
		return ""
	}
	return dest
}
