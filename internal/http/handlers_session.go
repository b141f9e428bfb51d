package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sankulkush/UTHBUS-sub001/internal/service"
)

// WatcherSource acquires live session watchers. Implemented by
// *service.WatcherRegistry.
type WatcherSource interface {
	SessionSource
	Acquire(ctx context.Context, token string) (*service.Watcher, error)
	Drop(token string)
}

// SessionHandlers exposes the live auth state to the browser and performs
// full logout (platform revocation, watcher teardown, cookie clear).
type SessionHandlers struct {
	Watchers WatcherSource
	Cookies  CookieWriter
	Logger   *slog.Logger // optional
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Session handles GET /api/auth/session: the snapshot the in-page guards and
// client scripts poll. Always 200; a missing or invalid cookie is just a
// signed-out snapshot.
func (h *SessionHandlers) Session(w http.ResponseWriter, r *http.Request) {
	token := h.Cookies.Read(r)
	WriteJSON(w, http.StatusOK, h.Watchers.Snapshot(r.Context(), token))
}

// Logout handles POST /api/auth/logout: revoke the platform session, drop
// the watcher, clear the cookie. The cookie is cleared even when revocation
// fails so the browser is never stuck signed in locally.
func (h *SessionHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.Cookies.Read(r)
	if token == "" {
		h.Cookies.Clear(w)
		WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	watcher, err := h.Watchers.Acquire(r.Context(), token)
	if err == nil {
		if logoutErr := watcher.Logout(r.Context()); logoutErr != nil {
			h.logger().ErrorContext(r.Context(), "session revocation failed", "error", logoutErr)
		}
	} else {
		h.logger().ErrorContext(r.Context(), "acquire watcher for logout failed", "error", err)
	}

	h.Watchers.Drop(token)
	h.Cookies.Clear(w)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func registerSessionRoutes(mux *http.ServeMux, h *SessionHandlers) {
	mux.HandleFunc("GET /api/auth/session", h.Session)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
}
