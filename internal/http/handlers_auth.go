package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
)

// TokenService is the slice of the auth service the relay endpoints need.
type TokenService interface {
	VerifyToken(ctx context.Context, token string) (domainauth.Identity, error)
}

// WatcherDropper tears down the live session watcher for a token. Implemented
// by *service.WatcherRegistry; optional on the handlers.
type WatcherDropper interface {
	Drop(token string)
}

// AuthHandlers implements the token relay endpoints: the browser owns the
// platform token, these endpoints move it in and out of the HTTP-only cookie
// and check it against the identity platform on demand.
type AuthHandlers struct {
	Svc      TokenService
	Cookies  CookieWriter
	Watchers WatcherDropper // optional
	Logger   *slog.Logger   // optional
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type setTokenRequest struct {
	Token string `json:"token"`
}

// SetToken handles POST /api/auth/set-token. The token arrives in the JSON
// body and leaves only as an HTTP-only cookie; the response body never echoes
// it.
func (h *AuthHandlers) SetToken(w http.ResponseWriter, r *http.Request) {
	var req setTokenRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		WriteError(w, http.StatusBadRequest, "Token is required")
		return
	}

	// Replacing the cookie invalidates any watcher keyed by the old token.
	if h.Watchers != nil {
		if old := h.Cookies.Read(r); old != "" && old != req.Token {
			h.Watchers.Drop(old)
		}
	}

	h.Cookies.Set(w, req.Token)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ClearToken handles POST /api/auth/clear-token. Clearing is idempotent: a
// request without a cookie still succeeds.
func (h *AuthHandlers) ClearToken(w http.ResponseWriter, r *http.Request) {
	if h.Watchers != nil {
		if token := h.Cookies.Read(r); token != "" {
			h.Watchers.Drop(token)
		}
	}

	h.Cookies.Clear(w)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type verifyTokenResponse struct {
	Valid bool   `json:"valid"`
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// VerifyToken handles GET /api/auth/verify-token. A missing cookie and an
// invalid token both come back 401, distinguished only by message; platform
// outages are 500 with a generic body so the caller cannot confuse "down"
// with "signed out".
func (h *AuthHandlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token := h.Cookies.Read(r)
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	identity, err := h.Svc.VerifyToken(r.Context(), token)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			WriteError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		h.logger().ErrorContext(r.Context(), "token verification failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	WriteJSON(w, http.StatusOK, verifyTokenResponse{
		Valid: true,
		UID:   identity.UID,
		Email: identity.Email,
	})
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/set-token", h.SetToken)
	mux.HandleFunc("POST /api/auth/clear-token", h.ClearToken)
	mux.HandleFunc("GET /api/auth/verify-token", h.VerifyToken)
}
