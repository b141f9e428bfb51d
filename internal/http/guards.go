package httpx

import (
	"context"
	"net/http"
	"net/url"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
)

// SessionSource resolves the session cookie's token into the current auth
// state. *service.WatcherRegistry is the production implementation; the
// contract is error-free on purpose so guards always fail closed.
type SessionSource interface {
	Snapshot(ctx context.Context, token string) domainauth.Snapshot
}

// Requirement describes what a guarded page demands from the visitor.
type Requirement struct {
	// Role, when set, restricts the page to principals with that role.
	Role *domainauth.Role
	// RequireApproval additionally demands an approved operator. Only
	// meaningful together with RoleOperator.
	RequireApproval bool
}

// RequireRole builds a requirement for the given role.
func RequireRole(role domainauth.Role) Requirement {
	return Requirement{Role: &role}
}

// RequireApprovedOperator builds the counter-page requirement: operator role
// plus admin approval.
func RequireApprovedOperator() Requirement {
	role := domainauth.RoleOperator
	return Requirement{Role: &role, RequireApproval: true}
}

// GuardConfig configures the access guard middleware.
type GuardConfig struct {
	// Sessions resolves the cookie token into a snapshot.
	Sessions SessionSource
	// Cookies reads the session cookie.
	Cookies CookieWriter
	// Renderer serves the loading page inline while the first resolution is
	// in flight; the visitor stays on the requested URL.
	Renderer *TemplateRenderer
	// UnauthorizedPath receives signed-in visitors with the wrong role.
	UnauthorizedPath string
	// PendingApprovalPath receives unapproved operators.
	PendingApprovalPath string
}

func (c *GuardConfig) applyDefaults() {
	if c.UnauthorizedPath == "" {
		c.UnauthorizedPath = "/unauthorized"
	}
	if c.PendingApprovalPath == "" {
		c.PendingApprovalPath = "/operator/pending-approval"
	}
}

// renderLoading writes the loading indicator in place of the guarded page.
// The current URL doubles as the poll target so the reload lands back here.
func (c GuardConfig) renderLoading(w http.ResponseWriter, r *http.Request) {
	if c.Renderer == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	c.Renderer.Render(w, "loading.tmpl", pageData{
		Title:    "Signing in",
		Redirect: safeRedirectPath(r.URL.RequestURI()),
	})
}

// loginPathFor maps a required role to its sign-in page. Each audience has
// its own entry point, so a rider is never bounced to the operator login.
func loginPathFor(role *domainauth.Role) string {
	if role == nil {
		return "/login"
	}
	switch *role {
	case domainauth.RoleOperator:
		return "/operator/login"
	case domainauth.RoleAdmin:
		return "/admin/login"
	default:
		return "/login"
	}
}

// Guard returns a middleware enforcing the requirement on every request. The
// decision order is fixed: loading wins over everything, then
// authentication, then role, then operator approval. Any resolution failure
// inside the session source already surfaced as a signed-out snapshot, so a
// broken verifier locks the page rather than opening it.
func Guard(cfg GuardConfig, req Requirement) func(http.Handler) http.Handler {
	cfg.applyDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cfg.Cookies.Read(r)
			snap := cfg.Sessions.Snapshot(r.Context(), token)

			if snap.Loading {
				// The visitor stays on the requested URL while the first
				// resolution settles; the page polls the session endpoint
				// and reloads into this same path.
				cfg.renderLoading(w, r)
				return
			}

			if snap.Principal == nil {
				target := loginPathFor(req.Role)
				if dest := safeRedirectPath(r.URL.RequestURI()); dest != "" {
					target += "?redirect=" + url.QueryEscape(dest)
				}
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			principal := *snap.Principal
			if req.Role != nil && principal.Role != *req.Role {
				http.Redirect(w, r, cfg.UnauthorizedPath, http.StatusFound)
				return
			}

			if req.RequireApproval && !principal.IsApprovedOperator() {
				http.Redirect(w, r, cfg.PendingApprovalPath, http.StatusFound)
				return
			}

			ctx := SetPrincipalInContext(r.Context(), &principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
