package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
	"github.com/sankulkush/UTHBUS-sub001/internal/service"
)

// RegistrationService is the slice of the auth service the operator sign-up
// page needs.
type RegistrationService interface {
	RegisterOperator(ctx context.Context, in service.RegisterOperatorInput) (domainauth.Profile, error)
}

// PageHandlers serves the server-rendered pages around the auth flows.
type PageHandlers struct {
	Renderer *TemplateRenderer
	Auth     RegistrationService
	Cookies  CookieWriter
	Logger   *slog.Logger // optional
}

// pageData is the template payload shared by all pages.
type pageData struct {
	Title     string
	Principal *domainauth.Principal
	Redirect  string
	Error     string
	Form      map[string]string
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	if data.Principal == nil {
		if p, ok := GetPrincipalFromContext(r.Context()); ok {
			data.Principal = p
		}
	}
	h.Renderer.Render(w, name, data)
}

// Home handles GET /.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home.tmpl", pageData{Title: "UthBus"})
}

// Login handles GET /login, the rider sign-in page.
func (h *PageHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.tmpl", pageData{
		Title:    "Sign in",
		Redirect: safeRedirectPath(r.URL.Query().Get("redirect")),
	})
}

// OperatorLogin handles GET /operator/login.
func (h *PageHandlers) OperatorLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "operator_login.tmpl", pageData{
		Title:    "Operator sign in",
		Redirect: safeRedirectPath(r.URL.Query().Get("redirect")),
	})
}

// AdminLogin handles GET /admin/login.
func (h *PageHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin_login.tmpl", pageData{
		Title:    "Admin sign in",
		Redirect: safeRedirectPath(r.URL.Query().Get("redirect")),
	})
}

// OperatorRegisterForm handles GET /operator/register.
func (h *PageHandlers) OperatorRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "operator_register.tmpl", pageData{Title: "Operator registration"})
}

// OperatorRegister handles POST /operator/register. A successful registration
// lands on the pending-approval page; the new profile stays unapproved until
// an admin clears it.
func (h *PageHandlers) OperatorRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegisterError(w, r, "Invalid form submission", nil)
		return
	}

	form := map[string]string{
		"company_name":   r.PostFormValue("company_name"),
		"contact_number": r.PostFormValue("contact_number"),
	}

	token := h.Cookies.Read(r)
	if token == "" {
		http.Redirect(w, r, "/operator/login?redirect="+url.QueryEscape("/operator/register"), http.StatusFound)
		return
	}

	_, err := h.Auth.RegisterOperator(r.Context(), service.RegisterOperatorInput{
		Token:         token,
		CompanyName:   form["company_name"],
		ContactNumber: form["contact_number"],
	})
	switch {
	case err == nil:
		http.Redirect(w, r, "/operator/pending-approval", http.StatusSeeOther)
	case apperrors.IsValidation(err):
		h.renderRegisterError(w, r, err.Error(), form)
	case apperrors.IsUnauthorized(err):
		http.Redirect(w, r, "/operator/login?redirect="+url.QueryEscape("/operator/register"), http.StatusFound)
	case apperrors.IsConflict(err):
		h.renderRegisterError(w, r, "An operator profile already exists for this account", form)
	default:
		if h.Logger != nil {
			h.Logger.ErrorContext(r.Context(), "operator registration failed", "error", err)
		}
		h.renderRegisterError(w, r, "Registration is temporarily unavailable, please try again", form)
	}
}

func (h *PageHandlers) renderRegisterError(w http.ResponseWriter, r *http.Request, message string, form map[string]string) {
	h.render(w, r, "operator_register.tmpl", pageData{
		Title: "Operator registration",
		Error: message,
		Form:  form,
	})
}

// CounterDashboard handles GET /operator/counter. It sits behind the
// approved-operator guard; the principal is always present here.
func (h *PageHandlers) CounterDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "counter.tmpl", pageData{Title: "Counter"})
}

// PendingApproval handles GET /operator/pending-approval.
func (h *PageHandlers) PendingApproval(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pending_approval.tmpl", pageData{Title: "Awaiting approval"})
}

// Unauthorized handles GET /unauthorized.
func (h *PageHandlers) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "unauthorized.tmpl", pageData{Title: "Not allowed"})
}

// Loading handles GET /loading, shown while the first session resolution is
// in flight. The page polls /api/auth/session and follows redirect once the
// state settles.
func (h *PageHandlers) Loading(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "loading.tmpl", pageData{
		Title:    "Signing in",
		Redirect: safeRedirectPath(r.URL.Query().Get("redirect")),
	})
}

// SignedOut handles GET /signed-out.
func (h *PageHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signed_out.tmpl", pageData{Title: "Signed out"})
}
