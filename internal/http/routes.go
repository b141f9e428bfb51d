package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	"github.com/sankulkush/UTHBUS-sub001/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     *service.AuthService
	Watchers WatcherSource
	Renderer *TemplateRenderer
	Cookies  CookieWriter
	// StaticFS serves /static/ assets; nil disables the route.
	StaticFS fs.FS
	Logger   *slog.Logger // optional
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:      services.Auth,
		Cookies:  services.Cookies,
		Watchers: services.Watchers,
		Logger:   services.Logger,
	}
	sessionHandlers := &SessionHandlers{
		Watchers: services.Watchers,
		Cookies:  services.Cookies,
		Logger:   services.Logger,
	}
	pageHandlers := &PageHandlers{
		Renderer: services.Renderer,
		Auth:     services.Auth,
		Cookies:  services.Cookies,
		Logger:   services.Logger,
	}

	registerAuthRoutes(mux, authHandlers)
	registerSessionRoutes(mux, sessionHandlers)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.StaticFS != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(services.StaticFS)))
	}

	registerPageRoutes(mux, pageHandlers, GuardConfig{
		Sessions: services.Watchers,
		Cookies:  services.Cookies,
		Renderer: services.Renderer,
	})

	return mux
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers, guardCfg GuardConfig) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /login", h.Login)
	mux.HandleFunc("GET /admin/login", h.AdminLogin)
	mux.HandleFunc("GET /operator/login", h.OperatorLogin)
	mux.HandleFunc("GET /operator/register", h.OperatorRegisterForm)
	mux.HandleFunc("POST /operator/register", h.OperatorRegister)
	mux.HandleFunc("GET /unauthorized", h.Unauthorized)
	mux.HandleFunc("GET /loading", h.Loading)
	mux.HandleFunc("GET /signed-out", h.SignedOut)

	// The functional counter pages demand an approved operator; the
	// pending-approval page only needs the operator role.
	counterGuard := Guard(guardCfg, RequireApprovedOperator())
	mux.Handle("GET /operator/counter", counterGuard(http.HandlerFunc(h.CounterDashboard)))
	mux.Handle("GET /operator/counter/", counterGuard(http.HandlerFunc(h.CounterDashboard)))

	pendingGuard := Guard(guardCfg, RequireRole(domainauth.RoleOperator))
	mux.Handle("GET /operator/pending-approval", pendingGuard(http.HandlerFunc(h.PendingApproval)))
}
