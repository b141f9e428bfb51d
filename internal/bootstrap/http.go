package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	uthbus "github.com/sankulkush/UTHBUS-sub001"
	"github.com/sankulkush/UTHBUS-sub001/config"
	httpx "github.com/sankulkush/UTHBUS-sub001/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config *config.AppConfig
	Stack  *AuthStack
	Logger *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg HTTPServerConfig) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	renderer, staticFS, err := buildAssets(appCfg.IsDev, logger)
	if err != nil {
		return nil, err
	}

	cookies := httpx.CookieWriter{
		Name:   appCfg.Auth.Cookie.Name,
		Domain: appCfg.HTTP.CookieDomain,
		MaxAge: appCfg.Auth.Cookie.MaxAge,
		Secure: !appCfg.IsDev,
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Auth:     cfg.Stack.Service,
		Watchers: cfg.Stack.Watchers,
		Renderer: renderer,
		Cookies:  cookies,
		StaticFS: staticFS,
		Logger:   logger,
	})

	// Order: Recover -> Logging -> EdgeGate -> Router
	h := httpx.EdgeGate(httpx.EdgeGateConfig{CookieName: cookies.Name})(router)
	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server, nil
}

// buildAssets selects disk assets in dev mode (for hot reloading) and the
// embedded filesystems otherwise.
func buildAssets(isDev bool, logger *slog.Logger) (*httpx.TemplateRenderer, fs.FS, error) {
	var templateFS, staticFS fs.FS
	if isDev {
		templateFS = os.DirFS("frontend/templates")
		staticFS = os.DirFS("frontend/static")
	} else {
		var err error
		templateFS, err = fs.Sub(uthbus.TemplateFS, "frontend/templates")
		if err != nil {
			return nil, nil, fmt.Errorf("embedded templates: %w", err)
		}
		staticFS, err = fs.Sub(uthbus.StaticFS, "frontend/static")
		if err != nil {
			return nil, nil, fmt.Errorf("embedded static assets: %w", err)
		}
	}

	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{
		TemplateFS: templateFS,
		DevMode:    isDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("template renderer: %w", err)
	}
	return renderer, staticFS, nil
}

// ShutdownHTTPServer gracefully shuts down the HTTP server and the live
// session watchers.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, stack *AuthStack, logger *slog.Logger) error {
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	if stack != nil && stack.Watchers != nil {
		stack.Watchers.Close()
	}

	if server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
