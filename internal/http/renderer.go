package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t       *template.Template
	fsys    fs.FS
	devMode bool         // reparse templates on each render for hot reloading
	logger  *slog.Logger // for logging template errors
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing templates (required)
	DevMode    bool         // Enable template hot reloading
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
// In dev mode, TemplateFS should be os.DirFS("frontend/templates") so edits show up
// without a rebuild; in prod it is the embedded filesystem.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t, err := parseTemplates(cfg.TemplateFS)
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err))
		return nil, err
	}

	return &TemplateRenderer{
		t:       t,
		fsys:    cfg.TemplateFS,
		devMode: cfg.DevMode,
		logger:  logger,
	}, nil
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	return template.New("root").ParseFS(fsys,
		"*.tmpl",
		"pages/*.tmpl",
	)
}

// Render writes the named page template. The body is buffered so a template
// error mid-render produces a clean 500 instead of a truncated page.
func (r *TemplateRenderer) Render(w http.ResponseWriter, name string, data any) {
	t := r.t
	if r.devMode {
		fresh, err := parseTemplates(r.fsys)
		if err != nil {
			r.logger.Error("template reload failed", slog.Any("error", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		t = fresh
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template render failed",
			slog.String("template", name),
			slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		// Client gone; nothing to recover.
		return
	}
}
