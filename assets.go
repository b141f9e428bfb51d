// Package uthbus provides embedded assets for production builds.
package uthbus

import "embed"

// Embedded assets for production builds.
// In dev mode the HTTP layer reads templates and static files from disk
// instead, so edits show up without a rebuild.

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
