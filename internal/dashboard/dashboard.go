// Package dashboard provides the chat UI and its HTTP/WebSocket API.
package dashboard

import (
	"github.com/go-chi/chi/v5"

	"github.com/magroup/magnus/internal/auth"
	"github.com/magroup/magnus/internal/chat"
	"github.com/magroup/magnus/internal/kb"
)

// Dashboard serves the chat page, the login endpoints, and the
// knowledge base API.
type Dashboard struct {
	engine *chat.Engine
	kb     *kb.Service
	auth   *auth.Service
}

// New creates a Dashboard.
func New(engine *chat.Engine, kbSvc *kb.Service, authSvc *auth.Service) *Dashboard {
	return &Dashboard{
		engine: engine,
		kb:     kbSvc,
		auth:   authSvc,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Post("/api/login", d.handleLogin)
	r.Post("/api/admin/login", d.handleAdminLogin)
	r.Post("/api/logout", d.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(d.auth.RequireSession)
		r.Get("/api/kb/status", d.handleKBStatus)
		r.Post("/api/kb/refresh", d.handleKBRefresh)
		r.Get("/api/chat/export", d.handleExport)
		r.Get("/transcript", d.handleTranscript)
		r.Get("/ws/chat", d.handleWebSocket)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.auth.RequireAdmin)
		r.Get("/api/admin/documents", d.handleAdminDocuments)
	})
}
