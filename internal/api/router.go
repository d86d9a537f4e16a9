package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youhengzhou/bibo-notes/internal/boardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *boardservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Board state and viewport.
	r.Get("/board", h.GetBoard)
	r.Put("/viewport", h.SetViewport)

	// Notes CRUD.
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Hierarchy actions.
	r.Post("/notes/{id}/root", h.ToggleRoot)
	r.Post("/notes/{id}/collapse", h.ToggleCollapse)
	r.Post("/notes/{id}/shuffle", h.TriggerShuffle)

	// Drag session. One drag is in flight at a time, so move/end need no id.
	r.Post("/notes/{id}/drag", h.StartDrag)
	r.Post("/drag/move", h.DragMove)
	r.Post("/drag/end", h.DragEnd)

	// Resize session.
	r.Post("/notes/{id}/resize", h.StartResize)
	r.Post("/resize/move", h.ResizeMove)
	r.Post("/resize/end", h.ResizeEnd)

	// Export / import.
	r.Get("/export/outline", h.ExportOutline)
	r.Get("/export/table", h.ExportTable)
	r.Post("/import/outline", h.ImportOutline)
	r.Post("/import/table", h.ImportTable)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
