package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/youhengzhou/bibo-notes/internal/apperr"
	"github.com/youhengzhou/bibo-notes/internal/boardservice"
	"github.com/youhengzhou/bibo-notes/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *boardservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *boardservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeErr maps service errors to HTTP status codes. Guard refusals
// (populated stack, definition-carrying root candidate, no children) are
// conflicts, not server errors.
func writeErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrStackNotEmpty):
		writeJSON(w, http.StatusConflict, errorBody("stack is not empty"))
	case errors.Is(err, apperr.ErrHasDefinition):
		writeJSON(w, http.StatusConflict, errorBody("note with a definition cannot become a root"))
	case errors.Is(err, apperr.ErrNoChildren):
		writeJSON(w, http.StatusConflict, errorBody("root has no children"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// GetBoard handles GET /board.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State(r.Context()))
}

// SetViewport handles PUT /viewport.
func (h *Handler) SetViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.svc.SetViewport(r.Context(), models.Viewport{X: req.X, Y: req.Y})
	w.WriteHeader(http.StatusNoContent)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note := h.svc.CreateNote(r.Context(), req.X, req.Y, req.Content)
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, ok := h.svc.GetNote(r.Context(), id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.svc.UpdateNote(r.Context(), id, req.Content, req.SplitRatio); err != nil {
		writeErr(w, err, "update note")
		return
	}
	note, _ := h.svc.GetNote(r.Context(), id)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		writeErr(w, err, "delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartDrag handles POST /notes/{id}/drag.
func (h *Handler) StartDrag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PointerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.StartDrag(r.Context(), id, req.X, req.Y); err != nil {
		writeErr(w, err, "start drag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DragMove handles POST /drag/move. The response carries the snap preview,
// null when no target qualifies. No drag in flight is not an error; lost
// pointer capture makes stray samples routine.
func (h *Handler) DragMove(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	preview := h.svc.UpdateDrag(r.Context(), req.X, req.Y)
	writeJSON(w, http.StatusOK, DragMoveResponse{Preview: preview})
}

// DragEnd handles POST /drag/end.
func (h *Handler) DragEnd(w http.ResponseWriter, r *http.Request) {
	h.svc.EndDrag(r.Context())
	writeJSON(w, http.StatusOK, h.svc.State(r.Context()))
}

// StartResize handles POST /notes/{id}/resize.
func (h *Handler) StartResize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.StartResize(r.Context(), id); err != nil {
		writeErr(w, err, "start resize")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResizeMove handles POST /resize/move.
func (h *Handler) ResizeMove(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	h.svc.UpdateResize(r.Context(), req.Width, req.Height)
	w.WriteHeader(http.StatusNoContent)
}

// ResizeEnd handles POST /resize/end.
func (h *Handler) ResizeEnd(w http.ResponseWriter, r *http.Request) {
	h.svc.EndResize(r.Context())
	writeJSON(w, http.StatusOK, h.svc.State(r.Context()))
}

// ToggleRoot handles POST /notes/{id}/root.
func (h *Handler) ToggleRoot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.ToggleRoot(r.Context(), id); err != nil {
		writeErr(w, err, "toggle root")
		return
	}
	note, _ := h.svc.GetNote(r.Context(), id)
	writeJSON(w, http.StatusOK, note)
}

// ToggleCollapse handles POST /notes/{id}/collapse.
func (h *Handler) ToggleCollapse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.ToggleCollapse(r.Context(), id); err != nil {
		writeErr(w, err, "toggle collapse")
		return
	}
	note, _ := h.svc.GetNote(r.Context(), id)
	writeJSON(w, http.StatusOK, note)
}

// TriggerShuffle handles POST /notes/{id}/shuffle.
func (h *Handler) TriggerShuffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	card, err := h.svc.TriggerShuffle(r.Context(), id)
	if err != nil {
		writeErr(w, err, "trigger shuffle")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// ExportOutline handles GET /export/outline.
func (h *Handler) ExportOutline(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(h.svc.ExportOutline(r.Context())))
}

// ExportTable handles GET /export/table.
func (h *Handler) ExportTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	_, _ = w.Write([]byte(h.svc.ExportTable(r.Context())))
}

// ImportOutline handles POST /import/outline. The body is raw outline text;
// ?replace=true clears the board first.
func (h *Handler) ImportOutline(w http.ResponseWriter, r *http.Request) {
	text, replace, ok := readImportBody(w, r)
	if !ok {
		return
	}
	created := h.svc.ImportOutline(r.Context(), text, replace)
	writeJSON(w, http.StatusOK, ImportResponse{Created: created})
}

// ImportTable handles POST /import/table. The body is raw CSV text.
func (h *Handler) ImportTable(w http.ResponseWriter, r *http.Request) {
	text, replace, ok := readImportBody(w, r)
	if !ok {
		return
	}
	created := h.svc.ImportTable(r.Context(), text, replace)
	writeJSON(w, http.StatusOK, ImportResponse{Created: created})
}

func readImportBody(w http.ResponseWriter, r *http.Request) (text string, replace, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return "", false, false
	}
	replace, _ = strconv.ParseBool(r.URL.Query().Get("replace"))
	return string(body), replace, true
}
