package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/youhengzhou/bibo-notes/internal/board"
	"github.com/youhengzhou/bibo-notes/internal/boardservice"
	"github.com/youhengzhou/bibo-notes/internal/models"
)

// BoardState is the full board payload (aliased from the service layer).
type BoardState = boardservice.State

// SnapPreview is the drag preview payload (aliased from the engine).
type SnapPreview = board.SnapPreview

// ReviewCard is the shuffle overlay payload (aliased from the engine).
type ReviewCard = board.ReviewCard

// Note is the note payload (aliased from the domain layer).
type Note = models.Note

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Content string  `json:"content"`
}

// UpdateNoteRequest is the request body for editing a note. SplitRatio is
// optional; when present it must be a valid divider position.
type UpdateNoteRequest struct {
	Content    string   `json:"content"`
	SplitRatio *float64 `json:"split_ratio,omitempty"`
}

// Validate validates the update request.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SplitRatio, validation.Min(0.0), validation.Max(1.0)),
	)
}

// PointerRequest carries a pointer sample for drag start and move.
type PointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ResizeRequest carries live dimensions during a resize.
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate validates the resize request.
func (r ResizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Width, validation.Min(0.0)),
		validation.Field(&r.Height, validation.Min(0.0)),
	)
}

// ViewportRequest carries the board pan offset.
type ViewportRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DragMoveResponse wraps the snap preview; Preview is null when no root
// qualifies as a target.
type DragMoveResponse struct {
	Preview *SnapPreview `json:"preview"`
}

// ImportResponse reports how many notes an import created.
type ImportResponse struct {
	Created int `json:"created"`
}
