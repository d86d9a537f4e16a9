// Package boardservice coordinates the board engine, persistence, the
// outline mirror, and event publication. Every operation runs under one
// mutex: the board's interaction model is single-threaded by design, so the
// service serializes the HTTP and MCP surfaces onto it.
package boardservice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/youhengzhou/bibo-notes/internal/board"
	"github.com/youhengzhou/bibo-notes/internal/models"
	"github.com/youhengzhou/bibo-notes/internal/store"
	"github.com/youhengzhou/bibo-notes/internal/transfer"
)

// EventFunc receives a change notification after each committed mutation.
// kind is one of "note.created", "note.updated", "note.deleted",
// "board.imported". id is the affected note id, or "" for board-wide events.
type EventFunc func(kind, id string)

// MirrorWriter receives the outline rendering of the board after each
// committed mutation.
type MirrorWriter interface {
	Write(text string) error
}

// State is the full board payload handed to renderers.
type State struct {
	Notes    []models.Note   `json:"notes"`
	Viewport models.Viewport `json:"viewport"`
}

// Service serializes board operations and runs the commit pipeline:
// mutate, persist snapshot, mirror, publish.
type Service struct {
	mu     sync.Mutex
	board  *board.Board
	db     *store.DB
	mirror MirrorWriter
	events EventFunc
}

// NewService creates a board service. db, mirror, and events may each be
// nil; the corresponding commit step is skipped.
func NewService(b *board.Board, db *store.DB, mirror MirrorWriter, events EventFunc) *Service {
	return &Service{board: b, db: db, mirror: mirror, events: events}
}

// Load restores the board from the persisted snapshot.
func (s *Service) Load(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, vp, err := s.db.Load()
	if err != nil {
		return err
	}
	s.board.Restore(notes, vp)
	return nil
}

// State returns the full note collection and viewport.
func (s *Service) State(_ context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Notes: s.board.Notes(), Viewport: s.board.Viewport()}
}

// GetNote returns a copy of one note.
func (s *Service) GetNote(_ context.Context, id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.board.Get(id)
	if n == nil {
		return models.Note{}, false
	}
	return *n, true
}

// CreateNote adds a standalone note and commits.
func (s *Service) CreateNote(_ context.Context, x, y float64, content string) models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.board.CreateNote(x, y, content)
	s.commit("note.created", n.ID)
	return *n
}

// UpdateNote replaces content and, when ratio is non-nil, the stored
// term/definition split ratio.
func (s *Service) UpdateNote(_ context.Context, id, content string, ratio *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.SetContent(id, content); err != nil {
		return err
	}
	if ratio != nil {
		if err := s.board.SetSplitRatio(id, *ratio); err != nil {
			return err
		}
	}
	s.commit("note.updated", id)
	return nil
}

// DeleteNote removes a note and commits.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.DeleteNote(id); err != nil {
		return err
	}
	s.commit("note.deleted", id)
	return nil
}

// StartDrag begins a drag. Detaching a stacked note is already a visible
// model change, so it commits immediately.
func (s *Service) StartDrag(_ context.Context, id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.StartDrag(id, x, y); err != nil {
		return err
	}
	s.commit("note.updated", id)
	return nil
}

// UpdateDrag tracks the pointer and returns the current snap preview (nil
// when none). Pure preview: nothing is persisted until the drag ends.
func (s *Service) UpdateDrag(_ context.Context, x, y float64) *board.SnapPreview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.UpdateDrag(x, y)
}

// EndDrag commits the drag per the attach rules. Safe to call without a
// preceding move or even without an active drag.
func (s *Service) EndDrag(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := s.board.EndDrag(); id != "" {
		s.commit("note.updated", id)
	}
}

// StartResize begins a resize session.
func (s *Service) StartResize(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.StartResize(id)
}

// UpdateResize applies clamped live dimensions.
func (s *Service) UpdateResize(_ context.Context, width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.UpdateResize(width, height)
}

// EndResize commits the resize session.
func (s *Service) EndResize(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := s.board.EndResize(); id != "" {
		s.commit("note.updated", id)
	}
}

// ToggleRoot flips standalone/root and commits.
func (s *Service) ToggleRoot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.ToggleRoot(id); err != nil {
		return err
	}
	s.commit("note.updated", id)
	return nil
}

// ToggleCollapse flips a stack's visibility and commits.
func (s *Service) ToggleCollapse(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.ToggleCollapse(id); err != nil {
		return err
	}
	s.commit("note.updated", id)
	return nil
}

// TriggerShuffle advances a root's flashcard cycle and commits (the first
// trigger forces the root collapsed, which is a model change).
func (s *Service) TriggerShuffle(_ context.Context, id string) (*board.ReviewCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, err := s.board.TriggerShuffle(id)
	if err != nil {
		return nil, err
	}
	s.commit("note.updated", id)
	return card, nil
}

// SetViewport stores the pan offset and commits.
func (s *Service) SetViewport(_ context.Context, vp models.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.SetViewport(vp)
	s.commit("board.updated", "")
}

// ExportOutline renders the board in the outline grammar.
func (s *Service) ExportOutline(_ context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return transfer.ExportOutline(transfer.FromBoard(s.board))
}

// ExportTable renders the board in the tabular grammar.
func (s *Service) ExportTable(_ context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return transfer.ExportTable(transfer.FromBoard(s.board))
}

// ImportOutline parses outline text onto the board and commits. Returns the
// number of notes created.
func (s *Service) ImportOutline(_ context.Context, text string, replace bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := transfer.Apply(s.board, transfer.ParseOutline(text), replace)
	s.commit("board.imported", "")
	return created
}

// ImportTable parses CSV text onto the board and commits.
func (s *Service) ImportTable(_ context.Context, text string, replace bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := transfer.Apply(s.board, transfer.ParseTable(text), replace)
	s.commit("board.imported", "")
	return created
}

// ImportFromMirror replaces the board with an externally edited outline
// file. The mirror write step is skipped so the watcher never re-triggers
// on the server's own output.
func (s *Service) ImportFromMirror(_ context.Context, text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := transfer.Apply(s.board, transfer.ParseOutline(text), true)
	s.persist()
	s.publish("board.imported", "")
	return created
}

// commit runs the persistence hook pipeline after a committed mutation.
// Persistence is best effort: failures are logged, never surfaced to the
// interaction that triggered them.
func (s *Service) commit(kind, id string) {
	s.persist()
	if s.mirror != nil {
		text := transfer.ExportOutline(transfer.FromBoard(s.board))
		if err := s.mirror.Write(text); err != nil {
			slog.Warn("mirror write failed", slog.String("error", err.Error()))
		}
	}
	s.publish(kind, id)
}

func (s *Service) persist() {
	if s.db == nil {
		return
	}
	if err := s.db.Save(s.board.Notes(), s.board.Viewport()); err != nil {
		slog.Warn("snapshot save failed", slog.String("error", err.Error()))
	}
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events(kind, id)
	}
}
