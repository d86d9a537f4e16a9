// Package board implements the spatial hierarchy and drag-interaction
// engine: a flat set of notes with a two-level root/child hierarchy,
// pointer-driven drag and resize sessions, stack reflow, and the collapse
// and shuffle state machines.
//
// The board is not safe for concurrent use; callers serialize access
// (the service layer holds a single mutex around every operation).
package board

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/youhengzhou/bibo-notes/internal/apperr"
	"github.com/youhengzhou/bibo-notes/internal/models"
)

// Board owns the full note collection and all interaction state. Interaction
// state (drag session, resize session, shuffle reviews, z counter) lives here
// rather than in package-level variables so tests can run boards in isolation.
type Board struct {
	notes    map[string]*models.Note
	viewport models.Viewport
	zTop     int64

	drag    *dragSession
	resize  *resizeSession
	reviews map[string]*review

	// randInt picks a child index during shuffle; injectable for tests.
	randInt func(n int) int
	now     func() time.Time
}

// New creates an empty board.
func New() *Board {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Board{
		notes:   make(map[string]*models.Note),
		reviews: make(map[string]*review),
		randInt: rng.Intn,
		now:     time.Now,
	}
}

// SetRand replaces the random source used by shuffle. Intended for tests.
func (b *Board) SetRand(randInt func(n int) int) {
	b.randInt = randInt
}

// Len returns the number of notes on the board.
func (b *Board) Len() int {
	return len(b.notes)
}

// Get returns the note with the given id, or nil when unknown.
func (b *Board) Get(id string) *models.Note {
	return b.notes[id]
}

// Notes returns value copies of every note, ordered by z-order then id.
func (b *Board) Notes() []models.Note {
	out := make([]models.Note, 0, len(b.notes))
	for _, n := range b.notes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZOrder != out[j].ZOrder {
			return out[i].ZOrder < out[j].ZOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Viewport returns the board's pan offset.
func (b *Board) Viewport() models.Viewport {
	return b.viewport
}

// SetViewport stores the pan offset.
func (b *Board) SetViewport(v models.Viewport) {
	b.viewport = v
}

// CreateNote adds a standalone note at the given position with default size.
func (b *Board) CreateNote(x, y float64, content string) *models.Note {
	now := b.now()
	n := &models.Note{
		ID:         uuid.NewString(),
		X:          x,
		Y:          y,
		Width:      models.DefaultWidth,
		Height:     models.DefaultHeight,
		Content:    content,
		SplitRatio: 0.5,
		ZOrder:     b.nextZ(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.notes[n.ID] = n
	return n
}

// AddNote inserts a pre-built note (import, restore). The note's size is
// clamped and its z-order raised above everything already on the board.
func (b *Board) AddNote(n models.Note) *models.Note {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Width = models.ClampWidth(n.Width)
	n.Height = models.ClampHeight(n.Height)
	if n.ZOrder > b.zTop {
		b.zTop = n.ZOrder
	} else {
		n.ZOrder = b.nextZ()
	}
	cp := n
	b.notes[cp.ID] = &cp
	return &cp
}

// DeleteNote removes a note. Children of a deleted root become standalone
// at their current positions; siblings of a deleted child keep their order
// (the next reflow compacts it). Unknown ids return ErrNotFound.
func (b *Board) DeleteNote(id string) error {
	n := b.notes[id]
	if n == nil {
		return apperr.ErrNotFound
	}
	if b.drag != nil && b.drag.noteID == id {
		b.drag = nil
	}
	if b.resize != nil && b.resize.noteID == id {
		b.resize = nil
	}
	delete(b.reviews, id)
	if n.IsRoot {
		for _, c := range b.Children(id) {
			c.ParentID = ""
			c.StackOrder = 0
		}
	}
	delete(b.notes, id)
	b.Reflow()
	return nil
}

// Children returns the notes stacked under rootID in stack order.
// Order ties break on id so the sequence is deterministic.
func (b *Board) Children(rootID string) []*models.Note {
	var out []*models.Note
	for _, n := range b.notes {
		if n.ParentID == rootID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StackOrder != out[j].StackOrder {
			return out[i].StackOrder < out[j].StackOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// roots returns every root note ordered by id.
func (b *Board) roots() []*models.Note {
	var out []*models.Note
	for _, n := range b.notes {
		if n.IsRoot {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BringToFront raises the note above everything else on the board.
func (b *Board) BringToFront(id string) {
	if n := b.notes[id]; n != nil {
		n.ZOrder = b.nextZ()
	}
}

// SetContent replaces a note's content blob.
func (b *Board) SetContent(id, content string) error {
	n := b.notes[id]
	if n == nil {
		return apperr.ErrNotFound
	}
	n.Content = content
	n.UpdatedAt = b.now()
	return nil
}

// SetSplitRatio stores the term/definition divider position. The ratio is an
// explicit field so the model never depends on rendered measurements.
func (b *Board) SetSplitRatio(id string, ratio float64) error {
	n := b.notes[id]
	if n == nil {
		return apperr.ErrNotFound
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	n.SplitRatio = ratio
	n.UpdatedAt = b.now()
	return nil
}

// ToggleRoot flips a note between standalone and root. A root that still
// owns children is refused, as is promoting a note that carries a
// definition segment. A child is detached from its stack first.
func (b *Board) ToggleRoot(id string) error {
	n := b.notes[id]
	if n == nil {
		return apperr.ErrNotFound
	}
	if n.IsRoot {
		if len(b.Children(id)) > 0 {
			return apperr.ErrStackNotEmpty
		}
		n.IsRoot = false
		n.Collapsed = false
		delete(b.reviews, id)
		n.UpdatedAt = b.now()
		return nil
	}
	if n.Definition() != "" {
		return apperr.ErrHasDefinition
	}
	if n.ParentID != "" {
		b.detach(n)
	}
	n.IsRoot = true
	n.UpdatedAt = b.now()
	b.Reflow()
	return nil
}

// detach removes a child from its stack and reflows the remaining siblings.
func (b *Board) detach(n *models.Note) {
	n.ParentID = ""
	n.StackOrder = 0
	b.Reflow()
}

// Restore replaces the board contents with a persisted snapshot. All
// interaction state is reset.
func (b *Board) Restore(notes []models.Note, vp models.Viewport) {
	b.notes = make(map[string]*models.Note, len(notes))
	b.reviews = make(map[string]*review)
	b.drag = nil
	b.resize = nil
	b.zTop = 0
	for i := range notes {
		cp := notes[i]
		if cp.ZOrder > b.zTop {
			b.zTop = cp.ZOrder
		}
		b.notes[cp.ID] = &cp
	}
	b.viewport = vp
	b.Reflow()
}

// Clear removes every note and resets interaction state.
func (b *Board) Clear() {
	b.Restore(nil, b.viewport)
}

func (b *Board) nextZ() int64 {
	b.zTop++
	return b.zTop
}
