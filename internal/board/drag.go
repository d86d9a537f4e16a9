package board

import (
	"github.com/youhengzhou/bibo-notes/internal/apperr"
	"github.com/youhengzhou/bibo-notes/internal/models"
)

// dragSession is the interaction context of an in-flight drag. At most one
// drag is active per board.
type dragSession struct {
	noteID string
	// Pointer offset from the note's top-left corner at grab time, so the
	// card doesn't jump under the pointer.
	offsetX float64
	offsetY float64
	preview *SnapPreview
}

// resizeSession is the interaction context of an in-flight resize.
type resizeSession struct {
	noteID string
}

// StartDrag begins dragging a note. The note is brought to the front, and
// if it is currently stacked it pops out of its stack immediately: the
// parent link is cleared and the former stack reflows. Starting a new drag
// silently replaces any session left behind by lost pointer capture.
func (b *Board) StartDrag(id string, pointerX, pointerY float64) error {
	n := b.notes[id]
	if n == nil {
		return apperr.ErrNotFound
	}
	b.BringToFront(id)
	b.drag = &dragSession{
		noteID:  id,
		offsetX: pointerX - n.X,
		offsetY: pointerY - n.Y,
	}
	if n.ParentID != "" {
		b.detach(n)
	}
	return nil
}

// UpdateDrag moves the dragged note to track the pointer and recomputes the
// snap preview. It returns nil either when no drag is active or when no
// root qualifies as a target (any previous preview is cleared).
func (b *Board) UpdateDrag(pointerX, pointerY float64) *SnapPreview {
	if b.drag == nil {
		return nil
	}
	n := b.notes[b.drag.noteID]
	if n == nil {
		b.drag = nil
		return nil
	}
	n.X = pointerX - b.drag.offsetX
	n.Y = pointerY - b.drag.offsetY
	b.drag.preview = b.snapTarget(n)
	return b.drag.preview
}

// EndDrag commits the drag. With no active snap target the note simply
// stays where it was released. With a target, the note is inserted into the
// target's stack at the previewed index, unless it is itself a root that
// still owns children, in which case the snap is refused and the note is
// left standing at its released position. A release without a matching
// prior move (lost pointer capture) is a normal end-of-drag.
//
// It returns the id of the dragged note, or "" when no drag was active.
// The caller runs its persistence hook whenever the id is non-empty.
func (b *Board) EndDrag() string {
	sess := b.drag
	if sess == nil {
		return ""
	}
	b.drag = nil

	n := b.notes[sess.noteID]
	if n == nil {
		return ""
	}

	if sess.preview != nil {
		b.attach(n, sess.preview)
	}
	b.Reflow()
	n.UpdatedAt = b.now()
	return n.ID
}

// attach inserts the dragged note into the target stack at the previewed
// index, shifting every sibling at or below that index down by one.
func (b *Board) attach(n *models.Note, preview *SnapPreview) {
	target := b.notes[preview.TargetID]
	if target == nil || !target.IsRoot {
		return
	}
	// A populated stack cannot become a child.
	if n.IsRoot && len(b.Children(n.ID)) > 0 {
		return
	}
	for _, sib := range b.Children(target.ID) {
		if sib.ID != n.ID && sib.StackOrder >= preview.Index {
			sib.StackOrder++
		}
	}
	n.StackOrder = preview.Index
	n.ParentID = target.ID
	n.IsRoot = false
	delete(b.reviews, n.ID)
}

// StartResize begins resizing a note.
func (b *Board) StartResize(id string) error {
	if b.notes[id] == nil {
		return apperr.ErrNotFound
	}
	b.resize = &resizeSession{noteID: id}
	return nil
}

// UpdateResize applies new dimensions to the note under resize, each
// clamped to its allowed range. No-op when no resize is active.
func (b *Board) UpdateResize(width, height float64) {
	if b.resize == nil {
		return
	}
	n := b.notes[b.resize.noteID]
	if n == nil {
		b.resize = nil
		return
	}
	n.Width = models.ClampWidth(width)
	n.Height = models.ClampHeight(height)
	// Heights feed straight into stack layout.
	b.Reflow()
}

// EndResize commits the resize. Returns the id of the resized note, or ""
// when no resize was active.
func (b *Board) EndResize() string {
	sess := b.resize
	if sess == nil {
		return ""
	}
	b.resize = nil
	n := b.notes[sess.noteID]
	if n == nil {
		return ""
	}
	b.Reflow()
	n.UpdatedAt = b.now()
	return n.ID
}
