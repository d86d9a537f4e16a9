package board

import "github.com/youhengzhou/bibo-notes/internal/apperr"

// ToggleCollapse flips a root between expanded and collapsed. Only roots
// that currently own at least one child can toggle. Collapsed children stay
// fully present in the model; hiding them is the renderer's job.
//
// Expanding also dismisses any shuffle review in progress on the root.
func (b *Board) ToggleCollapse(id string) error {
	n := b.notes[id]
	if n == nil {
		return apperr.ErrNotFound
	}
	if !n.IsRoot {
		return apperr.ErrNotFound
	}
	if len(b.Children(id)) == 0 {
		return apperr.ErrNoChildren
	}
	n.Collapsed = !n.Collapsed
	if !n.Collapsed {
		delete(b.reviews, id)
	}
	n.UpdatedAt = b.now()
	return nil
}
