package board

import "github.com/youhengzhou/bibo-notes/internal/models"

// Reflow recomputes every stacked note's position from the model: each
// root's children form a vertical column directly beneath it, in stack
// order, with a fixed gap between cards. Stack order values are compacted
// to 0..n-1 as a side effect, so gaps left by deletions never accumulate.
//
// The function is idempotent and safe to call after any mutation. The note
// held by an active drag session is skipped; its position is driven by the
// pointer until the drag commits.
func (b *Board) Reflow() {
	for _, root := range b.roots() {
		y := root.Y + root.Height + models.StackGap
		order := 0
		for _, c := range b.Children(root.ID) {
			c.StackOrder = order
			order++
			if b.drag != nil && b.drag.noteID == c.ID {
				continue
			}
			c.X = root.X
			c.Y = y
			y += c.Height + models.StackGap
		}
	}
}

// stackBottom returns the y-coordinate of the bottom edge of a root's
// stack: the root's own bottom edge plus the heights and gaps of all its
// current children.
func (b *Board) stackBottom(root *models.Note) float64 {
	bottom := root.Y + root.Height
	for _, c := range b.Children(root.ID) {
		bottom += models.StackGap + c.Height
	}
	return bottom
}
