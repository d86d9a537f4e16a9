package board

import "github.com/youhengzhou/bibo-notes/internal/models"

// InsertionIndex determines where in rootID's sibling order a note dropped
// at candidateY would land. excludeID (the dragged note) is left out of the
// computation so a note never compares against itself. The result is in
// [0, childCount].
//
// Positions are computed exactly as Reflow would place them. If candidateY
// sits above the first child, the index is 0; otherwise each adjacent pair
// is tested against the midpoint between the earlier child's bottom edge
// and the later child's top edge. A candidate exactly on a midpoint lands
// before the later child.
func (b *Board) InsertionIndex(rootID string, candidateY float64, excludeID string) int {
	root := b.notes[rootID]
	if root == nil {
		return 0
	}

	children := b.Children(rootID)
	if excludeID != "" {
		kept := children[:0]
		for _, c := range children {
			if c.ID != excludeID {
				kept = append(kept, c)
			}
		}
		children = kept
	}
	if len(children) == 0 {
		return 0
	}

	y := root.Y + root.Height + models.StackGap
	if candidateY < y {
		return 0
	}
	for i, c := range children {
		if i == len(children)-1 {
			break
		}
		// Midpoint between this child's bottom edge and the next child's
		// top edge (which sits one gap lower).
		mid := y + c.Height + models.StackGap/2
		if candidateY <= mid {
			return i + 1
		}
		y += c.Height + models.StackGap
	}
	return len(children)
}
