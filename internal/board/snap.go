package board

import (
	"math"

	"github.com/youhengzhou/bibo-notes/internal/models"
)

// SnapPreview describes where a dragged note would attach if released now.
// It is a read-only preview; nothing is mutated until the drag commits.
type SnapPreview struct {
	TargetID string `json:"target_id"`
	Index    int    `json:"index"`
}

// snapTarget scans every root other than the dragged note and picks the
// best stacking target for the dragged note's live position.
//
// A root qualifies when the horizontal distance is within SnapXThreshold
// and the dragged y falls inside [root.Y - SnapAboveSlack, stack bottom +
// padding], the padding being tighter for collapsed roots since their
// rendered footprint is just the root card. Among qualifying roots the
// winner minimizes the Euclidean distance to the root's own origin row;
// exact ties go to the lowest id (roots are scanned in id order).
func (b *Board) snapTarget(dragged *models.Note) *SnapPreview {
	var (
		best     *models.Note
		bestDist float64
	)
	for _, root := range b.roots() {
		if root.ID == dragged.ID {
			continue
		}
		dx := math.Abs(root.X - dragged.X)
		if dx > models.SnapXThreshold {
			continue
		}
		pad := models.SnapPadExpanded
		if root.Collapsed {
			pad = models.SnapPadCollapsed
		}
		if dragged.Y < root.Y-models.SnapAboveSlack || dragged.Y > b.stackBottom(root)+pad {
			continue
		}
		dist := math.Hypot(dx, dragged.Y-root.Y)
		if best == nil || dist < bestDist {
			best = root
			bestDist = dist
		}
	}
	if best == nil {
		return nil
	}
	return &SnapPreview{
		TargetID: best.ID,
		Index:    b.InsertionIndex(best.ID, dragged.Y, dragged.ID),
	}
}
