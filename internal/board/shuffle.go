package board

import "github.com/youhengzhou/bibo-notes/internal/apperr"

// ReviewPhase is the state of a root's flashcard review cycle.
type ReviewPhase string

const (
	ReviewIdle        ReviewPhase = "idle"
	ReviewShowingTerm ReviewPhase = "showing_term"
	ReviewRevealed    ReviewPhase = "revealed"
)

// review tracks the shuffle cycle for one root.
type review struct {
	phase   ReviewPhase
	childID string
}

// ReviewCard is what the renderer overlays on a root during shuffle: the
// drawn child's term, and its definition once revealed.
type ReviewCard struct {
	RootID     string      `json:"root_id"`
	ChildID    string      `json:"child_id"`
	Phase      ReviewPhase `json:"phase"`
	Term       string      `json:"term"`
	Definition string      `json:"definition,omitempty"`
}

// TriggerShuffle advances a root's flashcard cycle. From idle or revealed
// it draws a child uniformly at random, shows its term, and forces the root
// collapsed; from showing-term it reveals the same child's definition.
// Roots without children cannot shuffle. Expanding the root (ToggleCollapse)
// resets the cycle to idle.
func (b *Board) TriggerShuffle(id string) (*ReviewCard, error) {
	n := b.notes[id]
	if n == nil || !n.IsRoot {
		return nil, apperr.ErrNotFound
	}
	children := b.Children(id)
	if len(children) == 0 {
		return nil, apperr.ErrNoChildren
	}

	rv := b.reviews[id]
	if rv == nil {
		rv = &review{phase: ReviewIdle}
		b.reviews[id] = rv
	}

	switch rv.phase {
	case ReviewShowingTerm:
		// The drawn child may have been deleted mid-cycle; fall back to a
		// fresh draw in that case.
		if c := b.notes[rv.childID]; c != nil && c.ParentID == id {
			rv.phase = ReviewRevealed
			return &ReviewCard{
				RootID:     id,
				ChildID:    c.ID,
				Phase:      ReviewRevealed,
				Term:       c.Term(),
				Definition: c.Definition(),
			}, nil
		}
		fallthrough
	default: // idle or revealed: new random draw
		c := children[b.randInt(len(children))]
		rv.phase = ReviewShowingTerm
		rv.childID = c.ID
		n.Collapsed = true
		return &ReviewCard{
			RootID:  id,
			ChildID: c.ID,
			Phase:   ReviewShowingTerm,
			Term:    c.Term(),
		}, nil
	}
}

// ReviewState reports the current shuffle phase for a root; idle when no
// review is in progress.
func (b *Board) ReviewState(id string) ReviewPhase {
	if rv := b.reviews[id]; rv != nil {
		return rv.phase
	}
	return ReviewIdle
}
