package transfer

import (
	"github.com/youhengzhou/bibo-notes/internal/board"
	"github.com/youhengzhou/bibo-notes/internal/models"
)

const (
	gridColumns = 4
	gridMargin  = 40.0
)

// gridLayout hands out top-left positions for imported top-level notes in a
// fixed-column grid. Rows advance by the tallest entry placed in the
// previous row, so stacks don't run into the next row of cards.
type gridLayout struct {
	originX float64
	y       float64
	col     int
	rowMax  float64
}

// newGridLayout starts the grid below everything already on the board so
// appended imports never overlap existing notes.
func newGridLayout(b *board.Board) *gridLayout {
	g := &gridLayout{originX: gridMargin, y: gridMargin}
	for _, n := range b.Notes() {
		if bottom := n.Y + n.Height; bottom+gridMargin > g.y {
			g.y = bottom + gridMargin
		}
	}
	return g
}

// next returns the position for the next top-level entry.
func (g *gridLayout) next() (x, y float64) {
	if g.col == gridColumns {
		g.col = 0
		g.y += g.rowMax + gridMargin
		g.rowMax = 0
	}
	x = g.originX + float64(g.col)*(models.DefaultWidth+gridMargin)
	y = g.y
	g.col++
	return x, y
}

// reserve tells the layout how tall the entry just placed turned out to be,
// stack included.
func (g *gridLayout) reserve(height float64) {
	if height > g.rowMax {
		g.rowMax = height
	}
}

// estimateHeight sizes an imported note from its content length: taller
// cards for longer text, clamped to the allowed range.
func estimateHeight(content string) float64 {
	return models.ClampHeight(models.MinHeight + float64(len(content))/2)
}
