// Package transfer maps the flat board model to and from its two external
// representations: a document-outline text format and a tabular (CSV)
// format. The mapping is lossy by design — ids and exact pixel positions
// are not round-tripped, only grouping, order, and term/definition pairs.
package transfer

import (
	"math"
	"sort"

	"github.com/youhengzhou/bibo-notes/internal/board"
	"github.com/youhengzhou/bibo-notes/internal/models"
)

// Item is one term/definition pair in an external representation.
type Item struct {
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
}

// Group is a root with its children in stack order.
type Group struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Entry is one top-level section: either a group or a standalone item.
type Entry struct {
	Group *Group `json:"group,omitempty"`
	Item  *Item  `json:"item,omitempty"`
}

// Document is the ordered nested representation of a board.
type Document struct {
	Entries []Entry `json:"entries"`
}

// untitled is the placeholder emitted for roots with no term content.
const untitled = "Untitled"

// FromBoard builds the nested representation. Top-level entries (roots and
// standalone notes) are ordered by the position comparator: by y, with x
// breaking the tie for notes on the same visual row. Children follow their
// root in stack order. A root with zero children still emits.
func FromBoard(b *board.Board) Document {
	var top []models.Note
	for _, n := range b.Notes() {
		if n.Role() != models.RoleChild {
			top = append(top, n)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		if math.Abs(top[i].Y-top[j].Y) >= models.RowTolerance {
			return top[i].Y < top[j].Y
		}
		if top[i].X != top[j].X {
			return top[i].X < top[j].X
		}
		return top[i].ID < top[j].ID
	})

	doc := Document{}
	for _, n := range top {
		if n.IsRoot {
			g := &Group{Title: n.Term(), Items: []Item{}}
			if g.Title == "" {
				g.Title = untitled
			}
			for _, c := range b.Children(n.ID) {
				g.Items = append(g.Items, Item{Term: c.Term(), Definition: c.Definition()})
			}
			doc.Entries = append(doc.Entries, Entry{Group: g})
			continue
		}
		doc.Entries = append(doc.Entries, Entry{Item: &Item{Term: n.Term(), Definition: n.Definition()}})
	}
	return doc
}

// Apply materializes a document onto the board. With replace set the board
// is cleared first; otherwise new notes land below the existing content.
// Top-level entries are auto-positioned in a fixed-column grid, sized by a
// content-length heuristic, with ever-increasing z-order.
func Apply(b *board.Board, doc Document, replace bool) int {
	if replace {
		b.Clear()
	}
	grid := newGridLayout(b)

	created := 0
	for _, e := range doc.Entries {
		switch {
		case e.Group != nil:
			x, y := grid.next()
			root := b.AddNote(models.Note{
				X:       x,
				Y:       y,
				Width:   models.DefaultWidth,
				Height:  estimateHeight(e.Group.Title),
				Content: e.Group.Title,
				IsRoot:  true,
			})
			created++
			total := root.Height
			for i, it := range e.Group.Items {
				content := models.JoinContent(it.Term, it.Definition)
				child := b.AddNote(models.Note{
					X:          x,
					Y:          y, // corrected by the reflow below
					Width:      models.DefaultWidth,
					Height:     estimateHeight(content),
					Content:    content,
					ParentID:   root.ID,
					StackOrder: i,
				})
				total += models.StackGap + child.Height
				created++
			}
			grid.reserve(total)
		case e.Item != nil:
			x, y := grid.next()
			content := models.JoinContent(e.Item.Term, e.Item.Definition)
			n := b.AddNote(models.Note{
				X:       x,
				Y:       y,
				Width:   models.DefaultWidth,
				Height:  estimateHeight(content),
				Content: content,
			})
			grid.reserve(n.Height)
			created++
		}
	}
	b.Reflow()
	return created
}
