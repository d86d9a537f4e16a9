// Package models defines the domain types for the bibo-notes board.
package models

import (
	"strings"
	"time"
)

// Size and layout constants, in canvas units.
const (
	MinWidth  = 120.0
	MaxWidth  = 600.0
	MinHeight = 80.0
	MaxHeight = 500.0

	DefaultWidth  = 220.0
	DefaultHeight = 160.0

	// StackGap is the vertical spacing between stacked notes.
	StackGap = 10.0

	// SnapXThreshold is the maximum horizontal distance between a dragged
	// note and a root for the root to qualify as a snap target.
	SnapXThreshold = 120.0

	// SnapAboveSlack extends the snap zone above a root's top edge.
	SnapAboveSlack = 50.0

	// SnapPadCollapsed and SnapPadExpanded extend the snap zone below the
	// stack bottom. Expanded stacks get the larger zone since their visual
	// extent is harder to judge.
	SnapPadCollapsed = 30.0
	SnapPadExpanded  = 100.0

	// RowTolerance is the y-distance under which two notes are considered
	// to sit on the same visual row when ordering exports.
	RowTolerance = 30.0
)

// ContentSeparator splits a note's content blob into its term and
// definition segments. It must appear on a line of its own.
const ContentSeparator = "\n---\n"

// Role describes where a note sits in the two-level hierarchy.
type Role string

const (
	RoleStandalone Role = "standalone"
	RoleRoot       Role = "root"
	RoleChild      Role = "child"
)

// Note is the sole entity on the board. Position is the top-left corner in
// canvas space. A note is a root when IsRoot is set, a child when ParentID
// is non-empty, and standalone otherwise.
type Note struct {
	ID         string    `json:"id"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Content    string    `json:"content"`
	SplitRatio float64   `json:"split_ratio"`
	ZOrder     int64     `json:"z_order"`
	IsRoot     bool      `json:"is_root"`
	ParentID   string    `json:"parent_id,omitempty"`
	StackOrder int       `json:"stack_order"`
	Collapsed  bool      `json:"collapsed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Role derives the note's hierarchy role.
func (n *Note) Role() Role {
	switch {
	case n.IsRoot:
		return RoleRoot
	case n.ParentID != "":
		return RoleChild
	default:
		return RoleStandalone
	}
}

// Term returns the content segment before the separator.
func (n *Note) Term() string {
	term, _ := SplitContent(n.Content)
	return term
}

// Definition returns the content segment after the separator, or the empty
// string when there is none. Roots ignore this segment.
func (n *Note) Definition() string {
	_, def := SplitContent(n.Content)
	return def
}

// SplitContent splits a content blob on the first separator occurrence.
func SplitContent(content string) (term, definition string) {
	before, after, found := strings.Cut(content, ContentSeparator)
	if !found {
		return strings.TrimSpace(content), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// JoinContent builds a content blob from term and definition segments.
func JoinContent(term, definition string) string {
	if definition == "" {
		return term
	}
	return term + ContentSeparator + definition
}

// ClampWidth bounds w to the allowed range, substituting the default for
// absent (non-positive) values.
func ClampWidth(w float64) float64 {
	if w <= 0 {
		return DefaultWidth
	}
	return clamp(w, MinWidth, MaxWidth)
}

// ClampHeight bounds h to the allowed range, substituting the default for
// absent (non-positive) values.
func ClampHeight(h float64) float64 {
	if h <= 0 {
		return DefaultHeight
	}
	return clamp(h, MinHeight, MaxHeight)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Viewport is the board's pan offset, persisted alongside the notes.
type Viewport struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
