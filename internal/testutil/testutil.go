// Package testutil provides shared test helpers for setting up snapshot
// databases and seeded boards.
package testutil

import (
	"os"
	"testing"

	"github.com/youhengzhou/bibo-notes/internal/board"
	"github.com/youhengzhou/bibo-notes/internal/models"
	"github.com/youhengzhou/bibo-notes/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "bibo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Stack builds a board with one root at (x, y) and n children of the given
// heights stacked beneath it, then reflows. It returns the board, the root,
// and the children in stack order.
func Stack(t *testing.T, x, y float64, heights ...float64) (*board.Board, *models.Note, []*models.Note) {
	t.Helper()
	b := board.New()
	root := b.CreateNote(x, y, "root")
	if err := b.ToggleRoot(root.ID); err != nil {
		t.Fatalf("ToggleRoot: %v", err)
	}
	children := make([]*models.Note, 0, len(heights))
	for i, h := range heights {
		c := b.CreateNote(0, 0, "child")
		c.Height = h
		c.ParentID = root.ID
		c.StackOrder = i
		children = append(children, c)
	}
	b.Reflow()
	return b, root, children
}
