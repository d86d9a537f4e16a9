package store_test

import (
	"testing"
	"time"

	"github.com/youhengzhou/bibo-notes/internal/models"
	"github.com/youhengzhou/bibo-notes/internal/testutil"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	db := testutil.TestDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	notes := []models.Note{
		{
			ID: "root-1", X: 100, Y: 100, Width: 220, Height: 160,
			Content: "deck", SplitRatio: 0.5, ZOrder: 1, IsRoot: true,
			Collapsed: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "child-1", X: 100, Y: 270, Width: 220, Height: 160,
			Content: "q\n---\na", SplitRatio: 0.3, ZOrder: 2,
			ParentID: "root-1", StackOrder: 0, CreatedAt: now, UpdatedAt: now,
		},
	}
	if err := db.Save(notes, models.Viewport{X: -50, Y: 25}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, vp, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d notes", len(got))
	}
	if vp.X != -50 || vp.Y != 25 {
		t.Errorf("viewport = %+v", vp)
	}

	// Ordered by z then id.
	if got[0].ID != "root-1" || got[1].ID != "child-1" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if !got[0].IsRoot || !got[0].Collapsed {
		t.Errorf("root flags lost: %+v", got[0])
	}
	if got[1].ParentID != "root-1" || got[1].SplitRatio != 0.3 {
		t.Errorf("child fields lost: %+v", got[1])
	}
	if got[1].Content != "q\n---\na" {
		t.Errorf("content = %q", got[1].Content)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	db := testutil.TestDB(t)

	first := []models.Note{{ID: "a", Width: 220, Height: 160}}
	if err := db.Save(first, models.Viewport{}); err != nil {
		t.Fatal(err)
	}
	second := []models.Note{{ID: "b", Width: 220, Height: 160}}
	if err := db.Save(second, models.Viewport{}); err != nil {
		t.Fatal(err)
	}

	got, _, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("loaded %+v, want only b", got)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	db := testutil.TestDB(t)
	notes, vp, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("notes = %d, want 0", len(notes))
	}
	if vp.X != 0 || vp.Y != 0 {
		t.Errorf("viewport = %+v, want zero", vp)
	}
}
