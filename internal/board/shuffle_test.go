package board_test

import (
	"errors"
	"testing"

	"github.com/youhengzhou/bibo-notes/internal/apperr"
	"github.com/youhengzhou/bibo-notes/internal/models"
	"github.com/youhengzhou/bibo-notes/internal/testutil"

	"github.com/youhengzhou/bibo-notes/internal/board"
)

func TestToggleCollapseGuards(t *testing.T) {
	b := board.New()
	standalone := b.CreateNote(0, 0, "x")
	if err := b.ToggleCollapse(standalone.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("standalone err = %v, want ErrNotFound", err)
	}

	if err := b.ToggleRoot(standalone.ID); err != nil {
		t.Fatal(err)
	}
	if err := b.ToggleCollapse(standalone.ID); !errors.Is(err, apperr.ErrNoChildren) {
		t.Errorf("childless root err = %v, want ErrNoChildren", err)
	}
}

func TestCollapseKeepsChildrenInModel(t *testing.T) {
	b, root, children := testutil.Stack(t, 0, 0, 100, 100)
	if err := b.ToggleCollapse(root.ID); err != nil {
		t.Fatal(err)
	}
	if !b.Get(root.ID).Collapsed {
		t.Fatal("root not collapsed")
	}
	got := b.Children(root.ID)
	if len(got) != len(children) {
		t.Errorf("children = %d, want %d; collapse must not detach", len(got), len(children))
	}
}

func TestShuffleCycle(t *testing.T) {
	b, root, children := testutil.Stack(t, 0, 0, 100, 100, 100)
	for i, c := range children {
		c.Content = models.JoinContent([]string{"q0", "q1", "q2"}[i], []string{"a0", "a1", "a2"}[i])
	}
	draws := []int{2, 0}
	b.SetRand(func(n int) int {
		d := draws[0]
		draws = draws[1:]
		return d % n
	})

	card, err := b.TriggerShuffle(root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if card.Phase != board.ReviewShowingTerm || card.ChildID != children[2].ID {
		t.Fatalf("first draw = %+v", card)
	}
	if card.Term != "q2" || card.Definition != "" {
		t.Errorf("first draw term = %q, definition = %q", card.Term, card.Definition)
	}
	if !b.Get(root.ID).Collapsed {
		t.Error("drawing must collapse the root")
	}

	card, err = b.TriggerShuffle(root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if card.Phase != board.ReviewRevealed || card.ChildID != children[2].ID {
		t.Fatalf("reveal = %+v", card)
	}
	if card.Definition != "a2" {
		t.Errorf("revealed definition = %q", card.Definition)
	}

	// A third trigger starts a fresh draw.
	card, err = b.TriggerShuffle(root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if card.Phase != board.ReviewShowingTerm || card.ChildID != children[0].ID {
		t.Fatalf("second cycle draw = %+v", card)
	}
}

func TestShuffleDrawnChildDeleted(t *testing.T) {
	b, root, children := testutil.Stack(t, 0, 0, 100, 100)
	b.SetRand(func(n int) int { return 0 })

	card, err := b.TriggerShuffle(root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteNote(card.ChildID); err != nil {
		t.Fatal(err)
	}

	// The cycle cannot reveal a deleted card; it falls back to a new draw.
	card, err = b.TriggerShuffle(root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if card.Phase != board.ReviewShowingTerm {
		t.Errorf("phase = %q, want fresh draw", card.Phase)
	}
	if card.ChildID != children[1].ID {
		t.Errorf("drawn child = %s, want the survivor %s", card.ChildID, children[1].ID)
	}
}

func TestExpandResetsReview(t *testing.T) {
	b, root, _ := testutil.Stack(t, 0, 0, 100)
	if _, err := b.TriggerShuffle(root.ID); err != nil {
		t.Fatal(err)
	}
	if b.ReviewState(root.ID) != board.ReviewShowingTerm {
		t.Fatal("review not in progress")
	}

	// The draw collapsed the root; toggling expands and dismisses.
	if err := b.ToggleCollapse(root.ID); err != nil {
		t.Fatal(err)
	}
	if b.Get(root.ID).Collapsed {
		t.Fatal("root still collapsed")
	}
	if b.ReviewState(root.ID) != board.ReviewIdle {
		t.Error("expanding did not dismiss the review")
	}
}

func TestDeleteLastChildKeepsCollapse(t *testing.T) {
	b, root, children := testutil.Stack(t, 0, 0, 100)
	if err := b.ToggleCollapse(root.ID); err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteNote(children[0].ID); err != nil {
		t.Fatal(err)
	}
	got := b.Get(root.ID)
	if !got.Collapsed {
		t.Error("deleting the last child must not auto-expand the root")
	}
	if len(b.Children(root.ID)) != 0 {
		t.Error("child not deleted")
	}
}

func TestShuffleGuards(t *testing.T) {
	b := board.New()
	standalone := b.CreateNote(0, 0, "x")
	if _, err := b.TriggerShuffle(standalone.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("standalone err = %v, want ErrNotFound", err)
	}
	if err := b.ToggleRoot(standalone.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := b.TriggerShuffle(standalone.ID); !errors.Is(err, apperr.ErrNoChildren) {
		t.Errorf("childless err = %v, want ErrNoChildren", err)
	}
}
