package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/youhengzhou/bibo-notes/internal/board"
	"github.com/youhengzhou/bibo-notes/internal/boardservice"
	"github.com/youhengzhou/bibo-notes/internal/testutil"
)

// testEnv sets up a board, SQLite snapshot store, service, and router.
// authToken="" means disabled mode; non-empty means token mode.
func testEnv(t *testing.T, authToken string) (*boardservice.Service, http.Handler) {
	t.Helper()
	db := testutil.TestDB(t)
	svc := boardservice.NewService(board.New(), db, nil, nil)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{X: 40, Y: 60, Content: "hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[Note](t, w)
	if created.ID == "" {
		t.Fatal("created note has no id")
	}
	if created.X != 40 || created.Y != 60 {
		t.Errorf("position = (%v, %v), want (40, 60)", created.X, created.Y)
	}

	w = doJSON(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	got := decode[Note](t, w)
	if got.Content != "hello" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestGetNoteMissing(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/notes/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateNote(t *testing.T) {
	svc, router := testEnv(t, "")
	n := svc.CreateNote(context.Background(), 0, 0, "before")

	ratio := 0.7
	w := doJSON(t, router, http.MethodPut, "/notes/"+n.ID, UpdateNoteRequest{Content: "after", SplitRatio: &ratio})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	got := decode[Note](t, w)
	if got.Content != "after" {
		t.Errorf("content = %q", got.Content)
	}
	if got.SplitRatio != 0.7 {
		t.Errorf("split ratio = %v", got.SplitRatio)
	}
}

func TestUpdateNoteBadSplitRatio(t *testing.T) {
	svc, router := testEnv(t, "")
	n := svc.CreateNote(context.Background(), 0, 0, "x")

	ratio := 1.5
	w := doJSON(t, router, http.MethodPut, "/notes/"+n.ID, UpdateNoteRequest{Content: "x", SplitRatio: &ratio})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	svc, router := testEnv(t, "")
	n := svc.CreateNote(context.Background(), 0, 0, "bye")

	w := doJSON(t, router, http.MethodDelete, "/notes/"+n.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/notes/"+n.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestViewportRoundTrip(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPut, "/viewport", ViewportRequest{X: -120, Y: 45})
	if w.Code != http.StatusNoContent {
		t.Fatalf("viewport status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/board", nil)
	state := decode[BoardState](t, w)
	if state.Viewport.X != -120 || state.Viewport.Y != 45 {
		t.Errorf("viewport = %+v", state.Viewport)
	}
}

func TestToggleRootAndConflict(t *testing.T) {
	svc, router := testEnv(t, "")
	ctx := context.Background()
	n := svc.CreateNote(ctx, 100, 100, "stack head")

	w := doJSON(t, router, http.MethodPost, "/notes/"+n.ID+"/root", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("promote status = %d, body = %s", w.Code, w.Body.String())
	}
	got := decode[Note](t, w)
	if !got.IsRoot {
		t.Fatal("note not promoted to root")
	}

	// Attach a child, then demoting the populated root should conflict.
	child := svc.CreateNote(ctx, 100, 400, "child")
	if err := svc.StartDrag(ctx, child.ID, child.X, child.Y); err != nil {
		t.Fatal(err)
	}
	svc.UpdateDrag(ctx, 100, 300)
	svc.EndDrag(ctx)

	w = doJSON(t, router, http.MethodPost, "/notes/"+n.ID+"/root", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("demote populated root status = %d, want 409", w.Code)
	}
}

func TestDragAttachFlow(t *testing.T) {
	svc, router := testEnv(t, "")
	ctx := context.Background()

	root := svc.CreateNote(ctx, 100, 100, "root")
	if err := svc.ToggleRoot(ctx, root.ID); err != nil {
		t.Fatal(err)
	}
	loose := svc.CreateNote(ctx, 600, 600, "loose")

	w := doJSON(t, router, http.MethodPost, "/notes/"+loose.ID+"/drag", PointerRequest{X: 600, Y: 600})
	if w.Code != http.StatusNoContent {
		t.Fatalf("start drag status = %d", w.Code)
	}

	// Move into the root's snap zone: same column, just below the stack.
	w = doJSON(t, router, http.MethodPost, "/drag/move", PointerRequest{X: 100, Y: 300})
	if w.Code != http.StatusOK {
		t.Fatalf("drag move status = %d", w.Code)
	}
	move := decode[DragMoveResponse](t, w)
	if move.Preview == nil {
		t.Fatal("expected snap preview inside the snap zone")
	}
	if move.Preview.TargetID != root.ID || move.Preview.Index != 0 {
		t.Errorf("preview = %+v", move.Preview)
	}

	w = doJSON(t, router, http.MethodPost, "/drag/end", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("drag end status = %d", w.Code)
	}
	state := decode[BoardState](t, w)
	for _, n := range state.Notes {
		if n.ID != loose.ID {
			continue
		}
		if n.ParentID != root.ID {
			t.Fatalf("note not attached, parent = %q", n.ParentID)
		}
		if n.X != 100 {
			t.Errorf("attached x = %v, want root column 100", n.X)
		}
	}
}

func TestDragMoveWithoutSession(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/drag/move", PointerRequest{X: 10, Y: 10})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	move := decode[DragMoveResponse](t, w)
	if move.Preview != nil {
		t.Errorf("preview = %+v, want null", move.Preview)
	}
}

func TestResizeFlow(t *testing.T) {
	svc, router := testEnv(t, "")
	n := svc.CreateNote(context.Background(), 0, 0, "x")

	w := doJSON(t, router, http.MethodPost, "/notes/"+n.ID+"/resize", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("start resize status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/resize/move", ResizeRequest{Width: 9999, Height: 10})
	if w.Code != http.StatusNoContent {
		t.Fatalf("resize move status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/resize/end", nil)
	state := decode[BoardState](t, w)
	for _, got := range state.Notes {
		if got.ID != n.ID {
			continue
		}
		// Dimensions clamp to the allowed range.
		if got.Width != 600 || got.Height != 80 {
			t.Errorf("size = %vx%v, want 600x80", got.Width, got.Height)
		}
	}
}

func TestCollapseAndShuffle(t *testing.T) {
	svc, router := testEnv(t, "")
	ctx := context.Background()
	svc.ImportOutline(ctx, "## Deck\n- term :: def\n", false)

	var rootID string
	for _, n := range svc.State(ctx).Notes {
		if n.IsRoot {
			rootID = n.ID
		}
	}
	if rootID == "" {
		t.Fatal("no root after import")
	}

	w := doJSON(t, router, http.MethodPost, "/notes/"+rootID+"/collapse", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("collapse status = %d", w.Code)
	}
	if got := decode[Note](t, w); !got.Collapsed {
		t.Error("root not collapsed")
	}

	w = doJSON(t, router, http.MethodPost, "/notes/"+rootID+"/shuffle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("shuffle status = %d, body = %s", w.Code, w.Body.String())
	}
	card := decode[ReviewCard](t, w)
	if card.Phase != "showing_term" || card.Term != "term" {
		t.Errorf("card = %+v", card)
	}
	if card.Definition != "" {
		t.Errorf("definition leaked before reveal: %q", card.Definition)
	}

	w = doJSON(t, router, http.MethodPost, "/notes/"+rootID+"/shuffle", nil)
	card = decode[ReviewCard](t, w)
	if card.Phase != "revealed" || card.Definition != "def" {
		t.Errorf("revealed card = %+v", card)
	}
}

func TestShuffleWithoutChildren(t *testing.T) {
	svc, router := testEnv(t, "")
	ctx := context.Background()
	n := svc.CreateNote(ctx, 0, 0, "solo")
	if err := svc.ToggleRoot(ctx, n.ID); err != nil {
		t.Fatal(err)
	}
	w := doJSON(t, router, http.MethodPost, "/notes/"+n.ID+"/shuffle", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestImportExportOutline(t *testing.T) {
	_, router := testEnv(t, "")

	outline := "## Greek\n- alpha :: first\n- beta :: second\n\nstray note\n"
	req := httptest.NewRequest(http.MethodPost, "/import/outline?replace=true", strings.NewReader(outline))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}
	imp := decode[ImportResponse](t, w)
	if imp.Created != 4 {
		t.Errorf("created = %d, want 4", imp.Created)
	}

	wr := doJSON(t, router, http.MethodGet, "/export/outline", nil)
	if ct := wr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	text := wr.Body.String()
	for _, want := range []string{"## Greek", "- alpha :: first", "- beta :: second", "stray note"} {
		if !strings.Contains(text, want) {
			t.Errorf("export missing %q:\n%s", want, text)
		}
	}
}

func TestImportExportTable(t *testing.T) {
	_, router := testEnv(t, "")

	csvText := "term,definition,category\nalpha,first,Greek\nbeta,second,Greek\nloose,idea,\n"
	req := httptest.NewRequest(http.MethodPost, "/import/table", strings.NewReader(csvText))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d", w.Code)
	}
	imp := decode[ImportResponse](t, w)
	if imp.Created != 4 {
		t.Errorf("created = %d, want 4 (one root, two children, one standalone)", imp.Created)
	}

	wr := doJSON(t, router, http.MethodGet, "/export/table", nil)
	if ct := wr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(wr.Body.String(), "alpha,first,Greek") {
		t.Errorf("export missing row:\n%s", wr.Body.String())
	}
}

func TestAuthTokenMode(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	// No token.
	w := doJSON(t, router, http.MethodGet, "/board", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	// Wrong token.
	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	// Correct token.
	req = httptest.NewRequest(http.MethodGet, "/board", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
