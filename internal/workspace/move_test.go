package workspace

import (
	"context"
	"errors"
	"testing"

	"lumina/internal/domain"
)

func TestMoveEngine_CycleLeavesTreeUnchanged(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	root := ws.Tree.Root().ID
	a := mustFolder(t, ws, root, "A")
	b := mustFolder(t, ws, a, "B")
	before := shape(ws.Tree.Root())

	err := ws.Moves.MoveFolder(ctx, a, b)
	var cycle *domain.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if after := shape(ws.Tree.Root()); after != before {
		t.Errorf("tree changed: %s, want %s", after, before)
	}
	if _, err := ws.Tree.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if after := shape(ws.Tree.Root()); after != before {
		t.Errorf("store changed: %s, want %s", after, before)
	}
}

func TestMoveEngine_Preconditions(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	root := ws.Tree.Root().ID
	a := mustFolder(t, ws, root, "A")
	r := mustRequest(t, ws, a, "r")

	tests := []struct {
		name   string
		move   func() error
		target error
		check  func(error) bool
	}{
		{"self", func() error { return ws.Moves.MoveFolder(ctx, a, a) }, domain.ErrInvalidMove, func(err error) bool {
			var e *domain.SelfMoveError
			return errors.As(err, &e)
		}},
		{"root", func() error { return ws.Moves.MoveFolder(ctx, root, a) }, domain.ErrInvalidMove, func(err error) bool {
			var e *domain.RootFolderError
			return errors.As(err, &e)
		}},
		{"missing target folder", func() error { return ws.Moves.MoveFolder(ctx, a, "nope") }, domain.ErrNotFound, nil},
		{"missing folder", func() error { return ws.Moves.MoveFolder(ctx, "nope", a) }, domain.ErrNotFound, nil},
		{"request to missing folder", func() error { return ws.Moves.MoveRequest(ctx, r, "nope") }, domain.ErrNotFound, nil},
		{"missing request", func() error { return ws.Moves.MoveRequest(ctx, "nope", a) }, domain.ErrNotFound, nil},
	}

	before := shape(ws.Tree.Root())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.move()
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if tt.check != nil && !tt.check(err) {
				t.Errorf("unexpected error type %T", err)
			}
			if after := shape(ws.Tree.Root()); after != before {
				t.Errorf("tree changed: %s", after)
			}
		})
	}
}

// For every pair of folders the move is allowed exactly when the target is
// neither the folder itself nor below it.
func TestMoveEngine_CheckFolderMoveAllPairs(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	root := ws.Tree.Root().ID
	a := mustFolder(t, ws, root, "A")
	b := mustFolder(t, ws, a, "B")
	c := mustFolder(t, ws, b, "C")
	d := mustFolder(t, ws, a, "D")
	e := mustFolder(t, ws, root, "E")
	ids := []string{a, b, c, d, e}

	descendants := map[string][]string{
		a: {b, c, d},
		b: {c},
	}
	below := func(f, target string) bool {
		for _, id := range descendants[f] {
			if id == target {
				return true
			}
		}
		return false
	}

	for _, f := range ids {
		for _, target := range append(ids, root) {
			err := ws.Moves.CheckFolderMove(f, target)
			var want error
			switch {
			case f == target:
				want = &domain.SelfMoveError{}
			case below(f, target):
				want = &domain.CycleError{}
			}
			if want == nil {
				if err != nil {
					t.Errorf("move %s -> %s: unexpected %v", f, target, err)
				}
				continue
			}
			if !errors.Is(err, domain.ErrInvalidMove) {
				t.Errorf("move %s -> %s: expected %T, got %v", f, target, want, err)
			}
		}
	}
}

func TestMoveEngine_SequentialRequestMoves(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	root := ws.Tree.Root().ID
	x := mustFolder(t, ws, root, "X")
	y := mustFolder(t, ws, root, "Y")
	r := mustRequest(t, ws, root, "r")

	if err := ws.Moves.MoveRequest(ctx, r, x); err != nil {
		t.Fatalf("move to X: %v", err)
	}
	if err := ws.Moves.MoveRequest(ctx, r, y); err != nil {
		t.Fatalf("move to Y: %v", err)
	}

	if got := shape(ws.Tree.Root()); got != "Root{X{}Y{r;}}" {
		t.Errorf("tree = %s", got)
	}
	req, err := ws.Tree.GetRequest(r)
	if err != nil || req.FolderID != y {
		t.Errorf("request folder = %v, %v", req, err)
	}
}

func TestMoveEngine_FolderMoveAppends(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	root := ws.Tree.Root().ID
	a := mustFolder(t, ws, root, "A")
	mustFolder(t, ws, a, "A1")
	b := mustFolder(t, ws, root, "B")
	mustRequest(t, ws, b, "inside")

	if err := ws.Moves.MoveFolder(ctx, b, a); err != nil {
		t.Fatalf("MoveFolder: %v", err)
	}
	if got := shape(ws.Tree.Root()); got != "Root{A{A1{}B{inside;}}}" {
		t.Errorf("tree = %s", got)
	}
}
