package collection

import (
	"context"
	"errors"
	"testing"

	"lumina/internal/domain"
	collectionSvc "lumina/internal/domain/services/collection"
)

func TestFolderService_MoveIntoDescendantIsCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	a := env.createFolder(t, p.RootFolderID, "A")
	b := env.createFolder(t, a.ID, "B")
	c := env.createFolder(t, b.ID, "C")

	before := shape(env.tree(t, p.ID))

	for _, target := range []string{b.ID, c.ID} {
		_, err := env.svc.Folders.MoveFolder(ctx, a.ID, target)
		var cycle *domain.CycleError
		if !errors.As(err, &cycle) {
			t.Fatalf("move A into %s: expected *CycleError, got %v", target, err)
		}
		if !errors.Is(err, domain.ErrInvalidMove) {
			t.Error("expected errors.Is(err, ErrInvalidMove)")
		}
	}

	if after := shape(env.tree(t, p.ID)); after != before {
		t.Errorf("tree changed after failed move:\nbefore %s\nafter  %s", before, after)
	}
}

func TestFolderService_MovePreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	other := env.createProject(t, "Other")
	a := env.createFolder(t, p.RootFolderID, "A")

	tests := []struct {
		name   string
		folder string
		target string
		check  func(error) bool
	}{
		{"self", a.ID, a.ID, func(err error) bool { var e *domain.SelfMoveError; return errors.As(err, &e) }},
		{"root", p.RootFolderID, a.ID, func(err error) bool { var e *domain.RootFolderError; return errors.As(err, &e) }},
		{"missing target", a.ID, "nope", func(err error) bool { return errors.Is(err, domain.ErrNotFound) }},
		{"target in another project", a.ID, other.RootFolderID, func(err error) bool { return errors.Is(err, domain.ErrNotFound) }},
		{"missing folder", "nope", a.ID, func(err error) bool { return errors.Is(err, domain.ErrNotFound) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := shape(env.tree(t, p.ID))
			_, err := env.svc.Folders.MoveFolder(ctx, tt.folder, tt.target)
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if after := shape(env.tree(t, p.ID)); after != before {
				t.Errorf("tree changed: %s -> %s", before, after)
			}
		})
	}
}

func TestFolderService_MoveAppendsToTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	a := env.createFolder(t, p.RootFolderID, "A")
	x := env.createFolder(t, a.ID, "X")
	env.createFolder(t, a.ID, "Y")
	b := env.createFolder(t, p.RootFolderID, "B")
	env.createRequest(t, b.ID, "inside-b")

	if _, err := env.svc.Folders.MoveFolder(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("MoveFolder: %v", err)
	}
	if _, err := env.svc.Folders.MoveFolder(ctx, x.ID, a.ID); err != nil {
		t.Fatalf("MoveFolder within same parent: %v", err)
	}

	want := "Root{A{Y{}B{inside-b;}X{}}}"
	if got := shape(env.tree(t, p.ID)); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
}

func TestFolderService_RootIsProtected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")

	var rootErr *domain.RootFolderError
	if err := env.svc.Folders.DeleteFolder(ctx, p.RootFolderID); !errors.As(err, &rootErr) {
		t.Errorf("delete root: expected *RootFolderError, got %v", err)
	}
	if _, err := env.svc.Folders.RenameFolder(ctx, p.RootFolderID, &collectionSvc.UpdateFolderRequest{Name: "x"}); !errors.As(err, &rootErr) {
		t.Errorf("rename root: expected *RootFolderError, got %v", err)
	}
	if root := env.tree(t, p.ID); root.ID != p.RootFolderID {
		t.Errorf("root changed")
	}
}

func TestFolderService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	a := env.createFolder(t, p.RootFolderID, "A")
	b := env.createFolder(t, a.ID, "B")
	req := env.createRequest(t, b.ID, "deep")

	if err := env.svc.Folders.DeleteFolder(ctx, a.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if _, err := env.svc.Requests.GetRequest(ctx, req.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected nested request deleted, got %v", err)
	}
	if got := shape(env.tree(t, p.ID)); got != "Root{}" {
		t.Errorf("tree = %s", got)
	}
}

func TestFolderService_CreateAndRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")

	if _, err := env.svc.Folders.CreateFolder(ctx, &collectionSvc.CreateFolderRequest{ParentID: "nope", Name: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for unknown parent, got %v", err)
	}
	if _, err := env.svc.Folders.CreateFolder(ctx, &collectionSvc.CreateFolderRequest{ParentID: p.RootFolderID, Name: " "}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for blank name, got %v", err)
	}

	first := env.createFolder(t, p.RootFolderID, "first")
	second := env.createFolder(t, p.RootFolderID, "second")
	if second.Position <= first.Position {
		t.Errorf("expected append order, got positions %d then %d", first.Position, second.Position)
	}

	renamed, err := env.svc.Folders.RenameFolder(ctx, first.ID, &collectionSvc.UpdateFolderRequest{Name: "renamed"})
	if err != nil || renamed.Name != "renamed" {
		t.Fatalf("RenameFolder = %v, %v", renamed, err)
	}
}
