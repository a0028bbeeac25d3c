package collection

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lumina/internal/domain"
	collectionSvc "lumina/internal/domain/services/collection"
)

func TestProjectService_FirstProjectIsActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createProject(t, "First")
	second := env.createProject(t, "Second")

	if !first.IsActive {
		t.Error("expected first project to be active")
	}
	if second.IsActive {
		t.Error("expected second project to be inactive")
	}
	if first.RootFolderID == "" {
		t.Fatal("expected a root folder")
	}

	root := env.tree(t, first.ID)
	if root.Name != RootFolderName || !root.IsRoot() {
		t.Errorf("unexpected root %+v", root)
	}

	active, err := env.svc.Projects.GetActiveProject(ctx)
	if err != nil || active.ID != first.ID {
		t.Fatalf("GetActiveProject = %v, %v", active, err)
	}
}

func TestProjectService_ActivateKeepsExactlyOneActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createProject(t, "A")
	b := env.createProject(t, "B")
	c := env.createProject(t, "C")

	if _, err := env.svc.Projects.ActivateProject(ctx, b.ID); err != nil {
		t.Fatalf("ActivateProject: %v", err)
	}
	if _, err := env.svc.Projects.ActivateProject(ctx, c.ID); err != nil {
		t.Fatalf("ActivateProject: %v", err)
	}

	projects, _ := env.svc.Projects.ListProjects(ctx)
	active := 0
	for _, p := range projects {
		if p.IsActive {
			active++
			if p.ID != c.ID {
				t.Errorf("expected %s active, got %s", c.ID, p.ID)
			}
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active project, got %d", active)
	}

	if _, err := env.svc.Projects.ActivateProject(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestProjectService_DeleteActivePromotesSurvivor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.createProject(t, "A")
	b := env.createProject(t, "B")
	folder := env.createFolder(t, a.RootFolderID, "Stuff")
	env.createRequest(t, folder.ID, "r1")

	if err := env.svc.Projects.DeleteProject(ctx, a.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	active, err := env.svc.Projects.GetActiveProject(ctx)
	if err != nil {
		t.Fatalf("GetActiveProject: %v", err)
	}
	if active.ID != b.ID {
		t.Errorf("expected %s promoted, got %s", b.ID, active.ID)
	}
	if _, err := env.svc.Folders.GetFolder(ctx, folder.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected folders to cascade, got %v", err)
	}

	// Deleting the last project leaves none; the next one created becomes active.
	if err := env.svc.Projects.DeleteProject(ctx, b.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if c := env.createProject(t, "C"); !c.IsActive {
		t.Error("expected project created into an empty system to be active")
	}
}

func TestProjectService_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "A")

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"too long", strings.Repeat("x", 256)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.svc.Projects.CreateProject(ctx, &collectionSvc.CreateProjectRequest{Name: tt.in}); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("create: expected validation error, got %v", err)
			}
			if _, err := env.svc.Projects.RenameProject(ctx, p.ID, &collectionSvc.UpdateProjectRequest{Name: tt.in}); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("rename: expected validation error, got %v", err)
			}
		})
	}

	renamed, err := env.svc.Projects.RenameProject(ctx, p.ID, &collectionSvc.UpdateProjectRequest{Name: "  B  "})
	if err != nil || renamed.Name != "B" {
		t.Fatalf("RenameProject = %v, %v", renamed, err)
	}
}
