package workspace

import (
	"context"
	"time"

	models "lumina/internal/domain/models/collection"
)

type projectStore interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, name string) (*models.Project, error)
	RenameProject(ctx context.Context, id, name string) (*models.Project, error)
	ActivateProject(ctx context.Context, id string) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// ProjectManager lists and changes projects. Exactly one is active; the store enforces it.
type ProjectManager struct {
	store   projectStore
	timeout time.Duration
}

func NewProjectManager(store projectStore, timeout time.Duration) *ProjectManager {
	return &ProjectManager{store: store, timeout: timeout}
}

func (p *ProjectManager) List(ctx context.Context) ([]models.Project, error) {
	return call(ctx, p.timeout, "list projects", p.store.ListProjects)
}

// Active returns the active project, or nil when there are no projects
func (p *ProjectManager) Active(ctx context.Context) (*models.Project, error) {
	projects, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].IsActive {
			return &projects[i], nil
		}
	}
	return nil, nil
}

func (p *ProjectManager) Create(ctx context.Context, name string) (*models.Project, error) {
	return call(ctx, p.timeout, "create project", func(ctx context.Context) (*models.Project, error) {
		return p.store.CreateProject(ctx, name)
	})
}

func (p *ProjectManager) Rename(ctx context.Context, id, name string) (*models.Project, error) {
	return call(ctx, p.timeout, "rename project", func(ctx context.Context) (*models.Project, error) {
		return p.store.RenameProject(ctx, id, name)
	})
}

func (p *ProjectManager) Activate(ctx context.Context, id string) (*models.Project, error) {
	return call(ctx, p.timeout, "activate project", func(ctx context.Context) (*models.Project, error) {
		return p.store.ActivateProject(ctx, id)
	})
}

func (p *ProjectManager) Delete(ctx context.Context, id string) error {
	return callErr(ctx, p.timeout, "delete project", func(ctx context.Context) error {
		return p.store.DeleteProject(ctx, id)
	})
}
