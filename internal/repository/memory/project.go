package memory

import (
	"context"
	"sort"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
)

// ProjectRepository implements the ProjectRepository interface
type ProjectRepository struct {
	store *Store
}

// NewProjectRepository creates a project repository over store
func NewProjectRepository(store *Store) collectionRepo.ProjectRepository {
	return &ProjectRepository{store: store}
}

// withRoot fills RootFolderID. Caller holds mu.
func (r *ProjectRepository) withRoot(p models.Project) models.Project {
	for _, f := range r.store.data.folders {
		if f.ProjectID == p.ID && f.ParentID == nil {
			p.RootFolderID = f.ID
			break
		}
	}
	return p
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	defer r.store.lock(ctx)()

	if project.IsActive {
		for _, p := range r.store.data.projects {
			if p.IsActive {
				return &domain.ConflictError{Message: "another project is already active", ResourceType: "project", ResourceID: p.ID}
			}
		}
	}

	project.ID = newID()
	now := r.store.now()
	project.CreatedAt, project.UpdatedAt = now, now
	stored := *project
	stored.RootFolderID = ""
	r.store.data.projects[project.ID] = stored
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.data.projects[id]
	if !ok {
		return nil, domain.NewNotFound("project", id)
	}
	p = r.withRoot(p)
	return &p, nil
}

func (r *ProjectRepository) GetActive(ctx context.Context) (*models.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.data.projects {
		if p.IsActive {
			p = r.withRoot(p)
			return &p, nil
		}
	}
	return nil, domain.NewNotFound("project", "active")
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	projects := make([]models.Project, 0, len(r.store.data.projects))
	for _, p := range r.store.data.projects {
		projects = append(projects, r.withRoot(p))
	}
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].UpdatedAt.Equal(projects[j].UpdatedAt) {
			return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	defer r.store.lock(ctx)()

	p, ok := r.store.data.projects[project.ID]
	if !ok {
		return domain.NewNotFound("project", project.ID)
	}
	p.Name = project.Name
	p.UpdatedAt = project.UpdatedAt
	r.store.data.projects[p.ID] = p
	return nil
}

func (r *ProjectRepository) SetActive(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	target, ok := r.store.data.projects[id]
	if !ok {
		return domain.NewNotFound("project", id)
	}
	for pid, p := range r.store.data.projects {
		if p.IsActive && pid != id {
			p.IsActive = false
			r.store.data.projects[pid] = p
		}
	}
	target.IsActive = true
	target.UpdatedAt = r.store.now()
	r.store.data.projects[id] = target
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.projects[id]; !ok {
		return domain.NewNotFound("project", id)
	}
	for fid, f := range r.store.data.folders {
		if f.ProjectID == id && f.ParentID == nil {
			r.store.deleteFolderTree(fid)
		}
	}
	for eid, e := range r.store.data.envs {
		if e.ProjectID == id {
			delete(r.store.data.envs, eid)
		}
	}
	delete(r.store.data.projects, id)
	return nil
}
