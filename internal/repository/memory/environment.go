package memory

import (
	"context"
	"sort"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
)

// EnvironmentRepository implements the EnvironmentRepository interface
type EnvironmentRepository struct {
	store *Store
}

// NewEnvironmentRepository creates an environment repository over store
func NewEnvironmentRepository(store *Store) collectionRepo.EnvironmentRepository {
	return &EnvironmentRepository{store: store}
}

func (r *EnvironmentRepository) Create(ctx context.Context, env *models.Environment) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.projects[env.ProjectID]; !ok {
		return domain.NewNotFound("project", env.ProjectID)
	}
	if env.IsBase {
		for _, e := range r.store.data.envs {
			if e.ProjectID == env.ProjectID && e.IsBase {
				return &domain.ConflictError{Message: "project already has a base environment", ResourceType: "environment", ResourceID: e.ID}
			}
		}
	}

	env.ID = newID()
	env.IsActive = false
	now := r.store.now()
	env.CreatedAt, env.UpdatedAt = now, now
	env.Variables = env.Variables.Normalize()
	r.store.data.envs[env.ID] = environmentRecord{Environment: *env.Clone(), seq: r.store.nextSeq()}
	return nil
}

func (r *EnvironmentRepository) GetByID(ctx context.Context, id string) (*models.Environment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.data.envs[id]
	if !ok {
		return nil, domain.NewNotFound("environment", id)
	}
	return rec.Environment.Clone(), nil
}

func (r *EnvironmentRepository) ListByProject(ctx context.Context, projectID string) ([]models.Environment, error) {
	r.store.mu.RLock()
	var records []environmentRecord
	for _, rec := range r.store.data.envs {
		if rec.ProjectID == projectID {
			records = append(records, rec)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].IsBase != records[j].IsBase {
			return records[i].IsBase
		}
		return records[i].seq < records[j].seq
	})
	envs := make([]models.Environment, len(records))
	for i, rec := range records {
		envs[i] = *rec.Environment.Clone()
	}
	return envs, nil
}

func (r *EnvironmentRepository) Update(ctx context.Context, env *models.Environment) error {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.envs[env.ID]
	if !ok {
		return domain.NewNotFound("environment", env.ID)
	}
	rec.Name = env.Name
	rec.Variables = env.Variables.Normalize()
	rec.UpdatedAt = r.store.now()
	r.store.data.envs[env.ID] = rec
	env.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *EnvironmentRepository) SetActive(ctx context.Context, projectID, id string) error {
	defer r.store.lock(ctx)()

	if id != "" {
		target, ok := r.store.data.envs[id]
		if !ok || target.ProjectID != projectID {
			return domain.NewNotFound("environment", id)
		}
		if target.IsBase {
			return &domain.ValidationError{Message: "the base environment is always applied and cannot be activated"}
		}
	}
	for eid, e := range r.store.data.envs {
		if e.ProjectID != projectID {
			continue
		}
		e.IsActive = eid == id
		r.store.data.envs[eid] = e
	}
	return nil
}

func (r *EnvironmentRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.envs[id]; !ok {
		return domain.NewNotFound("environment", id)
	}
	delete(r.store.data.envs, id)
	return nil
}
