package memory

import (
	"context"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
)

// FolderRepository implements the FolderRepository interface
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder repository over store
func NewFolderRepository(store *Store) collectionRepo.FolderRepository {
	return &FolderRepository{store: store}
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.projects[folder.ProjectID]; !ok {
		return domain.NewNotFound("project", folder.ProjectID)
	}
	if folder.ParentID == nil {
		for _, f := range r.store.data.folders {
			if f.ProjectID == folder.ProjectID && f.ParentID == nil {
				return &domain.ConflictError{Message: "project already has a root folder", ResourceType: "folder", ResourceID: f.ID}
			}
		}
	} else if parent, ok := r.store.data.folders[*folder.ParentID]; !ok || parent.ProjectID != folder.ProjectID {
		return domain.NewNotFound("folder", *folder.ParentID)
	}

	folder.ID = newID()
	now := r.store.now()
	folder.CreatedAt, folder.UpdatedAt = now, now
	r.store.data.folders[folder.ID] = folderRecord{Folder: *folder, seq: r.store.nextSeq()}
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id, projectID string) (*models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.data.folders[id]
	if !ok || rec.ProjectID != projectID {
		return nil, domain.NewNotFound("folder", id)
	}
	f := rec.Folder
	return &f, nil
}

func (r *FolderRepository) GetByIDOnly(ctx context.Context, id string) (*models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.data.folders[id]
	if !ok {
		return nil, domain.NewNotFound("folder", id)
	}
	f := rec.Folder
	return &f, nil
}

func (r *FolderRepository) GetRoot(ctx context.Context, projectID string) (*models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, rec := range r.store.data.folders {
		if rec.ProjectID == projectID && rec.ParentID == nil {
			f := rec.Folder
			return &f, nil
		}
	}
	return nil, domain.NewNotFound("project", projectID)
}

func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.folders[folder.ID]
	if !ok || rec.ProjectID != folder.ProjectID {
		return domain.NewNotFound("folder", folder.ID)
	}
	if folder.ParentID != nil {
		if _, ok := r.store.data.folders[*folder.ParentID]; !ok {
			return domain.NewNotFound("folder", *folder.ParentID)
		}
	}
	rec.ParentID = folder.ParentID
	rec.Name = folder.Name
	rec.Position = folder.Position
	rec.UpdatedAt = folder.UpdatedAt
	r.store.data.folders[folder.ID] = rec
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id, projectID string) error {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.folders[id]
	if !ok || rec.ProjectID != projectID {
		return domain.NewNotFound("folder", id)
	}
	r.store.deleteFolderTree(id)
	return nil
}

func (r *FolderRepository) ListChildren(ctx context.Context, folderID, projectID string) ([]models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var records []folderRecord
	for _, rec := range r.store.data.folders {
		if rec.ProjectID == projectID && rec.ParentID != nil && *rec.ParentID == folderID {
			records = append(records, rec)
		}
	}
	return sortFolders(records), nil
}

func (r *FolderRepository) GetAllByProject(ctx context.Context, projectID string) ([]models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var records []folderRecord
	for _, rec := range r.store.data.folders {
		if rec.ProjectID == projectID {
			records = append(records, rec)
		}
	}
	return sortFolders(records), nil
}

func (r *FolderRepository) NextPosition(ctx context.Context, parentID, projectID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	next := 0
	for _, rec := range r.store.data.folders {
		if rec.ProjectID == projectID && rec.ParentID != nil && *rec.ParentID == parentID && rec.Position >= next {
			next = rec.Position + 1
		}
	}
	return next, nil
}
