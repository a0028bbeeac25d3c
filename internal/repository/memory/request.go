package memory

import (
	"context"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
)

// RequestRepository implements the RequestRepository interface
type RequestRepository struct {
	store *Store
}

// NewRequestRepository creates a request repository over store
func NewRequestRepository(store *Store) collectionRepo.RequestRepository {
	return &RequestRepository{store: store}
}

func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	defer r.store.lock(ctx)()

	folder, ok := r.store.data.folders[req.FolderID]
	if !ok || folder.ProjectID != req.ProjectID {
		return domain.NewNotFound("folder", req.FolderID)
	}

	req.ID = newID()
	now := r.store.now()
	req.CreatedAt, req.UpdatedAt = now, now
	req.Auth = models.AuthOrNone(req.Auth)
	r.store.data.requests[req.ID] = requestRecord{Request: *req.Clone(), seq: r.store.nextSeq()}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id, projectID string) (*models.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.data.requests[id]
	if !ok || rec.ProjectID != projectID {
		return nil, domain.NewNotFound("request", id)
	}
	return rec.Request.Clone(), nil
}

func (r *RequestRepository) GetByIDOnly(ctx context.Context, id string) (*models.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.data.requests[id]
	if !ok {
		return nil, domain.NewNotFound("request", id)
	}
	return rec.Request.Clone(), nil
}

func (r *RequestRepository) Update(ctx context.Context, req *models.Request) error {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.requests[req.ID]
	if !ok || rec.ProjectID != req.ProjectID {
		return domain.NewNotFound("request", req.ID)
	}
	if folder, ok := r.store.data.folders[req.FolderID]; !ok || folder.ProjectID != req.ProjectID {
		return domain.NewNotFound("folder", req.FolderID)
	}
	createdAt := rec.CreatedAt
	rec.Request = *req.Clone()
	rec.CreatedAt = createdAt
	r.store.data.requests[req.ID] = rec
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id, projectID string) error {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.requests[id]
	if !ok || rec.ProjectID != projectID {
		return domain.NewNotFound("request", id)
	}
	delete(r.store.data.requests, id)
	delete(r.store.data.history, id)
	return nil
}

func (r *RequestRepository) ListByFolder(ctx context.Context, folderID, projectID string) ([]models.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var records []requestRecord
	for _, rec := range r.store.data.requests {
		if rec.ProjectID == projectID && rec.FolderID == folderID {
			records = append(records, rec)
		}
	}
	return sortRequests(records), nil
}

func (r *RequestRepository) GetAllByProject(ctx context.Context, projectID string) ([]models.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var records []requestRecord
	for _, rec := range r.store.data.requests {
		if rec.ProjectID == projectID {
			records = append(records, rec)
		}
	}
	return sortRequests(records), nil
}

func (r *RequestRepository) NextPosition(ctx context.Context, folderID, projectID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	next := 0
	for _, rec := range r.store.data.requests {
		if rec.ProjectID == projectID && rec.FolderID == folderID && rec.Position >= next {
			next = rec.Position + 1
		}
	}
	return next, nil
}
