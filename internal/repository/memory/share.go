package memory

import (
	"context"
	"fmt"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
)

// ShareRepository implements the ShareRepository interface
type ShareRepository struct {
	store *Store
}

// NewShareRepository creates a share repository over store
func NewShareRepository(store *Store) collectionRepo.ShareRepository {
	return &ShareRepository{store: store}
}

func (r *ShareRepository) Create(ctx context.Context, share *models.ShareToken) error {
	defer r.store.lock(ctx)()

	if existing, ok := r.store.data.shares[share.ID]; ok && !existing.Expired(r.store.now()) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("share %s already exists", share.ID),
			ResourceType: "share",
			ResourceID:   share.ID,
		}
	}
	stored := *share
	if share.Tree != nil {
		stored.Tree = share.Tree.Clone()
	}
	r.store.data.shares[share.ID] = stored
	return nil
}

// Get purges the token when it has expired
func (r *ShareRepository) Get(ctx context.Context, id string) (*models.ShareToken, error) {
	defer r.store.lock(ctx)()

	share, ok := r.store.data.shares[id]
	if !ok {
		return nil, domain.NewNotFound("share", id)
	}
	if share.Expired(r.store.now()) {
		delete(r.store.data.shares, id)
		return nil, domain.NewNotFound("share", id)
	}
	if share.Tree != nil {
		share.Tree = share.Tree.Clone()
	}
	return &share, nil
}

func (r *ShareRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	delete(r.store.data.shares, id)
	return nil
}
