package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// ShareRepository stores share tokens. Expired tokens are never returned.
type ShareRepository interface {
	// Create stores the token; returns a ConflictError if the ID is taken
	Create(ctx context.Context, share *collection.ShareToken) error

	// Get returns the token or a NotFoundError if it is unknown or expired
	Get(ctx context.Context, id string) (*collection.ShareToken, error)

	// Delete removes the token
	Delete(ctx context.Context, id string) error
}
