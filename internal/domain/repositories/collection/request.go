package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// RequestRepository defines data access operations for saved requests
type RequestRepository interface {
	// Create creates a new request and fills in its ID and timestamps
	Create(ctx context.Context, req *collection.Request) error

	// GetByID retrieves a request by ID
	GetByID(ctx context.Context, id, projectID string) (*collection.Request, error)

	// GetByIDOnly retrieves a request without project scoping
	GetByIDOnly(ctx context.Context, id string) (*collection.Request, error)

	// Update overwrites every column of the request
	Update(ctx context.Context, req *collection.Request) error

	// Delete deletes a request
	Delete(ctx context.Context, id, projectID string) error

	// ListByFolder lists the requests of a folder in position order
	ListByFolder(ctx context.Context, folderID, projectID string) ([]collection.Request, error)

	// GetAllByProject retrieves all requests in a project (flat list, position order)
	GetAllByProject(ctx context.Context, projectID string) ([]collection.Request, error)

	// NextPosition returns the position after the last request of folderID
	NextPosition(ctx context.Context, folderID, projectID string) (int, error)
}
