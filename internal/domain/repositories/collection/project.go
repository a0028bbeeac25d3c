package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// Create creates a new project and returns it with generated ID and timestamps
	Create(ctx context.Context, project *collection.Project) error

	// GetByID retrieves a project by ID
	GetByID(ctx context.Context, id string) (*collection.Project, error)

	// GetActive retrieves the active project
	GetActive(ctx context.Context) (*collection.Project, error)

	// List retrieves all projects, ordered by updated_at DESC
	List(ctx context.Context) ([]collection.Project, error)

	// Update updates a project's name and updated_at timestamp
	Update(ctx context.Context, project *collection.Project) error

	// SetActive marks id active and every other project inactive
	SetActive(ctx context.Context, id string) error

	// Delete hard-deletes a project; folders, requests and history go with it
	Delete(ctx context.Context, id string) error
}
