package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// EnvironmentRepository defines data access operations for environments
type EnvironmentRepository interface {
	// Create stores env with a generated ID and timestamps. A second base
	// environment in the same project is a ConflictError.
	Create(ctx context.Context, env *collection.Environment) error

	// GetByID retrieves an environment by ID
	GetByID(ctx context.Context, id string) (*collection.Environment, error)

	// ListByProject returns the project's environments, base first, then by creation
	ListByProject(ctx context.Context, projectID string) ([]collection.Environment, error)

	// Update replaces name and variables
	Update(ctx context.Context, env *collection.Environment) error

	// SetActive makes id the project's only active environment. An empty id
	// deactivates all of them.
	SetActive(ctx context.Context, projectID, id string) error

	// Delete removes an environment
	Delete(ctx context.Context, id string) error
}
