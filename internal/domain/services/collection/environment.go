package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// CreateEnvironmentRequest represents a request to create an environment
type CreateEnvironmentRequest struct {
	ProjectID string               `json:"project_id"`
	Name      string               `json:"name"`
	IsBase    bool                 `json:"is_base"`
	Variables collection.KeyValues `json:"variables"`
}

// UpdateEnvironmentRequest represents a request to rename an environment or
// replace its variables. Nil fields are left unchanged.
type UpdateEnvironmentRequest struct {
	Name      *string              `json:"name,omitempty"`
	Variables collection.KeyValues `json:"variables,omitempty"`
}

// EnvironmentService defines business logic operations for environments
type EnvironmentService interface {
	// ListEnvironments returns the project's environments, base first
	ListEnvironments(ctx context.Context, projectID string) ([]collection.Environment, error)

	// CreateEnvironment creates an environment. A project has at most one base environment.
	CreateEnvironment(ctx context.Context, req *CreateEnvironmentRequest) (*collection.Environment, error)

	// UpdateEnvironment renames an environment or replaces its variables
	UpdateEnvironment(ctx context.Context, id string, req *UpdateEnvironmentRequest) (*collection.Environment, error)

	// DeleteEnvironment removes an environment
	DeleteEnvironment(ctx context.Context, id string) error

	// BaseEnvironment returns the project's base environment, creating an empty one if needed
	BaseEnvironment(ctx context.Context, projectID string) (*collection.Environment, error)

	// GetActiveEnvironment returns the active environment, or nil when none is selected
	GetActiveEnvironment(ctx context.Context, projectID string) (*collection.Environment, error)

	// SetActiveEnvironment selects the active environment. An empty id clears the selection.
	SetActiveEnvironment(ctx context.Context, projectID, id string) error

	// Variables returns the effective variables of a project: base values
	// overridden by the active environment's non-empty values.
	Variables(ctx context.Context, projectID string) (map[string]string, error)
}
