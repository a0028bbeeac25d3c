package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// UpdateProjectRequest represents a request to rename a project
type UpdateProjectRequest struct {
	Name string `json:"name"`
}

// ProjectService defines business logic operations for projects
type ProjectService interface {
	// CreateProject creates a project together with its root folder.
	// The first project ever created becomes active.
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*collection.Project, error)

	// GetProject retrieves a project by ID
	GetProject(ctx context.Context, id string) (*collection.Project, error)

	// GetActiveProject retrieves the single active project
	GetActiveProject(ctx context.Context) (*collection.Project, error)

	// ListProjects retrieves all projects
	ListProjects(ctx context.Context) ([]collection.Project, error)

	// RenameProject updates a project's name
	RenameProject(ctx context.Context, id string, req *UpdateProjectRequest) (*collection.Project, error)

	// ActivateProject makes id the only active project
	ActivateProject(ctx context.Context, id string) (*collection.Project, error)

	// DeleteProject deletes a project and everything it owns. Deleting the active
	// project activates the most recently updated remaining one.
	DeleteProject(ctx context.Context, id string) error
}
