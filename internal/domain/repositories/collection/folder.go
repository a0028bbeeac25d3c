package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder and fills in its ID and timestamps
	Create(ctx context.Context, folder *collection.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id, projectID string) (*collection.Folder, error)

	// GetByIDOnly retrieves a folder without project scoping
	GetByIDOnly(ctx context.Context, id string) (*collection.Folder, error)

	// GetRoot retrieves the project's root folder
	GetRoot(ctx context.Context, projectID string) (*collection.Folder, error)

	// Update writes name, parent and position
	Update(ctx context.Context, folder *collection.Folder) error

	// Delete deletes a single folder row
	Delete(ctx context.Context, id, projectID string) error

	// ListChildren lists immediate child folders in position order
	ListChildren(ctx context.Context, folderID, projectID string) ([]collection.Folder, error)

	// GetAllByProject retrieves all folders in a project (flat list, position order)
	GetAllByProject(ctx context.Context, projectID string) ([]collection.Folder, error)

	// NextPosition returns the position after the last child folder of parentID
	NextPosition(ctx context.Context, parentID, projectID string) (int, error)
}
