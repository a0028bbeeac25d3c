package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// TreeService builds nested project trees
type TreeService interface {
	// GetProjectTree returns the project's root folder with all descendants populated
	GetProjectTree(ctx context.Context, projectID string) (*collection.FolderNode, error)
}
