package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// CreateFolderRequest represents a request to create a folder
type CreateFolderRequest struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

// UpdateFolderRequest represents a folder rename
type UpdateFolderRequest struct {
	Name string `json:"name"`
}

// MoveRequest names the destination folder of a move
type MoveRequest struct {
	TargetFolderID string `json:"target_folder_id"`
}

// FolderService defines business logic operations for folders
type FolderService interface {
	// CreateFolder appends a new folder under ParentID
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*collection.Folder, error)

	// GetFolder retrieves a folder
	GetFolder(ctx context.Context, id string) (*collection.Folder, error)

	// RenameFolder renames a non-root folder
	RenameFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*collection.Folder, error)

	// MoveFolder reparents a folder, appending it to the target's children.
	// Fails with RootFolderError, SelfMoveError or CycleError without writing.
	MoveFolder(ctx context.Context, id, targetFolderID string) (*collection.Folder, error)

	// DeleteFolder deletes a non-root folder and everything beneath it
	DeleteFolder(ctx context.Context, id string) error
}
