package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// CreateRequestRequest represents a request to create a saved HTTP request
type CreateRequestRequest struct {
	FolderID string `json:"folder_id"`
	Name     string `json:"name"`
	Method   string `json:"method"`
	URL      string `json:"url"`
}

// RequestService defines business logic operations for saved requests
type RequestService interface {
	// CreateRequest appends a new request to a folder
	CreateRequest(ctx context.Context, req *CreateRequestRequest) (*collection.Request, error)

	// GetRequest retrieves a request
	GetRequest(ctx context.Context, id string) (*collection.Request, error)

	// UpdateRequest overwrites every editable field (last write wins)
	UpdateRequest(ctx context.Context, id string, fields *collection.RequestFields) (*collection.Request, error)

	// MoveRequest appends a request to another folder
	MoveRequest(ctx context.Context, id, targetFolderID string) (*collection.Request, error)

	// DeleteRequest deletes a request and its history
	DeleteRequest(ctx context.Context, id string) error
}
