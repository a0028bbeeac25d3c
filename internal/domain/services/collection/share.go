package collection

import (
	"context"
	"time"

	"lumina/internal/domain/models/collection"
)

// CreateShareRequest represents a request to share a project snapshot
type CreateShareRequest struct {
	ProjectID string     `json:"project_id"`
	ReadOnly  bool       `json:"read_only"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ShareService creates and redeems share tokens
type ShareService interface {
	// CreateShare snapshots the project's tree under a new token
	CreateShare(ctx context.Context, req *CreateShareRequest) (*collection.ShareToken, error)

	// GetShare returns an unexpired token
	GetShare(ctx context.Context, token string) (*collection.ShareToken, error)

	// ImportShare materializes the snapshot as a brand-new project
	ImportShare(ctx context.Context, token string) (*collection.Project, error)
}
