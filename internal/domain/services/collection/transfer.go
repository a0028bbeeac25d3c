package collection

import (
	"context"

	"lumina/internal/domain/models/collection"
)

// ImportCollectionRequest carries an external collection document
type ImportCollectionRequest struct {
	ProjectID string
	FolderID  string // empty = project root
	Format    string
	Data      []byte
}

// ImportSummary reports what an import created
type ImportSummary struct {
	ImportedCount    int    `json:"imported_count"`
	FolderCount      int    `json:"folder_count"`
	EnvironmentCount int    `json:"environment_count,omitempty"`
	TargetFolder     string `json:"target_folder_id"`
}

// TransferService converts trees to and from external collection formats
type TransferService interface {
	// ImportCollection parses the document and persists the resulting tree atomically.
	// An unknown project or target folder is a NotFoundError; every other failure
	// is an ImportError and leaves nothing behind.
	ImportCollection(ctx context.Context, req *ImportCollectionRequest) (*ImportSummary, error)

	// ImportTree persists a detached tree beneath parentID in one transaction.
	// The children of tree are attached; tree itself only names the collection.
	ImportTree(ctx context.Context, projectID, parentID string, tree *collection.FolderNode) (*ImportSummary, error)

	// ImportDocument persists a parsed document in one transaction: the children
	// of tree beneath parentID, then envs into the project's environments.
	ImportDocument(ctx context.Context, projectID, parentID string, tree *collection.FolderNode, envs []collection.Environment) (*ImportSummary, error)

	// ExportCollection renders the project's tree in the given format
	ExportCollection(ctx context.Context, projectID, format string) ([]byte, error)
}
