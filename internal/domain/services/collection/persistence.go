package collection

import (
	"context"
	"time"

	"lumina/internal/domain/models/collection"
)

// Persistence is the store contract the client core depends on.
type Persistence interface {
	GetFolderTree(ctx context.Context, projectID string) (*collection.FolderNode, error)

	CreateFolder(ctx context.Context, name, parentID string) (*collection.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (*collection.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
	MoveFolder(ctx context.Context, id, newParentID string) error

	CreateRequest(ctx context.Context, folderID, name, method, url string) (*collection.Request, error)
	GetRequest(ctx context.Context, id string) (*collection.Request, error)
	UpdateRequest(ctx context.Context, id string, fields collection.RequestFields) (*collection.Request, error)
	DeleteRequest(ctx context.Context, id string) error
	MoveRequest(ctx context.Context, id, newFolderID string) error

	ListHistory(ctx context.Context, requestID string, limit int) ([]collection.HistoryEntry, error)
	AppendHistory(ctx context.Context, entry *collection.HistoryEntry) error

	ListProjects(ctx context.Context) ([]collection.Project, error)
	CreateProject(ctx context.Context, name string) (*collection.Project, error)
	RenameProject(ctx context.Context, id, name string) (*collection.Project, error)
	ActivateProject(ctx context.Context, id string) (*collection.Project, error)
	DeleteProject(ctx context.Context, id string) error

	ImportDocument(ctx context.Context, projectID, parentID string, tree *collection.FolderNode, envs []collection.Environment) (*ImportSummary, error)

	ListEnvironments(ctx context.Context, projectID string) ([]collection.Environment, error)
	CreateEnvironment(ctx context.Context, projectID, name string, variables collection.KeyValues) (*collection.Environment, error)
	UpdateEnvironment(ctx context.Context, id string, name *string, variables collection.KeyValues) (*collection.Environment, error)
	DeleteEnvironment(ctx context.Context, id string) error
	ActivateEnvironment(ctx context.Context, projectID, id string) error
	BaseEnvironment(ctx context.Context, projectID string) (*collection.Environment, error)
	ResolveVariables(ctx context.Context, projectID string) (map[string]string, error)

	CreateShare(ctx context.Context, projectID string, readOnly bool, expiresAt *time.Time) (*collection.ShareToken, error)
	ImportShare(ctx context.Context, token string) (*collection.Project, error)
}
