package collection

import (
	"context"
	"time"

	models "lumina/internal/domain/models/collection"
	collectionSvc "lumina/internal/domain/services/collection"
)

// persistence adapts the individual services to the Persistence contract
type persistence struct {
	projects  collectionSvc.ProjectService
	folders   collectionSvc.FolderService
	requests  collectionSvc.RequestService
	tree      collectionSvc.TreeService
	history   collectionSvc.HistoryService
	transfers collectionSvc.TransferService
	shares    collectionSvc.ShareService
	envs      collectionSvc.EnvironmentService
}

// NewPersistence exposes services as a single Persistence
func NewPersistence(s *Services) collectionSvc.Persistence {
	return &persistence{
		projects:  s.Projects,
		folders:   s.Folders,
		requests:  s.Requests,
		tree:      s.Tree,
		history:   s.History,
		transfers: s.Transfer,
		shares:    s.Shares,
		envs:      s.Environments,
	}
}

func (p *persistence) GetFolderTree(ctx context.Context, projectID string) (*models.FolderNode, error) {
	return p.tree.GetProjectTree(ctx, projectID)
}

func (p *persistence) CreateFolder(ctx context.Context, name, parentID string) (*models.Folder, error) {
	return p.folders.CreateFolder(ctx, &collectionSvc.CreateFolderRequest{ParentID: parentID, Name: name})
}

func (p *persistence) RenameFolder(ctx context.Context, id, name string) (*models.Folder, error) {
	return p.folders.RenameFolder(ctx, id, &collectionSvc.UpdateFolderRequest{Name: name})
}

func (p *persistence) DeleteFolder(ctx context.Context, id string) error {
	return p.folders.DeleteFolder(ctx, id)
}

func (p *persistence) MoveFolder(ctx context.Context, id, newParentID string) error {
	_, err := p.folders.MoveFolder(ctx, id, newParentID)
	return err
}

func (p *persistence) CreateRequest(ctx context.Context, folderID, name, method, url string) (*models.Request, error) {
	return p.requests.CreateRequest(ctx, &collectionSvc.CreateRequestRequest{
		FolderID: folderID,
		Name:     name,
		Method:   method,
		URL:      url,
	})
}

func (p *persistence) GetRequest(ctx context.Context, id string) (*models.Request, error) {
	return p.requests.GetRequest(ctx, id)
}

func (p *persistence) UpdateRequest(ctx context.Context, id string, fields models.RequestFields) (*models.Request, error) {
	return p.requests.UpdateRequest(ctx, id, &fields)
}

func (p *persistence) DeleteRequest(ctx context.Context, id string) error {
	return p.requests.DeleteRequest(ctx, id)
}

func (p *persistence) MoveRequest(ctx context.Context, id, newFolderID string) error {
	_, err := p.requests.MoveRequest(ctx, id, newFolderID)
	return err
}

func (p *persistence) ListHistory(ctx context.Context, requestID string, limit int) ([]models.HistoryEntry, error) {
	return p.history.ListHistory(ctx, requestID, limit)
}

func (p *persistence) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	return p.history.AppendHistory(ctx, entry)
}

func (p *persistence) ListProjects(ctx context.Context) ([]models.Project, error) {
	return p.projects.ListProjects(ctx)
}

func (p *persistence) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	return p.projects.CreateProject(ctx, &collectionSvc.CreateProjectRequest{Name: name})
}

func (p *persistence) RenameProject(ctx context.Context, id, name string) (*models.Project, error) {
	return p.projects.RenameProject(ctx, id, &collectionSvc.UpdateProjectRequest{Name: name})
}

func (p *persistence) ActivateProject(ctx context.Context, id string) (*models.Project, error) {
	return p.projects.ActivateProject(ctx, id)
}

func (p *persistence) DeleteProject(ctx context.Context, id string) error {
	return p.projects.DeleteProject(ctx, id)
}

func (p *persistence) ImportDocument(ctx context.Context, projectID, parentID string, tree *models.FolderNode, envs []models.Environment) (*collectionSvc.ImportSummary, error) {
	return p.transfers.ImportDocument(ctx, projectID, parentID, tree, envs)
}

func (p *persistence) ListEnvironments(ctx context.Context, projectID string) ([]models.Environment, error) {
	return p.envs.ListEnvironments(ctx, projectID)
}

func (p *persistence) CreateEnvironment(ctx context.Context, projectID, name string, variables models.KeyValues) (*models.Environment, error) {
	return p.envs.CreateEnvironment(ctx, &collectionSvc.CreateEnvironmentRequest{
		ProjectID: projectID,
		Name:      name,
		Variables: variables,
	})
}

func (p *persistence) UpdateEnvironment(ctx context.Context, id string, name *string, variables models.KeyValues) (*models.Environment, error) {
	return p.envs.UpdateEnvironment(ctx, id, &collectionSvc.UpdateEnvironmentRequest{Name: name, Variables: variables})
}

func (p *persistence) DeleteEnvironment(ctx context.Context, id string) error {
	return p.envs.DeleteEnvironment(ctx, id)
}

func (p *persistence) ActivateEnvironment(ctx context.Context, projectID, id string) error {
	return p.envs.SetActiveEnvironment(ctx, projectID, id)
}

func (p *persistence) BaseEnvironment(ctx context.Context, projectID string) (*models.Environment, error) {
	return p.envs.BaseEnvironment(ctx, projectID)
}

func (p *persistence) ResolveVariables(ctx context.Context, projectID string) (map[string]string, error) {
	return p.envs.Variables(ctx, projectID)
}

func (p *persistence) CreateShare(ctx context.Context, projectID string, readOnly bool, expiresAt *time.Time) (*models.ShareToken, error) {
	return p.shares.CreateShare(ctx, &collectionSvc.CreateShareRequest{
		ProjectID: projectID,
		ReadOnly:  readOnly,
		ExpiresAt: expiresAt,
	})
}

func (p *persistence) ImportShare(ctx context.Context, token string) (*models.Project, error) {
	return p.shares.ImportShare(ctx, token)
}
