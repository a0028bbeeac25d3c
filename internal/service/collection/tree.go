package collection

import (
	"context"
	"log/slog"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
	collectionSvc "lumina/internal/domain/services/collection"
)

// treeService implements the TreeService interface
type treeService struct {
	projectRepo collectionRepo.ProjectRepository
	folderRepo  collectionRepo.FolderRepository
	requestRepo collectionRepo.RequestRepository
	logger      *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	projectRepo collectionRepo.ProjectRepository,
	folderRepo collectionRepo.FolderRepository,
	requestRepo collectionRepo.RequestRepository,
	logger *slog.Logger,
) collectionSvc.TreeService {
	return &treeService{
		projectRepo: projectRepo,
		folderRepo:  folderRepo,
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// GetProjectTree builds the nested folder/request tree for a project
func (s *treeService) GetProjectTree(ctx context.Context, projectID string) (*models.FolderNode, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	allFolders, err := s.folderRepo.GetAllByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	allRequests, err := s.requestRepo.GetAllByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// Build folder hierarchy using 3-pass algorithm
	folderMap := make(map[string]*models.FolderNode, len(allFolders))
	var root *models.FolderNode

	// First pass: create all folder nodes
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderNode{
			ID:       folder.ID,
			Name:     folder.Name,
			ParentID: folder.ParentID,
			Position: folder.Position,
			Folders:  []*models.FolderNode{},
			Requests: []*models.Request{},
		}
	}

	// Second pass: nest folders (lists arrive in position order)
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			root = node
			continue
		}
		if parent, exists := folderMap[*folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		} else {
			s.logger.Warn("orphan folder skipped", "id", folder.ID, "parent_id", *folder.ParentID)
		}
	}

	if root == nil {
		return nil, domain.NewNotFound("root folder", projectID)
	}

	// Third pass: attach requests to their folders
	for i := range allRequests {
		req := allRequests[i]
		if parent, exists := folderMap[req.FolderID]; exists {
			parent.Requests = append(parent.Requests, &req)
		}
	}

	return root, nil
}
