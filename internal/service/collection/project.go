package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lumina/internal/config"
	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	"lumina/internal/domain/repositories"
	collectionRepo "lumina/internal/domain/repositories/collection"
	collectionSvc "lumina/internal/domain/services/collection"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RootFolderName names the folder every project is created with
const RootFolderName = "Root"

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo collectionRepo.ProjectRepository
	folderRepo  collectionRepo.FolderRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo collectionRepo.ProjectRepository,
	folderRepo collectionRepo.FolderRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) collectionSvc.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		folderRepo:  folderRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateProject creates a project and its root folder in one transaction
func (s *projectService) CreateProject(ctx context.Context, req *collectionSvc.CreateProjectRequest) (*models.Project, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var project *models.Project
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		existing, err := s.projectRepo.List(txCtx)
		if err != nil {
			return err
		}

		now := time.Now()
		project = &models.Project{
			Name:      strings.TrimSpace(req.Name),
			IsActive:  len(existing) == 0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.projectRepo.Create(txCtx, project); err != nil {
			return err
		}

		root := &models.Folder{
			ProjectID: project.ID,
			Name:      RootFolderName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.folderRepo.Create(txCtx, root); err != nil {
			return fmt.Errorf("create root folder: %w", err)
		}
		project.RootFolderID = root.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"name", project.Name,
		"active", project.IsActive,
		"root_folder_id", project.RootFolderID,
	)

	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// GetActiveProject retrieves the active project
func (s *projectService) GetActiveProject(ctx context.Context) (*models.Project, error) {
	return s.projectRepo.GetActive(ctx)
}

// ListProjects retrieves all projects, most recently updated first
func (s *projectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.projectRepo.List(ctx)
}

// RenameProject updates a project's name
func (s *projectService) RenameProject(ctx context.Context, id string, req *collectionSvc.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Name = strings.TrimSpace(req.Name)
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project renamed", "id", project.ID, "name", project.Name)

	return project, nil
}

// ActivateProject makes id the single active project
func (s *projectService) ActivateProject(ctx context.Context, id string) (*models.Project, error) {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.projectRepo.SetActive(txCtx, id)
	})
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("project activated", "id", project.ID, "name", project.Name)

	return project, nil
}

// DeleteProject deletes a project with its folders, requests and history.
// When the active project goes, the most recently updated survivor is activated.
func (s *projectService) DeleteProject(ctx context.Context, id string) error {
	var promoted string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.projectRepo.Delete(txCtx, id); err != nil {
			return err
		}
		if !project.IsActive {
			return nil
		}

		remaining, err := s.projectRepo.List(txCtx)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return nil
		}
		promoted = remaining[0].ID
		return s.projectRepo.SetActive(txCtx, promoted)
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted", "id", id, "activated", promoted)

	return nil
}

// validateCreateRequest validates a create project request
func (s *projectService) validateCreateRequest(req *collectionSvc.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxProjectNameLength),
			validation.By(notBlank),
		),
	)
}

// validateUpdateRequest validates a rename project request
func (s *projectService) validateUpdateRequest(req *collectionSvc.UpdateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxProjectNameLength),
			validation.By(notBlank),
		),
	)
}
