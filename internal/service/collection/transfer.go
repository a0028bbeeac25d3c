package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"lumina/internal/config"
	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	"lumina/internal/domain/repositories"
	collectionRepo "lumina/internal/domain/repositories/collection"
	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/format"
)

type transferService struct {
	projectRepo collectionRepo.ProjectRepository
	folderRepo  collectionRepo.FolderRepository
	requestRepo collectionRepo.RequestRepository
	envRepo     collectionRepo.EnvironmentRepository
	treeService collectionSvc.TreeService
	validator   *ResourceValidator
	registry    *format.Registry
	txManager   repositories.TransactionManager
	locker      repositories.ProjectLocker
	logger      *slog.Logger
}

// NewTransferService creates a service that moves trees in and out of
// external collection formats through registry.
func NewTransferService(
	projectRepo collectionRepo.ProjectRepository,
	folderRepo collectionRepo.FolderRepository,
	requestRepo collectionRepo.RequestRepository,
	envRepo collectionRepo.EnvironmentRepository,
	treeService collectionSvc.TreeService,
	validator *ResourceValidator,
	registry *format.Registry,
	txManager repositories.TransactionManager,
	locker repositories.ProjectLocker,
	logger *slog.Logger,
) collectionSvc.TransferService {
	return &transferService{
		projectRepo: projectRepo,
		folderRepo:  folderRepo,
		requestRepo: requestRepo,
		envRepo:     envRepo,
		treeService: treeService,
		validator:   validator,
		registry:    registry,
		txManager:   txManager,
		locker:      locker,
		logger:      logger,
	}
}

// ImportCollection parses the document, then persists the whole tree and any
// environments it carries in one transaction. Parse and persist failures come
// back as ImportError.
func (s *transferService) ImportCollection(ctx context.Context, req *collectionSvc.ImportCollectionRequest) (*collectionSvc.ImportSummary, error) {
	f, err := format.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if req.FolderID != "" {
		if err := s.validator.ValidateFolder(ctx, req.FolderID, req.ProjectID); err != nil {
			return nil, err
		}
	}
	if len(req.Data) == 0 {
		return nil, &domain.ImportError{Format: string(f), Reason: "empty document"}
	}
	if len(req.Data) > config.MaxImportDocumentBytes {
		return nil, &domain.ImportError{Format: string(f), Reason: fmt.Sprintf("document exceeds %d bytes", config.MaxImportDocumentBytes)}
	}

	tree, err := s.registry.Import(f, req.Data)
	if err != nil {
		s.logger.Warn("collection rejected", "format", f, "project_id", req.ProjectID, "error", err)
		return nil, &domain.ImportError{Format: string(f), Reason: err.Error(), Err: err}
	}

	envs, err := s.registry.ImportEnvironments(f, req.Data)
	if err != nil {
		s.logger.Warn("environments rejected", "format", f, "project_id", req.ProjectID, "error", err)
		return nil, &domain.ImportError{Format: string(f), Reason: err.Error(), Err: err}
	}

	summary, err := s.ImportDocument(ctx, req.ProjectID, req.FolderID, tree, envs)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, &domain.ImportError{Format: string(f), Reason: "persist imported tree", Err: err}
	}

	s.logger.Info("collection imported",
		"format", f,
		"project_id", req.ProjectID,
		"folder_id", summary.TargetFolder,
		"requests", summary.ImportedCount,
		"folders", summary.FolderCount,
		"environments", summary.EnvironmentCount,
	)

	return summary, nil
}

// ImportTree creates the children of tree beneath parentID with fresh ids.
// An empty parentID means the project root. Either every node is created or none.
func (s *transferService) ImportTree(ctx context.Context, projectID, parentID string, tree *models.FolderNode) (*collectionSvc.ImportSummary, error) {
	if tree == nil {
		return nil, &domain.ValidationError{Message: "nothing to import"}
	}

	summary := &collectionSvc.ImportSummary{}
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.importTree(txCtx, projectID, parentID, tree, summary)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ImportDocument creates the tree and the environments of one document atomically
func (s *transferService) ImportDocument(ctx context.Context, projectID, parentID string, tree *models.FolderNode, envs []models.Environment) (*collectionSvc.ImportSummary, error) {
	if tree == nil {
		return nil, &domain.ValidationError{Message: "nothing to import"}
	}

	summary := &collectionSvc.ImportSummary{}
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.importTree(txCtx, projectID, parentID, tree, summary); err != nil {
			return err
		}
		return s.importEnvironments(txCtx, projectID, envs, summary)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *transferService) importTree(ctx context.Context, projectID, parentID string, tree *models.FolderNode, summary *collectionSvc.ImportSummary) error {
	if err := s.validator.ValidateProject(ctx, projectID); err != nil {
		return err
	}
	if err := s.locker.LockProject(ctx, projectID); err != nil {
		return err
	}

	var parent *models.Folder
	var err error
	if parentID == "" {
		parent, err = s.folderRepo.GetRoot(ctx, projectID)
	} else {
		parent, err = s.folderRepo.GetByID(ctx, parentID, projectID)
	}
	if err != nil {
		return err
	}
	summary.TargetFolder = parent.ID

	return s.createChildren(ctx, projectID, parent.ID, tree, summary, time.Now())
}

// importEnvironments merges an imported base environment into the project's
// base and adds the others. The imported environment marked active is selected
// only when the project has no active environment yet.
func (s *transferService) importEnvironments(ctx context.Context, projectID string, envs []models.Environment, summary *collectionSvc.ImportSummary) error {
	if len(envs) == 0 {
		return nil
	}
	existing, err := s.envRepo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	var base *models.Environment
	hasActive := false
	for i := range existing {
		if existing[i].IsBase {
			base = &existing[i]
		}
		hasActive = hasActive || existing[i].IsActive
	}

	activate := ""
	for _, imported := range envs {
		if imported.IsBase && base != nil {
			for _, kv := range imported.Variables {
				base.Variables = base.Variables.Set(kv.Key, kv.Value)
			}
			if err := s.envRepo.Update(ctx, base); err != nil {
				return fmt.Errorf("merge base environment: %w", err)
			}
			summary.EnvironmentCount++
			continue
		}

		env := &models.Environment{
			ProjectID: projectID,
			Name:      clampName(imported.Name, "Imported Environment", config.MaxEnvironmentNameLength),
			IsBase:    imported.IsBase,
			Variables: imported.Variables,
		}
		if err := s.envRepo.Create(ctx, env); err != nil {
			return fmt.Errorf("create environment %q: %w", imported.Name, err)
		}
		summary.EnvironmentCount++
		if imported.IsActive && !imported.IsBase && activate == "" {
			activate = env.ID
		}
	}

	if activate == "" || hasActive {
		return nil
	}
	return s.envRepo.SetActive(ctx, projectID, activate)
}

func (s *transferService) createChildren(ctx context.Context, projectID, parentID string, node *models.FolderNode, summary *collectionSvc.ImportSummary, now time.Time) error {
	folderPos, err := s.folderRepo.NextPosition(ctx, parentID, projectID)
	if err != nil {
		return err
	}
	for _, child := range node.Folders {
		folder := &models.Folder{
			ProjectID: projectID,
			ParentID:  &parentID,
			Name:      clampName(child.Name, "Unnamed Folder", config.MaxFolderNameLength),
			Position:  folderPos,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return fmt.Errorf("create folder %q: %w", child.Name, err)
		}
		folderPos++
		summary.FolderCount++

		if err := s.createChildren(ctx, projectID, folder.ID, child, summary, now); err != nil {
			return err
		}
	}

	reqPos, err := s.requestRepo.NextPosition(ctx, parentID, projectID)
	if err != nil {
		return err
	}
	for _, src := range node.Requests {
		req := &models.Request{
			ProjectID: projectID,
			FolderID:  parentID,
			Position:  reqPos,
			CreatedAt: now,
			UpdatedAt: now,
		}
		fields := src.Fields()
		fields.Name = clampName(fields.Name, "Unnamed Request", config.MaxRequestNameLength)
		fields.Method = strings.ToUpper(fields.Method)
		if fields.Method == "" {
			fields.Method = "GET"
		}
		if fields.Body.Type == "" {
			fields.Body.Type = models.BodyTypeNone
		}
		req.Apply(fields)

		if err := s.requestRepo.Create(ctx, req); err != nil {
			return fmt.Errorf("create request %q: %w", src.Name, err)
		}
		reqPos++
		summary.ImportedCount++
	}
	return nil
}

// ExportCollection renders the project's tree in the named format
func (s *transferService) ExportCollection(ctx context.Context, projectID, formatName string) ([]byte, error) {
	f, err := format.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tree, err := s.treeService.GetProjectTree(ctx, projectID)
	if err != nil {
		return nil, err
	}

	data, err := s.registry.Export(f, project.Name, tree)
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection exported",
		"format", f,
		"project_id", projectID,
		"requests", tree.CountRequests(),
		"bytes", len(data),
	)

	return data, nil
}

// clampName trims a name, substitutes fallback when blank, and cuts it to max runes
func clampName(name, fallback string, max int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if utf8.RuneCountInString(name) <= max {
		return name
	}
	return string([]rune(name)[:max])
}
