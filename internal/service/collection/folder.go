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

type folderService struct {
	folderRepo collectionRepo.FolderRepository
	txManager  repositories.TransactionManager
	locker     repositories.ProjectLocker
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo collectionRepo.FolderRepository,
	txManager repositories.TransactionManager,
	locker repositories.ProjectLocker,
	logger *slog.Logger,
) collectionSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		txManager:  txManager,
		locker:     locker,
		logger:     logger,
	}
}

// CreateFolder appends a new folder to the parent's children
func (s *folderService) CreateFolder(ctx context.Context, req *collectionSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		parent, err := s.lockFolder(txCtx, req.ParentID)
		if err != nil {
			return err
		}

		pos, err := s.folderRepo.NextPosition(txCtx, parent.ID, parent.ProjectID)
		if err != nil {
			return err
		}

		now := time.Now()
		folder = &models.Folder{
			ProjectID: parent.ProjectID,
			ParentID:  &parent.ID,
			Name:      strings.TrimSpace(req.Name),
			Position:  pos,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"project_id", folder.ProjectID,
		"parent_id", req.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByIDOnly(ctx, id)
}

// RenameFolder renames a folder. The root keeps its name.
func (s *folderService) RenameFolder(ctx context.Context, id string, req *collectionSvc.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.IsRoot() {
		return nil, &domain.RootFolderError{Op: "rename", FolderID: id}
	}

	folder.Name = strings.TrimSpace(req.Name)
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "name", folder.Name)

	return folder, nil
}

// MoveFolder detaches a folder and appends it to the target's children.
// The root cannot move, a folder cannot move into itself, and a folder cannot
// move into one of its descendants. Nothing is written when a check fails.
func (s *folderService) MoveFolder(ctx context.Context, id, targetFolderID string) (*models.Folder, error) {
	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		folder, err = s.lockFolder(txCtx, id)
		if err != nil {
			return err
		}
		if folder.IsRoot() {
			return &domain.RootFolderError{Op: "move", FolderID: id}
		}
		if targetFolderID == id {
			return &domain.SelfMoveError{FolderID: id}
		}

		target, err := s.folderRepo.GetByID(txCtx, targetFolderID, folder.ProjectID)
		if err != nil {
			return err
		}
		if err := s.validateNoCircularReference(txCtx, id, target); err != nil {
			return err
		}

		pos, err := s.folderRepo.NextPosition(txCtx, target.ID, folder.ProjectID)
		if err != nil {
			return err
		}
		folder.ParentID = &target.ID
		folder.Position = pos
		folder.UpdatedAt = time.Now()
		return s.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", folder.ID,
		"parent_id", targetFolderID,
		"position", folder.Position,
	)

	return folder, nil
}

// DeleteFolder deletes a folder with everything beneath it
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.lockFolder(txCtx, id)
		if err != nil {
			return err
		}
		if folder.IsRoot() {
			return &domain.RootFolderError{Op: "delete", FolderID: id}
		}
		return s.folderRepo.Delete(txCtx, id, folder.ProjectID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", id)

	return nil
}

// lockFolder takes the project lock for the folder's project and re-reads the
// folder under it. A folder never changes project, so the first read is safe.
func (s *folderService) lockFolder(ctx context.Context, id string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.locker.LockProject(ctx, folder.ProjectID); err != nil {
		return nil, err
	}
	return s.folderRepo.GetByID(ctx, id, folder.ProjectID)
}

// validateNoCircularReference walks the ancestor chain of target up to the root
// and fails if folderID is on it.
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID string, target *models.Folder) error {
	current := target
	for current.ParentID != nil {
		if *current.ParentID == folderID {
			return &domain.CycleError{FolderID: folderID, TargetID: target.ID}
		}
		parent, err := s.folderRepo.GetByID(ctx, *current.ParentID, target.ProjectID)
		if err != nil {
			return err
		}
		current = parent
	}
	return nil
}

// validateCreateRequest validates a create folder request
func (s *folderService) validateCreateRequest(req *collectionSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ParentID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.By(notBlank),
		),
	)
}

// validateUpdateRequest validates a rename folder request
func (s *folderService) validateUpdateRequest(req *collectionSvc.UpdateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.By(notBlank),
		),
	)
}
