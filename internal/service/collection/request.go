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

type requestService struct {
	requestRepo collectionRepo.RequestRepository
	folderRepo  collectionRepo.FolderRepository
	txManager   repositories.TransactionManager
	locker      repositories.ProjectLocker
	logger      *slog.Logger
}

// NewRequestService creates a new request service
func NewRequestService(
	requestRepo collectionRepo.RequestRepository,
	folderRepo collectionRepo.FolderRepository,
	txManager repositories.TransactionManager,
	locker repositories.ProjectLocker,
	logger *slog.Logger,
) collectionSvc.RequestService {
	return &requestService{
		requestRepo: requestRepo,
		folderRepo:  folderRepo,
		txManager:   txManager,
		locker:      locker,
		logger:      logger,
	}
}

// CreateRequest appends an empty request to a folder
func (s *requestService) CreateRequest(ctx context.Context, req *collectionSvc.CreateRequestRequest) (*models.Request, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = "GET"
	}

	var created *models.Request
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.folderRepo.GetByIDOnly(txCtx, req.FolderID)
		if err != nil {
			return err
		}
		if err := s.locker.LockProject(txCtx, folder.ProjectID); err != nil {
			return err
		}

		pos, err := s.requestRepo.NextPosition(txCtx, folder.ID, folder.ProjectID)
		if err != nil {
			return err
		}

		now := time.Now()
		created = &models.Request{
			ProjectID: folder.ProjectID,
			FolderID:  folder.ID,
			Name:      strings.TrimSpace(req.Name),
			Method:    method,
			URL:       req.URL,
			Headers:   models.KeyValues{},
			Params:    models.KeyValues{},
			Body:      models.Body{Type: models.BodyTypeNone},
			Auth:      models.NoAuth{},
			Position:  pos,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.requestRepo.Create(txCtx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request created",
		"id", created.ID,
		"name", created.Name,
		"folder_id", created.FolderID,
		"project_id", created.ProjectID,
	)

	return created, nil
}

// GetRequest retrieves a request
func (s *requestService) GetRequest(ctx context.Context, id string) (*models.Request, error) {
	return s.requestRepo.GetByIDOnly(ctx, id)
}

// UpdateRequest writes the full snapshot of editable fields. There is no version
// check: concurrent writers overwrite each other.
func (s *requestService) UpdateRequest(ctx context.Context, id string, fields *models.RequestFields) (*models.Request, error) {
	if fields == nil {
		return nil, &domain.ValidationError{Message: "request fields are required"}
	}
	if err := s.validateFields(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	req, err := s.requestRepo.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}

	normalized := *fields
	normalized.Name = strings.TrimSpace(normalized.Name)
	normalized.Method = strings.ToUpper(normalized.Method)
	if normalized.Method == "" {
		normalized.Method = "GET"
	}
	if normalized.Body.Type == "" {
		normalized.Body.Type = models.BodyTypeNone
	}
	req.Apply(normalized)
	req.UpdatedAt = time.Now()

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Debug("request saved", "id", req.ID, "method", req.Method, "url", req.URL)

	return req, nil
}

// MoveRequest detaches a request and appends it to the target folder
func (s *requestService) MoveRequest(ctx context.Context, id, targetFolderID string) (*models.Request, error) {
	var req *models.Request
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.requestRepo.GetByIDOnly(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.locker.LockProject(txCtx, current.ProjectID); err != nil {
			return err
		}
		req, err = s.requestRepo.GetByID(txCtx, id, current.ProjectID)
		if err != nil {
			return err
		}

		target, err := s.folderRepo.GetByID(txCtx, targetFolderID, req.ProjectID)
		if err != nil {
			return err
		}
		pos, err := s.requestRepo.NextPosition(txCtx, target.ID, req.ProjectID)
		if err != nil {
			return err
		}

		req.FolderID = target.ID
		req.Position = pos
		req.UpdatedAt = time.Now()
		return s.requestRepo.Update(txCtx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request moved", "id", req.ID, "folder_id", req.FolderID, "position", req.Position)

	return req, nil
}

// DeleteRequest deletes a request and its history
func (s *requestService) DeleteRequest(ctx context.Context, id string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		req, err := s.requestRepo.GetByIDOnly(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.locker.LockProject(txCtx, req.ProjectID); err != nil {
			return err
		}
		return s.requestRepo.Delete(txCtx, id, req.ProjectID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("request deleted", "id", id)

	return nil
}

// validateCreateRequest validates a create request request
func (s *requestService) validateCreateRequest(req *collectionSvc.CreateRequestRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxRequestNameLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Method, methodRule),
		validation.Field(&req.URL, validation.Length(0, config.MaxURLLength)),
	)
}

// validateFields validates an editor snapshot
func (s *requestService) validateFields(f *models.RequestFields) error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Name,
			validation.Required,
			validation.Length(1, config.MaxRequestNameLength),
			validation.By(notBlank),
		),
		validation.Field(&f.Method, methodRule),
		validation.Field(&f.URL, validation.Length(0, config.MaxURLLength)),
		validation.Field(&f.Body, validation.By(validBody)),
	)
}

func validBody(value interface{}) error {
	b, _ := value.(models.Body)
	switch b.Type {
	case "", models.BodyTypeNone, models.BodyTypeRaw:
		return nil
	}
	return fmt.Errorf("unknown body type %q", b.Type)
}
