package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lumina/internal/config"
	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	"lumina/internal/domain/repositories"
	collectionRepo "lumina/internal/domain/repositories/collection"
	collectionSvc "lumina/internal/domain/services/collection"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// environmentService implements the EnvironmentService interface
type environmentService struct {
	envRepo     collectionRepo.EnvironmentRepository
	projectRepo collectionRepo.ProjectRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewEnvironmentService creates a new environment service
func NewEnvironmentService(
	envRepo collectionRepo.EnvironmentRepository,
	projectRepo collectionRepo.ProjectRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) collectionSvc.EnvironmentService {
	return &environmentService{
		envRepo:     envRepo,
		projectRepo: projectRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

func (s *environmentService) ListEnvironments(ctx context.Context, projectID string) ([]models.Environment, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.envRepo.ListByProject(ctx, projectID)
}

// CreateEnvironment validates and stores a new environment
func (s *environmentService) CreateEnvironment(ctx context.Context, req *collectionSvc.CreateEnvironmentRequest) (*models.Environment, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	env := &models.Environment{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		IsBase:    req.IsBase,
		Variables: req.Variables,
	}
	if env.Variables == nil {
		env.Variables = models.KeyValues{}
	}
	if err := s.envRepo.Create(ctx, env); err != nil {
		return nil, err
	}

	s.logger.Info("environment created",
		"id", env.ID,
		"project_id", env.ProjectID,
		"name", env.Name,
		"base", env.IsBase,
	)

	return env, nil
}

// UpdateEnvironment applies the non-nil fields of req
func (s *environmentService) UpdateEnvironment(ctx context.Context, id string, req *collectionSvc.UpdateEnvironmentRequest) (*models.Environment, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var env *models.Environment
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		env, err = s.envRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			env.Name = *req.Name
		}
		if req.Variables != nil {
			env.Variables = req.Variables
		}
		return s.envRepo.Update(txCtx, env)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("environment updated", "id", env.ID, "variables", len(env.Variables))

	return env, nil
}

// DeleteEnvironment removes a non-base environment
func (s *environmentService) DeleteEnvironment(ctx context.Context, id string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		env, err := s.envRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if env.IsBase {
			return &domain.ValidationError{Message: "the base environment cannot be deleted"}
		}
		return s.envRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("environment deleted", "id", id)

	return nil
}

// BaseEnvironment returns the project's base environment, creating it on first use
func (s *environmentService) BaseEnvironment(ctx context.Context, projectID string) (*models.Environment, error) {
	var base *models.Environment
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		envs, err := s.envRepo.ListByProject(txCtx, projectID)
		if err != nil {
			return err
		}
		if len(envs) > 0 && envs[0].IsBase {
			base = &envs[0]
			return nil
		}
		base = &models.Environment{
			ProjectID: projectID,
			Name:      models.BaseEnvironmentName,
			IsBase:    true,
			Variables: models.KeyValues{},
		}
		return s.envRepo.Create(txCtx, base)
	})
	if err != nil {
		return nil, err
	}
	return base, nil
}

func (s *environmentService) GetActiveEnvironment(ctx context.Context, projectID string) (*models.Environment, error) {
	envs, err := s.ListEnvironments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range envs {
		if envs[i].IsActive {
			return &envs[i], nil
		}
	}
	return nil, nil
}

// SetActiveEnvironment selects id, or clears the selection when id is empty
func (s *environmentService) SetActiveEnvironment(ctx context.Context, projectID, id string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.projectRepo.GetByID(txCtx, projectID); err != nil {
			return err
		}
		if id != "" {
			env, err := s.envRepo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			if env.ProjectID != projectID {
				return domain.NewNotFound("environment", id)
			}
			if env.IsBase {
				return &domain.ValidationError{Message: "the base environment is always applied and cannot be activated"}
			}
		}
		return s.envRepo.SetActive(txCtx, projectID, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("active environment changed", "project_id", projectID, "id", id)

	return nil
}

// Variables merges the base and active environments of a project. A missing
// project has no variables.
func (s *environmentService) Variables(ctx context.Context, projectID string) (map[string]string, error) {
	envs, err := s.envRepo.ListByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return models.EffectiveVariables(envs), nil
}

// validateCreateRequest validates a create environment request
func (s *environmentService) validateCreateRequest(req *collectionSvc.CreateEnvironmentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxEnvironmentNameLength),
			validation.By(notBlank),
		),
	)
}

// validateUpdateRequest validates an update environment request
func (s *environmentService) validateUpdateRequest(req *collectionSvc.UpdateEnvironmentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxEnvironmentNameLength),
			validation.By(notBlank),
		),
	)
}
