package collection

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"lumina/internal/config"
	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	"lumina/internal/domain/repositories"
	collectionRepo "lumina/internal/domain/repositories/collection"
	collectionSvc "lumina/internal/domain/services/collection"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	shareAlphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
	shareIDMaxAttempts = 5
)

type shareService struct {
	shareRepo       collectionRepo.ShareRepository
	projectRepo     collectionRepo.ProjectRepository
	treeService     collectionSvc.TreeService
	projectService  collectionSvc.ProjectService
	transferService collectionSvc.TransferService
	txManager       repositories.TransactionManager
	defaultTTL      time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

// NewShareService creates a share service. A positive defaultTTL applies to
// shares created without an explicit expiry.
func NewShareService(
	shareRepo collectionRepo.ShareRepository,
	projectRepo collectionRepo.ProjectRepository,
	treeService collectionSvc.TreeService,
	projectService collectionSvc.ProjectService,
	transferService collectionSvc.TransferService,
	txManager repositories.TransactionManager,
	defaultTTL time.Duration,
	logger *slog.Logger,
) collectionSvc.ShareService {
	return &shareService{
		shareRepo:       shareRepo,
		projectRepo:     projectRepo,
		treeService:     treeService,
		projectService:  projectService,
		transferService: transferService,
		txManager:       txManager,
		defaultTTL:      defaultTTL,
		logger:          logger,
		now:             time.Now,
	}
}

// CreateShare stores a deep copy of the project's current tree under a new token
func (s *shareService) CreateShare(ctx context.Context, req *collectionSvc.CreateShareRequest) (*models.ShareToken, error) {
	now := s.now()
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.ExpiresAt, validation.By(func(value interface{}) error {
			if t, _ := value.(*time.Time); t != nil && !t.After(now) {
				return fmt.Errorf("must be in the future")
			}
			return nil
		})),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	tree, err := s.treeService.GetProjectTree(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	expiresAt := req.ExpiresAt
	if expiresAt == nil && s.defaultTTL > 0 {
		t := now.Add(s.defaultTTL)
		expiresAt = &t
	}

	share := &models.ShareToken{
		ProjectName: project.Name,
		Tree:        tree.Clone(),
		ReadOnly:    req.ReadOnly,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}

	for attempt := 1; ; attempt++ {
		share.ID, err = newShareID(config.ShareIDLength)
		if err != nil {
			return nil, fmt.Errorf("generate share id: %w", err)
		}
		err = s.shareRepo.Create(ctx, share)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= shareIDMaxAttempts {
			return nil, err
		}
		s.logger.Debug("share id collision, retrying", "attempt", attempt)
	}

	s.logger.Info("share created",
		"id", share.ID,
		"project_id", project.ID,
		"read_only", share.ReadOnly,
		"expires_at", share.ExpiresAt,
		"requests", share.Tree.CountRequests(),
	)

	return share, nil
}

// GetShare returns an unexpired token
func (s *shareService) GetShare(ctx context.Context, token string) (*models.ShareToken, error) {
	share, err := s.shareRepo.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if share.Expired(s.now()) {
		return nil, domain.NewNotFound("share", token)
	}
	return share, nil
}

// ImportShare creates a new project named after the snapshot and copies the
// snapshot into it with fresh ids. The new project never aliases the source.
func (s *shareService) ImportShare(ctx context.Context, token string) (*models.Project, error) {
	share, err := s.GetShare(ctx, token)
	if err != nil {
		return nil, err
	}

	var project *models.Project
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		created, err := s.projectService.CreateProject(txCtx, &collectionSvc.CreateProjectRequest{Name: share.ProjectName})
		if err != nil {
			return err
		}
		if _, err := s.transferService.ImportTree(txCtx, created.ID, created.RootFolderID, share.Tree); err != nil {
			return err
		}
		project = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("share imported", "token", token, "project_id", project.ID)

	return project, nil
}

// newShareID draws n characters uniformly from [a-z0-9]
func newShareID(n int) (string, error) {
	max := big.NewInt(int64(len(shareAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = shareAlphabet[idx.Int64()]
	}
	return string(b), nil
}
