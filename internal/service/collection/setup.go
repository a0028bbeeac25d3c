package collection

import (
	"log/slog"

	"lumina/internal/config"
	"lumina/internal/domain/repositories"
	collectionRepo "lumina/internal/domain/repositories/collection"
	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/format"
)

// Repositories groups the storage dependencies of the collection services
type Repositories struct {
	Projects     collectionRepo.ProjectRepository
	Folders      collectionRepo.FolderRepository
	Requests     collectionRepo.RequestRepository
	History      collectionRepo.HistoryRepository
	Shares       collectionRepo.ShareRepository
	Environments collectionRepo.EnvironmentRepository
	TxManager    repositories.TransactionManager
	Locker       repositories.ProjectLocker
}

// Services holds all collection services
type Services struct {
	Projects     collectionSvc.ProjectService
	Folders      collectionSvc.FolderService
	Requests     collectionSvc.RequestService
	Tree         collectionSvc.TreeService
	History      collectionSvc.HistoryService
	Transfer     collectionSvc.TransferService
	Shares       collectionSvc.ShareService
	Environments collectionSvc.EnvironmentService
	Execution    collectionSvc.ExecutionService
	Registry     *format.Registry
	Validator    *ResourceValidator
}

// SetupServices wires every collection service over repos
func SetupServices(
	repos Repositories,
	executor collectionSvc.Executor,
	cfg *config.Config,
	logger *slog.Logger,
) *Services {
	registry := format.NewRegistry()
	validator := NewResourceValidator(repos.Projects, repos.Folders)

	projects := NewProjectService(repos.Projects, repos.Folders, repos.TxManager, logger)
	tree := NewTreeService(repos.Projects, repos.Folders, repos.Requests, logger)
	history := NewHistoryService(repos.History, repos.Requests, repos.TxManager,
		cfg.HistoryMaxEntries, cfg.HistoryMaxBodyBytes, logger)
	environments := NewEnvironmentService(repos.Environments, repos.Projects, repos.TxManager, logger)
	transfer := NewTransferService(repos.Projects, repos.Folders, repos.Requests, repos.Environments, tree,
		validator, registry, repos.TxManager, repos.Locker, logger)

	return &Services{
		Projects:     projects,
		Folders:      NewFolderService(repos.Folders, repos.TxManager, repos.Locker, logger),
		Requests:     NewRequestService(repos.Requests, repos.Folders, repos.TxManager, repos.Locker, logger),
		Tree:         tree,
		History:      history,
		Transfer:     transfer,
		Shares:       NewShareService(repos.Shares, repos.Projects, tree, projects, transfer, repos.TxManager, cfg.ShareDefaultTTL, logger),
		Environments: environments,
		Execution:    NewExecutionService(repos.Requests, environments, executor, history, logger),
		Registry:     registry,
		Validator:    validator,
	}
}
