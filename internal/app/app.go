// Package app wires configuration, storage and the collection services
// into the set of dependencies both binaries start from.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"lumina/internal/config"
	"lumina/internal/executor"
	"lumina/internal/repository/memory"
	"lumina/internal/repository/postgres"
	postgresCollection "lumina/internal/repository/postgres/collection"
	"lumina/internal/repository/redis"
	"lumina/internal/service/collection"
)

// shareKeyPrefix namespaces share tokens in Redis
const shareKeyPrefix = "lumina:share:"

// App holds the wired services and releases their connections on Close
type App struct {
	Services *collection.Services
	Executor *executor.HTTPExecutor

	closers []func()
}

// Open connects the configured storage backend and builds every service
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	repos, err := a.openRepositories(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Executor = executor.New(executor.Config{
		Timeout:      cfg.ExecutorTimeout,
		RateLimit:    cfg.ExecutorRateLimit,
		MaxBodyBytes: int64(cfg.HistoryMaxBodyBytes),
	}, nil, logger)

	a.Services = collection.SetupServices(repos, a.Executor, cfg, logger)
	logger.Info("services initialized", "storage", cfg.StorageBackend)
	return a, nil
}

func (a *App) openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (collection.Repositories, error) {
	var repos collection.Repositories

	switch cfg.StorageBackend {
	case "memory":
		store := memory.NewStore()
		tm := memory.NewTransactionManager(store)
		repos = collection.Repositories{
			Projects:     memory.NewProjectRepository(store),
			Folders:      memory.NewFolderRepository(store),
			Requests:     memory.NewRequestRepository(store),
			History:      memory.NewHistoryRepository(store),
			Shares:       memory.NewShareRepository(store),
			Environments: memory.NewEnvironmentRepository(store),
			TxManager:    tm,
			Locker:       tm,
		}

	case "postgres":
		if cfg.DatabaseURL == "" {
			return repos, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return repos, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.Migrate(ctx, pool, tables, logger); err != nil {
			return repos, fmt.Errorf("migrate: %w", err)
		}

		repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
		tm := postgres.NewTransactionManager(pool, logger)
		repos = collection.Repositories{
			Projects:     postgresCollection.NewProjectRepository(repoConfig),
			Folders:      postgresCollection.NewFolderRepository(repoConfig),
			Requests:     postgresCollection.NewRequestRepository(repoConfig),
			History:      postgresCollection.NewHistoryRepository(repoConfig),
			Shares:       memory.NewShareRepository(memory.NewStore()),
			Environments: postgresCollection.NewEnvironmentRepository(repoConfig),
			TxManager:    tm,
			Locker:       tm,
		}

	default:
		return repos, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL, logger)
		if err != nil {
			return repos, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		repos.Shares = redis.NewShareRepository(client, shareKeyPrefix)
	}

	return repos, nil
}

// Close releases connections in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
