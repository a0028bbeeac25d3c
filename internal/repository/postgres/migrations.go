package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration is one versioned schema change
type Migration struct {
	Version int
	Name    string
	Up      func(t *TableNames) string
}

// AllMigrations contains all schema migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "create projects, folders, requests and history",
		Up: func(t *TableNames) string {
			return fmt.Sprintf(`
				CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

				CREATE TABLE IF NOT EXISTS %[1]s (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					name VARCHAR(255) NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT false,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_single_active ON %[1]s (is_active) WHERE is_active;

				CREATE TABLE IF NOT EXISTS %[2]s (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					project_id UUID NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE,
					parent_id UUID REFERENCES %[2]s(id) ON DELETE CASCADE,
					name VARCHAR(255) NOT NULL,
					position INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS %[2]s_single_root ON %[2]s (project_id) WHERE parent_id IS NULL;
				CREATE INDEX IF NOT EXISTS %[2]s_parent ON %[2]s (parent_id, position);

				CREATE TABLE IF NOT EXISTS %[3]s (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					project_id UUID NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE,
					folder_id UUID NOT NULL REFERENCES %[2]s(id) ON DELETE CASCADE,
					name VARCHAR(255) NOT NULL,
					method VARCHAR(16) NOT NULL,
					url TEXT NOT NULL DEFAULT '',
					headers JSONB NOT NULL DEFAULT '[]',
					params JSONB NOT NULL DEFAULT '[]',
					body_type VARCHAR(16) NOT NULL DEFAULT 'none',
					body_raw TEXT NOT NULL DEFAULT '',
					auth JSONB NOT NULL DEFAULT '{"type":"none"}',
					documentation TEXT NOT NULL DEFAULT '',
					position INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS %[3]s_folder ON %[3]s (folder_id, position);

				CREATE TABLE IF NOT EXISTS %[4]s (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					request_id UUID NOT NULL REFERENCES %[3]s(id) ON DELETE CASCADE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					request_snapshot JSONB NOT NULL,
					response_snapshot JSONB NOT NULL
				);
				CREATE INDEX IF NOT EXISTS %[4]s_request_time ON %[4]s (request_id, created_at DESC);
			`, t.Projects, t.Folders, t.Requests, t.History)
		},
	},
	{
		Version: 2,
		Name:    "create environments",
		Up: func(t *TableNames) string {
			return fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %[2]s (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					project_id UUID NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE,
					name VARCHAR(255) NOT NULL,
					is_base BOOLEAN NOT NULL DEFAULT false,
					is_active BOOLEAN NOT NULL DEFAULT false,
					variables JSONB NOT NULL DEFAULT '[]',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS %[2]s_single_base ON %[2]s (project_id) WHERE is_base;
				CREATE UNIQUE INDEX IF NOT EXISTS %[2]s_single_active ON %[2]s (project_id) WHERE is_active;
			`, t.Projects, t.Environments)
		},
	},
}

// Migrate applies every migration newer than the recorded schema version.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) error {
	create := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, tables.Migrations)
	if _, err := pool.Exec(ctx, create); err != nil {
		return WrapError("create migrations table", err)
	}

	var current int
	query := fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s`, tables.Migrations)
	if err := pool.QueryRow(ctx, query).Scan(&current); err != nil {
		return WrapError("read schema version", err)
	}

	for _, m := range AllMigrations {
		if m.Version <= current {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return WrapError("begin migration", err)
		}
		if _, err := tx.Exec(ctx, m.Up(tables)); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		record := fmt.Sprintf(`INSERT INTO %s (version, name) VALUES ($1, $2)`, tables.Migrations)
		if _, err := tx.Exec(ctx, record, m.Version, m.Name); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return WrapError("commit migration", err)
		}

		logger.Info("migration applied", "version", m.Version, "name", m.Name)
	}

	return nil
}
