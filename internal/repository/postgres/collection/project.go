package collection

import (
	"context"
	"fmt"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
	"lumina/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *postgres.RepositoryConfig) collectionRepo.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// selectProjects joins the root folder so every project carries its root id
func (r *PostgresProjectRepository) selectProjects() string {
	return fmt.Sprintf(`
		SELECT p.id, p.name, p.is_active, p.created_at, p.updated_at, COALESCE(f.id::text, '')
		FROM %s p
		LEFT JOIN %s f ON f.project_id = p.id AND f.parent_id IS NULL
	`, r.tables.Projects, r.tables.Folders)
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.IsActive,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.RootFolderID,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		project.Name,
		project.IsActive,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "another project is already active",
				ResourceType: "project",
			}
		}
		return postgres.WrapError("create project", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := r.selectProjects() + ` WHERE p.id = $1`

	executor := postgres.GetExecutor(ctx, r.pool)
	project, err := scanProject(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("project", id)
		}
		return nil, postgres.WrapError("get project", err)
	}

	return project, nil
}

// GetActive retrieves the active project
func (r *PostgresProjectRepository) GetActive(ctx context.Context) (*models.Project, error) {
	query := r.selectProjects() + ` WHERE p.is_active`

	executor := postgres.GetExecutor(ctx, r.pool)
	project, err := scanProject(executor.QueryRow(ctx, query))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFound("project", "active")
		}
		return nil, postgres.WrapError("get active project", err)
	}

	return project, nil
}

// List retrieves all projects, ordered by updated_at DESC
func (r *PostgresProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := r.selectProjects() + ` ORDER BY p.updated_at DESC, p.created_at DESC`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, postgres.WrapError("list projects", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.WrapError("iterate projects", err)
	}

	return projects, nil
}

// Update updates a project's name and updated_at timestamp
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, project.Name, project.UpdatedAt, project.ID)
	if err != nil {
		return postgres.WrapError("update project", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("project", project.ID)
	}

	return nil
}

// SetActive deactivates every other project, then activates id.
// Must run inside a transaction: the partial unique index rejects two active rows.
func (r *PostgresProjectRepository) SetActive(ctx context.Context, id string) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	clear := fmt.Sprintf(`UPDATE %s SET is_active = false WHERE is_active AND id <> $1`, r.tables.Projects)
	if _, err := executor.Exec(ctx, clear, id); err != nil {
		return postgres.WrapError("deactivate projects", err)
	}

	set := fmt.Sprintf(`UPDATE %s SET is_active = true, updated_at = NOW() WHERE id = $1`, r.tables.Projects)
	result, err := executor.Exec(ctx, set, id)
	if err != nil {
		return postgres.WrapError("activate project", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound("project", id)
	}

	return nil
}

// Delete hard-deletes a project; foreign keys cascade to folders, requests and history
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return postgres.WrapError("delete project", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("project", id)
	}

	return nil
}
