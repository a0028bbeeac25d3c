package collection

import (
	"context"
	"encoding/json"
	"fmt"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
	"lumina/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEnvironmentRepository implements the EnvironmentRepository interface
type PostgresEnvironmentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewEnvironmentRepository creates a new environment repository
func NewEnvironmentRepository(config *postgres.RepositoryConfig) collectionRepo.EnvironmentRepository {
	return &PostgresEnvironmentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const environmentColumns = `id, project_id, name, is_base, is_active, variables, created_at, updated_at`

func scanEnvironment(row pgx.Row) (*models.Environment, error) {
	var env models.Environment
	var variables []byte
	err := row.Scan(
		&env.ID,
		&env.ProjectID,
		&env.Name,
		&env.IsBase,
		&env.IsActive,
		&variables,
		&env.CreatedAt,
		&env.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(variables, &env.Variables); err != nil {
		return nil, fmt.Errorf("decode variables of environment %s: %w", env.ID, err)
	}
	return &env, nil
}

// Create inserts an inactive environment
func (r *PostgresEnvironmentRepository) Create(ctx context.Context, env *models.Environment) error {
	env.Variables = env.Variables.Normalize()
	variables, err := json.Marshal(env.Variables)
	if err != nil {
		return fmt.Errorf("encode variables: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, name, is_base, variables)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at
	`, r.tables.Environments)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, env.ProjectID, env.Name, env.IsBase, variables).
		Scan(&env.ID, &env.IsActive, &env.CreatedAt, &env.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "project already has a base environment",
				ResourceType: "environment",
			}
		}
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("project", env.ProjectID)
		}
		return postgres.WrapError("create environment", err)
	}

	return nil
}

// GetByID retrieves an environment by ID
func (r *PostgresEnvironmentRepository) GetByID(ctx context.Context, id string) (*models.Environment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, environmentColumns, r.tables.Environments)

	executor := postgres.GetExecutor(ctx, r.pool)
	env, err := scanEnvironment(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("environment", id)
		}
		return nil, postgres.WrapError("get environment", err)
	}

	return env, nil
}

// ListByProject returns the base environment first, then the rest by creation
func (r *PostgresEnvironmentRepository) ListByProject(ctx context.Context, projectID string) ([]models.Environment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = $1
		ORDER BY is_base DESC, created_at, id
	`, environmentColumns, r.tables.Environments)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return []models.Environment{}, nil
		}
		return nil, postgres.WrapError("list environments", err)
	}
	defer rows.Close()

	envs := []models.Environment{}
	for rows.Next() {
		env, err := scanEnvironment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan environment: %w", err)
		}
		envs = append(envs, *env)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.WrapError("iterate environments", err)
	}

	return envs, nil
}

// Update replaces name and variables
func (r *PostgresEnvironmentRepository) Update(ctx context.Context, env *models.Environment) error {
	env.Variables = env.Variables.Normalize()
	variables, err := json.Marshal(env.Variables)
	if err != nil {
		return fmt.Errorf("encode variables: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, variables = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`, r.tables.Environments)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, env.Name, variables, env.ID).Scan(&env.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("environment", env.ID)
		}
		return postgres.WrapError("update environment", err)
	}

	return nil
}

// SetActive clears the project's active environment, then activates id.
// Must run inside a transaction: the partial unique index rejects two active rows.
func (r *PostgresEnvironmentRepository) SetActive(ctx context.Context, projectID, id string) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	clear := fmt.Sprintf(`UPDATE %s SET is_active = false WHERE project_id = $1 AND is_active`, r.tables.Environments)
	if _, err := executor.Exec(ctx, clear, projectID); err != nil {
		return postgres.WrapError("deactivate environments", err)
	}
	if id == "" {
		return nil
	}

	set := fmt.Sprintf(`
		UPDATE %s SET is_active = true, updated_at = NOW()
		WHERE id = $1 AND project_id = $2 AND NOT is_base
	`, r.tables.Environments)
	result, err := executor.Exec(ctx, set, id, projectID)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("environment", id)
		}
		return postgres.WrapError("activate environment", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound("environment", id)
	}

	return nil
}

// Delete removes an environment
func (r *PostgresEnvironmentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Environments)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("environment", id)
		}
		return postgres.WrapError("delete environment", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("environment", id)
	}

	return nil
}
