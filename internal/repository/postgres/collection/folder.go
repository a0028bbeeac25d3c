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

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) collectionRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = `id, project_id, parent_id, name, position, created_at, updated_at`

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.ProjectID,
		&folder.ParentID,
		&folder.Name,
		&folder.Position,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, parent_id, name, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ProjectID,
		folder.ParentID,
		folder.Name,
		folder.Position,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("folder", deref(folder.ParentID))
		}
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project %s already has a root folder", folder.ProjectID),
				ResourceType: "folder",
			}
		}
		return postgres.WrapError("create folder", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, projectID string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND project_id = $2`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id, projectID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("folder", id)
		}
		return nil, postgres.WrapError("get folder", err)
	}

	return folder, nil
}

// GetByIDOnly retrieves a folder without project scoping
func (r *PostgresFolderRepository) GetByIDOnly(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("folder", id)
		}
		return nil, postgres.WrapError("get folder", err)
	}

	return folder, nil
}

// GetRoot retrieves the project's root folder
func (r *PostgresFolderRepository) GetRoot(ctx context.Context, projectID string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE project_id = $1 AND parent_id IS NULL`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, projectID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("project", projectID)
		}
		return nil, postgres.WrapError("get root folder", err)
	}

	return folder, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, position = $3, updated_at = $4
		WHERE id = $5 AND project_id = $6
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.Position,
		folder.UpdatedAt,
		folder.ID,
		folder.ProjectID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("folder", deref(folder.ParentID))
		}
		return postgres.WrapError("update folder", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("folder", folder.ID)
	}

	return nil
}

// Delete deletes a folder; child rows cascade
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, projectID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND project_id = $2`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, projectID)
	if err != nil {
		return postgres.WrapError("delete folder", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("folder", id)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, folderID, projectID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id = $1 AND project_id = $2
		ORDER BY position, created_at
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, "list child folders", query, folderID, projectID)
}

// GetAllByProject retrieves all folders in a project (flat list)
func (r *PostgresFolderRepository) GetAllByProject(ctx context.Context, projectID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = $1
		ORDER BY position, created_at
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, "list project folders", query, projectID)
}

// NextPosition returns one past the highest child position under parentID
func (r *PostgresFolderRepository) NextPosition(ctx context.Context, parentID, projectID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM %s
		WHERE parent_id = $1 AND project_id = $2
	`, r.tables.Folders)

	var next int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, parentID, projectID).Scan(&next); err != nil {
		return 0, postgres.WrapError("next folder position", err)
	}
	return next, nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, op, query string, args ...interface{}) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.WrapError(op, err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.WrapError(op, err)
	}

	return folders, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
