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

// PostgresRequestRepository implements the RequestRepository interface
type PostgresRequestRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(config *postgres.RepositoryConfig) collectionRepo.RequestRepository {
	return &PostgresRequestRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const requestColumns = `id, project_id, folder_id, name, method, url, headers, params,
	body_type, body_raw, auth, documentation, position, created_at, updated_at`

// requestRow holds the JSONB columns until they are decoded
type requestRow struct {
	headers []byte
	params  []byte
	auth    []byte
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var req models.Request
	var raw requestRow
	err := row.Scan(
		&req.ID,
		&req.ProjectID,
		&req.FolderID,
		&req.Name,
		&req.Method,
		&req.URL,
		&raw.headers,
		&raw.params,
		&req.Body.Type,
		&req.Body.Raw,
		&raw.auth,
		&req.Documentation,
		&req.Position,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw.headers, &req.Headers); err != nil {
		return nil, fmt.Errorf("decode headers of request %s: %w", req.ID, err)
	}
	if err := json.Unmarshal(raw.params, &req.Params); err != nil {
		return nil, fmt.Errorf("decode params of request %s: %w", req.ID, err)
	}
	if req.Auth, err = models.UnmarshalAuth(raw.auth); err != nil {
		return nil, fmt.Errorf("request %s: %w", req.ID, err)
	}

	return &req, nil
}

// encodeRequest produces the JSONB column values
func encodeRequest(req *models.Request) (requestRow, error) {
	var out requestRow
	var err error
	if out.headers, err = json.Marshal(req.Headers); err != nil {
		return out, fmt.Errorf("encode headers: %w", err)
	}
	if out.params, err = json.Marshal(req.Params); err != nil {
		return out, fmt.Errorf("encode params: %w", err)
	}
	if out.auth, err = models.MarshalAuth(req.Auth); err != nil {
		return out, err
	}
	return out, nil
}

// Create creates a new request
func (r *PostgresRequestRepository) Create(ctx context.Context, req *models.Request) error {
	encoded, err := encodeRequest(req)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, folder_id, name, method, url, headers, params,
			body_type, body_raw, auth, documentation, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		req.ProjectID,
		req.FolderID,
		req.Name,
		req.Method,
		req.URL,
		encoded.headers,
		encoded.params,
		req.Body.Type,
		req.Body.Raw,
		encoded.auth,
		req.Documentation,
		req.Position,
		req.CreatedAt,
		req.UpdatedAt,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("folder", req.FolderID)
		}
		return postgres.WrapError("create request", err)
	}

	return nil
}

// GetByID retrieves a request by ID
func (r *PostgresRequestRepository) GetByID(ctx context.Context, id, projectID string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND project_id = $2`, requestColumns, r.tables.Requests)
	return r.getOne(ctx, id, query, id, projectID)
}

// GetByIDOnly retrieves a request without project scoping
func (r *PostgresRequestRepository) GetByIDOnly(ctx context.Context, id string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, requestColumns, r.tables.Requests)
	return r.getOne(ctx, id, query, id)
}

func (r *PostgresRequestRepository) getOne(ctx context.Context, id, query string, args ...interface{}) (*models.Request, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	req, err := scanRequest(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("request", id)
		}
		return nil, postgres.WrapError("get request", err)
	}
	return req, nil
}

// Update overwrites the request row
func (r *PostgresRequestRepository) Update(ctx context.Context, req *models.Request) error {
	encoded, err := encodeRequest(req)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, name = $2, method = $3, url = $4, headers = $5, params = $6,
			body_type = $7, body_raw = $8, auth = $9, documentation = $10, position = $11,
			updated_at = $12
		WHERE id = $13 AND project_id = $14
	`, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		req.FolderID,
		req.Name,
		req.Method,
		req.URL,
		encoded.headers,
		encoded.params,
		req.Body.Type,
		req.Body.Raw,
		encoded.auth,
		req.Documentation,
		req.Position,
		req.UpdatedAt,
		req.ID,
		req.ProjectID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("folder", req.FolderID)
		}
		return postgres.WrapError("update request", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("request", req.ID)
	}

	return nil
}

// Delete deletes a request
func (r *PostgresRequestRepository) Delete(ctx context.Context, id, projectID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND project_id = $2`, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, projectID)
	if err != nil {
		return postgres.WrapError("delete request", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("request", id)
	}

	return nil
}

// ListByFolder lists the requests of a folder
func (r *PostgresRequestRepository) ListByFolder(ctx context.Context, folderID, projectID string) ([]models.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = $1 AND project_id = $2
		ORDER BY position, created_at
	`, requestColumns, r.tables.Requests)

	return r.queryRequests(ctx, "list folder requests", query, folderID, projectID)
}

// GetAllByProject retrieves all requests in a project
func (r *PostgresRequestRepository) GetAllByProject(ctx context.Context, projectID string) ([]models.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = $1
		ORDER BY position, created_at
	`, requestColumns, r.tables.Requests)

	return r.queryRequests(ctx, "list project requests", query, projectID)
}

// NextPosition returns one past the highest request position in folderID
func (r *PostgresRequestRepository) NextPosition(ctx context.Context, folderID, projectID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM %s
		WHERE folder_id = $1 AND project_id = $2
	`, r.tables.Requests)

	var next int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderID, projectID).Scan(&next); err != nil {
		return 0, postgres.WrapError("next request position", err)
	}
	return next, nil
}

func (r *PostgresRequestRepository) queryRequests(ctx context.Context, op, query string, args ...interface{}) ([]models.Request, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.WrapError(op, err)
	}
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.WrapError(op, err)
	}

	return requests, nil
}
