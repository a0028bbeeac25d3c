package collection

import (
	"context"
	"encoding/json"
	"fmt"

	models "lumina/internal/domain/models/collection"
	collectionRepo "lumina/internal/domain/repositories/collection"
	"lumina/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresHistoryRepository implements the HistoryRepository interface
type PostgresHistoryRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(config *postgres.RepositoryConfig) collectionRepo.HistoryRepository {
	return &PostgresHistoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Append stores a new history entry
func (r *PostgresHistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	reqSnap, err := json.Marshal(entry.Request)
	if err != nil {
		return fmt.Errorf("encode request snapshot: %w", err)
	}
	respSnap, err := json.Marshal(entry.Response)
	if err != nil {
		return fmt.Errorf("encode response snapshot: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (request_id, created_at, request_snapshot, response_snapshot)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, r.tables.History)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, entry.RequestID, entry.Timestamp, reqSnap, respSnap).Scan(&entry.ID)
	if err != nil {
		return postgres.WrapError("append history", err)
	}

	return nil
}

// ListByRequest returns up to limit entries, newest first
func (r *PostgresHistoryRepository) ListByRequest(ctx context.Context, requestID string, limit int) ([]models.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, request_id, created_at, request_snapshot, response_snapshot
		FROM %s
		WHERE request_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, r.tables.History)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, requestID, limit)
	if err != nil {
		return nil, postgres.WrapError("list history", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		var reqSnap, respSnap []byte
		if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.Timestamp, &reqSnap, &respSnap); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if err := json.Unmarshal(reqSnap, &entry.Request); err != nil {
			return nil, fmt.Errorf("decode request snapshot %s: %w", entry.ID, err)
		}
		if err := json.Unmarshal(respSnap, &entry.Response); err != nil {
			return nil, fmt.Errorf("decode response snapshot %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.WrapError("list history", err)
	}

	return entries, nil
}

// Prune keeps only the newest keep entries of a request
func (r *PostgresHistoryRepository) Prune(ctx context.Context, requestID string, keep int) error {
	query := fmt.Sprintf(`
		DELETE FROM %[1]s
		WHERE request_id = $1 AND id NOT IN (
			SELECT id FROM %[1]s
			WHERE request_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		)
	`, r.tables.History)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, requestID, keep); err != nil {
		return postgres.WrapError("prune history", err)
	}
	return nil
}
