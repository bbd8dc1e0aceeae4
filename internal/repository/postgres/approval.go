package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/repositories"
)

// PostgresApprovalRepository implements the ApprovalRepository interface.
type PostgresApprovalRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(config *RepositoryConfig) repositories.ApprovalRepository {
	return &PostgresApprovalRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create records a pending upgrade request.
func (r *PostgresApprovalRepository) Create(ctx context.Context, req *models.ApprovalRequest) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, account_id, plan, reference, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Approvals)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		req.ID,
		req.AccountID,
		req.Plan,
		req.Reference,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create approval request: %w", err)
	}

	return nil
}

// GetByID retrieves an approval request by id.
func (r *PostgresApprovalRepository) GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	query := fmt.Sprintf(`
		SELECT id, account_id, plan, reference, status, created_at, updated_at
		FROM %s WHERE id = $1
	`, r.tables.Approvals)

	executor := GetExecutor(ctx, r.pool)
	var req models.ApprovalRequest
	err := executor.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.AccountID,
		&req.Plan,
		&req.Reference,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("approval request %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}

	return &req, nil
}

// ListPending returns requests still awaiting an admin decision, oldest first.
func (r *PostgresApprovalRepository) ListPending(ctx context.Context) ([]models.ApprovalRequest, error) {
	query := fmt.Sprintf(`
		SELECT id, account_id, plan, reference, status, created_at, updated_at
		FROM %s WHERE status = $1
		ORDER BY created_at ASC
	`, r.tables.Approvals)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, models.ApprovalPending)
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	defer rows.Close()

	var requests []models.ApprovalRequest
	for rows.Next() {
		var req models.ApprovalRequest
		if err := rows.Scan(
			&req.ID,
			&req.AccountID,
			&req.Plan,
			&req.Reference,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan approval request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approvals: %w", err)
	}

	return requests, nil
}

// SetStatus moves a request out of the pending state. Only pending
// requests may be decided, so a second decision on the same request
// surfaces as a conflict.
func (r *PostgresApprovalRepository) SetStatus(ctx context.Context, id string, status models.ApprovalStatus) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, r.tables.Approvals)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, status, models.ApprovalPending)
	if err != nil {
		return fmt.Errorf("set approval status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return &domain.ConflictError{
			Message:      "approval request already decided",
			ResourceType: "approval",
			ResourceID:   id,
		}
	}

	return nil
}
