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

// PostgresAccountRepository implements the AccountRepository interface.
type PostgresAccountRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(config *RepositoryConfig) repositories.AccountRepository {
	return &PostgresAccountRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new account row.
func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, name, role, plan, credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Accounts)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		account.ID,
		account.Email,
		account.Name,
		account.Role,
		account.Plan,
		account.Credits,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "account already exists",
				ResourceType: "account",
				ResourceID:   account.ID,
			}
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by id.
func (r *PostgresAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, role, plan, credits, created_at, updated_at
		FROM %s WHERE id = $1
	`, r.tables.Accounts)

	executor := GetExecutor(ctx, r.pool)
	var account models.Account
	err := executor.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.Role,
		&account.Plan,
		&account.Credits,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

// DeductCredit decrements the balance by one in a single statement so
// that two concurrent assemblies cannot both spend the last credit.
func (r *PostgresAccountRepository) DeductCredit(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET credits = credits - 1, updated_at = NOW()
		WHERE id = $1 AND credits > 0
		RETURNING credits
	`, r.tables.Accounts)

	executor := GetExecutor(ctx, r.pool)
	var remaining int
	if err := executor.QueryRow(ctx, query, id).Scan(&remaining); err != nil {
		if IsPgNoRowsError(err) {
			// Either the account is unknown or the balance is empty;
			// disambiguate so the caller maps the right status code.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, &domain.QuotaError{Message: "no credits remaining"}
		}
		return 0, fmt.Errorf("deduct credit: %w", err)
	}

	return remaining, nil
}

// SetPlan switches the subscription tier and replaces the credit balance.
func (r *PostgresAccountRepository) SetPlan(ctx context.Context, id string, plan models.Plan, credits int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET plan = $2, credits = $3, updated_at = NOW()
		WHERE id = $1
	`, r.tables.Accounts)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, plan, credits)
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Info("plan changed", "account_id", id, "plan", plan, "credits", credits)
	return nil
}
