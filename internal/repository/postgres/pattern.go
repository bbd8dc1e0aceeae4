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

// PostgresPatternRepository implements the PatternRepository interface.
type PostgresPatternRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPatternRepository creates a new pattern repository
func NewPatternRepository(config *RepositoryConfig) repositories.PatternRepository {
	return &PostgresPatternRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert inserts or replaces a preset keyed by id.
func (r *PostgresPatternRepository) Upsert(ctx context.Context, pattern *models.Pattern) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, class, subject, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			class = EXCLUDED.class,
			subject = EXCLUDED.subject,
			text = EXCLUDED.text,
			updated_at = EXCLUDED.updated_at
	`, r.tables.Patterns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		pattern.ID,
		pattern.Name,
		pattern.Class,
		pattern.Subject,
		pattern.Text,
		pattern.CreatedAt,
		pattern.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert pattern: %w", err)
	}

	return nil
}

// GetByID retrieves a preset by id.
func (r *PostgresPatternRepository) GetByID(ctx context.Context, id string) (*models.Pattern, error) {
	query := fmt.Sprintf(`
		SELECT id, name, class, subject, text, created_at, updated_at
		FROM %s WHERE id = $1
	`, r.tables.Patterns)

	executor := GetExecutor(ctx, r.pool)
	var pattern models.Pattern
	err := executor.QueryRow(ctx, query, id).Scan(
		&pattern.ID,
		&pattern.Name,
		&pattern.Class,
		&pattern.Subject,
		&pattern.Text,
		&pattern.CreatedAt,
		&pattern.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("pattern %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get pattern: %w", err)
	}

	return &pattern, nil
}

// ListByClassSubject returns the presets applicable to one class/subject
// pair, by name.
func (r *PostgresPatternRepository) ListByClassSubject(ctx context.Context, class, subject string) ([]models.Pattern, error) {
	query := fmt.Sprintf(`
		SELECT id, name, class, subject, text, created_at, updated_at
		FROM %s WHERE class = $1 AND subject = $2
		ORDER BY name ASC
	`, r.tables.Patterns)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, class, subject)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	var patterns []models.Pattern
	for rows.Next() {
		var pattern models.Pattern
		if err := rows.Scan(
			&pattern.ID,
			&pattern.Name,
			&pattern.Class,
			&pattern.Subject,
			&pattern.Text,
			&pattern.CreatedAt,
			&pattern.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}

	return patterns, nil
}
