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

// PostgresPageRepository implements the PageRepository interface.
type PostgresPageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPageRepository creates a new page repository
func NewPageRepository(config *RepositoryConfig) repositories.PageRepository {
	return &PostgresPageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert inserts or replaces a page keyed by slug.
func (r *PostgresPageRepository) Upsert(ctx context.Context, page *models.Page) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (slug, title, body, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`, r.tables.Pages)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, page.Slug, page.Title, page.Body, page.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}

	return nil
}

// GetBySlug retrieves a page by slug.
func (r *PostgresPageRepository) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	query := fmt.Sprintf(`
		SELECT slug, title, body, updated_at
		FROM %s WHERE slug = $1
	`, r.tables.Pages)

	executor := GetExecutor(ctx, r.pool)
	var page models.Page
	err := executor.QueryRow(ctx, query, slug).Scan(&page.Slug, &page.Title, &page.Body, &page.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("page %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get page: %w", err)
	}

	return &page, nil
}
