package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/repositories"
)

// PostgresPaperRepository implements the PaperRepository interface.
// Sections are stored as a JSONB column; the document-level mark total
// is never stored, it is always derived from the sections.
type PostgresPaperRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPaperRepository creates a new paper repository
func NewPaperRepository(config *RepositoryConfig) repositories.PaperRepository {
	return &PostgresPaperRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Save upserts a paper keyed by id. The conflict branch deliberately
// leaves visible_to_owner / visible_to_reviewer alone: a routine save
// must not clobber visibility set by SoftHide.
func (r *PostgresPaperRepository) Save(ctx context.Context, paper *models.Paper) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, owner_id, title, class, subject, session, duration,
			max_marks, instructions, locale, sections,
			visible_to_owner, visible_to_reviewer,
			edit_count, downloads, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			class = EXCLUDED.class,
			subject = EXCLUDED.subject,
			session = EXCLUDED.session,
			duration = EXCLUDED.duration,
			max_marks = EXCLUDED.max_marks,
			instructions = EXCLUDED.instructions,
			locale = EXCLUDED.locale,
			sections = EXCLUDED.sections,
			edit_count = EXCLUDED.edit_count,
			updated_at = EXCLUDED.updated_at
	`, r.tables.Papers)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		paper.ID,
		paper.OwnerID,
		paper.Meta.Title,
		paper.Meta.Class,
		paper.Meta.Subject,
		paper.Meta.Session,
		paper.Meta.Duration,
		paper.Meta.MaxMarks,
		paper.Meta.Instructions,
		paper.Meta.Locale,
		paper.Sections,
		paper.VisibleToOwner,
		paper.VisibleToReviewer,
		paper.EditCount,
		paper.Downloads,
		paper.CreatedAt,
		paper.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save paper: %w", err)
	}

	return nil
}

const paperColumns = `id, owner_id, title, class, subject, session, duration,
	max_marks, instructions, locale, sections,
	visible_to_owner, visible_to_reviewer, edit_count, downloads,
	created_at, updated_at`

func scanPaper(row pgx.Row) (*models.Paper, error) {
	var paper models.Paper
	err := row.Scan(
		&paper.ID,
		&paper.OwnerID,
		&paper.Meta.Title,
		&paper.Meta.Class,
		&paper.Meta.Subject,
		&paper.Meta.Session,
		&paper.Meta.Duration,
		&paper.Meta.MaxMarks,
		&paper.Meta.Instructions,
		&paper.Meta.Locale,
		&paper.Sections,
		&paper.VisibleToOwner,
		&paper.VisibleToReviewer,
		&paper.EditCount,
		&paper.Downloads,
		&paper.CreatedAt,
		&paper.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// GetByID retrieves a paper by id regardless of visibility state.
func (r *PostgresPaperRepository) GetByID(ctx context.Context, id string) (*models.Paper, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, paperColumns, r.tables.Papers)

	executor := GetExecutor(ctx, r.pool)
	paper, err := scanPaper(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("paper %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get paper: %w", err)
	}

	return paper, nil
}

// ListByOwner returns the owner-visible papers of one account, newest first.
func (r *PostgresPaperRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Paper, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND visible_to_owner = TRUE
		ORDER BY created_at DESC
	`, paperColumns, r.tables.Papers)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list papers by owner: %w", err)
	}
	defer rows.Close()

	return collectPapers(rows)
}

// ListAll returns the reviewer-visible set across every owner, newest first.
func (r *PostgresPaperRepository) ListAll(ctx context.Context) ([]models.Paper, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE visible_to_reviewer = TRUE
		ORDER BY created_at DESC
	`, paperColumns, r.tables.Papers)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	defer rows.Close()

	return collectPapers(rows)
}

func collectPapers(rows pgx.Rows) ([]models.Paper, error) {
	var papers []models.Paper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, *paper)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate papers: %w", err)
	}
	return papers, nil
}

// SoftHide clears the visibility flag for one audience, keeping the record.
func (r *PostgresPaperRepository) SoftHide(ctx context.Context, id string, audience models.Audience) error {
	column := "visible_to_owner"
	if audience == models.AudienceReviewer {
		column = "visible_to_reviewer"
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = FALSE, updated_at = NOW() WHERE id = $1`, r.tables.Papers, column)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("hide paper: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("paper %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Purge permanently removes the record.
func (r *PostgresPaperRepository) Purge(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Papers)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("purge paper: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("paper %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Info("paper purged", "paper_id", id)
	return nil
}

// IncrementDownloads bumps the shared download counter atomically and
// returns the new value.
func (r *PostgresPaperRepository) IncrementDownloads(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET downloads = downloads + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING downloads
	`, r.tables.Papers)

	executor := GetExecutor(ctx, r.pool)
	var downloads int
	if err := executor.QueryRow(ctx, query, id).Scan(&downloads); err != nil {
		if IsPgNoRowsError(err) {
			return 0, fmt.Errorf("paper %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("increment downloads: %w", err)
	}

	return downloads, nil
}
