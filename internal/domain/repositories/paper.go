package repositories

import (
	"context"

	"papergen/internal/domain/models"
)

// PaperRepository is the persistence gateway for papers.
type PaperRepository interface {
	// Save upserts a paper keyed by its id. The conflict branch never
	// touches the visibility flags - those change only through SoftHide.
	Save(ctx context.Context, paper *models.Paper) error

	// GetByID returns a paper regardless of visibility state.
	GetByID(ctx context.Context, id string) (*models.Paper, error)

	// ListByOwner returns the owner-visible papers of one account.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Paper, error)

	// ListAll returns the reviewer-visible set across all owners.
	ListAll(ctx context.Context) ([]models.Paper, error)

	// SoftHide clears the visibility flag for the given audience without
	// removing the record.
	SoftHide(ctx context.Context, id string, audience models.Audience) error

	// Purge permanently removes the record. Reviewer-only operation.
	Purge(ctx context.Context, id string) error

	// IncrementDownloads bumps the shared download counter and returns
	// the new value.
	IncrementDownloads(ctx context.Context, id string) (int, error)
}
