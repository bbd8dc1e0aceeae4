package repositories

import (
	"context"

	"papergen/internal/domain/models"
)

// AccountRepository manages registered accounts and their plan state.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// DeductCredit atomically decrements the credit balance by one and
	// returns the remaining balance. Fails if the balance is already zero.
	DeductCredit(ctx context.Context, id string) (int, error)

	// SetPlan switches the subscription tier and replenishes credits.
	SetPlan(ctx context.Context, id string, plan models.Plan, credits int) error
}

// ApprovalRepository stores pending plan-upgrade bookkeeping.
type ApprovalRepository interface {
	Create(ctx context.Context, req *models.ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error)
	ListPending(ctx context.Context) ([]models.ApprovalRequest, error)
	SetStatus(ctx context.Context, id string, status models.ApprovalStatus) error
}

// PatternRepository stores named style/sample presets keyed by
// class and subject.
type PatternRepository interface {
	Upsert(ctx context.Context, pattern *models.Pattern) error
	GetByID(ctx context.Context, id string) (*models.Pattern, error)
	ListByClassSubject(ctx context.Context, class, subject string) ([]models.Pattern, error)
}

// PageRepository serves static content pages by slug.
type PageRepository interface {
	Upsert(ctx context.Context, page *models.Page) error
	GetBySlug(ctx context.Context, slug string) (*models.Page, error)
}
