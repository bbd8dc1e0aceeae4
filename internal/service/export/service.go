// Package export produces the two read-only projections of a paper and
// gates them behind the shared per-paper download allowance.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/repositories"
	"papergen/internal/service/quota"
	"papergen/internal/service/session"
)

// Service is the export governor.
type Service struct {
	papers repositories.PaperRepository
	logger *slog.Logger
}

// NewService creates an export service.
func NewService(papers repositories.PaperRepository, logger *slog.Logger) *Service {
	return &Service{papers: papers, logger: logger}
}

// Export renders one projection of the draft's paper. The paper is
// persisted first if it never was (create-on-first-export). For
// non-exempt callers the shared download counter - one counter per
// paper, covering both projections - is checked and incremented.
// Exempt callers bypass the counter only, not persistence.
func (s *Service) Export(ctx context.Context, draft *session.Draft, kind Kind, account *models.Account) (*Projection, error) {
	if kind != KindPaper && kind != KindAnswerKey {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown projection kind %q", kind)}
	}

	draft.Lock()
	defer draft.Unlock()

	paper := draft.Paper
	state := quota.StateFor(account)

	if !draft.Persisted {
		if err := s.papers.Save(ctx, paper); err != nil {
			return nil, fmt.Errorf("persist paper on first export: %w", err)
		}
		draft.Persisted = true
	}

	if !state.Exempt {
		if !state.CanDownload(paper.Downloads) {
			return nil, &domain.QuotaError{
				Message: "download allowance for this paper is exhausted",
			}
		}

		downloads, err := s.papers.IncrementDownloads(ctx, paper.ID)
		if err != nil {
			return nil, fmt.Errorf("record download: %w", err)
		}
		paper.Downloads = downloads
	}

	projection := Build(paper, kind)

	s.logger.Info("paper exported",
		"paper_id", paper.ID,
		"kind", string(kind),
		"downloads", paper.Downloads,
		"exempt", state.Exempt,
	)
	return projection, nil
}

// Save persists the draft's paper explicitly (create-on-first-save).
func (s *Service) Save(ctx context.Context, draft *session.Draft) error {
	draft.Lock()
	defer draft.Unlock()

	if err := s.papers.Save(ctx, draft.Paper); err != nil {
		return fmt.Errorf("save paper: %w", err)
	}
	draft.Persisted = true

	s.logger.Info("paper saved",
		"paper_id", draft.Paper.ID,
		"sections", len(draft.Paper.Sections),
		"edit_count", draft.Paper.EditCount,
	)
	return nil
}
