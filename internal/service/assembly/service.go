// Package assembly turns a draft's blueprint into sections, one
// collaborator call per item, in blueprint order.
package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"papergen/internal/catalog"
	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/repositories"
	"papergen/internal/domain/services"
	"papergen/internal/service/blueprint"
	"papergen/internal/service/quota"
	"papergen/internal/service/session"
)

// Service assembles papers from blueprints.
type Service struct {
	generator services.QuestionGenerator
	accounts  repositories.AccountRepository
	catalog   *catalog.Registry
	queue     *Queue
	logger    *slog.Logger
}

// NewService creates an assembly service sharing the given queue.
func NewService(
	generator services.QuestionGenerator,
	accounts repositories.AccountRepository,
	reg *catalog.Registry,
	queue *Queue,
	logger *slog.Logger,
) *Service {
	return &Service{
		generator: generator,
		accounts:  accounts,
		catalog:   reg,
		queue:     queue,
		logger:    logger,
	}
}

// Assemble expands every blueprint item of the draft into a section and
// installs the new section list on the paper. All-or-nothing: if any
// item fails, the paper's existing sections are left untouched and no
// credit is charged. On full success exactly one credit is deducted from
// a non-exempt caller and the blueprint is cleared.
func (s *Service) Assemble(ctx context.Context, draft *session.Draft, style *models.StyleContext, account *models.Account) error {
	draft.Lock()
	defer draft.Unlock()

	items := draft.Blueprint.Items()
	if len(items) == 0 {
		return &domain.ValidationError{Message: "blueprint is empty"}
	}

	// Credits are checked before any external call is dispatched.
	state := quota.StateFor(account)
	if !state.CanAssemble() {
		return &domain.QuotaError{Message: "no credits remaining for paper generation"}
	}

	paper := draft.Paper
	labels := SequenceFor(s.catalog, paper.Meta.Locale)

	// Sections are built aside and only committed once every item has
	// been produced; a failure mid-batch must not install a partial set.
	built := make([]models.Section, 0, len(items))
	for i, item := range items {
		records, err := s.generateItem(ctx, paper, &item, style)
		if err != nil {
			s.logger.Warn("assembly aborted",
				"paper_id", paper.ID,
				"item", i,
				"topic", item.Topic,
				"error", err,
			)
			return err
		}

		section := models.Section{
			ID:        uuid.NewString(),
			Title:     labels.Title(i),
			Questions: make([]models.Question, 0, len(records)),
		}
		for _, record := range records {
			section.Questions = append(section.Questions, models.Question{
				ID:         uuid.NewString(),
				Type:       item.Type,
				Topic:      item.Topic,
				Prompt:     record.Prompt,
				Marks:      item.Marks,
				Answer:     record.Answer,
				Options:    record.Options,
				MatchPairs: record.MatchPairs,
			})
		}
		section.Recompute()
		built = append(built, section)
	}

	// Every item succeeded: charge the non-exempt caller one credit
	// before committing, so a failed deduction leaves the paper alone.
	if !state.Exempt {
		remaining, err := s.accounts.DeductCredit(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("deduct credit: %w", err)
		}
		account.Credits = remaining
	}

	paper.Sections = built
	paper.EditCount++
	paper.UpdatedAt = time.Now()
	// The blueprint is transient: discarded once realized into sections.
	draft.Blueprint = blueprint.NewBuilder()

	s.logger.Info("paper assembled",
		"paper_id", paper.ID,
		"sections", len(built),
		"total_marks", paper.TotalMarks(),
		"owner_id", paper.OwnerID,
	)
	return nil
}

// generateItem runs one collaborator call through the single-worker queue.
func (s *Service) generateItem(ctx context.Context, paper *models.Paper, item *models.BlueprintItem, style *models.StyleContext) ([]services.GeneratedQuestion, error) {
	req := &services.BatchRequest{
		Class:   paper.Meta.Class,
		Subject: paper.Meta.Subject,
		Topic:   item.Topic,
		Type:    item.Type,
		Count:   item.Count,
		Marks:   item.Marks,
		Style:   style,
	}

	var records []services.GeneratedQuestion
	err := s.queue.Do(ctx, func() error {
		var genErr error
		records, genErr = s.generator.GenerateBatch(ctx, req)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
