// Package regen replaces a single question's content in place, under the
// caller's per-question regeneration quota.
package regen

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/services"
	"papergen/internal/service/quota"
	"papergen/internal/service/session"
)

// Governor issues single-question regeneration calls. At most one
// regeneration is outstanding per question id; a second request while
// one is in flight is rejected, never raced.
type Governor struct {
	generator services.QuestionGenerator
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGovernor creates a regeneration governor.
func NewGovernor(generator services.QuestionGenerator, logger *slog.Logger) *Governor {
	return &Governor{
		generator: generator,
		logger:    logger,
		inFlight:  make(map[string]struct{}),
	}
}

// Regenerate replaces the question's content with a freshly generated
// one. Identity, position and marks are preserved; the regeneration
// counter increments by one; the owning section's total is unchanged by
// construction.
func (g *Governor) Regenerate(ctx context.Context, draft *session.Draft, sectionID, questionID string, account *models.Account) (*models.Question, error) {
	if err := g.acquire(questionID); err != nil {
		return nil, err
	}
	defer g.release(questionID)

	// Snapshot the quota inputs under the draft lock, then release it
	// for the duration of the external call.
	draft.Lock()
	section, question, err := locate(draft.Paper, sectionID, questionID)
	if err != nil {
		draft.Unlock()
		return nil, err
	}

	state := quota.StateFor(account)
	if !state.CanRegenerate(question.RegenCount) {
		draft.Unlock()
		return nil, &domain.QuotaError{
			Message: fmt.Sprintf("regeneration limit of %d reached for this question", state.RegenPerQuestion),
		}
	}

	req := &services.BatchRequest{
		Class:   draft.Paper.Meta.Class,
		Subject: draft.Paper.Meta.Subject,
		Topic:   question.Topic,
		Type:    question.Type,
		Count:   1,
		Marks:   question.Marks, // marks are held fixed across a regeneration
	}
	draft.Unlock()

	records, err := g.generator.GenerateBatch(ctx, req)
	if err != nil {
		// Single-question scope: the question keeps its previous content.
		return nil, err
	}
	if len(records) == 0 {
		return nil, &domain.GenerationError{Message: "collaborator returned no records"}
	}
	record := records[0]

	draft.Lock()
	defer draft.Unlock()

	// Re-locate: the draft may have been edited while the call was out.
	section, question, err = locate(draft.Paper, sectionID, questionID)
	if err != nil {
		return nil, err
	}

	question.Prompt = record.Prompt
	question.Answer = record.Answer
	question.Options = record.Options
	question.MatchPairs = record.MatchPairs
	question.RegenCount++
	draft.Paper.EditCount++
	draft.Paper.UpdatedAt = time.Now()
	section.Recompute()

	g.logger.Info("question regenerated",
		"paper_id", draft.Paper.ID,
		"question_id", questionID,
		"regen_count", question.RegenCount,
	)
	return question, nil
}

func (g *Governor) acquire(questionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[questionID]; busy {
		return &domain.ConflictError{
			Message:      "a regeneration for this question is already in flight",
			ResourceType: "question",
			ResourceID:   questionID,
		}
	}
	g.inFlight[questionID] = struct{}{}
	return nil
}

func (g *Governor) release(questionID string) {
	g.mu.Lock()
	delete(g.inFlight, questionID)
	g.mu.Unlock()
}

func locate(paper *models.Paper, sectionID, questionID string) (*models.Section, *models.Question, error) {
	section := paper.Section(sectionID)
	if section == nil {
		return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("section %s not found", sectionID)}
	}
	for i := range section.Questions {
		if section.Questions[i].ID == questionID {
			return section, &section.Questions[i], nil
		}
	}
	return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("question %s not found", questionID)}
}
