package assembly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"papergen/internal/catalog"
	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/services"
	"papergen/internal/service/session"
)

// fakeGenerator counts calls and fails on a chosen item index.
type fakeGenerator struct {
	calls  int
	failAt int // 1-based call number to fail on; 0 = never
}

func (g *fakeGenerator) GenerateBatch(ctx context.Context, req *services.BatchRequest) ([]services.GeneratedQuestion, error) {
	g.calls++
	if g.failAt != 0 && g.calls == g.failAt {
		return nil, &domain.GenerationError{Message: "collaborator unavailable"}
	}

	records := make([]services.GeneratedQuestion, req.Count)
	for i := range records {
		records[i] = services.GeneratedQuestion{
			Prompt: fmt.Sprintf("%s question %d", req.Topic, i+1),
			Answer: "answer",
		}
	}
	return records, nil
}

// fakeAccounts tracks credit deductions.
type fakeAccounts struct {
	credits    int
	deductions int
}

func (a *fakeAccounts) Create(ctx context.Context, account *models.Account) error { return nil }
func (a *fakeAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return nil, &domain.NotFoundError{Message: "not implemented"}
}
func (a *fakeAccounts) SetPlan(ctx context.Context, id string, plan models.Plan, credits int) error {
	return nil
}
func (a *fakeAccounts) DeductCredit(ctx context.Context, id string) (int, error) {
	if a.credits <= 0 {
		return 0, &domain.QuotaError{Message: "no credits"}
	}
	a.credits--
	a.deductions++
	return a.credits, nil
}

func newTestService(t *testing.T, gen *fakeGenerator, accounts *fakeAccounts) (*Service, *Queue) {
	t.Helper()
	reg, err := catalog.NewRegistry()
	if err != nil {
		t.Fatalf("catalog.NewRegistry() error = %v", err)
	}
	queue := NewQueue()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(gen, accounts, reg, queue, logger), queue
}

func newTestDraft(locale string) *session.Draft {
	reg := session.NewRegistry()
	return reg.Create("owner-1", models.PaperMeta{
		Title: "Half Yearly", Class: "10", Subject: "Mathematics", Locale: locale,
	})
}

func addItems(t *testing.T, draft *session.Draft, items ...models.BlueprintItem) {
	t.Helper()
	for _, item := range items {
		if _, err := draft.Blueprint.Add(item); err != nil {
			t.Fatalf("Blueprint.Add() error = %v", err)
		}
	}
}

func TestAssemble(t *testing.T) {
	gen := &fakeGenerator{}
	accounts := &fakeAccounts{credits: 1}
	svc, queue := newTestService(t, gen, accounts)
	defer queue.Shutdown()

	draft := newTestDraft("en")
	addItems(t, draft,
		models.BlueprintItem{Topic: "Algebra", Type: models.QuestionMCQ, Count: 2, Marks: 1},
		models.BlueprintItem{Topic: "Geometry", Type: models.QuestionShortAnswer, Count: 1, Marks: 3},
	)

	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanBasic, Credits: 1}
	if err := svc.Assemble(context.Background(), draft, nil, account); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	paper := draft.Paper
	if len(paper.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(paper.Sections))
	}
	if paper.Sections[0].Title != "Section A" || paper.Sections[1].Title != "Section B" {
		t.Errorf("titles = %q, %q", paper.Sections[0].Title, paper.Sections[1].Title)
	}
	if paper.Sections[0].Questions[0].Topic != "Algebra" || paper.Sections[1].Questions[0].Topic != "Geometry" {
		t.Error("sections not in blueprint order")
	}
	if paper.Sections[0].TotalMarks != 2 || paper.Sections[1].TotalMarks != 3 {
		t.Errorf("section totals = %v, %v, want 2, 3", paper.Sections[0].TotalMarks, paper.Sections[1].TotalMarks)
	}
	if got := paper.TotalMarks(); got != 5 {
		t.Errorf("paper.TotalMarks() = %v, want 5", got)
	}
	if accounts.deductions != 1 || account.Credits != 0 {
		t.Errorf("deductions = %d, credits = %d; want exactly one deduction to zero", accounts.deductions, account.Credits)
	}
	if gen.calls != 2 {
		t.Errorf("collaborator calls = %d, want 2", gen.calls)
	}
	if draft.Blueprint.Len() != 0 {
		t.Error("blueprint not discarded after assembly")
	}

	// Second attempt before replenishment is rejected before any call.
	addItems(t, draft, models.BlueprintItem{Topic: "Algebra", Type: models.QuestionMCQ, Count: 1, Marks: 1})
	err := svc.Assemble(context.Background(), draft, nil, account)
	if !errors.Is(err, domain.ErrQuota) {
		t.Fatalf("second Assemble() error = %v, want ErrQuota", err)
	}
	if gen.calls != 2 {
		t.Errorf("collaborator called %d times after quota rejection, want still 2", gen.calls)
	}
}

func TestAssembleLocaleLabels(t *testing.T) {
	gen := &fakeGenerator{}
	accounts := &fakeAccounts{credits: 5}
	svc, queue := newTestService(t, gen, accounts)
	defer queue.Shutdown()

	draft := newTestDraft("hi")
	addItems(t, draft,
		models.BlueprintItem{Topic: "Algebra", Type: models.QuestionMCQ, Count: 1, Marks: 1},
		models.BlueprintItem{Topic: "Geometry", Type: models.QuestionMCQ, Count: 1, Marks: 1},
	)

	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanFree, Credits: 1}
	if err := svc.Assemble(context.Background(), draft, nil, account); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if draft.Paper.Sections[0].Title != "खण्ड क" || draft.Paper.Sections[1].Title != "खण्ड ख" {
		t.Errorf("titles = %q, %q", draft.Paper.Sections[0].Title, draft.Paper.Sections[1].Title)
	}
}

func TestAssembleAtomicOnFailure(t *testing.T) {
	gen := &fakeGenerator{failAt: 2}
	accounts := &fakeAccounts{credits: 1}
	svc, queue := newTestService(t, gen, accounts)
	defer queue.Shutdown()

	draft := newTestDraft("en")
	// Seed an existing section so we can observe it surviving the abort.
	existing := models.Section{ID: "s-old", Title: "Section A", Questions: []models.Question{
		{ID: "q-old", Type: models.QuestionMCQ, Topic: "Old", Prompt: "old", Marks: 1},
	}}
	existing.Recompute()
	draft.Paper.Sections = []models.Section{existing}

	addItems(t, draft,
		models.BlueprintItem{Topic: "Algebra", Type: models.QuestionMCQ, Count: 1, Marks: 1},
		models.BlueprintItem{Topic: "Geometry", Type: models.QuestionShortAnswer, Count: 1, Marks: 3},
		models.BlueprintItem{Topic: "Trigonometry", Type: models.QuestionLongAnswer, Count: 1, Marks: 5},
	)

	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanBasic, Credits: 1}
	err := svc.Assemble(context.Background(), draft, nil, account)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("Assemble() error = %v, want ErrGeneration", err)
	}

	if len(draft.Paper.Sections) != 1 || draft.Paper.Sections[0].ID != "s-old" {
		t.Error("pre-assembly section list was modified on failure")
	}
	if accounts.deductions != 0 || account.Credits != 1 {
		t.Errorf("credits touched on failed assembly: deductions = %d, credits = %d", accounts.deductions, account.Credits)
	}
	if gen.calls != 2 {
		t.Errorf("collaborator calls = %d, want 2 (abort on second failure)", gen.calls)
	}
	if draft.Blueprint.Len() != 3 {
		t.Error("blueprint must survive a failed assembly for a caller-initiated retry")
	}
}

func TestAssembleExemptUncharged(t *testing.T) {
	gen := &fakeGenerator{}
	accounts := &fakeAccounts{credits: 0}
	svc, queue := newTestService(t, gen, accounts)
	defer queue.Shutdown()

	draft := newTestDraft("en")
	addItems(t, draft, models.BlueprintItem{Topic: "Optics", Type: models.QuestionMCQ, Count: 1, Marks: 1})

	reviewer := &models.Account{ID: "rev-1", Role: models.RoleReviewer, Credits: 0}
	if err := svc.Assemble(context.Background(), draft, nil, reviewer); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if accounts.deductions != 0 {
		t.Error("exempt account was charged")
	}
}

func TestAssembleEmptyBlueprint(t *testing.T) {
	gen := &fakeGenerator{}
	svc, queue := newTestService(t, gen, &fakeAccounts{credits: 1})
	defer queue.Shutdown()

	draft := newTestDraft("en")
	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanFree, Credits: 1}
	if err := svc.Assemble(context.Background(), draft, nil, account); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Assemble() error = %v, want ErrValidation", err)
	}
}
