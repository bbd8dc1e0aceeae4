package regen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/services"
	"papergen/internal/service/session"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	fail    bool
	empty   bool          // return zero records with a nil error
	block   chan struct{} // if set, GenerateBatch waits on it
	lastReq *services.BatchRequest
}

func (g *fakeGenerator) GenerateBatch(ctx context.Context, req *services.BatchRequest) ([]services.GeneratedQuestion, error) {
	g.mu.Lock()
	g.calls++
	g.lastReq = req
	block := g.block
	g.mu.Unlock()

	if block != nil {
		<-block
	}
	if g.fail {
		return nil, &domain.GenerationError{Message: "collaborator unavailable"}
	}
	if g.empty {
		return nil, nil
	}
	return []services.GeneratedQuestion{{Prompt: "new prompt", Answer: "new answer"}}, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newTestDraft() *session.Draft {
	reg := session.NewRegistry()
	draft := reg.Create("owner-1", models.PaperMeta{Class: "10", Subject: "Mathematics"})
	section := models.Section{ID: "sec-a", Title: "Section A", Questions: []models.Question{
		{ID: "q1", Type: models.QuestionMCQ, Topic: "Algebra", Prompt: "old prompt", Marks: 2, Answer: "old answer", RegenCount: 0},
	}}
	section.Recompute()
	draft.Paper.Sections = []models.Section{section}
	return draft
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRegenerate(t *testing.T) {
	gen := &fakeGenerator{}
	gov := NewGovernor(gen, discard())
	draft := newTestDraft()
	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanBasic}

	q, err := gov.Regenerate(context.Background(), draft, "sec-a", "q1", account)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	if q.ID != "q1" {
		t.Errorf("question id = %s, identity must be preserved", q.ID)
	}
	if q.Prompt != "new prompt" || q.Answer != "new answer" {
		t.Errorf("content not replaced: %+v", q)
	}
	if q.Marks != 2 {
		t.Errorf("Marks = %v, must be held fixed", q.Marks)
	}
	if q.RegenCount != 1 {
		t.Errorf("RegenCount = %d, want 1", q.RegenCount)
	}
	if got := draft.Paper.Sections[0].TotalMarks; got != 2 {
		t.Errorf("section TotalMarks = %v, changed by regeneration", got)
	}
	if gen.lastReq.Topic != "Algebra" || gen.lastReq.Type != models.QuestionMCQ || gen.lastReq.Count != 1 || gen.lastReq.Marks != 2 {
		t.Errorf("request = %+v, want original topic/type/marks with count 1", gen.lastReq)
	}
}

func TestRegenerateQuotaExhausted(t *testing.T) {
	gen := &fakeGenerator{}
	gov := NewGovernor(gen, discard())
	draft := newTestDraft()
	// Free plan allows one regeneration; the question already used it.
	draft.Paper.Sections[0].Questions[0].RegenCount = 1
	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanFree}

	_, err := gov.Regenerate(context.Background(), draft, "sec-a", "q1", account)
	if !errors.Is(err, domain.ErrQuota) {
		t.Fatalf("Regenerate() error = %v, want ErrQuota", err)
	}
	if gen.callCount() != 0 {
		t.Errorf("collaborator called %d times on a quota rejection, want 0", gen.callCount())
	}
}

func TestRegenerateFailureLeavesQuestion(t *testing.T) {
	gen := &fakeGenerator{fail: true}
	gov := NewGovernor(gen, discard())
	draft := newTestDraft()
	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanBasic}

	_, err := gov.Regenerate(context.Background(), draft, "sec-a", "q1", account)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("Regenerate() error = %v, want ErrGeneration", err)
	}

	q := draft.Paper.Sections[0].Questions[0]
	if q.Prompt != "old prompt" || q.Answer != "old answer" || q.RegenCount != 0 {
		t.Errorf("question mutated on failure: %+v", q)
	}
}

func TestRegenerateEmptyBatchLeavesQuestion(t *testing.T) {
	gen := &fakeGenerator{empty: true}
	gov := NewGovernor(gen, discard())
	draft := newTestDraft()
	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanBasic}

	// A collaborator that honors the error contract but not the count
	// contract must surface as a generation failure, not a panic.
	_, err := gov.Regenerate(context.Background(), draft, "sec-a", "q1", account)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("Regenerate() error = %v, want ErrGeneration", err)
	}

	q := draft.Paper.Sections[0].Questions[0]
	if q.Prompt != "old prompt" || q.RegenCount != 0 {
		t.Errorf("question mutated on empty batch: %+v", q)
	}
}

func TestRegenerateSingleFlight(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{})}
	gov := NewGovernor(gen, discard())
	draft := newTestDraft()
	account := &models.Account{ID: "owner-1", Role: models.RoleTeacher, Plan: models.PlanPremium}

	first := make(chan error, 1)
	go func() {
		_, err := gov.Regenerate(context.Background(), draft, "sec-a", "q1", account)
		first <- err
	}()

	// Wait for the first call to reach the collaborator.
	deadline := time.Now().Add(2 * time.Second)
	for gen.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first regeneration never reached the collaborator")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := gov.Regenerate(context.Background(), draft, "sec-a", "q1", account)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("concurrent Regenerate() error = %v, want ErrConflict", err)
	}

	close(gen.block)
	if err := <-first; err != nil {
		t.Fatalf("first Regenerate() error = %v", err)
	}
	if gen.callCount() != 1 {
		t.Errorf("collaborator calls = %d, want 1", gen.callCount())
	}

	// After the first completes, a new request is admitted again.
	gen.block = nil
	if _, err := gov.Regenerate(context.Background(), draft, "sec-a", "q1", account); err != nil {
		t.Fatalf("follow-up Regenerate() error = %v", err)
	}
}
