package editor

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"papergen/internal/catalog"
	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/service/session"
)

func newTestEditor(t *testing.T) *Service {
	t.Helper()
	reg, err := catalog.NewRegistry()
	if err != nil {
		t.Fatalf("catalog.NewRegistry() error = %v", err)
	}
	return NewService(reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestDraft(t *testing.T) *session.Draft {
	t.Helper()
	reg := session.NewRegistry()
	draft := reg.Create("owner-1", models.PaperMeta{Title: "Unit Test", Class: "10", Subject: "Mathematics"})

	sectionA := models.Section{ID: "sec-a", Title: "Section A", Questions: []models.Question{
		{ID: "q1", Type: models.QuestionMCQ, Topic: "Algebra", Prompt: "p1", Marks: 1, Answer: "a1"},
		{ID: "q2", Type: models.QuestionMCQ, Topic: "Algebra", Prompt: "p2", Marks: 1.5, Answer: "a2"},
	}}
	sectionB := models.Section{ID: "sec-b", Title: "Section B", Questions: []models.Question{
		{ID: "q3", Type: models.QuestionLongAnswer, Topic: "Geometry", Prompt: "p3", Marks: 5, Answer: "a3"},
	}}
	sectionA.Recompute()
	sectionB.Recompute()
	draft.Paper.Sections = []models.Section{sectionA, sectionB}
	return draft
}

func TestTotalsAfterMutationSequence(t *testing.T) {
	svc := newTestEditor(t)
	draft := newTestDraft(t)

	// Raise q1 to 2.5 marks.
	marks := 2.5
	if err := svc.UpdateQuestion(draft, "sec-a", "q1", &QuestionUpdate{Marks: &marks}); err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}
	if got := draft.Paper.Sections[0].TotalMarks; got != 4 {
		t.Errorf("sec-a TotalMarks = %v, want 4", got)
	}

	// Delete q2.
	if err := svc.DeleteQuestion(draft, "sec-a", "q2"); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}
	if got := draft.Paper.Sections[0].TotalMarks; got != 2.5 {
		t.Errorf("sec-a TotalMarks = %v, want 2.5", got)
	}

	// Add a scaffold (short_answer default 2 marks from the catalog).
	q, err := svc.AddQuestion(draft, "sec-b")
	if err != nil {
		t.Fatalf("AddQuestion() error = %v", err)
	}
	if q.ID == "" || q.Type != models.QuestionShortAnswer {
		t.Errorf("scaffold = %+v", q)
	}
	if q.Topic != "Geometry" {
		t.Errorf("scaffold topic = %q, want prevailing section topic", q.Topic)
	}
	if got := draft.Paper.Sections[1].TotalMarks; got != 7 {
		t.Errorf("sec-b TotalMarks = %v, want 7", got)
	}

	// Document total is a live aggregate of the section totals.
	if got := draft.Paper.TotalMarks(); got != 9.5 {
		t.Errorf("paper.TotalMarks() = %v, want 9.5", got)
	}

	if draft.Paper.EditCount != 3 {
		t.Errorf("EditCount = %d, want 3", draft.Paper.EditCount)
	}
}

func TestUpdateQuestionValidation(t *testing.T) {
	svc := newTestEditor(t)
	draft := newTestDraft(t)

	bad := -1.0
	if err := svc.UpdateQuestion(draft, "sec-a", "q1", &QuestionUpdate{Marks: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative marks error = %v, want ErrValidation", err)
	}
	offGrid := 1.3
	if err := svc.UpdateQuestion(draft, "sec-a", "q1", &QuestionUpdate{Marks: &offGrid}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("off-grid marks error = %v, want ErrValidation", err)
	}
	badType := models.QuestionType("riddle")
	if err := svc.UpdateQuestion(draft, "sec-a", "q1", &QuestionUpdate{Type: &badType}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown type error = %v, want ErrValidation", err)
	}
	if draft.Paper.EditCount != 0 {
		t.Error("rejected mutations must leave the draft untouched")
	}
}

func TestPromptEditLeavesAnswerAlone(t *testing.T) {
	svc := newTestEditor(t)
	draft := newTestDraft(t)

	prompt := "rephrased prompt"
	if err := svc.UpdateQuestion(draft, "sec-a", "q1", &QuestionUpdate{Prompt: &prompt}); err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}

	q := draft.Paper.Sections[0].Questions[0]
	if q.Prompt != prompt {
		t.Errorf("Prompt = %q", q.Prompt)
	}
	if q.Answer != "a1" {
		t.Errorf("Answer = %q, changed by a prompt edit", q.Answer)
	}
}

func TestDeleteSection(t *testing.T) {
	svc := newTestEditor(t)
	draft := newTestDraft(t)

	if err := svc.DeleteSection(draft, "sec-a"); err != nil {
		t.Fatalf("DeleteSection() error = %v", err)
	}
	if len(draft.Paper.Sections) != 1 || draft.Paper.Sections[0].ID != "sec-b" {
		t.Errorf("sections after delete = %+v", draft.Paper.Sections)
	}
	if got := draft.Paper.TotalMarks(); got != 5 {
		t.Errorf("paper.TotalMarks() = %v, want 5", got)
	}

	if err := svc.DeleteSection(draft, "sec-a"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestAttachDetachImage(t *testing.T) {
	svc := newTestEditor(t)
	draft := newTestDraft(t)

	if err := svc.AttachImage(draft, "sec-b", "q3", models.ImageRef{Source: "https://img/x.png", WidthPct: 0}); err != nil {
		t.Fatalf("AttachImage() error = %v", err)
	}
	q := draft.Paper.Sections[1].Questions[0]
	if q.Image == nil || q.Image.WidthPct != 60 {
		t.Errorf("image = %+v, want default width applied", q.Image)
	}

	if err := svc.DetachImage(draft, "sec-b", "q3"); err != nil {
		t.Fatalf("DetachImage() error = %v", err)
	}
	if draft.Paper.Sections[1].Questions[0].Image != nil {
		t.Error("image still attached")
	}
}

func TestUpdateMeta(t *testing.T) {
	svc := newTestEditor(t)
	draft := newTestDraft(t)

	title := "  Final Exam  "
	term := "2026-27"
	if err := svc.UpdateMeta(draft, &MetaUpdate{Title: &title, Session: &term}); err != nil {
		t.Fatalf("UpdateMeta() error = %v", err)
	}
	if draft.Paper.Meta.Title != "Final Exam" {
		t.Errorf("Title = %q", draft.Paper.Meta.Title)
	}
	if draft.Paper.Meta.Session != "2026-27" {
		t.Errorf("Session = %q", draft.Paper.Meta.Session)
	}
	// Untouched fields keep their values.
	if draft.Paper.Meta.Class != "10" {
		t.Errorf("Class = %q, want unchanged", draft.Paper.Meta.Class)
	}
}
