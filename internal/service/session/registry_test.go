package session

import (
	"errors"
	"testing"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
)

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	reg := NewRegistry()
	draft := reg.Create("owner-1", models.PaperMeta{Title: "Half Yearly"})

	if draft.Paper.ID == "" {
		t.Fatal("expected a paper id")
	}
	if draft.Paper.OwnerID != "owner-1" {
		t.Errorf("owner = %q, want owner-1", draft.Paper.OwnerID)
	}
	if draft.Paper.Meta.Locale != "en" {
		t.Errorf("locale = %q, want default en", draft.Paper.Meta.Locale)
	}
	if !draft.Paper.VisibleToOwner || !draft.Paper.VisibleToReviewer {
		t.Error("new paper should be visible to both audiences")
	}
	if draft.Persisted {
		t.Error("new draft should not be marked persisted")
	}
	if draft.Blueprint.Len() != 0 {
		t.Error("new draft should start with an empty blueprint")
	}
}

func TestCreateKeepsExplicitLocale(t *testing.T) {
	reg := NewRegistry()
	draft := reg.Create("owner-1", models.PaperMeta{Locale: "hi"})
	if draft.Paper.Meta.Locale != "hi" {
		t.Errorf("locale = %q, want hi", draft.Paper.Meta.Locale)
	}
}

func TestGetOwned(t *testing.T) {
	reg := NewRegistry()
	draft := reg.Create("owner-1", models.PaperMeta{})

	got, err := reg.GetOwned(draft.Paper.ID, "owner-1")
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if got != draft {
		t.Error("expected the same draft instance")
	}

	if _, err := reg.GetOwned(draft.Paper.ID, "owner-2"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("foreign owner error = %v, want forbidden", err)
	}
	if _, err := reg.GetOwned("missing", "owner-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing draft error = %v, want not found", err)
	}
}

func TestAdoptMarksPersisted(t *testing.T) {
	reg := NewRegistry()
	paper := &models.Paper{ID: "p1", OwnerID: "owner-1"}

	draft := reg.Adopt(paper)
	if !draft.Persisted {
		t.Error("adopted draft should be marked persisted")
	}

	got, err := reg.Get("p1")
	if err != nil {
		t.Fatalf("Get after Adopt: %v", err)
	}
	if got.Paper != paper {
		t.Error("adopted draft should wrap the given paper")
	}
}

func TestCloseDiscardsDraft(t *testing.T) {
	reg := NewRegistry()
	draft := reg.Create("owner-1", models.PaperMeta{})

	reg.Close(draft.Paper.ID)
	if _, err := reg.Get(draft.Paper.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("closed draft error = %v, want not found", err)
	}
}
