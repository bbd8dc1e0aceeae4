package handler

import (
	"log/slog"
	"net/http"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/repositories"
	"papergen/internal/httputil"
	"papergen/internal/service/session"
)

// PaperHandler serves the persisted paper library: the owner's shelf and
// the review surface.
type PaperHandler struct {
	papers   repositories.PaperRepository
	accounts repositories.AccountRepository
	registry *session.Registry
	logger   *slog.Logger
}

// NewPaperHandler creates a new paper handler
func NewPaperHandler(
	papers repositories.PaperRepository,
	accounts repositories.AccountRepository,
	registry *session.Registry,
	logger *slog.Logger,
) *PaperHandler {
	return &PaperHandler{
		papers:   papers,
		accounts: accounts,
		registry: registry,
		logger:   logger,
	}
}

func (h *PaperHandler) account(r *http.Request) (*models.Account, error) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		return nil, &domain.UnauthorizedError{Message: "missing account identity"}
	}
	return h.accounts.GetByID(r.Context(), userID)
}

// ListMine returns the caller's owner-visible papers
// GET /api/papers
func (h *PaperHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	papers, err := h.papers.ListByOwner(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if papers == nil {
		papers = []models.Paper{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"papers": papers,
		"total":  len(papers),
	})
}

// GetPaper returns a single persisted paper. Owners see their own;
// reviewers and admins see any.
// GET /api/papers/{id}
func (h *PaperHandler) GetPaper(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}

	paper, err := h.papers.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	if paper.OwnerID != account.ID && !account.Exempt() {
		handleError(w, &domain.ForbiddenError{Message: "not your paper"})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, paper)
}

// OpenDraft loads a persisted paper back into an editing session
// POST /api/papers/{id}/draft
func (h *PaperHandler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	paper, err := h.papers.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	if paper.OwnerID != userID {
		handleError(w, &domain.ForbiddenError{Message: "not your paper"})
		return
	}

	draft := h.registry.Adopt(paper)
	h.logger.Info("draft reopened", "paper_id", paper.ID, "owner_id", userID)

	draft.Lock()
	resp := draftResponse{
		Paper:      draft.Paper,
		Blueprint:  draft.Blueprint.Items(),
		TotalMarks: draft.Paper.TotalMarks(),
		Persisted:  draft.Persisted,
	}
	draft.Unlock()
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HidePaper removes a paper from the owner's shelf without touching the
// review surface
// DELETE /api/papers/{id}
func (h *PaperHandler) HidePaper(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	paper, err := h.papers.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	if paper.OwnerID != userID {
		handleError(w, &domain.ForbiddenError{Message: "not your paper"})
		return
	}

	if err := h.papers.SoftHide(r.Context(), paper.ID, models.AudienceOwner); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListForReview returns the reviewer-visible set across all owners
// GET /api/review/papers
func (h *PaperHandler) ListForReview(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if !account.Exempt() {
		handleError(w, &domain.ForbiddenError{Message: "review access requires reviewer role"})
		return
	}

	papers, err := h.papers.ListAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if papers == nil {
		papers = []models.Paper{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"papers": papers,
		"total":  len(papers),
	})
}

// HideFromReview removes a paper from the review surface, leaving the
// owner's copy intact
// DELETE /api/review/papers/{id}
func (h *PaperHandler) HideFromReview(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if !account.Exempt() {
		handleError(w, &domain.ForbiddenError{Message: "review access requires reviewer role"})
		return
	}

	if err := h.papers.SoftHide(r.Context(), r.PathValue("id"), models.AudienceReviewer); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PurgePaper permanently deletes a paper. Admin only.
// DELETE /api/papers/{id}/purge
func (h *PaperHandler) PurgePaper(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if account.Role != models.RoleAdmin {
		handleError(w, &domain.ForbiddenError{Message: "purge requires admin role"})
		return
	}

	if err := h.papers.Purge(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
