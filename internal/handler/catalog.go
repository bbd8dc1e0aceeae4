package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"papergen/internal/catalog"
	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/repositories"
	"papergen/internal/httputil"
)

// CatalogHandler serves the static vocabulary (question types, classes,
// subjects), the style presets and the content pages.
type CatalogHandler struct {
	registry *catalog.Registry
	accounts repositories.AccountRepository
	patterns repositories.PatternRepository
	pages    repositories.PageRepository
	logger   *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	registry *catalog.Registry,
	accounts repositories.AccountRepository,
	patterns repositories.PatternRepository,
	pages repositories.PageRepository,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		registry: registry,
		accounts: accounts,
		patterns: patterns,
		pages:    pages,
		logger:   logger,
	}
}

// QuestionTypes lists the supported question forms with default marks
// GET /api/catalog/question-types
func (h *CatalogHandler) QuestionTypes(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"question_types": h.registry.ListQuestionTypes(),
	})
}

// Curriculum lists the supported classes with their subjects
// GET /api/catalog/curriculum
func (h *CatalogHandler) Curriculum(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"classes": h.registry.Curriculum(),
	})
}

// ListPatterns returns style presets for a class/subject pair
// GET /api/patterns?class=10&subject=Mathematics
func (h *CatalogHandler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	class := r.URL.Query().Get("class")
	subject := r.URL.Query().Get("subject")
	if class == "" || subject == "" {
		httputil.RespondError(w, http.StatusBadRequest, "class and subject query parameters are required")
		return
	}

	patterns, err := h.patterns.ListByClassSubject(r.Context(), class, subject)
	if err != nil {
		handleError(w, err)
		return
	}
	if patterns == nil {
		patterns = []models.Pattern{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"patterns": patterns,
		"total":    len(patterns),
	})
}

// UpsertPattern creates or replaces a style preset. Admin only.
// POST /api/patterns
func (h *CatalogHandler) UpsertPattern(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetByID(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	if account.Role != models.RoleAdmin {
		handleError(w, &domain.ForbiddenError{Message: "admin role required"})
		return
	}

	var pattern models.Pattern
	if err := httputil.ParseJSON(w, r, &pattern); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if pattern.Name == "" || pattern.Class == "" || pattern.Subject == "" || pattern.Text == "" {
		httputil.RespondError(w, http.StatusBadRequest, "name, class, subject and text are required")
		return
	}

	now := time.Now()
	if pattern.ID == "" {
		pattern.ID = uuid.NewString()
		pattern.CreatedAt = now
	}
	pattern.UpdatedAt = now

	if err := h.patterns.Upsert(r.Context(), &pattern); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, pattern)
}

// GetPage serves a static content page
// GET /api/pages/{slug}
func (h *CatalogHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, page)
}
