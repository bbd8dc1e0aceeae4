package handler

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/repositories"
	"papergen/internal/domain/services"
	"papergen/internal/httputil"
	"papergen/internal/service/assembly"
	"papergen/internal/service/editor"
	"papergen/internal/service/export"
	"papergen/internal/service/quota"
	"papergen/internal/service/regen"
	"papergen/internal/service/session"
)

// DraftHandler handles the paper-building session: blueprint editing,
// assembly, question mutation, regeneration and export.
type DraftHandler struct {
	registry  *session.Registry
	assembler *assembly.Service
	editor    *editor.Service
	regen     *regen.Governor
	exporter  *export.Service
	images    services.ImageGenerator
	accounts  repositories.AccountRepository
	patterns  repositories.PatternRepository
	logger    *slog.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(
	registry *session.Registry,
	assembler *assembly.Service,
	editorSvc *editor.Service,
	regenGov *regen.Governor,
	exporter *export.Service,
	images services.ImageGenerator,
	accounts repositories.AccountRepository,
	patterns repositories.PatternRepository,
	logger *slog.Logger,
) *DraftHandler {
	return &DraftHandler{
		registry:  registry,
		assembler: assembler,
		editor:    editorSvc,
		regen:     regenGov,
		exporter:  exporter,
		images:    images,
		accounts:  accounts,
		patterns:  patterns,
		logger:    logger,
	}
}

// draftResponse is the full session view returned by most mutations, so
// the client never needs a follow-up read to see derived totals.
type draftResponse struct {
	Paper      *models.Paper          `json:"paper"`
	Blueprint  []models.BlueprintItem `json:"blueprint"`
	TotalMarks float64                `json:"total_marks"`
	Persisted  bool                   `json:"persisted"`
}

func (h *DraftHandler) respondDraft(w http.ResponseWriter, status int, draft *session.Draft) {
	draft.Lock()
	resp := draftResponse{
		Paper:      draft.Paper,
		Blueprint:  draft.Blueprint.Items(),
		TotalMarks: draft.Paper.TotalMarks(),
		Persisted:  draft.Persisted,
	}
	draft.Unlock()
	httputil.RespondJSON(w, status, resp)
}

// account loads the authenticated account for quota decisions.
func (h *DraftHandler) account(r *http.Request) (*models.Account, error) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		return nil, &domain.UnauthorizedError{Message: "missing account identity"}
	}
	return h.accounts.GetByID(r.Context(), userID)
}

// getOwned resolves the draft from the path and enforces ownership.
func (h *DraftHandler) getOwned(r *http.Request) (*session.Draft, error) {
	return h.registry.GetOwned(r.PathValue("id"), httputil.GetUserID(r))
}

// CreateDraft opens a new building session
// POST /api/drafts
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var meta models.PaperMeta
	if err := httputil.ParseJSON(w, r, &meta); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft := h.registry.Create(account.ID, meta)
	h.logger.Info("draft created", "draft_id", draft.Paper.ID, "owner_id", account.ID)
	h.respondDraft(w, http.StatusCreated, draft)
}

// GetDraft returns the current session state
// GET /api/drafts/{id}
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondDraft(w, http.StatusOK, draft)
}

// CloseDraft discards the session. Unsaved work is gone; the persisted
// copy, if any, is untouched.
// DELETE /api/drafts/{id}
func (h *DraftHandler) CloseDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	h.registry.Close(draft.Paper.ID)
	w.WriteHeader(http.StatusNoContent)
}

// AddBlueprintItem appends a row to the blueprint
// POST /api/drafts/{id}/blueprint
func (h *DraftHandler) AddBlueprintItem(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var item models.BlueprintItem
	if err := httputil.ParseJSON(w, r, &item); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft.Lock()
	added, err := draft.Blueprint.Add(item)
	draft.Unlock()
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, added)
}

// RemoveBlueprintItem deletes a blueprint row
// DELETE /api/drafts/{id}/blueprint/{itemID}
func (h *DraftHandler) RemoveBlueprintItem(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	draft.Lock()
	err = draft.Blueprint.Remove(r.PathValue("itemID"))
	draft.Unlock()
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// assembleRequest carries the optional style guidance for one assembly.
type assembleRequest struct {
	StyleText   string   `json:"style_text,omitempty"`
	PatternID   string   `json:"pattern_id,omitempty"`
	Attachments []string `json:"attachments,omitempty"` // base64-encoded, max 2
}

// Assemble turns the blueprint into paper sections
// POST /api/drafts/{id}/assemble
func (h *DraftHandler) Assemble(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}

	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req assembleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	style, err := h.buildStyle(r, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.assembler.Assemble(r.Context(), draft, style, account); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// buildStyle resolves the style context from free text, an optional
// stored pattern and up to two base64 attachments.
func (h *DraftHandler) buildStyle(r *http.Request, req *assembleRequest) (*models.StyleContext, error) {
	if req.StyleText == "" && req.PatternID == "" && len(req.Attachments) == 0 {
		return nil, nil
	}

	style := &models.StyleContext{Text: req.StyleText}

	if req.PatternID != "" {
		pattern, err := h.patterns.GetByID(r.Context(), req.PatternID)
		if err != nil {
			return nil, err
		}
		if style.Text != "" {
			style.Text += "\n\n"
		}
		style.Text += pattern.Text
	}

	if len(req.Attachments) > models.MaxStyleAttachments {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("at most %d style attachments allowed", models.MaxStyleAttachments),
		}
	}
	for _, encoded := range req.Attachments {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, &domain.ValidationError{Message: "attachment is not valid base64"}
		}
		style.Attachments = append(style.Attachments, data)
	}

	return style, nil
}

// UpdateMeta patches the paper header fields
// PATCH /api/drafts/{id}/meta
func (h *DraftHandler) UpdateMeta(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var update editor.MetaUpdate
	if err := httputil.ParseJSON(w, r, &update); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.editor.UpdateMeta(draft, &update); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// UpdateSection renames a section
// PATCH /api/drafts/{id}/sections/{sectionID}
func (h *DraftHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.editor.UpdateSectionTitle(draft, r.PathValue("sectionID"), req.Title); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// DeleteSection removes a whole section and its questions
// DELETE /api/drafts/{id}/sections/{sectionID}
func (h *DraftHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.editor.DeleteSection(draft, r.PathValue("sectionID")); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// AddQuestion appends a blank scaffold question to a section
// POST /api/drafts/{id}/sections/{sectionID}/questions
func (h *DraftHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	question, err := h.editor.AddQuestion(draft, r.PathValue("sectionID"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, question)
}

// UpdateQuestion patches question fields
// PATCH /api/drafts/{id}/sections/{sectionID}/questions/{questionID}
func (h *DraftHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var update editor.QuestionUpdate
	if err := httputil.ParseJSON(w, r, &update); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.editor.UpdateQuestion(draft, r.PathValue("sectionID"), r.PathValue("questionID"), &update); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// DeleteQuestion removes a question
// DELETE /api/drafts/{id}/sections/{sectionID}/questions/{questionID}
func (h *DraftHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.editor.DeleteQuestion(draft, r.PathValue("sectionID"), r.PathValue("questionID")); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// RegenerateQuestion replaces one question's content in place
// POST /api/drafts/{id}/sections/{sectionID}/questions/{questionID}/regenerate
func (h *DraftHandler) RegenerateQuestion(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}

	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	question, err := h.regen.Regenerate(r.Context(), draft, r.PathValue("sectionID"), r.PathValue("questionID"), account)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, question)
}

// AttachImage generates an illustration for a question and attaches it.
// Image failures degrade to a placeholder, so this never fails on the
// generation side.
// POST /api/drafts/{id}/sections/{sectionID}/questions/{questionID}/image
func (h *DraftHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Prompt   string `json:"prompt"`
		WidthPct int    `json:"width_pct,omitempty"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		httputil.RespondError(w, http.StatusBadRequest, "image prompt is required")
		return
	}

	image := h.images.Generate(r.Context(), req.Prompt)
	if req.WidthPct > 0 {
		image.WidthPct = req.WidthPct
	}

	if err := h.editor.AttachImage(draft, r.PathValue("sectionID"), r.PathValue("questionID"), image); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// DetachImage removes a question's illustration
// DELETE /api/drafts/{id}/sections/{sectionID}/questions/{questionID}/image
func (h *DraftHandler) DetachImage(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.editor.DetachImage(draft, r.PathValue("sectionID"), r.PathValue("questionID")); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// SaveDraft persists the paper explicitly without exporting
// POST /api/drafts/{id}/save
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.exporter.Save(r.Context(), draft); err != nil {
		handleError(w, err)
		return
	}

	h.respondDraft(w, http.StatusOK, draft)
}

// Export builds a projection of the paper, charging the shared download
// allowance for non-exempt accounts
// POST /api/drafts/{id}/export
func (h *DraftHandler) Export(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}

	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Kind export.Kind `json:"kind"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	projection, err := h.exporter.Export(r.Context(), draft, req.Kind, account)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projection)
}

// Quota returns the caller's live allowance view
// GET /api/drafts/{id}/quota
func (h *DraftHandler) Quota(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}

	draft, err := h.getOwned(r)
	if err != nil {
		handleError(w, err)
		return
	}

	state := quota.StateFor(account)
	draft.Lock()
	downloads := draft.Paper.Downloads
	draft.Unlock()

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"credits":             state.Credits,
		"exempt":              state.Exempt,
		"assembly_cost":       state.AssemblyCost,
		"regen_per_question":  state.RegenPerQuestion,
		"download_allowance":  state.DownloadAllowance,
		"downloads_used":      downloads,
		"can_assemble":        state.CanAssemble(),
		"can_download":        state.CanDownload(downloads),
	})
}
