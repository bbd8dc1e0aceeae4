package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/repositories"
	"papergen/internal/httputil"
	"papergen/internal/service/quota"
)

// AccountHandler serves account state and the plan-upgrade approval flow.
type AccountHandler struct {
	accounts  repositories.AccountRepository
	approvals repositories.ApprovalRepository
	tx        repositories.TransactionManager
	logger    *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	accounts repositories.AccountRepository,
	approvals repositories.ApprovalRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		approvals: approvals,
		tx:        tx,
		logger:    logger,
	}
}

func (h *AccountHandler) account(r *http.Request) (*models.Account, error) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		return nil, &domain.UnauthorizedError{Message: "missing account identity"}
	}
	return h.accounts.GetByID(r.Context(), userID)
}

// Me returns the caller's account with its quota state
// GET /api/accounts/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}

	state := quota.StateFor(account)
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"account": account,
		"quota": map[string]any{
			"credits":            state.Credits,
			"exempt":             state.Exempt,
			"assembly_cost":      state.AssemblyCost,
			"regen_per_question": state.RegenPerQuestion,
			"download_allowance": state.DownloadAllowance,
		},
	})
}

// Register creates the account row for a newly authenticated identity.
// Idempotent in effect: a second call conflicts with 409.
// POST /api/accounts
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		handleError(w, &domain.UnauthorizedError{Message: "missing account identity"})
		return
	}

	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" {
		httputil.RespondError(w, http.StatusBadRequest, "email is required")
		return
	}

	now := time.Now()
	account := &models.Account{
		ID:        userID,
		Email:     req.Email,
		Name:      req.Name,
		Role:      models.RoleTeacher,
		Plan:      models.PlanFree,
		Credits:   quota.ForPlan(models.PlanFree).PlanCredits,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.accounts.Create(r.Context(), account); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("account registered", "account_id", account.ID, "email", account.Email)
	httputil.RespondJSON(w, http.StatusCreated, account)
}

// SubmitApproval records an out-of-band payment awaiting admin review
// POST /api/approvals
func (h *AccountHandler) SubmitApproval(w http.ResponseWriter, r *http.Request) {
	account, err := h.account(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Plan      models.Plan `json:"plan"`
		Reference string      `json:"reference"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !quota.KnownPlan(req.Plan) || req.Plan == models.PlanFree {
		httputil.RespondError(w, http.StatusBadRequest, "unknown or non-upgradable plan")
		return
	}
	if req.Reference == "" {
		httputil.RespondError(w, http.StatusBadRequest, "payment reference is required")
		return
	}

	now := time.Now()
	approval := &models.ApprovalRequest{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Plan:      req.Plan,
		Reference: req.Reference,
		Status:    models.ApprovalPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.approvals.Create(r.Context(), approval); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("approval submitted", "approval_id", approval.ID, "account_id", account.ID, "plan", approval.Plan)
	httputil.RespondJSON(w, http.StatusCreated, approval)
}

// ListApprovals returns pending upgrade requests. Admin only.
// GET /api/approvals
func (h *AccountHandler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		handleError(w, err)
		return
	}

	approvals, err := h.approvals.ListPending(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if approvals == nil {
		approvals = []models.ApprovalRequest{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"approvals": approvals,
		"total":     len(approvals),
	})
}

// ApproveRequest confirms the payment, switches the plan and replenishes
// the credit balance in one step. Admin only.
// POST /api/approvals/{id}/approve
func (h *AccountHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		handleError(w, err)
		return
	}

	approval, err := h.approvals.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	// Status change and plan switch commit together or not at all.
	err = h.tx.ExecTx(r.Context(), func(ctx context.Context) error {
		if err := h.approvals.SetStatus(ctx, approval.ID, models.ApprovalApproved); err != nil {
			return err
		}
		credits := quota.ForPlan(approval.Plan).PlanCredits
		return h.accounts.SetPlan(ctx, approval.AccountID, approval.Plan, credits)
	})
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("approval granted", "approval_id", approval.ID, "account_id", approval.AccountID, "plan", approval.Plan)
	w.WriteHeader(http.StatusNoContent)
}

// RejectRequest declines the upgrade, leaving plan and credits untouched.
// Admin only.
// POST /api/approvals/{id}/reject
func (h *AccountHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		handleError(w, err)
		return
	}

	if err := h.approvals.SetStatus(r.Context(), r.PathValue("id"), models.ApprovalRejected); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) requireAdmin(r *http.Request) error {
	account, err := h.account(r)
	if err != nil {
		return err
	}
	if account.Role != models.RoleAdmin {
		return &domain.ForbiddenError{Message: "admin role required"}
	}
	return nil
}
