// Package quota maps subscription plans to numeric allowances. The table
// is read-only and process-wide; no locking is needed.
package quota

import "papergen/internal/domain/models"

// Limits are the plan-derived allowances enforced by the assembly,
// regeneration and export governors.
type Limits struct {
	// RegenPerQuestion is how many times one question may be regenerated.
	RegenPerQuestion int
	// DownloadAllowance is the shared export counter ceiling per paper,
	// covering both the question-paper and answer-key projections.
	DownloadAllowance int
	// AssemblyCost is the credits one full-paper assembly consumes.
	AssemblyCost int
	// PlanCredits is the credit balance granted when the plan is
	// activated or renewed.
	PlanCredits int
}

// Unlimited marks an allowance with no ceiling (exempt accounts).
const Unlimited = -1

var exemptLimits = Limits{
	RegenPerQuestion:  Unlimited,
	DownloadAllowance: Unlimited,
	AssemblyCost:      0,
	PlanCredits:       0,
}

var planLimits = map[models.Plan]Limits{
	models.PlanFree:     {RegenPerQuestion: 1, DownloadAllowance: 1, AssemblyCost: 1, PlanCredits: 2},
	models.PlanBasic:    {RegenPerQuestion: 2, DownloadAllowance: 1, AssemblyCost: 1, PlanCredits: 10},
	models.PlanStandard: {RegenPerQuestion: 3, DownloadAllowance: 1, AssemblyCost: 1, PlanCredits: 25},
	models.PlanPremium:  {RegenPerQuestion: 5, DownloadAllowance: 1, AssemblyCost: 1, PlanCredits: 60},
}

// For returns the limits for an account. The exempt override (reviewer
// and admin roles) is checked before the plan lookup; unknown plans fall
// back to the free tier.
func For(account *models.Account) Limits {
	if account.Exempt() {
		return exemptLimits
	}
	if limits, ok := planLimits[account.Plan]; ok {
		return limits
	}
	return planLimits[models.PlanFree]
}

// ForPlan returns the limits of a plan directly, ignoring any role
// override. Used when activating a plan to grant its credit balance.
func ForPlan(plan models.Plan) Limits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[models.PlanFree]
}

// KnownPlan reports whether the tier name is one the table prices.
func KnownPlan(plan models.Plan) bool {
	_, ok := planLimits[plan]
	return ok
}

// State derives the full quota view of an account: plan limits plus the
// live credit balance and the exempt flag.
type State struct {
	Limits
	Credits int
	Exempt  bool
}

// StateFor derives the quota state for an account.
func StateFor(account *models.Account) State {
	return State{
		Limits:  For(account),
		Credits: account.Credits,
		Exempt:  account.Exempt(),
	}
}

// CanAssemble reports whether the account may start a full assembly.
func (s State) CanAssemble() bool {
	return s.Exempt || s.Credits >= s.AssemblyCost
}

// CanRegenerate reports whether a question at the given regeneration
// count may be regenerated once more.
func (s State) CanRegenerate(regenCount int) bool {
	return s.Exempt || regenCount < s.RegenPerQuestion
}

// CanDownload reports whether the paper at the given shared download
// count may be exported once more (either projection).
func (s State) CanDownload(downloads int) bool {
	return s.Exempt || downloads < s.DownloadAllowance
}
