package models

import "time"

// Role determines exemption from quota gates and access to the review
// surface. Reviewers and admins are never charged credits or downloads.
type Role string

const (
	RoleTeacher  Role = "teacher"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// Plan is the subscription tier of an account.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanBasic    Plan = "basic"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Account is a registered user of the paper builder.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Plan      Plan      `json:"plan"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Exempt reports whether the account bypasses credit, regeneration and
// download gates entirely.
func (a *Account) Exempt() bool {
	return a.Role == RoleReviewer || a.Role == RoleAdmin
}
