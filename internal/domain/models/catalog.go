package models

import "time"

// Pattern is a named style/sample preset keyed by class and subject.
// Its text is fed into the generation style context.
type Pattern struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	Subject   string    `json:"subject"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApprovalStatus is the state of a plan-upgrade request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalRequest records a payment made out-of-band that an admin must
// confirm before the account's plan is switched and credits replenished.
type ApprovalRequest struct {
	ID        string         `json:"id"`
	AccountID string         `json:"account_id"`
	Plan      Plan           `json:"plan"`
	Reference string         `json:"reference"` // payment reference supplied by the user
	Status    ApprovalStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Page is a static content page served by slug.
type Page struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}
