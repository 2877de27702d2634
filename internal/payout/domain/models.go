package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// CanTransition reports whether a transition is allowed. Completed is
// terminal; failed is reachable from pending and approved only.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusApproved || to == StatusFailed
	case StatusApproved:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

type PayoutRequest struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ProviderID  snowflake.ID `gorm:"not null;index" json:"provider_id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Status      Status       `gorm:"type:text;not null" json:"status"`
	TransferRef string       `gorm:"not null;default:''" json:"transfer_ref,omitempty"`
	FailReason  string       `gorm:"not null;default:''" json:"fail_reason,omitempty"`
	RequestedAt time.Time    `gorm:"not null" json:"requested_at"`
	ApprovedAt  *time.Time   `json:"approved_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	FailedAt    *time.Time   `json:"failed_at,omitempty"`
}

func (PayoutRequest) TableName() string { return "payout_requests" }

var (
	ErrNotFound        = errors.New("payout_request_not_found")
	ErrBelowMinimum    = errors.New("payout_below_minimum")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrStatusConflict  = errors.New("payout_status_conflict")
	ErrRequestInFlight = errors.New("payout_request_in_flight")
)
