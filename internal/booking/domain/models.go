package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the payment-relevant subset of the booking lifecycle.
type Status string

const (
	StatusPending           Status = "pending"
	StatusPendingPayment    Status = "pending_payment"
	StatusAwaitingPayment   Status = "awaiting_payment"
	StatusAccepted          Status = "accepted"
	StatusTraveling         Status = "traveling"
	StatusArrived           Status = "arrived"
	StatusInProgress        Status = "in_progress"
	StatusPendingCompletion Status = "pending_completion"
	StatusPaymentReceived   Status = "payment_received"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"
	StatusDeclined          Status = "declined"
	StatusRejected          Status = "rejected"
)

// PaymentStatus tracks where captured funds currently sit.
type PaymentStatus string

const (
	PaymentStatusNone     PaymentStatus = ""
	PaymentStatusHeld     PaymentStatus = "held"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentPreference string

const (
	PayFirst PaymentPreference = "pay_first"
	PayLater PaymentPreference = "pay_later"
)

type Booking struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	ClientID           snowflake.ID      `gorm:"not null;index" json:"client_id"`
	ProviderID         snowflake.ID      `gorm:"not null;index" json:"provider_id"`
	Status             Status            `gorm:"type:text;not null" json:"status"`
	PaymentPreference  PaymentPreference `gorm:"type:text;not null;default:'pay_later'" json:"payment_preference"`
	IsPaidUpfront      bool              `gorm:"not null;default:false" json:"is_paid_upfront"`
	PaymentStatus      PaymentStatus     `gorm:"type:text;not null;default:''" json:"payment_status"`
	ProviderPrice      int64             `gorm:"not null;default:0" json:"provider_price"`
	ProviderFixedPrice int64             `gorm:"not null;default:0" json:"provider_fixed_price"`
	OfferedPrice       int64             `gorm:"not null;default:0" json:"offered_price"`
	TotalAmount        int64             `gorm:"not null;default:0" json:"total_amount"`
	UpfrontPaidAmount  int64             `gorm:"not null;default:0" json:"upfront_paid_amount"`
	Refunded           bool              `gorm:"not null;default:false" json:"refunded"`
	RefundPending      bool              `gorm:"not null;default:false" json:"refund_pending"`
	RefundError        string            `gorm:"type:text;not null;default:''" json:"refund_error,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

var (
	ErrNotFound          = errors.New("booking_not_found")
	ErrInvalidTransition = errors.New("invalid_booking_transition")
	ErrTerminalStatus    = errors.New("booking_in_terminal_status")
)

// IsTerminal reports whether a booking accepts no further payment
// transitions (refunds are handled separately).
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusDeclined, StatusRejected:
		return true
	default:
		return false
	}
}

// ChargeOutcome is the decided effect of a successful charge on a booking.
type ChargeOutcome struct {
	NextStatus Status
	// Hold means funds are captured into escrow and the provider is
	// not credited yet.
	Hold bool
	// Additional marks a second charge on an already paid-upfront
	// pay-first booking.
	Additional bool
}

// DecideCharge maps a chargeable/paid gateway event onto the booking
// transition table. Invalid transitions are rejected, not ignored.
func DecideCharge(b *Booking) (ChargeOutcome, error) {
	if b == nil {
		return ChargeOutcome{}, ErrNotFound
	}
	if b.Status.IsTerminal() {
		return ChargeOutcome{}, ErrTerminalStatus
	}

	switch {
	case b.Status == StatusAwaitingPayment:
		return ChargeOutcome{NextStatus: StatusPending, Hold: true}, nil
	case b.PaymentPreference == PayFirst && !b.IsPaidUpfront:
		return ChargeOutcome{NextStatus: b.Status, Hold: true}, nil
	case b.PaymentPreference == PayFirst && b.IsPaidUpfront:
		if b.Status == StatusPendingPayment || b.Status == StatusPendingCompletion {
			return ChargeOutcome{NextStatus: StatusPaymentReceived, Additional: true}, nil
		}
		return ChargeOutcome{}, ErrInvalidTransition
	default:
		return ChargeOutcome{NextStatus: StatusPaymentReceived}, nil
	}
}
