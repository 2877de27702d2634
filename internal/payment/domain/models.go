package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type SourceStatus string

const (
	SourcePending    SourceStatus = "pending"
	SourceChargeable SourceStatus = "chargeable"
	SourcePaid       SourceStatus = "paid"
	SourceFailed     SourceStatus = "failed"
)

// Source mirrors one gateway checkout session. At most one pending
// source exists per (booking, amount); callers reuse it instead of
// opening a second session.
type Source struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	SourceID    string       `gorm:"uniqueIndex;not null" json:"source_id"`
	BookingID   snowflake.ID `gorm:"not null;index" json:"booking_id"`
	UserID      snowflake.ID `gorm:"not null" json:"user_id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Method      string       `gorm:"not null" json:"method"`
	Status      SourceStatus `gorm:"type:text;not null" json:"status"`
	CheckoutURL string       `gorm:"not null;default:''" json:"checkout_url"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Source) TableName() string { return "payment_sources" }

// Payment is a captured charge against a chargeable source.
type Payment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	PaymentID string       `gorm:"uniqueIndex;not null" json:"payment_id"`
	SourceID  string       `gorm:"not null" json:"source_id"`
	BookingID snowflake.ID `gorm:"not null;index" json:"booking_id"`
	Amount    int64        `gorm:"not null" json:"amount"`
	Status    string       `gorm:"not null" json:"status"`
	Refunded  bool         `gorm:"not null;default:false" json:"refunded"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// WebhookEvent is the idempotency record for one gateway delivery. The
// row is inserted before effects run and processed_at is stamped once
// effects complete; a replay is skipped only when processed_at is set,
// so a delivery that died mid-handling can be re-run.
type WebhookEvent struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	EventID     string         `gorm:"uniqueIndex;not null" json:"event_id"`
	EventType   string         `gorm:"not null" json:"event_type"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	ReceivedAt  time.Time      `gorm:"not null" json:"received_at"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

var (
	ErrSourceNotFound   = errors.New("payment_source_not_found")
	ErrPaymentNotFound  = errors.New("payment_not_found")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidSource    = errors.New("invalid_source")
	ErrInvalidBooking   = errors.New("invalid_booking")
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrMissingSecret    = errors.New("webhook_secret_not_configured")
	ErrInvalidPayload   = errors.New("invalid_webhook_payload")

	ErrSettlementInProgress = errors.New("settlement_in_progress")
)

const (
	EventSourceChargeable = "source.chargeable"
	EventPaymentPaid      = "payment.paid"
)
