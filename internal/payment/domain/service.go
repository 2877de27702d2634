package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateSourceInput struct {
	BookingID  snowflake.ID
	UserID     snowflake.ID
	Amount     int64
	Method     string
	SuccessURL string
	FailedURL  string
}

type CreateSourceResult struct {
	Source *Source
	// Existing marks a reused pending session instead of a new one.
	Existing bool
}

type SettlementResult struct {
	BookingStatus string
	TransactionID snowflake.ID
	Held          bool
	// Skipped means a settlement row already existed and no money
	// moved.
	Skipped bool
}

type WebhookResult struct {
	EventID string
	// Skipped marks an idempotent replay.
	Skipped bool
	// Ignored marks an event type this subsystem does not handle.
	Ignored    bool
	Settlement *SettlementResult
}

type Service interface {
	CreateSource(ctx context.Context, in CreateSourceInput) (*CreateSourceResult, error)
	CreateCharge(ctx context.Context, sourceID string, amount int64) (*Payment, error)
	GetSource(ctx context.Context, sourceID string) (*Source, error)
	HandleWebhook(ctx context.Context, body []byte, signatureHeader string) (*WebhookResult, error)
	// Reconcile replays the chargeable settlement path for a booking
	// whose webhook never arrived.
	Reconcile(ctx context.Context, bookingID snowflake.ID) (*SettlementResult, error)
	// Status returns the most recent payment recorded for a booking.
	Status(ctx context.Context, bookingID snowflake.ID) (*Payment, error)
}
