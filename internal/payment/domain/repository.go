package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertSource(ctx context.Context, db *gorm.DB, source *Source) error
	UpdateSourceStatus(ctx context.Context, db *gorm.DB, sourceID string, status SourceStatus) error
	FindSourceByGatewayID(ctx context.Context, db *gorm.DB, sourceID string) (*Source, error)
	// FindPendingSource returns the open checkout session for a
	// booking and amount, if any.
	FindPendingSource(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, amount int64) (*Source, error)
	// FindOpenSourceByBooking returns the most recent source for a
	// booking that has not reached a terminal status.
	FindOpenSourceByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*Source, error)

	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindLatestPaymentByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*Payment, error)
	MarkPaymentRefunded(ctx context.Context, db *gorm.DB, paymentID string) error

	// InsertEvent claims an event id. It reports false when the event
	// was already recorded.
	InsertEvent(ctx context.Context, db *gorm.DB, event *WebhookEvent) (bool, error)
	FindEventByID(ctx context.Context, db *gorm.DB, eventID string) (*WebhookEvent, error)
	MarkEventProcessed(ctx context.Context, db *gorm.DB, eventID string, at time.Time) error
}
