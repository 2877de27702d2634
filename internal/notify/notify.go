package notify

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Dispatcher delivers user-facing notifications. Delivery is
// fire-and-forget from the payment paths; failures are logged, never
// propagated.
type Dispatcher interface {
	PaymentReceived(ctx context.Context, bookingID, userID snowflake.ID, amount int64) error
	EscrowReleased(ctx context.Context, bookingID, providerID snowflake.ID, amount int64) error
	RefundIssued(ctx context.Context, bookingID, userID snowflake.ID, amount int64) error
	PayoutUpdated(ctx context.Context, providerID snowflake.ID, status string, amount int64) error
}

// Points awards loyalty points after a completed booking.
type Points interface {
	Award(ctx context.Context, userID snowflake.ID, bookingID snowflake.ID) error
}

type NoOpDispatcher struct{}

func (d *NoOpDispatcher) PaymentReceived(ctx context.Context, bookingID, userID snowflake.ID, amount int64) error {
	return nil
}

func (d *NoOpDispatcher) EscrowReleased(ctx context.Context, bookingID, providerID snowflake.ID, amount int64) error {
	return nil
}

func (d *NoOpDispatcher) RefundIssued(ctx context.Context, bookingID, userID snowflake.ID, amount int64) error {
	return nil
}

func (d *NoOpDispatcher) PayoutUpdated(ctx context.Context, providerID snowflake.ID, status string, amount int64) error {
	return nil
}

type NoOpPoints struct{}

func (p *NoOpPoints) Award(ctx context.Context, userID snowflake.ID, bookingID snowflake.ID) error {
	return nil
}
