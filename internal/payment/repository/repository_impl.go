package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/serbiz/internal/payment/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func Provide() domain.Repository {
	return &Repository{}
}

func (r *Repository) InsertSource(ctx context.Context, db *gorm.DB, source *domain.Source) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_sources (
			id, source_id, booking_id, user_id, amount, method, status, checkout_url, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		source.ID,
		source.SourceID,
		source.BookingID,
		source.UserID,
		source.Amount,
		source.Method,
		source.Status,
		source.CheckoutURL,
		source.CreatedAt,
	).Error
}

func (r *Repository) UpdateSourceStatus(ctx context.Context, db *gorm.DB, sourceID string, status domain.SourceStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_sources SET status = ? WHERE source_id = ?`,
		status,
		sourceID,
	).Error
}

func (r *Repository) FindSourceByGatewayID(ctx context.Context, db *gorm.DB, sourceID string) (*domain.Source, error) {
	var item domain.Source
	err := db.WithContext(ctx).Raw(
		`SELECT id, source_id, booking_id, user_id, amount, method, status, checkout_url, created_at
		FROM payment_sources
		WHERE source_id = ?`,
		sourceID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *Repository) FindPendingSource(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, amount int64) (*domain.Source, error) {
	var item domain.Source
	err := db.WithContext(ctx).Raw(
		`SELECT id, source_id, booking_id, user_id, amount, method, status, checkout_url, created_at
		FROM payment_sources
		WHERE booking_id = ? AND amount = ? AND status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		bookingID,
		amount,
		domain.SourcePending,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *Repository) FindOpenSourceByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*domain.Source, error) {
	var item domain.Source
	err := db.WithContext(ctx).Raw(
		`SELECT id, source_id, booking_id, user_id, amount, method, status, checkout_url, created_at
		FROM payment_sources
		WHERE booking_id = ? AND status IN (?, ?)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		bookingID,
		domain.SourcePending,
		domain.SourceChargeable,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *Repository) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, payment_id, source_id, booking_id, amount, status, refunded, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (payment_id) DO NOTHING`,
		payment.ID,
		payment.PaymentID,
		payment.SourceID,
		payment.BookingID,
		payment.Amount,
		payment.Status,
		payment.Refunded,
		payment.CreatedAt,
	).Error
}

func (r *Repository) FindLatestPaymentByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, payment_id, source_id, booking_id, amount, status, refunded, created_at
		FROM payments
		WHERE booking_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		bookingID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *Repository) MarkPaymentRefunded(ctx context.Context, db *gorm.DB, paymentID string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments SET refunded = TRUE, status = ? WHERE payment_id = ?`,
		"refunded",
		paymentID,
	).Error
}

func (r *Repository) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.WebhookEvent) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO webhook_events (
			id, event_id, event_type, payload, received_at, processed_at
		) VALUES (?, ?, ?, ?, ?, NULL)
		ON CONFLICT (event_id) DO NOTHING`,
		event.ID,
		event.EventID,
		event.EventType,
		event.Payload,
		event.ReceivedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) FindEventByID(ctx context.Context, db *gorm.DB, eventID string) (*domain.WebhookEvent, error) {
	var item domain.WebhookEvent
	err := db.WithContext(ctx).Raw(
		`SELECT id, event_id, event_type, payload, received_at, processed_at
		FROM webhook_events
		WHERE event_id = ?`,
		eventID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *Repository) MarkEventProcessed(ctx context.Context, db *gorm.DB, eventID string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE webhook_events SET processed_at = ? WHERE event_id = ?`,
		at,
		eventID,
	).Error
}
