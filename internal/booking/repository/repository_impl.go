package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/serbiz/internal/booking/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	var item domain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT id, client_id, provider_id, status, payment_preference, is_paid_upfront,
			payment_status, provider_price, provider_fixed_price, offered_price,
			total_amount, upfront_paid_amount, refunded, refund_pending, refund_error,
			created_at, updated_at
		 FROM bookings
		 WHERE id = ?
		 LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bookings (
			id, client_id, provider_id, status, payment_preference, is_paid_upfront,
			payment_status, provider_price, provider_fixed_price, offered_price,
			total_amount, upfront_paid_amount, refunded, refund_pending, refund_error,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.ClientID,
		booking.ProviderID,
		string(booking.Status),
		string(booking.PaymentPreference),
		booking.IsPaidUpfront,
		string(booking.PaymentStatus),
		booking.ProviderPrice,
		booking.ProviderFixedPrice,
		booking.OfferedPrice,
		booking.TotalAmount,
		booking.UpfrontPaidAmount,
		booking.Refunded,
		booking.RefundPending,
		booking.RefundError,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, payment_preference = ?, is_paid_upfront = ?, payment_status = ?,
			upfront_paid_amount = ?, refunded = ?, refund_pending = ?, refund_error = ?,
			updated_at = ?
		 WHERE id = ?`,
		string(booking.Status),
		string(booking.PaymentPreference),
		booking.IsPaidUpfront,
		string(booking.PaymentStatus),
		booking.UpfrontPaidAmount,
		booking.Refunded,
		booking.RefundPending,
		booking.RefundError,
		booking.UpdatedAt,
		booking.ID,
	).Error
}
