package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/serbiz/internal/ledger/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func Provide() domain.Repository {
	return &Repository{}
}

func (r *Repository) Insert(ctx context.Context, db *gorm.DB, tx *domain.Transaction) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO transactions (
			id, booking_id, client_id, provider_id, type, amount,
			provider_share, platform_commission, status, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (booking_id, type) DO NOTHING`,
		tx.ID,
		tx.BookingID,
		tx.ClientID,
		tx.ProviderID,
		tx.Type,
		tx.Amount,
		tx.ProviderShare,
		tx.PlatformCommission,
		tx.Status,
		tx.Notes,
		tx.CreatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) FindByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]domain.Transaction, error) {
	var items []domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, client_id, provider_id, type, amount,
			provider_share, platform_commission, status, notes, created_at
		FROM transactions
		WHERE booking_id = ?
		ORDER BY created_at ASC, id ASC`,
		bookingID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) FindByBookingAndType(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, txType domain.TransactionType) (*domain.Transaction, error) {
	var item domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, client_id, provider_id, type, amount,
			provider_share, platform_commission, status, notes, created_at
		FROM transactions
		WHERE booking_id = ? AND type = ?`,
		bookingID,
		txType,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *Repository) MarkCompleted(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE transactions
		SET status = ?
		WHERE booking_id = ? AND type = ? AND status = ?`,
		domain.StatusCompleted,
		bookingID,
		domain.TypeEscrowPayment,
		domain.StatusHeld,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
