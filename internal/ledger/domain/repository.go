package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert records a settlement exactly once per (booking, type).
	// It reports false without error when the row already exists.
	Insert(ctx context.Context, db *gorm.DB, tx *Transaction) (bool, error)
	FindByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]Transaction, error)
	FindByBookingAndType(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, txType TransactionType) (*Transaction, error)
	// MarkCompleted flips one held settlement row to completed and
	// reports whether a row was flipped.
	MarkCompleted(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (bool, error)
}
