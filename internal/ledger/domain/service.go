package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/serbiz/internal/booking/domain"
	"gorm.io/gorm"
)

type Service interface {
	// RecordSettlement writes the ledger row for one captured charge.
	// It reports inserted=false when the booking already settled this
	// transaction type, in which case the caller must not move money.
	RecordSettlement(ctx context.Context, db *gorm.DB, booking *bookingdomain.Booking, txType TransactionType, amount int64, held bool) (*Transaction, bool, error)
	// FindSettlement returns the settlement row for a booking and
	// type, or nil when none exists.
	FindSettlement(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, txType TransactionType) (*Transaction, error)
	// RecordRefund writes the refund ledger row, carrying the split
	// from the original settlement so the reversal is auditable.
	RecordRefund(ctx context.Context, db *gorm.DB, booking *bookingdomain.Booking, amount, providerShare, platformCommission int64, notes string) (*Transaction, bool, error)
	ListByBooking(ctx context.Context, bookingID snowflake.ID) ([]Transaction, error)
	ReleaseHold(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (bool, error)
}
