package domain

import (
	"errors"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
)

type TransactionType string

const (
	TypePayment       TransactionType = "payment"
	TypeEscrowPayment TransactionType = "escrow_payment"
	TypeRefund        TransactionType = "refund"
)

type TransactionStatus string

const (
	StatusHeld      TransactionStatus = "held"
	StatusCompleted TransactionStatus = "completed"
)

// Transaction is an append-only ledger entry. At most one settlement
// row (payment or escrow_payment) exists per booking and type; the
// unique constraint is the duplicate-credit barrier, independent of the
// webhook idempotency check.
type Transaction struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	BookingID          snowflake.ID      `gorm:"not null;uniqueIndex:ux_transactions_booking_type,priority:1" json:"booking_id"`
	ClientID           snowflake.ID      `gorm:"not null" json:"client_id"`
	ProviderID         snowflake.ID      `gorm:"not null;index" json:"provider_id"`
	Type               TransactionType   `gorm:"type:text;not null;uniqueIndex:ux_transactions_booking_type,priority:2" json:"type"`
	Amount             int64             `gorm:"not null" json:"amount"`
	ProviderShare      int64             `gorm:"not null" json:"provider_share"`
	PlatformCommission int64             `gorm:"not null" json:"platform_commission"`
	Status             TransactionStatus `gorm:"type:text;not null" json:"status"`
	Notes              string            `gorm:"type:text;not null;default:''" json:"notes,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidBooking  = errors.New("invalid_booking")
	ErrUnbalancedSplit = errors.New("unbalanced_split")
)

// platformFeeRate is levied on top of the provider's quoted price, not
// skimmed from it: gross ≈ providerShare * 1.05.
const platformFeeRate = 0.05

// Split is one settlement's revenue division.
type Split struct {
	ProviderShare      int64
	PlatformCommission int64
}

// ComputeSplit divides a gross amount between provider and platform.
// The provider is guaranteed their full quoted price when the booking
// carries one; otherwise the share is derived from the gross.
func ComputeSplit(grossAmount, providerPrice, providerFixedPrice, offeredPrice int64) (Split, error) {
	if grossAmount <= 0 {
		return Split{}, ErrInvalidAmount
	}

	share := providerPrice
	if share == 0 {
		share = providerFixedPrice
	}
	if share == 0 {
		share = offeredPrice
	}
	if share == 0 {
		share = int64(math.Round(float64(grossAmount) / (1 + platformFeeRate)))
	}
	if share < 0 || share > grossAmount {
		return Split{}, ErrUnbalancedSplit
	}

	return Split{
		ProviderShare:      share,
		PlatformCommission: grossAmount - share,
	}, nil
}
