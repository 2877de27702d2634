package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ProviderAccount is the long-lived balance aggregate for one provider.
// AvailableBalance and PendingPayout never observe a negative value;
// debit paths clamp at zero rather than trusting the store to enforce it.
type ProviderAccount struct {
	ProviderID       snowflake.ID `gorm:"primaryKey" json:"provider_id"`
	AvailableBalance int64        `gorm:"not null;default:0" json:"available_balance"`
	PendingPayout    int64        `gorm:"not null;default:0" json:"pending_payout"`
	TotalEarnings    int64        `gorm:"not null;default:0" json:"total_earnings"`
	TotalPayouts     int64        `gorm:"not null;default:0" json:"total_payouts"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ProviderAccount) TableName() string { return "provider_accounts" }

var (
	ErrNotFound            = errors.New("provider_account_not_found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrInvalidAmount       = errors.New("invalid_amount")
)

// Repository mutates balances with single guarded statements so
// concurrent writers cannot interleave a read-modify-write. Callers
// supply the write timestamp from their injected clock.
type Repository interface {
	Find(ctx context.Context, db *gorm.DB, providerID snowflake.ID) (*ProviderAccount, error)
	// Credit adds earnings to available balance, creating the account
	// on first use.
	Credit(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, at time.Time) error
	// DebitClamped removes earnings, flooring both balance and total
	// earnings at zero.
	DebitClamped(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, at time.Time) error
	// Reserve moves funds from available balance into pending payout.
	// Returns false when the balance guard rejects the move.
	Reserve(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, at time.Time) (bool, error)
	// Settle converts a pending payout reservation into total payouts.
	Settle(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, at time.Time) error
	// Restore returns a reserved or paid-out amount to available
	// balance, clamping pending payout at zero.
	Restore(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, reverseTotal bool, at time.Time) error
}
