package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/serbiz/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, providerID snowflake.ID) (*domain.ProviderAccount, error) {
	var item domain.ProviderAccount
	err := db.WithContext(ctx).Raw(
		`SELECT provider_id, available_balance, pending_payout, total_earnings, total_payouts, updated_at
		 FROM provider_accounts
		 WHERE provider_id = ?
		 LIMIT 1`,
		providerID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ProviderID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) Credit(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, at time.Time) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO provider_accounts (provider_id, available_balance, pending_payout, total_earnings, total_payouts, updated_at)
		 VALUES (?, ?, 0, ?, 0, ?)
		 ON CONFLICT (provider_id) DO UPDATE SET
			available_balance = provider_accounts.available_balance + excluded.available_balance,
			total_earnings = provider_accounts.total_earnings + excluded.total_earnings,
			updated_at = excluded.updated_at`,
		providerID,
		amount,
		amount,
		at,
	).Error
}

func (r *repo) DebitClamped(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, at time.Time) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return db.WithContext(ctx).Exec(
		`UPDATE provider_accounts
		 SET available_balance = CASE WHEN available_balance >= ? THEN available_balance - ? ELSE 0 END,
			total_earnings = CASE WHEN total_earnings >= ? THEN total_earnings - ? ELSE 0 END,
			updated_at = ?
		 WHERE provider_id = ?`,
		amount, amount,
		amount, amount,
		at,
		providerID,
	).Error
}

func (r *repo) Reserve(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, at time.Time) (bool, error) {
	if amount <= 0 {
		return false, domain.ErrInvalidAmount
	}
	res := db.WithContext(ctx).Exec(
		`UPDATE provider_accounts
		 SET available_balance = available_balance - ?,
			pending_payout = pending_payout + ?,
			updated_at = ?
		 WHERE provider_id = ? AND available_balance >= ?`,
		amount,
		amount,
		at,
		providerID,
		amount,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Settle(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, at time.Time) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return db.WithContext(ctx).Exec(
		`UPDATE provider_accounts
		 SET pending_payout = CASE WHEN pending_payout >= ? THEN pending_payout - ? ELSE 0 END,
			total_payouts = total_payouts + ?,
			updated_at = ?
		 WHERE provider_id = ?`,
		amount, amount,
		amount,
		at,
		providerID,
	).Error
}

func (r *repo) Restore(ctx context.Context, db *gorm.DB, providerID snowflake.ID, amount int64, reverseTotal bool, at time.Time) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if reverseTotal {
		return db.WithContext(ctx).Exec(
			`UPDATE provider_accounts
			 SET available_balance = available_balance + ?,
				pending_payout = CASE WHEN pending_payout >= ? THEN pending_payout - ? ELSE 0 END,
				total_payouts = CASE WHEN total_payouts >= ? THEN total_payouts - ? ELSE 0 END,
				updated_at = ?
			 WHERE provider_id = ?`,
			amount,
			amount, amount,
			amount, amount,
			at,
			providerID,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE provider_accounts
		 SET available_balance = available_balance + ?,
			pending_payout = CASE WHEN pending_payout >= ? THEN pending_payout - ? ELSE 0 END,
			updated_at = ?
		 WHERE provider_id = ?`,
		amount,
		amount, amount,
		at,
		providerID,
	).Error
}
