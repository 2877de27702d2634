package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/serbiz/internal/payout/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func Provide() domain.Repository {
	return &Repository{}
}

func (r *Repository) Insert(ctx context.Context, db *gorm.DB, req *domain.PayoutRequest) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payout_requests (
			id, provider_id, amount, status, transfer_ref, fail_reason, requested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID,
		req.ProviderID,
		req.Amount,
		req.Status,
		req.TransferRef,
		req.FailReason,
		req.RequestedAt,
	).Error
}

func (r *Repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PayoutRequest, error) {
	var item domain.PayoutRequest
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider_id, amount, status, transfer_ref, fail_reason,
			requested_at, approved_at, completed_at, failed_at
		FROM payout_requests
		WHERE id = ?`,
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

func (r *Repository) ListByProvider(ctx context.Context, db *gorm.DB, providerID snowflake.ID) ([]domain.PayoutRequest, error) {
	var items []domain.PayoutRequest
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider_id, amount, status, transfer_ref, fail_reason,
			requested_at, approved_at, completed_at, failed_at
		FROM payout_requests
		WHERE provider_id = ?
		ORDER BY requested_at DESC, id DESC`,
		providerID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.Status, at time.Time, transferRef, failReason string) (bool, error) {
	var column string
	switch to {
	case domain.StatusApproved:
		column = "approved_at"
	case domain.StatusCompleted:
		column = "completed_at"
	case domain.StatusFailed:
		column = "failed_at"
	default:
		return false, domain.ErrStatusConflict
	}

	result := db.WithContext(ctx).Exec(
		`UPDATE payout_requests
		SET status = ?,
			transfer_ref = CASE WHEN ? != '' THEN ? ELSE transfer_ref END,
			fail_reason = CASE WHEN ? != '' THEN ? ELSE fail_reason END,
			`+column+` = ?
		WHERE id = ? AND status = ?`,
		to,
		transferRef, transferRef,
		failReason, failReason,
		at,
		id,
		from,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
