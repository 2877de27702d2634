package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/serbiz/internal/booking/domain"
	"github.com/smallbiznis/serbiz/internal/clock"
	"github.com/smallbiznis/serbiz/internal/ledger/domain"
	"github.com/smallbiznis/serbiz/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("ledger.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) RecordSettlement(
	ctx context.Context,
	db *gorm.DB,
	booking *bookingdomain.Booking,
	txType domain.TransactionType,
	amount int64,
	held bool,
) (*domain.Transaction, bool, error) {
	if booking == nil || booking.ID == 0 {
		return nil, false, domain.ErrInvalidBooking
	}

	split, err := domain.ComputeSplit(amount, booking.ProviderPrice, booking.ProviderFixedPrice, booking.OfferedPrice)
	if err != nil {
		return nil, false, err
	}

	status := domain.StatusCompleted
	if held {
		status = domain.StatusHeld
	}

	tx := &domain.Transaction{
		ID:                 s.genID.Generate(),
		BookingID:          booking.ID,
		ClientID:           booking.ClientID,
		ProviderID:         booking.ProviderID,
		Type:               txType,
		Amount:             amount,
		ProviderShare:      split.ProviderShare,
		PlatformCommission: split.PlatformCommission,
		Status:             status,
		CreatedAt:          s.clock.Now().UTC(),
	}

	inserted, err := s.repo.Insert(ctx, db, tx)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		s.log.Info("settlement already recorded",
			zap.String("booking_id", booking.ID.String()),
			zap.String("type", string(txType)),
		)
		return nil, false, nil
	}

	if s.metrics != nil {
		s.metrics.RecordSettlement(string(txType))
	}
	return tx, true, nil
}

func (s *Service) RecordRefund(
	ctx context.Context,
	db *gorm.DB,
	booking *bookingdomain.Booking,
	amount, providerShare, platformCommission int64,
	notes string,
) (*domain.Transaction, bool, error) {
	if booking == nil || booking.ID == 0 {
		return nil, false, domain.ErrInvalidBooking
	}
	if amount <= 0 {
		return nil, false, domain.ErrInvalidAmount
	}

	tx := &domain.Transaction{
		ID:                 s.genID.Generate(),
		BookingID:          booking.ID,
		ClientID:           booking.ClientID,
		ProviderID:         booking.ProviderID,
		Type:               domain.TypeRefund,
		Amount:             amount,
		ProviderShare:      providerShare,
		PlatformCommission: platformCommission,
		Status:             domain.StatusCompleted,
		Notes:              notes,
		CreatedAt:          s.clock.Now().UTC(),
	}

	inserted, err := s.repo.Insert(ctx, db, tx)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		return nil, false, nil
	}
	if s.metrics != nil {
		s.metrics.RecordSettlement(string(domain.TypeRefund))
	}
	return tx, true, nil
}

func (s *Service) FindSettlement(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, txType domain.TransactionType) (*domain.Transaction, error) {
	if bookingID == 0 {
		return nil, domain.ErrInvalidBooking
	}
	return s.repo.FindByBookingAndType(ctx, db, bookingID, txType)
}

func (s *Service) ListByBooking(ctx context.Context, bookingID snowflake.ID) ([]domain.Transaction, error) {
	if bookingID == 0 {
		return nil, domain.ErrInvalidBooking
	}
	return s.repo.FindByBooking(ctx, s.db, bookingID)
}

func (s *Service) ReleaseHold(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (bool, error) {
	if bookingID == 0 {
		return false, domain.ErrInvalidBooking
	}
	return s.repo.MarkCompleted(ctx, db, bookingID)
}
