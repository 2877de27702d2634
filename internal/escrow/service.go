package escrow

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/serbiz/internal/account/domain"
	bookingdomain "github.com/smallbiznis/serbiz/internal/booking/domain"
	"github.com/smallbiznis/serbiz/internal/clock"
	ledgerdomain "github.com/smallbiznis/serbiz/internal/ledger/domain"
	"github.com/smallbiznis/serbiz/internal/notify"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotHeld        = errors.New("escrow_not_held")
	ErrNotCompletable = errors.New("booking_not_pending_completion")
	ErrNotOwner       = errors.New("actor_is_not_booking_client")
)

type ReleaseResult struct {
	BookingID     snowflake.ID `json:"booking_id"`
	ProviderID    snowflake.ID `json:"provider_id"`
	ProviderShare int64        `json:"provider_share"`
}

// Service releases escrowed funds to the provider once the client
// confirms completion. The provider is credited here for the first
// time; the hold path never touched their balance.
type Service interface {
	Release(ctx context.Context, bookingID, actorID snowflake.ID) (*ReleaseResult, error)
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	BookingRepo bookingdomain.Repository
	AccountRepo accountdomain.Repository
	LedgerSvc   ledgerdomain.Service
	Points      notify.Points
	Dispatcher  notify.Dispatcher
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	bookingRepo bookingdomain.Repository
	accountRepo accountdomain.Repository
	ledgerSvc   ledgerdomain.Service
	points      notify.Points
	dispatcher  notify.Dispatcher
}

func NewService(p Params) Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("escrow.service"),
		clock:       p.Clock,
		bookingRepo: p.BookingRepo,
		accountRepo: p.AccountRepo,
		ledgerSvc:   p.LedgerSvc,
		points:      p.Points,
		dispatcher:  p.Dispatcher,
	}
}

func (s *service) Release(ctx context.Context, bookingID, actorID snowflake.ID) (*ReleaseResult, error) {
	booking, err := s.bookingRepo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, bookingdomain.ErrNotFound
	}

	if booking.PaymentStatus != bookingdomain.PaymentStatusHeld {
		return nil, ErrNotHeld
	}
	if booking.Status != bookingdomain.StatusPendingCompletion {
		return nil, ErrNotCompletable
	}
	if booking.ClientID != actorID {
		return nil, ErrNotOwner
	}

	tx, err := s.ledgerSvc.FindSettlement(ctx, s.db, bookingID, ledgerdomain.TypeEscrowPayment)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotHeld
	}

	// The guarded held->completed flip is the single-release barrier:
	// a second concurrent release observes zero rows affected.
	flipped, err := s.ledgerSvc.ReleaseHold(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, ErrNotHeld
	}

	now := s.clock.Now().UTC()
	if err := s.accountRepo.Credit(ctx, s.db, booking.ProviderID, tx.ProviderShare, now); err != nil {
		return nil, err
	}

	booking.Status = bookingdomain.StatusCompleted
	booking.PaymentStatus = bookingdomain.PaymentStatusReleased
	booking.UpdatedAt = now
	if err := s.bookingRepo.Update(ctx, s.db, booking); err != nil {
		return nil, err
	}

	s.log.Info("escrow released",
		zap.String("booking_id", bookingID.String()),
		zap.String("provider_id", booking.ProviderID.String()),
		zap.Int64("provider_share", tx.ProviderShare),
	)

	go func() {
		bg := context.Background()
		if err := s.points.Award(bg, booking.ClientID, bookingID); err != nil {
			s.log.Warn("points award failed", zap.String("booking_id", bookingID.String()), zap.Error(err))
		}
		if err := s.dispatcher.EscrowReleased(bg, bookingID, booking.ProviderID, tx.ProviderShare); err != nil {
			s.log.Warn("escrow release notification failed", zap.String("booking_id", bookingID.String()), zap.Error(err))
		}
	}()

	return &ReleaseResult{
		BookingID:     bookingID,
		ProviderID:    booking.ProviderID,
		ProviderShare: tx.ProviderShare,
	}, nil
}
