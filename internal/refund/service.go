package refund

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/serbiz/internal/account/domain"
	bookingdomain "github.com/smallbiznis/serbiz/internal/booking/domain"
	"github.com/smallbiznis/serbiz/internal/clock"
	"github.com/smallbiznis/serbiz/internal/gateway"
	ledgerdomain "github.com/smallbiznis/serbiz/internal/ledger/domain"
	"github.com/smallbiznis/serbiz/internal/metrics"
	"github.com/smallbiznis/serbiz/internal/notify"
	paymentdomain "github.com/smallbiznis/serbiz/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Result struct {
	Refunded bool         `json:"refunded"`
	Amount   int64        `json:"amount,omitempty"`
	RefundID string       `json:"refund_id,omitempty"`
	Booking  snowflake.ID `json:"booking_id"`
}

// Service reverses a booking's captured funds. A gateway failure does
// not fail silently: the booking is parked in refund_pending for
// manual follow-up and the error surfaces to the caller.
type Service interface {
	AutoRefund(ctx context.Context, bookingID snowflake.ID, reason, cancelledBy string) (*Result, error)
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Gateway     gateway.Client
	BookingRepo bookingdomain.Repository
	PaymentRepo paymentdomain.Repository
	AccountRepo accountdomain.Repository
	LedgerSvc   ledgerdomain.Service
	Dispatcher  notify.Dispatcher
	Metrics     *metrics.Metrics `optional:"true"`
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	gateway     gateway.Client
	bookingRepo bookingdomain.Repository
	paymentRepo paymentdomain.Repository
	accountRepo accountdomain.Repository
	ledgerSvc   ledgerdomain.Service
	dispatcher  notify.Dispatcher
	metrics     *metrics.Metrics
}

func NewService(p Params) Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("refund.service"),
		clock:       p.Clock,
		gateway:     p.Gateway,
		bookingRepo: p.BookingRepo,
		paymentRepo: p.PaymentRepo,
		accountRepo: p.AccountRepo,
		ledgerSvc:   p.LedgerSvc,
		dispatcher:  p.Dispatcher,
		metrics:     p.Metrics,
	}
}

func (s *service) AutoRefund(ctx context.Context, bookingID snowflake.ID, reason, cancelledBy string) (*Result, error) {
	booking, err := s.bookingRepo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, bookingdomain.ErrNotFound
	}

	if booking.Refunded {
		return &Result{Refunded: false, Booking: bookingID}, nil
	}

	payment, err := s.paymentRepo.FindLatestPaymentByBooking(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		// Never paid, nothing to reverse.
		return &Result{Refunded: false, Booking: bookingID}, nil
	}

	amount := booking.UpfrontPaidAmount
	if amount == 0 {
		amount = booking.TotalAmount
	}
	if amount == 0 {
		amount = payment.Amount
	}

	notes := reason
	if cancelledBy != "" {
		notes = fmt.Sprintf("%s (cancelled by %s)", reason, cancelledBy)
	}

	// Held means the provider was never credited, so there is nothing
	// to take back. Snapshot before the booking is mutated below.
	wasHeld := booking.PaymentStatus == bookingdomain.PaymentStatusHeld

	refunded, err := s.gateway.CreateRefund(ctx, gateway.CreateRefundRequest{
		PaymentID: payment.PaymentID,
		Amount:    amount,
		Reason:    gateway.MapRefundReason(reason),
		Notes:     notes,
	})
	if err != nil {
		booking.RefundPending = true
		booking.RefundError = err.Error()
		booking.UpdatedAt = s.clock.Now().UTC()
		if uerr := s.bookingRepo.Update(ctx, s.db, booking); uerr != nil {
			s.log.Error("marking booking refund_pending failed",
				zap.String("booking_id", bookingID.String()),
				zap.Error(uerr),
			)
		}
		s.recordRefund("failed")
		return nil, err
	}

	var providerShare, platformCommission int64
	settlement, err := s.findOriginalSettlement(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if settlement != nil {
		providerShare = settlement.ProviderShare
		platformCommission = settlement.PlatformCommission
	}

	if _, _, err := s.ledgerSvc.RecordRefund(ctx, s.db, booking, amount, providerShare, platformCommission, notes); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.MarkPaymentRefunded(ctx, s.db, payment.PaymentID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if !wasHeld && settlement != nil && providerShare > 0 {
		if err := s.accountRepo.DebitClamped(ctx, s.db, booking.ProviderID, providerShare, now); err != nil {
			return nil, err
		}
	}

	booking.Refunded = true
	booking.RefundPending = false
	booking.RefundError = ""
	booking.PaymentStatus = bookingdomain.PaymentStatusRefunded
	booking.UpdatedAt = now
	if err := s.bookingRepo.Update(ctx, s.db, booking); err != nil {
		return nil, err
	}

	s.log.Info("refund issued",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("amount", amount),
		zap.Bool("provider_debited", !wasHeld && providerShare > 0),
	)
	s.recordRefund("succeeded")

	go func() {
		if err := s.dispatcher.RefundIssued(context.Background(), bookingID, booking.ClientID, amount); err != nil {
			s.log.Warn("refund notification failed", zap.String("booking_id", bookingID.String()), zap.Error(err))
		}
	}()

	return &Result{
		Refunded: true,
		Amount:   amount,
		RefundID: refunded.ID,
		Booking:  bookingID,
	}, nil
}

func (s *service) findOriginalSettlement(ctx context.Context, bookingID snowflake.ID) (*ledgerdomain.Transaction, error) {
	settlement, err := s.ledgerSvc.FindSettlement(ctx, s.db, bookingID, ledgerdomain.TypeEscrowPayment)
	if err != nil {
		return nil, err
	}
	if settlement != nil {
		return settlement, nil
	}
	return s.ledgerSvc.FindSettlement(ctx, s.db, bookingID, ledgerdomain.TypePayment)
}

func (s *service) recordRefund(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRefund(outcome)
	}
}
