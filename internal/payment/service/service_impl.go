package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/serbiz/internal/account/domain"
	bookingdomain "github.com/smallbiznis/serbiz/internal/booking/domain"
	"github.com/smallbiznis/serbiz/internal/clock"
	"github.com/smallbiznis/serbiz/internal/config"
	"github.com/smallbiznis/serbiz/internal/gateway"
	ledgerdomain "github.com/smallbiznis/serbiz/internal/ledger/domain"
	"github.com/smallbiznis/serbiz/internal/lock"
	"github.com/smallbiznis/serbiz/internal/metrics"
	"github.com/smallbiznis/serbiz/internal/notify"
	"github.com/smallbiznis/serbiz/internal/payment/domain"
	"github.com/smallbiznis/serbiz/internal/payment/webhook"
	"github.com/smallbiznis/serbiz/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const settleLockTTL = 30 * time.Second

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Cfg         config.Config
	Gateway     gateway.Client
	Repo        domain.Repository
	BookingRepo bookingdomain.Repository
	AccountRepo accountdomain.Repository
	LedgerSvc   ledgerdomain.Service
	Dispatcher  notify.Dispatcher
	Locker      *lock.Locker     `optional:"true"`
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	gateway     gateway.Client
	verifier    *webhook.Verifier
	repo        domain.Repository
	bookingRepo bookingdomain.Repository
	accountRepo accountdomain.Repository
	ledgerSvc   ledgerdomain.Service
	dispatcher  notify.Dispatcher
	locker      *lock.Locker
	metrics     *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		gateway:     p.Gateway,
		verifier:    webhook.NewVerifier(p.Cfg.GatewayWebhookSecret, p.Cfg.IsProduction()),
		repo:        p.Repo,
		bookingRepo: p.BookingRepo,
		accountRepo: p.AccountRepo,
		ledgerSvc:   p.LedgerSvc,
		dispatcher:  p.Dispatcher,
		locker:      p.Locker,
		metrics:     p.Metrics,
	}
}

func (s *Service) CreateSource(ctx context.Context, in domain.CreateSourceInput) (*domain.CreateSourceResult, error) {
	if in.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if in.BookingID == 0 {
		return nil, domain.ErrInvalidBooking
	}
	method := strings.TrimSpace(in.Method)
	if method == "" {
		return nil, domain.ErrInvalidSource
	}

	booking, err := s.bookingRepo.FindByID(ctx, s.db, in.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, bookingdomain.ErrNotFound
	}

	existing, err := s.repo.FindPendingSource(ctx, s.db, in.BookingID, in.Amount)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("reusing pending payment source",
			zap.String("booking_id", in.BookingID.String()),
			zap.String("source_id", existing.SourceID),
		)
		return &domain.CreateSourceResult{Source: existing, Existing: true}, nil
	}

	created, err := s.gateway.CreateSource(ctx, gateway.CreateSourceRequest{
		Amount:     in.Amount,
		Type:       method,
		Currency:   "PHP",
		SuccessURL: in.SuccessURL,
		FailedURL:  in.FailedURL,
		BookingID:  in.BookingID.String(),
		UserID:     in.UserID.String(),
	})
	if err != nil {
		return nil, err
	}

	source := &domain.Source{
		ID:          s.genID.Generate(),
		SourceID:    created.ID,
		BookingID:   in.BookingID,
		UserID:      in.UserID,
		Amount:      in.Amount,
		Method:      method,
		Status:      domain.SourcePending,
		CheckoutURL: created.CheckoutURL,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.InsertSource(ctx, s.db, source); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Someone else persisted the same gateway source first;
			// hand back their row instead of failing the request.
			prior, ferr := s.repo.FindSourceByGatewayID(ctx, s.db, created.ID)
			if ferr != nil {
				return nil, ferr
			}
			if prior != nil {
				return &domain.CreateSourceResult{Source: prior, Existing: true}, nil
			}
		}
		return nil, err
	}
	return &domain.CreateSourceResult{Source: source}, nil
}

func (s *Service) CreateCharge(ctx context.Context, sourceID string, amount int64) (*domain.Payment, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, domain.ErrInvalidSource
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	source, err := s.repo.FindSourceByGatewayID(ctx, s.db, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, domain.ErrSourceNotFound
	}

	charged, err := s.gateway.CreateCharge(ctx, sourceID, amount)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:        s.genID.Generate(),
		PaymentID: charged.ID,
		SourceID:  sourceID,
		BookingID: source.BookingID,
		Amount:    charged.Amount,
		Status:    charged.Status,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.repo.InsertPayment(ctx, s.db, payment); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSourceStatus(ctx, s.db, sourceID, domain.SourcePaid); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Service) GetSource(ctx context.Context, sourceID string) (*domain.Source, error) {
	source, err := s.repo.FindSourceByGatewayID(ctx, s.db, strings.TrimSpace(sourceID))
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, domain.ErrSourceNotFound
	}
	return source, nil
}

func (s *Service) HandleWebhook(ctx context.Context, body []byte, signatureHeader string) (*domain.WebhookResult, error) {
	if err := s.verifier.Verify(body, signatureHeader); err != nil {
		s.recordWebhook("unknown", "rejected")
		return nil, err
	}

	event, err := webhook.ParseEvent(body)
	if err != nil {
		s.recordWebhook("unknown", "invalid")
		return nil, err
	}

	if event.Type != domain.EventSourceChargeable && event.Type != domain.EventPaymentPaid {
		s.recordWebhook(event.Type, "ignored")
		return &domain.WebhookResult{EventID: event.EventID, Ignored: true}, nil
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &domain.WebhookEvent{
		ID:         s.genID.Generate(),
		EventID:    event.EventID,
		EventType:  event.Type,
		Payload:    datatypes.JSON(body),
		ReceivedAt: s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		prior, err := s.repo.FindEventByID(ctx, s.db, event.EventID)
		if err != nil {
			return nil, err
		}
		if prior == nil || prior.ProcessedAt != nil {
			s.recordWebhook(event.Type, "skipped")
			return &domain.WebhookResult{EventID: event.EventID, Skipped: true}, nil
		}
		// Claimed but never marked processed: an earlier delivery died
		// mid-handling. Re-run it; the settlement barrier absorbs any
		// effects the first attempt already applied.
		s.log.Info("re-running unprocessed webhook event", zap.String("event_id", event.EventID))
	}

	source, err := s.repo.FindSourceByGatewayID(ctx, s.db, event.ResourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, domain.ErrSourceNotFound
	}

	if event.Type == domain.EventSourceChargeable {
		if err := s.repo.UpdateSourceStatus(ctx, s.db, source.SourceID, domain.SourceChargeable); err != nil {
			return nil, err
		}
		source.Status = domain.SourceChargeable
	}

	settlement, err := s.settle(ctx, source)
	if err != nil {
		s.recordWebhook(event.Type, "failed")
		return nil, err
	}

	if err := s.repo.MarkEventProcessed(ctx, s.db, event.EventID, s.clock.Now().UTC()); err != nil {
		return nil, err
	}

	s.recordWebhook(event.Type, "processed")
	return &domain.WebhookResult{EventID: event.EventID, Settlement: settlement}, nil
}

func (s *Service) Reconcile(ctx context.Context, bookingID snowflake.ID) (*domain.SettlementResult, error) {
	if bookingID == 0 {
		return nil, domain.ErrInvalidBooking
	}

	source, err := s.repo.FindOpenSourceByBooking(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, domain.ErrSourceNotFound
	}
	return s.settle(ctx, source)
}

func (s *Service) Status(ctx context.Context, bookingID snowflake.ID) (*domain.Payment, error) {
	if bookingID == 0 {
		return nil, domain.ErrInvalidBooking
	}

	payment, err := s.repo.FindLatestPaymentByBooking(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// settle captures a chargeable source and applies its financial
// effects: charge the gateway, record the payment, write the ledger
// row, credit the provider unless funds are held in escrow, and move
// the booking. The ledger's unique (booking, type) row is the final
// guard against double credit.
func (s *Service) settle(ctx context.Context, source *domain.Source) (*domain.SettlementResult, error) {
	booking, err := s.bookingRepo.FindByID(ctx, s.db, source.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, bookingdomain.ErrNotFound
	}

	outcome, err := bookingdomain.DecideCharge(booking)
	if err != nil {
		return nil, err
	}

	txType := ledgerdomain.TypePayment
	if outcome.Hold {
		txType = ledgerdomain.TypeEscrowPayment
	}

	lockKey := "settle:" + booking.ID.String()
	token, acquired, err := s.locker.TryLock(ctx, lockKey, settleLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrSettlementInProgress
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			s.log.Warn("settle lock release failed", zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
	}()

	existing, err := s.ledgerSvc.FindSettlement(ctx, s.db, booking.ID, txType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &domain.SettlementResult{
			BookingStatus: string(booking.Status),
			TransactionID: existing.ID,
			Held:          existing.Status == ledgerdomain.StatusHeld,
			Skipped:       true,
		}, nil
	}

	charged, err := s.gateway.CreateCharge(ctx, source.SourceID, source.Amount)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if err := s.repo.InsertPayment(ctx, s.db, &domain.Payment{
		ID:        s.genID.Generate(),
		PaymentID: charged.ID,
		SourceID:  source.SourceID,
		BookingID: booking.ID,
		Amount:    charged.Amount,
		Status:    charged.Status,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	tx, inserted, err := s.ledgerSvc.RecordSettlement(ctx, s.db, booking, txType, source.Amount, outcome.Hold)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return &domain.SettlementResult{
			BookingStatus: string(booking.Status),
			Held:          outcome.Hold,
			Skipped:       true,
		}, nil
	}

	if !outcome.Hold {
		if err := s.accountRepo.Credit(ctx, s.db, booking.ProviderID, tx.ProviderShare, now); err != nil {
			return nil, err
		}
	}

	booking.Status = outcome.NextStatus
	if outcome.Hold {
		booking.IsPaidUpfront = true
		booking.PaymentStatus = bookingdomain.PaymentStatusHeld
		booking.UpfrontPaidAmount = source.Amount
	}
	booking.UpdatedAt = now
	if err := s.bookingRepo.Update(ctx, s.db, booking); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSourceStatus(ctx, s.db, source.SourceID, domain.SourcePaid); err != nil {
		return nil, err
	}

	s.log.Info("settlement applied",
		zap.String("booking_id", booking.ID.String()),
		zap.String("type", string(txType)),
		zap.Int64("amount", source.Amount),
		zap.Bool("held", outcome.Hold),
		zap.String("next_status", string(outcome.NextStatus)),
	)

	go func() {
		if err := s.dispatcher.PaymentReceived(context.Background(), booking.ID, booking.ClientID, source.Amount); err != nil {
			s.log.Warn("payment notification failed", zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
	}()

	return &domain.SettlementResult{
		BookingStatus: string(outcome.NextStatus),
		TransactionID: tx.ID,
		Held:          outcome.Hold,
	}, nil
}

func (s *Service) recordWebhook(eventType, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordWebhookEvent(eventType, outcome)
	}
}
