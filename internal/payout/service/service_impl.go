package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/serbiz/internal/account/domain"
	"github.com/smallbiznis/serbiz/internal/clock"
	"github.com/smallbiznis/serbiz/internal/config"
	"github.com/smallbiznis/serbiz/internal/lock"
	"github.com/smallbiznis/serbiz/internal/metrics"
	"github.com/smallbiznis/serbiz/internal/notify"
	"github.com/smallbiznis/serbiz/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const requestLockTTL = 15 * time.Second

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Cfg         config.Config
	Repo        domain.Repository
	AccountRepo accountdomain.Repository
	Dispatcher  notify.Dispatcher
	Locker      *lock.Locker     `optional:"true"`
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	minAmount   int64
	repo        domain.Repository
	accountRepo accountdomain.Repository
	dispatcher  notify.Dispatcher
	locker      *lock.Locker
	metrics     *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payout.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		minAmount:   p.Cfg.MinPayoutAmount,
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		dispatcher:  p.Dispatcher,
		locker:      p.Locker,
		metrics:     p.Metrics,
	}
}

func (s *Service) Request(ctx context.Context, providerID snowflake.ID, amount int64) (*domain.PayoutRequest, error) {
	if providerID == 0 {
		return nil, accountdomain.ErrNotFound
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if amount < s.minAmount {
		return nil, fmt.Errorf("%w: minimum is %d", domain.ErrBelowMinimum, s.minAmount)
	}

	lockKey := "payout:" + providerID.String()
	token, acquired, err := s.locker.TryLock(ctx, lockKey, requestLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrRequestInFlight
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			s.log.Warn("payout lock release failed", zap.String("provider_id", providerID.String()), zap.Error(err))
		}
	}()

	now := s.clock.Now().UTC()
	reserved, err := s.accountRepo.Reserve(ctx, s.db, providerID, amount, now)
	if err != nil {
		return nil, err
	}
	if !reserved {
		account, ferr := s.accountRepo.Find(ctx, s.db, providerID)
		if ferr != nil {
			return nil, ferr
		}
		available := int64(0)
		if account != nil {
			available = account.AvailableBalance
		}
		return nil, fmt.Errorf("%w: available %d, requested %d", accountdomain.ErrInsufficientBalance, available, amount)
	}

	req := &domain.PayoutRequest{
		ID:          s.genID.Generate(),
		ProviderID:  providerID,
		Amount:      amount,
		Status:      domain.StatusPending,
		RequestedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, req); err != nil {
		// Funds were already moved into pending payout; put them back
		// so the failed insert does not strand the reservation.
		if rerr := s.accountRepo.Restore(ctx, s.db, providerID, amount, false, now); rerr != nil {
			s.log.Error("payout reservation rollback failed",
				zap.String("provider_id", providerID.String()),
				zap.Int64("amount", amount),
				zap.Error(rerr),
			)
		}
		return nil, err
	}

	s.recordTransition(string(domain.StatusPending))
	s.notifyAsync(providerID, string(domain.StatusPending), amount)
	return req, nil
}

func (s *Service) Approve(ctx context.Context, id snowflake.ID) (*domain.PayoutRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(domain.StatusApproved) {
		return nil, fmt.Errorf("%w: %s -> approved", domain.ErrStatusConflict, req.Status)
	}

	now := s.clock.Now().UTC()
	moved, err := s.repo.Transition(ctx, s.db, id, domain.StatusPending, domain.StatusApproved, now, "", "")
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: %s -> approved", domain.ErrStatusConflict, req.Status)
	}

	if err := s.accountRepo.Settle(ctx, s.db, req.ProviderID, req.Amount, now); err != nil {
		return nil, err
	}

	req.Status = domain.StatusApproved
	req.ApprovedAt = &now
	s.recordTransition(string(domain.StatusApproved))
	s.notifyAsync(req.ProviderID, string(domain.StatusApproved), req.Amount)
	return req, nil
}

func (s *Service) Complete(ctx context.Context, id snowflake.ID, transferRef string) (*domain.PayoutRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(domain.StatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> completed", domain.ErrStatusConflict, req.Status)
	}

	now := s.clock.Now().UTC()
	moved, err := s.repo.Transition(ctx, s.db, id, domain.StatusApproved, domain.StatusCompleted, now, transferRef, "")
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: %s -> completed", domain.ErrStatusConflict, req.Status)
	}

	req.Status = domain.StatusCompleted
	req.TransferRef = transferRef
	req.CompletedAt = &now
	s.recordTransition(string(domain.StatusCompleted))
	s.notifyAsync(req.ProviderID, string(domain.StatusCompleted), req.Amount)
	return req, nil
}

func (s *Service) Fail(ctx context.Context, id snowflake.ID, reason string) (*domain.PayoutRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(domain.StatusFailed) {
		return nil, fmt.Errorf("%w: %s -> failed", domain.ErrStatusConflict, req.Status)
	}

	now := s.clock.Now().UTC()
	moved, err := s.repo.Transition(ctx, s.db, id, req.Status, domain.StatusFailed, now, "", reason)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: %s -> failed", domain.ErrStatusConflict, req.Status)
	}

	// Approved payouts already counted toward total_payouts; failing
	// one reverses that as well as the reservation.
	wasApproved := req.Status == domain.StatusApproved
	if err := s.accountRepo.Restore(ctx, s.db, req.ProviderID, req.Amount, wasApproved, now); err != nil {
		return nil, err
	}

	req.Status = domain.StatusFailed
	req.FailReason = reason
	req.FailedAt = &now
	s.recordTransition(string(domain.StatusFailed))
	s.notifyAsync(req.ProviderID, string(domain.StatusFailed), req.Amount)
	return req, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.PayoutRequest, error) {
	return s.load(ctx, id)
}

func (s *Service) ListByProvider(ctx context.Context, providerID snowflake.ID) ([]domain.PayoutRequest, error) {
	if providerID == 0 {
		return nil, accountdomain.ErrNotFound
	}
	return s.repo.ListByProvider(ctx, s.db, providerID)
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.PayoutRequest, error) {
	req, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

func (s *Service) recordTransition(status string) {
	if s.metrics != nil {
		s.metrics.RecordPayoutTransition(status)
	}
}

func (s *Service) notifyAsync(providerID snowflake.ID, status string, amount int64) {
	go func() {
		if err := s.dispatcher.PayoutUpdated(context.Background(), providerID, status, amount); err != nil {
			s.log.Warn("payout notification failed", zap.String("provider_id", providerID.String()), zap.Error(err))
		}
	}()
}
