package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/smallbiznis/serbiz/internal/account/domain"
	bookingdomain "github.com/smallbiznis/serbiz/internal/booking/domain"
	"github.com/smallbiznis/serbiz/internal/config"
	"github.com/smallbiznis/serbiz/internal/escrow"
	ledgerdomain "github.com/smallbiznis/serbiz/internal/ledger/domain"
	paymentdomain "github.com/smallbiznis/serbiz/internal/payment/domain"
	payoutdomain "github.com/smallbiznis/serbiz/internal/payout/domain"
	"github.com/smallbiznis/serbiz/internal/refund"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	paymentSvc  paymentdomain.Service
	payoutSvc   payoutdomain.Service
	escrowSvc   escrow.Service
	refundSvc   refund.Service
	ledgerSvc   ledgerdomain.Service
	bookingRepo bookingdomain.Repository
	accountRepo accountdomain.Repository
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	PaymentSvc  paymentdomain.Service
	PayoutSvc   payoutdomain.Service
	EscrowSvc   escrow.Service
	RefundSvc   refund.Service
	LedgerSvc   ledgerdomain.Service
	BookingRepo bookingdomain.Repository
	AccountRepo accountdomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		paymentSvc:  p.PaymentSvc,
		payoutSvc:   p.PayoutSvc,
		escrowSvc:   p.EscrowSvc,
		refundSvc:   p.RefundSvc,
		ledgerSvc:   p.LedgerSvc,
		bookingRepo: p.BookingRepo,
		accountRepo: p.AccountRepo,
	}

	svc.registerRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	payments := s.engine.Group("/payments")
	{
		payments.POST("/sources", s.CreateSource)
		payments.GET("/sources/:id", s.GetSource)
		payments.POST("/charges", s.CreateCharge)
		payments.POST("/webhook", s.HandleWebhook)
		payments.POST("/reconcile/:bookingId", s.Reconcile)
		payments.GET("/status/:bookingId", s.PaymentStatus)
		payments.POST("/refunds", s.CreateRefund)
		payments.POST("/auto-refund/:bookingId", s.AutoRefund)
	}

	s.engine.POST("/escrow/:bookingId/release", s.ReleaseEscrow)
	s.engine.GET("/bookings/:bookingId/transactions", s.ListTransactions)

	providers := s.engine.Group("/providers")
	{
		providers.GET("/:id/balance", s.GetBalance)
		providers.GET("/:id/payouts", s.ListPayouts)
	}

	payouts := s.engine.Group("/payouts")
	{
		payouts.POST("", s.RequestPayout)
		payouts.GET("/:providerId", s.ListPayouts)
		payouts.POST("/:id/approve", s.ApprovePayout)
		payouts.POST("/:id/complete", s.CompletePayout)
		payouts.POST("/:id/fail", s.FailPayout)
	}
}
