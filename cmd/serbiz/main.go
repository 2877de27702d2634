package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/serbiz/internal/account"
	"github.com/smallbiznis/serbiz/internal/booking"
	"github.com/smallbiznis/serbiz/internal/clock"
	"github.com/smallbiznis/serbiz/internal/config"
	"github.com/smallbiznis/serbiz/internal/escrow"
	"github.com/smallbiznis/serbiz/internal/gateway"
	"github.com/smallbiznis/serbiz/internal/ledger"
	"github.com/smallbiznis/serbiz/internal/lock"
	"github.com/smallbiznis/serbiz/internal/logger"
	"github.com/smallbiznis/serbiz/internal/metrics"
	"github.com/smallbiznis/serbiz/internal/migration"
	"github.com/smallbiznis/serbiz/internal/notify"
	"github.com/smallbiznis/serbiz/internal/payment"
	"github.com/smallbiznis/serbiz/internal/payout"
	"github.com/smallbiznis/serbiz/internal/refund"
	"github.com/smallbiznis/serbiz/internal/server"
	"github.com/smallbiznis/serbiz/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		lock.Module,
		migration.Module,

		// Functional domains
		gateway.Module,
		booking.Module,
		account.Module,
		ledger.Module,
		payment.Module,
		escrow.Module,
		payout.Module,
		refund.Module,
		notify.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
