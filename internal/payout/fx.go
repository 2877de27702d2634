package payout

import (
	"github.com/smallbiznis/serbiz/internal/payout/repository"
	"github.com/smallbiznis/serbiz/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
