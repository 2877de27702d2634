package payment

import (
	"github.com/smallbiznis/serbiz/internal/payment/repository"
	"github.com/smallbiznis/serbiz/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
