package gateway

import (
	"github.com/smallbiznis/serbiz/internal/config"
	"go.uber.org/fx"
)

func NewFromConfig(cfg config.Config) Client {
	return NewClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey)
}

var Module = fx.Module("gateway.client",
	fx.Provide(NewFromConfig),
)
