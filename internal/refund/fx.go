package refund

import "go.uber.org/fx"

var Module = fx.Module("refund",
	fx.Provide(NewService),
)
