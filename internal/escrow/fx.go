package escrow

import "go.uber.org/fx"

var Module = fx.Module("escrow",
	fx.Provide(NewService),
)
