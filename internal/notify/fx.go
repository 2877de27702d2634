package notify

import "go.uber.org/fx"

var Module = fx.Module("notify",
	fx.Provide(func() Dispatcher { return &NoOpDispatcher{} }),
	fx.Provide(func() Points { return &NoOpPoints{} }),
)
