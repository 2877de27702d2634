package lock

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/serbiz/internal/config"
	"go.uber.org/fx"
)

func NewFromConfig(cfg config.Config) *Locker {
	if cfg.RedisAddr == "" {
		return nil
	}
	return NewLocker(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
}

var Module = fx.Module("lock",
	fx.Provide(NewFromConfig),
)
