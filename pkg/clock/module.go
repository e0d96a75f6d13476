package clock

import (
	"go.uber.org/fx"

	"github.com/bigdiet/backend/pkg/config"
)

func FromConfig(cfg *config.Config) *Clock {
	return New(cfg.Clock.UTCOffsetHours)
}

var Module = fx.Options(
	fx.Provide(FromConfig),
)
