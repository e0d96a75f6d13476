package portability

import "go.uber.org/fx"

// Module exposes the portability service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
