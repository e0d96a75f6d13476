package registration

import "go.uber.org/fx"

// Module exposes the registration service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
