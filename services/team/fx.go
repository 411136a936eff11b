package team

import (
	"go.uber.org/fx"
)

var Module = fx.Module("team.service",
	fx.Provide(NewService),
)
