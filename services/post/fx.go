package post

import (
	"go.uber.org/fx"
)

var Module = fx.Module("post.service",
	fx.Provide(NewService),
)
