package ingest

import (
	"go.uber.org/fx"
)

var Module = fx.Module("metrics.ingest",
	fx.Provide(NewService),
)
