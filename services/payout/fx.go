package payout

import (
	"clipbounty/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(NewService),
	fx.Invoke(registerTaskHandlers),
)

type registerTaskParams struct {
	fx.In

	Mux     *asynq.ServeMux `optional:"true"`
	Service *Service
}

func registerTaskHandlers(p registerTaskParams) {
	if p.Mux == nil {
		return
	}
	p.Mux.HandleFunc(taskname.PayoutSettle, p.Service.HandleSettleTask)
}
