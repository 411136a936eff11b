package reconcile

import (
	"context"

	"clipbounty/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("earnings.reconcile",
	fx.Provide(NewConfig),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
	fx.Invoke(registerTaskHandlers),
)

type registerTaskParams struct {
	fx.In

	Mux    *asynq.ServeMux `optional:"true"`
	Worker *Worker
}

func registerTaskHandlers(p registerTaskParams) {
	if p.Mux == nil {
		return
	}
	p.Mux.HandleFunc(taskname.ReconcileSweep, p.Worker.HandleSweepTask)
}

func runWorker(lc fx.Lifecycle, worker *Worker) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go worker.RunForever(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
