package reconcile

import (
	"context"
	"sync/atomic"
	"time"

	"clipbounty/services/earnings"
	"clipbounty/services/post"
	"clipbounty/services/rate"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Posts  *post.Service
	Rates  *rate.Service
	Config Config `optional:"true"`
}

// Worker periodically recomputes accrued earnings for every bounty post.
// One failing post never aborts the sweep.
type Worker struct {
	log   *zap.Logger
	posts *post.Service
	rates *rate.Service
	cfg   Config
}

// Stats summarizes a single sweep.
type Stats struct {
	Scanned int64
	Updated int64
	Skipped int64
	Failed  int64
}

func NewWorker(p Params) *Worker {
	cfg := p.Config.withDefaults()
	return &Worker{
		log:   p.Log.Named("earnings.reconcile"),
		posts: p.Posts,
		rates: p.Rates,
		cfg:   cfg,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if stats, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("reconcile sweep failed", zap.Error(err))
		} else {
			w.log.Info("reconcile sweep finished",
				zap.Int64("scanned", stats.Scanned),
				zap.Int64("updated", stats.Updated),
				zap.Int64("skipped", stats.Skipped),
				zap.Int64("failed", stats.Failed),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs one sweep over all bounty posts.
func (w *Worker) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats

	posts, err := w.posts.ListBounty(ctx)
	if err != nil {
		return stats, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)

	for _, p := range posts {
		p := p
		g.Go(func() error {
			w.reconcileOne(ctx, p, &stats)
			return nil
		})
	}

	_ = g.Wait()
	return stats, nil
}

// HandleSweepTask runs a single sweep on demand, outside the timer.
func (w *Worker) HandleSweepTask(ctx context.Context, _ *asynq.Task) error {
	_, err := w.RunOnce(ctx)
	return err
}

func (w *Worker) reconcileOne(ctx context.Context, p *post.TrackedPost, stats *Stats) {
	atomic.AddInt64(&stats.Scanned, 1)

	def, err := w.rates.Applicable(ctx, p.IsBounty, p.BountyTag)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		w.log.Warn("failed to resolve rate",
			zap.String("url", p.URL),
			zap.String("tag", p.BountyTag),
			zap.Error(err),
		)
		return
	}

	res := earnings.Calculate(def, p.StartingViews, p.Views, p.FinalEarnedUSD)
	if !res.Applied {
		// no rate registered under this tag; leave the post untouched
		atomic.AddInt64(&stats.Skipped, 1)
		w.log.Debug("no applicable rate", zap.String("url", p.URL), zap.String("tag", p.BountyTag))
		return
	}

	if !res.Changed {
		atomic.AddInt64(&stats.Skipped, 1)
		return
	}

	if _, err := w.posts.UpdateEarnings(ctx, p.Platform, p.URL, res.Earned); err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		w.log.Warn("failed to persist earnings",
			zap.String("url", p.URL),
			zap.Float64("earned", res.Earned),
			zap.Error(err),
		)
		return
	}

	atomic.AddInt64(&stats.Updated, 1)
}
