package payout

import (
	"context"
	"encoding/json"

	"clipbounty/pkg/errutil"
	"clipbounty/pkg/repository"
	"clipbounty/pkg/sequence"
	"clipbounty/pkg/taskname"
	"clipbounty/services/earnings"
	"clipbounty/services/post"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	seq    sequence.Generator
	client *asynq.Client

	records repository.Repository[Record]
	posts   repository.Repository[post.TrackedPost]
}

type ServiceParams struct {
	fx.In

	DB     *gorm.DB
	Node   *snowflake.Node
	Seq    sequence.Generator `optional:"true"`
	Client *asynq.Client      `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:      p.DB,
		node:    p.Node,
		seq:     p.Seq,
		client:  p.Client,
		records: repository.ProvideStore[Record](p.DB),
		posts:   repository.ProvideStore[post.TrackedPost](p.DB),
	}
}

// Settle pays out every tracked post for an owner: ledger rows are written
// and the posts removed in one transaction, so a crash can never pay twice
// or lose accrued earnings.
func (s *Service) Settle(ctx context.Context, ownerID string) (*Settlement, error) {
	if ownerID == "" {
		return nil, errutil.BadRequest("owner_id is required", nil)
	}

	settlement := &Settlement{
		BatchID: s.nextBatchID(ctx),
		OwnerID: ownerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		postsTx := s.posts.WithTrx(tx)
		recordsTx := s.records.WithTrx(tx)

		owned, err := postsTx.Find(ctx, &post.TrackedPost{OwnerID: ownerID})
		if err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}

		records := make([]*Record, 0, len(owned))
		for _, p := range owned {
			reference, err := s.nextReference(ctx, ownerID)
			if err != nil {
				return err
			}

			records = append(records, &Record{
				ID:        s.node.Generate().String(),
				BatchID:   settlement.BatchID,
				OwnerID:   ownerID,
				Platform:  p.Platform,
				URL:       p.URL,
				VideoID:   p.VideoID,
				Views:     p.Views,
				EarnedUSD: p.FinalEarnedUSD,
				Reference: reference,
			})
			settlement.TotalUSD += p.FinalEarnedUSD
		}

		if err := recordsTx.BatchCreate(ctx, records); err != nil {
			return err
		}

		if _, err := postsTx.Delete(ctx, &post.TrackedPost{OwnerID: ownerID}); err != nil {
			return err
		}

		settlement.Records = len(records)
		settlement.TotalUSD = earnings.Round4(settlement.TotalUSD)
		return nil
	})
	if err != nil {
		zap.L().Error("settlement failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, errutil.Internal("failed to settle payouts", err)
	}

	zap.L().Info("settlement complete",
		zap.String("owner_id", ownerID),
		zap.String("batch_id", settlement.BatchID),
		zap.Int("records", settlement.Records),
		zap.Float64("total_usd", settlement.TotalUSD),
	)

	return settlement, nil
}

func (s *Service) nextBatchID(ctx context.Context) string {
	if s.seq != nil {
		if code, err := s.seq.NextBatchCode(ctx); err == nil {
			return code
		}
	}
	return s.node.Generate().String()
}

func (s *Service) nextReference(ctx context.Context, ownerID string) (string, error) {
	if s.seq != nil {
		if code, err := s.seq.NextPayoutCode(ctx, ownerID); err == nil {
			return code, nil
		}
	}
	return GeneratePayoutReference()
}

type settlePayload struct {
	OwnerID string `json:"owner_id"`
}

// EnqueueSettle schedules a settlement on the payouts queue.
func (s *Service) EnqueueSettle(ctx context.Context, ownerID string) error {
	if s.client == nil {
		return errutil.Internal("task client unavailable", nil)
	}

	payload, err := json.Marshal(settlePayload{OwnerID: ownerID})
	if err != nil {
		return errutil.Internal("failed to encode settle payload", err)
	}

	task := asynq.NewTask(taskname.PayoutSettle, payload)
	if _, err := s.client.EnqueueContext(ctx, task, asynq.Queue("payouts")); err != nil {
		return errutil.Internal("failed to enqueue settlement", err)
	}

	return nil
}

// HandleSettleTask is the asynq handler for payout:settle.
func (s *Service) HandleSettleTask(ctx context.Context, t *asynq.Task) error {
	var payload settlePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	_, err := s.Settle(ctx, payload.OwnerID)
	return err
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Record, error) {
	records, err := s.records.Find(ctx, &Record{OwnerID: ownerID})
	if err != nil {
		return nil, errutil.Internal("failed to list payout records", err)
	}
	return records, nil
}

// TotalPaid sums everything ever settled for an owner.
func (s *Service) TotalPaid(ctx context.Context, ownerID string) (float64, error) {
	records, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, r := range records {
		total += r.EarnedUSD
	}
	return earnings.Round4(total), nil
}
