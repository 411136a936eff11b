package rate

import (
	"context"

	"clipbounty/pkg/errutil"
	"clipbounty/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	rates repository.Repository[Definition]
}

type ServiceParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		rates: repository.ProvideStore[Definition](p.DB),
	}
}

type UpsertRequest struct {
	Key           string  `json:"key"`
	Kind          Kind    `json:"kind"`
	AmountUSD     float64 `json:"amount_usd"`
	PerViews      int64   `json:"per_views"`
	AmountPer1000 float64 `json:"amount_per_1000"`
}

// Upsert creates or replaces the definition stored under the normalized key.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (*Definition, error) {
	key := NormalizeKey(req.Key)
	if key == "" {
		return nil, errutil.BadRequest("rate key is required", nil)
	}

	switch req.Kind {
	case KindFlat:
		if req.PerViews <= 0 {
			return nil, errutil.BadRequest("per_views must be greater than zero", nil)
		}
		if req.AmountUSD < 0 {
			return nil, errutil.BadRequest("amount_usd must not be negative", nil)
		}
	case KindProportional:
		if req.AmountPer1000 < 0 {
			return nil, errutil.BadRequest("amount_per_1000 must not be negative", nil)
		}
	default:
		return nil, errutil.BadRequest("unsupported rate kind", nil)
	}

	existing, err := s.rates.FindOne(ctx, &Definition{Key: key})
	if err != nil {
		zap.L().Error("failed to query rate definition", zap.String("key", key), zap.Error(err))
		return nil, errutil.Internal("failed to query rate definition", err)
	}

	if existing != nil {
		updates := map[string]interface{}{
			"kind":            req.Kind,
			"amount_usd":      req.AmountUSD,
			"per_views":       req.PerViews,
			"amount_per_1000": req.AmountPer1000,
		}
		if err := s.rates.Update(ctx, existing.ID, updates); err != nil {
			zap.L().Error("failed to update rate definition", zap.String("key", key), zap.Error(err))
			return nil, errutil.Internal("failed to update rate definition", err)
		}
		return s.rates.FindOne(ctx, &Definition{ID: existing.ID})
	}

	def := &Definition{
		ID:            s.node.Generate().String(),
		Key:           key,
		Kind:          req.Kind,
		AmountUSD:     req.AmountUSD,
		PerViews:      req.PerViews,
		AmountPer1000: req.AmountPer1000,
	}
	if err := s.rates.Create(ctx, def); err != nil {
		zap.L().Error("failed to create rate definition", zap.String("key", key), zap.Error(err))
		return nil, errutil.Internal("failed to create rate definition", err)
	}

	return def, nil
}

// Get returns the definition for the normalized key, or NotFound.
func (s *Service) Get(ctx context.Context, key string) (*Definition, error) {
	def, err := s.rates.FindOne(ctx, &Definition{Key: NormalizeKey(key)})
	if err != nil {
		return nil, errutil.Internal("failed to query rate definition", err)
	}
	if def == nil {
		return nil, errutil.NotFound("rate definition not found", nil)
	}
	return def, nil
}

// Applicable resolves the rate for a tracked post: the bounty tag when one
// is assigned, the standard rate otherwise. A missing definition is not an
// error; callers treat a nil result as "skip earnings". A bounty post with
// a blank tag resolves to nothing rather than falling back to the standard
// rate, so it never pays out on absolute views.
func (s *Service) Applicable(ctx context.Context, isBounty bool, bountyTag string) (*Definition, error) {
	key := StandardKey
	if isBounty {
		key = NormalizeKey(bountyTag)
		if key == "" {
			return nil, nil
		}
	}

	def, err := s.rates.FindOne(ctx, &Definition{Key: key})
	if err != nil {
		return nil, errutil.Internal("failed to resolve applicable rate", err)
	}
	return def, nil
}

func (s *Service) List(ctx context.Context) ([]*Definition, error) {
	defs, err := s.rates.Find(ctx, &Definition{})
	if err != nil {
		return nil, errutil.Internal("failed to list rate definitions", err)
	}
	return defs, nil
}

// Delete removes the definition under the normalized key. Posts tagged with
// a deleted rate simply stop accruing until the rate is recreated.
func (s *Service) Delete(ctx context.Context, key string) error {
	affected, err := s.rates.Delete(ctx, &Definition{Key: NormalizeKey(key)})
	if err != nil {
		return errutil.Internal("failed to delete rate definition", err)
	}
	if affected == 0 {
		return errutil.NotFound("rate definition not found", nil)
	}
	return nil
}
