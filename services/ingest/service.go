package ingest

import (
	"context"

	appconfig "clipbounty/internal/config"
	"clipbounty/pkg/errutil"
	"clipbounty/services/earnings"
	"clipbounty/services/post"
	"clipbounty/services/rate"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultMaxBatchSize = 500

type Service struct {
	log   *zap.Logger
	posts *post.Service
	rates *rate.Service

	maxBatchSize int
}

type ServiceParams struct {
	fx.In

	Log   *zap.Logger
	Posts *post.Service
	Rates *rate.Service
	Cfg   *appconfig.Config `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	maxBatch := defaultMaxBatchSize
	if p.Cfg != nil && p.Cfg.Ingest.MaxBatchSize > 0 {
		maxBatch = p.Cfg.Ingest.MaxBatchSize
	}

	return &Service{
		log:          p.Log.Named("metrics.ingest"),
		posts:        p.Posts,
		rates:        p.Rates,
		maxBatchSize: maxBatch,
	}
}

// Item is one scraped video measurement. Platform may override the batch
// platform; empty means inherit.
type Item struct {
	Platform string `json:"platform,omitempty"`
	VideoID  string `json:"video_id"`
	URL      string `json:"url"`
	Views    int64  `json:"views"`
	Likes    int64  `json:"likes"`
	Shares   int64  `json:"shares"`
}

type BatchRequest struct {
	OwnerID  string `json:"owner_id"`
	Platform string `json:"platform"`
	Items    []Item `json:"videos"`
}

type ItemError struct {
	Index   int    `json:"index"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

type BatchResult struct {
	Processed int         `json:"processed"`
	Failed    []ItemError `json:"failed,omitempty"`
}

// Ingest upserts every item in the batch and recomputes earnings inline for
// any post that has an applicable rate. Item failures are isolated: a bad
// item is recorded and the rest of the batch proceeds.
func (s *Service) Ingest(ctx context.Context, req BatchRequest) (BatchResult, error) {
	var result BatchResult

	if req.OwnerID == "" {
		return result, errutil.BadRequest("owner_id is required", nil)
	}
	if len(req.Items) == 0 {
		return result, nil
	}
	if len(req.Items) > s.maxBatchSize {
		return result, errutil.BadRequest("batch exceeds maximum size", nil)
	}

	for i, item := range req.Items {
		if err := s.ingestOne(ctx, req, item); err != nil {
			result.Failed = append(result.Failed, ItemError{
				Index:   i,
				URL:     item.URL,
				Message: err.Error(),
			})
			s.log.Warn("ingest item failed",
				zap.Int("index", i),
				zap.String("url", item.URL),
				zap.Error(err),
			)
			continue
		}
		result.Processed++
	}

	return result, nil
}

func (s *Service) ingestOne(ctx context.Context, req BatchRequest, item Item) error {
	rawPlatform := item.Platform
	if rawPlatform == "" {
		rawPlatform = req.Platform
	}
	platform, ok := post.ParsePlatform(rawPlatform)
	if !ok {
		return errutil.BadRequest("unsupported platform", nil)
	}

	p, err := s.posts.Upsert(ctx, post.UpsertRequest{
		Platform: platform,
		OwnerID:  req.OwnerID,
		URL:      item.URL,
		VideoID:  item.VideoID,
		Views:    item.Views,
		Likes:    item.Likes,
		Shares:   item.Shares,
	})
	if err != nil {
		return err
	}

	def, err := s.rates.Applicable(ctx, p.IsBounty, p.BountyTag)
	if err != nil {
		return err
	}

	res := earnings.Calculate(def, p.StartingViews, p.Views, p.FinalEarnedUSD)
	if !res.Applied || !res.Changed {
		return nil
	}

	if _, err := s.posts.UpdateEarnings(ctx, p.Platform, p.URL, res.Earned); err != nil {
		return err
	}

	return nil
}
