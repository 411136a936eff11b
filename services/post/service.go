package post

import (
	"context"
	"net/url"

	"clipbounty/pkg/errutil"
	"clipbounty/pkg/repository"
	"clipbounty/services/rate"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	posts repository.Repository[TrackedPost]
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
		posts: repository.ProvideStore[TrackedPost](p.DB),
	}
}

type UpsertRequest struct {
	Platform Platform
	OwnerID  string
	URL      string
	VideoID  string
	Views    int64
	Likes    int64
	Shares   int64
}

// ValidateURL rejects anything that is not an absolute http(s) URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errutil.BadRequest("malformed url", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errutil.BadRequest("url must be absolute http(s)", nil)
	}
	return nil
}

// Upsert inserts a post or refreshes its counters. New posts enter tracking
// with StartingViews zero; an existing bounty baseline is never touched here.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (*TrackedPost, error) {
	if _, ok := ParsePlatform(string(req.Platform)); !ok {
		return nil, errutil.BadRequest("unsupported platform", nil)
	}
	if err := ValidateURL(req.URL); err != nil {
		return nil, err
	}
	if req.Views < 0 || req.Likes < 0 || req.Shares < 0 {
		return nil, errutil.BadRequest("counters must not be negative", nil)
	}

	existing, err := s.posts.FindOne(ctx, &TrackedPost{Platform: req.Platform, URL: req.URL})
	if err != nil {
		return nil, errutil.Internal("failed to query tracked post", err)
	}

	if existing != nil {
		updates := map[string]interface{}{
			"views":  req.Views,
			"likes":  req.Likes,
			"shares": req.Shares,
		}
		if req.VideoID != "" {
			updates["video_id"] = req.VideoID
		}
		if err := s.posts.Update(ctx, existing.ID, updates); err != nil {
			return nil, errutil.Internal("failed to update tracked post", err)
		}
		return s.posts.FindOne(ctx, &TrackedPost{ID: existing.ID})
	}

	p := &TrackedPost{
		ID:       s.node.Generate().String(),
		Platform: req.Platform,
		OwnerID:  req.OwnerID,
		URL:      req.URL,
		VideoID:  req.VideoID,
		Views:    req.Views,
		Likes:    req.Likes,
		Shares:   req.Shares,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, errutil.Internal("failed to create tracked post", err)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, platform Platform, rawURL string) (*TrackedPost, error) {
	p, err := s.posts.FindOne(ctx, &TrackedPost{Platform: platform, URL: rawURL})
	if err != nil {
		return nil, errutil.Internal("failed to query tracked post", err)
	}
	if p == nil {
		return nil, errutil.NotFound("tracked post not found", nil)
	}
	return p, nil
}

// AssignBounty marks a post as bounty-tracked. The current view count
// becomes the earnings baseline and accrued earnings reset to zero, so the
// bounty only pays for views gained after assignment.
func (s *Service) AssignBounty(ctx context.Context, platform Platform, rawURL, tag string) (*TrackedPost, error) {
	normalized := rate.NormalizeKey(tag)
	if normalized == "" {
		return nil, errutil.BadRequest("bounty tag is required", nil)
	}

	p, err := s.Get(ctx, platform, rawURL)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"is_bounty":        true,
		"bounty_tag":       normalized,
		"starting_views":   p.Views,
		"final_earned_usd": float64(0),
	}
	if err := s.posts.Update(ctx, p.ID, updates); err != nil {
		return nil, errutil.Internal("failed to assign bounty", err)
	}

	zap.L().Info("bounty assigned",
		zap.String("platform", string(platform)),
		zap.String("url", rawURL),
		zap.String("tag", normalized),
		zap.Int64("baseline_views", p.Views),
	)

	return s.posts.FindOne(ctx, &TrackedPost{ID: p.ID})
}

// UpdateEarnings persists a new accrued amount, skipping the write when the
// stored value already matches. Returns whether a write happened.
func (s *Service) UpdateEarnings(ctx context.Context, platform Platform, rawURL string, earned float64) (bool, error) {
	p, err := s.Get(ctx, platform, rawURL)
	if err != nil {
		return false, err
	}

	if p.FinalEarnedUSD == earned {
		return false, nil
	}

	if err := s.posts.Update(ctx, p.ID, map[string]interface{}{"final_earned_usd": earned}); err != nil {
		return false, errutil.Internal("failed to update earnings", err)
	}
	return true, nil
}

func (s *Service) ListBounty(ctx context.Context) ([]*TrackedPost, error) {
	posts, err := s.posts.Find(ctx, &TrackedPost{IsBounty: true})
	if err != nil {
		return nil, errutil.Internal("failed to list bounty posts", err)
	}
	return posts, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*TrackedPost, error) {
	posts, err := s.posts.Find(ctx, &TrackedPost{OwnerID: ownerID})
	if err != nil {
		return nil, errutil.Internal("failed to list tracked posts", err)
	}
	return posts, nil
}

func (s *Service) Remove(ctx context.Context, platform Platform, rawURL string) error {
	affected, err := s.posts.Delete(ctx, &TrackedPost{Platform: platform, URL: rawURL})
	if err != nil {
		return errutil.Internal("failed to remove tracked post", err)
	}
	if affected == 0 {
		return errutil.NotFound("tracked post not found", nil)
	}
	return nil
}

func (s *Service) RemoveByOwner(ctx context.Context, ownerID string) (int64, error) {
	affected, err := s.posts.Delete(ctx, &TrackedPost{OwnerID: ownerID})
	if err != nil {
		return 0, errutil.Internal("failed to remove tracked posts", err)
	}
	return affected, nil
}
