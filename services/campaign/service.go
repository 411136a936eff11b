package campaign

import (
	"context"
	"encoding/json"
	"time"

	"clipbounty/pkg/db/option"
	"clipbounty/pkg/db/pagination"
	"clipbounty/pkg/errutil"
	"clipbounty/pkg/repository"
	"clipbounty/services/post"
	"clipbounty/services/rate"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	rates *rate.Service

	campaigns repository.Repository[Campaign]
}

type ServiceParams struct {
	fx.In

	DB    *gorm.DB
	Node  *snowflake.Node
	Rates *rate.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		rates:     p.Rates,
		campaigns: repository.ProvideStore[Campaign](p.DB),
	}
}

type CreateRequest struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Platforms    []string   `json:"platforms"`
	RateKey      string     `json:"rate_key"`
	InviteLink   string     `json:"invite_link"`
	ThumbnailURL string     `json:"thumbnail_url"`
	CreatedBy    string     `json:"created_by"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
}

// Create registers a campaign in DRAFT status. The rate key must already
// exist in the rate registry so submissions always have a price.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Campaign, error) {
	if req.Name == "" {
		return nil, errutil.BadRequest("campaign name is required", nil)
	}

	for _, p := range req.Platforms {
		if _, ok := post.ParsePlatform(p); !ok {
			return nil, errutil.BadRequest("unsupported platform: "+p, nil)
		}
	}

	if req.RateKey != "" {
		if _, err := s.rates.Get(ctx, req.RateKey); err != nil {
			return nil, errutil.BadRequest("rate_key does not reference a known rate", err)
		}
	}

	platforms, err := json.Marshal(req.Platforms)
	if err != nil {
		return nil, errutil.Internal("failed to encode platforms", err)
	}

	c := &Campaign{
		ID:           s.node.Generate().String(),
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Platforms:    datatypes.JSON(platforms),
		RateKey:      rate.NormalizeKey(req.RateKey),
		InviteLink:   req.InviteLink,
		ThumbnailURL: req.ThumbnailURL,
		CreatedBy:    req.CreatedBy,
		Status:       StatusDraft,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, errutil.Internal("failed to create campaign", err)
	}

	return c, nil
}

type UpdateRequest struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	Category     *string    `json:"category"`
	RateKey      *string    `json:"rate_key"`
	InviteLink   *string    `json:"invite_link"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	Status       *Status    `json:"status"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
}

// Update applies a partial update; nil fields are left untouched.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Campaign, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.RateKey != nil {
		if *req.RateKey != "" {
			if _, err := s.rates.Get(ctx, *req.RateKey); err != nil {
				return nil, errutil.BadRequest("rate_key does not reference a known rate", err)
			}
		}
		updates["rate_key"] = rate.NormalizeKey(*req.RateKey)
	}
	if req.InviteLink != nil {
		updates["invite_link"] = *req.InviteLink
	}
	if req.ThumbnailURL != nil {
		updates["thumbnail_url"] = *req.ThumbnailURL
	}
	if req.Status != nil {
		switch *req.Status {
		case StatusDraft, StatusActive, StatusInactive, StatusExpired:
			updates["status"] = *req.Status
		default:
			return nil, errutil.BadRequest("unsupported campaign status", nil)
		}
	}
	if req.StartAt != nil {
		updates["start_at"] = *req.StartAt
	}
	if req.EndAt != nil {
		updates["end_at"] = *req.EndAt
	}

	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.campaigns.Update(ctx, existing.ID, updates); err != nil {
		return nil, errutil.Internal("failed to update campaign", err)
	}

	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Campaign, error) {
	c, err := s.campaigns.FindOne(ctx, &Campaign{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to query campaign", err)
	}
	if c == nil {
		return nil, errutil.NotFound("campaign not found", nil)
	}
	return c, nil
}

type ListResult struct {
	Campaigns []*Campaign          `json:"campaigns"`
	PageInfo  *pagination.PageInfo `json:"page_info"`
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) (*ListResult, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = 10
	}

	campaigns, err := s.campaigns.Find(ctx, &Campaign{},
		option.ApplyPagination(page),
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "id",
			OrderBy: "desc",
			Allow:   map[string]bool{"id": true},
		}),
	)
	if err != nil {
		return nil, errutil.Internal("failed to list campaigns", err)
	}

	pageInfo := pagination.BuildCursorPageInfo(campaigns, int32(limit), func(c *Campaign) string {
		cursor, _ := pagination.EncodeCursor(pagination.Cursor{ID: c.ID})
		return cursor
	})

	if len(campaigns) > limit {
		campaigns = campaigns[:limit]
	}

	return &ListResult{Campaigns: campaigns, PageInfo: pageInfo}, nil
}
