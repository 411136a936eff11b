package team

import (
	"context"
	"strings"

	"clipbounty/pkg/errutil"
	"clipbounty/pkg/repository"
	"clipbounty/services/creator"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	creators *creator.Service

	teams   repository.Repository[Team]
	members repository.Repository[Member]
}

type ServiceParams struct {
	fx.In

	DB       *gorm.DB
	Node     *snowflake.Node
	Creators *creator.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		creators: p.Creators,
		teams:    repository.ProvideStore[Team](p.DB),
		members:  repository.ProvideStore[Member](p.DB),
	}
}

type CreateRequest struct {
	OwnerID        string  `json:"owner_id"`
	Name           string  `json:"name"`
	CommissionRate float64 `json:"commission_rate"`
}

// Create opens a team for a registered creator with a payout destination on
// file. Each creator owns at most one team.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errutil.BadRequest("team name is required", nil)
	}

	if _, err := s.creators.Get(ctx, req.OwnerID); err != nil {
		return nil, errutil.BadRequest("owner is not a registered creator", err)
	}
	if _, err := s.creators.GetPaymentMethod(ctx, req.OwnerID); err != nil {
		return nil, errutil.BadRequest("owner has no payment method on file", err)
	}

	existing, err := s.teams.FindOne(ctx, &Team{OwnerID: req.OwnerID})
	if err != nil {
		return nil, errutil.Internal("failed to query team", err)
	}
	if existing != nil {
		return nil, errutil.Conflict("owner already has a team", nil)
	}

	commission := req.CommissionRate
	if commission <= 0 {
		commission = DefaultCommissionRate
	}
	if commission > 100 {
		return nil, errutil.BadRequest("commission rate must be at most 100", nil)
	}

	t := &Team{
		ID:             s.node.Generate().String(),
		Name:           strings.TrimSpace(req.Name),
		OwnerID:        req.OwnerID,
		CommissionRate: commission,
		InviteCode:     uuid.NewString()[:8],
	}
	if err := s.teams.Create(ctx, t); err != nil {
		return nil, errutil.Internal("failed to create team", err)
	}

	return t, nil
}

// Join adds a creator to the team behind an invite code. Owners cannot join
// their own team and double joins are rejected.
func (s *Service) Join(ctx context.Context, userID, inviteCode string) (*Team, error) {
	t, err := s.teams.FindOne(ctx, &Team{InviteCode: strings.TrimSpace(inviteCode)})
	if err != nil {
		return nil, errutil.Internal("failed to query team", err)
	}
	if t == nil {
		return nil, errutil.NotFound("invalid invite code", nil)
	}

	if t.OwnerID == userID {
		return nil, errutil.BadRequest("cannot join your own team", nil)
	}

	existing, err := s.members.FindOne(ctx, &Member{TeamID: t.ID, UserID: userID})
	if err != nil {
		return nil, errutil.Internal("failed to query membership", err)
	}
	if existing != nil {
		return nil, errutil.Conflict("already a member of this team", nil)
	}

	m := &Member{
		ID:     s.node.Generate().String(),
		TeamID: t.ID,
		UserID: userID,
	}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, errutil.Internal("failed to join team", err)
	}

	return t, nil
}

func (s *Service) Leave(ctx context.Context, userID, teamID string) error {
	affected, err := s.members.Delete(ctx, &Member{TeamID: teamID, UserID: userID})
	if err != nil {
		return errutil.Internal("failed to leave team", err)
	}
	if affected == 0 {
		return errutil.NotFound("membership not found", nil)
	}
	return nil
}

// GetForUser resolves the team a user belongs to, owned or joined.
func (s *Service) GetForUser(ctx context.Context, userID string) (*Team, error) {
	t, err := s.teams.FindOne(ctx, &Team{OwnerID: userID})
	if err != nil {
		return nil, errutil.Internal("failed to query team", err)
	}
	if t != nil {
		return t, nil
	}

	m, err := s.members.FindOne(ctx, &Member{UserID: userID})
	if err != nil {
		return nil, errutil.Internal("failed to query membership", err)
	}
	if m == nil {
		return nil, errutil.NotFound("not in a team", nil)
	}

	t, err = s.teams.FindOne(ctx, &Team{ID: m.TeamID})
	if err != nil {
		return nil, errutil.Internal("failed to query team", err)
	}
	if t == nil {
		return nil, errutil.NotFound("team not found", nil)
	}
	return t, nil
}

// UpdateCommission sets the owner's cut of member payouts.
func (s *Service) UpdateCommission(ctx context.Context, ownerID string, rate float64) (*Team, error) {
	if rate < 0 || rate > 100 {
		return nil, errutil.BadRequest("commission rate must be between 0 and 100", nil)
	}

	t, err := s.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.teams.Update(ctx, t.ID, map[string]interface{}{"commission_rate": rate}); err != nil {
		return nil, errutil.Internal("failed to update commission rate", err)
	}
	return s.teams.FindOne(ctx, &Team{ID: t.ID})
}

// RotateInvite replaces the invite code, invalidating the old one.
func (s *Service) RotateInvite(ctx context.Context, ownerID string) (*Team, error) {
	t, err := s.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.teams.Update(ctx, t.ID, map[string]interface{}{"invite_code": uuid.NewString()[:8]}); err != nil {
		return nil, errutil.Internal("failed to rotate invite code", err)
	}
	return s.teams.FindOne(ctx, &Team{ID: t.ID})
}

func (s *Service) GetByOwner(ctx context.Context, ownerID string) (*Team, error) {
	t, err := s.teams.FindOne(ctx, &Team{OwnerID: ownerID})
	if err != nil {
		return nil, errutil.Internal("failed to query team", err)
	}
	if t == nil {
		return nil, errutil.NotFound("team not found", nil)
	}
	return t, nil
}

func (s *Service) ListMembers(ctx context.Context, teamID string) ([]*Member, error) {
	members, err := s.members.Find(ctx, &Member{TeamID: teamID})
	if err != nil {
		return nil, errutil.Internal("failed to list members", err)
	}
	return members, nil
}
