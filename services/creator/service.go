package creator

import (
	"context"
	"regexp"
	"strings"
	"time"

	"clipbounty/pkg/errutil"
	"clipbounty/pkg/repository"
	"clipbounty/pkg/util"
	"clipbounty/services/post"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	creators repository.Repository[Creator]
	accounts repository.Repository[SocialAccount]
	payments repository.Repository[PaymentMethod]
}

type ServiceParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		creators: repository.ProvideStore[Creator](p.DB),
		accounts: repository.ProvideStore[SocialAccount](p.DB),
		payments: repository.ProvideStore[PaymentMethod](p.DB),
	}
}

type RegisterRequest struct {
	CreatorID string `json:"creator_id"`
	Username  string `json:"username"`
	Platform  string `json:"platform"`
	Handle    string `json:"handle"`
}

// Register stores the creator and opens an unverified social account with a
// fresh verification code. Re-registering an existing handle rotates the
// code and resets verification.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*SocialAccount, error) {
	if req.CreatorID == "" {
		return nil, errutil.BadRequest("creator_id is required", nil)
	}
	platform, ok := post.ParsePlatform(req.Platform)
	if !ok {
		return nil, errutil.BadRequest("unsupported platform", nil)
	}
	handle := strings.TrimSpace(req.Handle)
	if handle == "" {
		return nil, errutil.BadRequest("handle is required", nil)
	}

	existing, err := s.creators.FindOne(ctx, &Creator{ID: req.CreatorID})
	if err != nil {
		return nil, errutil.Internal("failed to query creator", err)
	}
	if existing == nil {
		if err := s.creators.Create(ctx, &Creator{ID: req.CreatorID, Username: req.Username}); err != nil {
			return nil, errutil.Internal("failed to create creator", err)
		}
	}

	code := util.GenerateVerificationCode()

	account, err := s.accounts.FindOne(ctx, &SocialAccount{
		CreatorID: req.CreatorID,
		Platform:  platform,
		Username:  handle,
	})
	if err != nil {
		return nil, errutil.Internal("failed to query social account", err)
	}

	if account != nil {
		updates := map[string]interface{}{
			"verification_code": code,
			"is_verified":       false,
			"verified_at":       nil,
		}
		if err := s.accounts.Update(ctx, account.ID, updates); err != nil {
			return nil, errutil.Internal("failed to refresh social account", err)
		}
		return s.accounts.FindOne(ctx, &SocialAccount{ID: account.ID})
	}

	account = &SocialAccount{
		ID:               s.node.Generate().String(),
		CreatorID:        req.CreatorID,
		Platform:         platform,
		Username:         handle,
		VerificationCode: code,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, errutil.Internal("failed to create social account", err)
	}

	return account, nil
}

// ConfirmVerification marks the account verified. Called once the code has
// been observed in the creator's profile bio.
func (s *Service) ConfirmVerification(ctx context.Context, creatorID string, platform post.Platform, handle string) (*SocialAccount, error) {
	account, err := s.accounts.FindOne(ctx, &SocialAccount{
		CreatorID: creatorID,
		Platform:  platform,
		Username:  strings.TrimSpace(handle),
	})
	if err != nil {
		return nil, errutil.Internal("failed to query social account", err)
	}
	if account == nil {
		return nil, errutil.NotFound("social account not found", nil)
	}

	if !account.IsVerified {
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"is_verified": true,
			"verified_at": now,
		}
		if err := s.accounts.Update(ctx, account.ID, updates); err != nil {
			return nil, errutil.Internal("failed to verify social account", err)
		}

		zap.L().Info("social account verified",
			zap.String("creator_id", creatorID),
			zap.String("platform", string(platform)),
			zap.String("handle", handle),
		)
	}

	return s.accounts.FindOne(ctx, &SocialAccount{ID: account.ID})
}

// ListVerified returns all verified accounts, optionally filtered by platform.
func (s *Service) ListVerified(ctx context.Context, platform post.Platform) ([]*SocialAccount, error) {
	accounts, err := s.accounts.Find(ctx, &SocialAccount{Platform: platform, IsVerified: true})
	if err != nil {
		return nil, errutil.Internal("failed to list social accounts", err)
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, creatorID string) (*Creator, error) {
	c, err := s.creators.FindOne(ctx, &Creator{ID: creatorID})
	if err != nil {
		return nil, errutil.Internal("failed to query creator", err)
	}
	if c == nil {
		return nil, errutil.NotFound("creator not found", nil)
	}
	return c, nil
}

type SetPayPalRequest struct {
	CreatorID string `json:"creator_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SetPayPal records or replaces the creator's payout destination.
func (s *Service) SetPayPal(ctx context.Context, req SetPayPalRequest) (*PaymentMethod, error) {
	if _, err := s.Get(ctx, req.CreatorID); err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, errutil.BadRequest("invalid email address", nil)
	}

	existing, err := s.payments.FindOne(ctx, &PaymentMethod{CreatorID: req.CreatorID})
	if err != nil {
		return nil, errutil.Internal("failed to query payment method", err)
	}

	if existing != nil {
		updates := map[string]interface{}{
			"method":       MethodPayPal,
			"paypal_email": req.Email,
			"first_name":   req.FirstName,
			"last_name":    req.LastName,
		}
		if err := s.payments.Update(ctx, existing.ID, updates); err != nil {
			return nil, errutil.Internal("failed to update payment method", err)
		}
		return s.payments.FindOne(ctx, &PaymentMethod{ID: existing.ID})
	}

	pm := &PaymentMethod{
		ID:          s.node.Generate().String(),
		CreatorID:   req.CreatorID,
		Method:      MethodPayPal,
		PayPalEmail: req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	}
	if err := s.payments.Create(ctx, pm); err != nil {
		return nil, errutil.Internal("failed to create payment method", err)
	}

	return pm, nil
}

func (s *Service) GetPaymentMethod(ctx context.Context, creatorID string) (*PaymentMethod, error) {
	pm, err := s.payments.FindOne(ctx, &PaymentMethod{CreatorID: creatorID})
	if err != nil {
		return nil, errutil.Internal("failed to query payment method", err)
	}
	if pm == nil {
		return nil, errutil.NotFound("payment method not found", nil)
	}
	return pm, nil
}
