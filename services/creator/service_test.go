package creator

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clipbounty/pkg/errutil"
	"clipbounty/services/post"
	"clipbounty/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	db := testutil.NewTestDB(t, &Creator{}, &SocialAccount{}, &PaymentMethod{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func TestRegisterCreatesAccountWithCode(t *testing.T) {
	svc := newTestService(t)

	account, err := svc.Register(context.Background(), RegisterRequest{
		CreatorID: "user-1",
		Username:  "clipper",
		Platform:  "youtube",
		Handle:    "@clipper",
	})
	require.NoError(t, err)
	require.NotEmpty(t, account.VerificationCode)
	require.False(t, account.IsVerified)
}

func TestRegisterRotatesCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := RegisterRequest{CreatorID: "user-1", Platform: "youtube", Handle: "@clipper"}

	first, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.ConfirmVerification(ctx, "user-1", post.PlatformYouTube, "@clipper")
	require.NoError(t, err)

	second, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotEqual(t, first.VerificationCode, second.VerificationCode)
	require.False(t, second.IsVerified)
}

func TestConfirmVerification(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{CreatorID: "user-1", Platform: "youtube", Handle: "@clipper"})
	require.NoError(t, err)

	account, err := svc.ConfirmVerification(ctx, "user-1", post.PlatformYouTube, "@clipper")
	require.NoError(t, err)
	require.True(t, account.IsVerified)
	require.NotNil(t, account.VerifiedAt)
}

func TestConfirmVerificationUnknownAccount(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ConfirmVerification(context.Background(), "user-1", post.PlatformYouTube, "@nobody")
	require.Error(t, err)

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestListVerifiedFiltersByPlatform(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{CreatorID: "user-1", Platform: "youtube", Handle: "@a"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{CreatorID: "user-2", Platform: "tiktok", Handle: "@b"})
	require.NoError(t, err)

	_, err = svc.ConfirmVerification(ctx, "user-1", post.PlatformYouTube, "@a")
	require.NoError(t, err)

	verified, err := svc.ListVerified(ctx, post.PlatformYouTube)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	require.Equal(t, "user-1", verified[0].CreatorID)

	verified, err = svc.ListVerified(ctx, post.PlatformTikTok)
	require.NoError(t, err)
	require.Empty(t, verified)
}

func TestSetPayPalValidatesEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{CreatorID: "user-1", Platform: "youtube", Handle: "@a"})
	require.NoError(t, err)

	_, err = svc.SetPayPal(ctx, SetPayPalRequest{CreatorID: "user-1", Email: "not-an-email"})
	require.Error(t, err)

	pm, err := svc.SetPayPal(ctx, SetPayPalRequest{
		CreatorID: "user-1",
		Email:     "clipper@example.com",
		FirstName: "Clip",
		LastName:  "Per",
	})
	require.NoError(t, err)
	require.Equal(t, MethodPayPal, pm.Method)
}

func TestSetPayPalReplacesExisting(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{CreatorID: "user-1", Platform: "youtube", Handle: "@a"})
	require.NoError(t, err)

	_, err = svc.SetPayPal(ctx, SetPayPalRequest{CreatorID: "user-1", Email: "old@example.com"})
	require.NoError(t, err)

	pm, err := svc.SetPayPal(ctx, SetPayPalRequest{CreatorID: "user-1", Email: "new@example.com"})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", pm.PayPalEmail)

	stored, err := svc.GetPaymentMethod(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", stored.PayPalEmail)
}

func TestSetPayPalRequiresRegistration(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SetPayPal(context.Background(), SetPayPalRequest{CreatorID: "ghost", Email: "a@b.co"})
	require.Error(t, err)
}
