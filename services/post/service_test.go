package post

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clipbounty/pkg/errutil"
	"clipbounty/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	db := testutil.NewTestDB(t, &TrackedPost{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func TestUpsertCreatesWithZeroBaseline(t *testing.T) {
	svc := newTestService(t)

	p, err := svc.Upsert(context.Background(), UpsertRequest{
		Platform: PlatformYouTube,
		OwnerID:  "owner-1",
		URL:      "https://youtube.com/watch?v=abc",
		VideoID:  "abc",
		Views:    1200,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), p.StartingViews)
	require.False(t, p.IsBounty)
}

func TestUpsertRefreshesCounters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{
		Platform: PlatformTikTok,
		OwnerID:  "owner-1",
		URL:      "https://tiktok.com/@u/video/1",
		Views:    100,
		Likes:    10,
	})
	require.NoError(t, err)

	p, err := svc.Upsert(ctx, UpsertRequest{
		Platform: PlatformTikTok,
		OwnerID:  "owner-1",
		URL:      "https://tiktok.com/@u/video/1",
		Views:    500,
		Likes:    42,
		Shares:   7,
	})
	require.NoError(t, err)
	require.Equal(t, int64(500), p.Views)
	require.Equal(t, int64(42), p.Likes)
	require.Equal(t, int64(7), p.Shares)

	posts, err := svc.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, posts, 1)
}

func TestUpsertValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{Platform: "myspace", URL: "https://example.com/1"})
	require.Error(t, err)

	_, err = svc.Upsert(ctx, UpsertRequest{Platform: PlatformYouTube, URL: "not-a-url"})
	require.Error(t, err)

	_, err = svc.Upsert(ctx, UpsertRequest{Platform: PlatformYouTube, URL: "https://youtube.com/v", Views: -1})
	require.Error(t, err)
}

func TestAssignBountyResetsBaseline(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{
		Platform: PlatformYouTube,
		OwnerID:  "owner-1",
		URL:      "https://youtube.com/watch?v=abc",
		Views:    5000,
	})
	require.NoError(t, err)

	_, err = svc.UpdateEarnings(ctx, PlatformYouTube, "https://youtube.com/watch?v=abc", 3.0)
	require.NoError(t, err)

	p, err := svc.AssignBounty(ctx, PlatformYouTube, "https://youtube.com/watch?v=abc", "promo")
	require.NoError(t, err)
	require.True(t, p.IsBounty)
	require.Equal(t, "promo", p.BountyTag)
	require.Equal(t, int64(5000), p.StartingViews)
	require.Equal(t, 0.0, p.FinalEarnedUSD)
}

func TestAssignBountyNormalizesTag(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{
		Platform: PlatformYouTube,
		OwnerID:  "owner-1",
		URL:      "https://youtube.com/watch?v=abc",
		Views:    2000,
	})
	require.NoError(t, err)

	p, err := svc.AssignBounty(ctx, PlatformYouTube, "https://youtube.com/watch?v=abc", "  Promo ")
	require.NoError(t, err)
	require.Equal(t, "promo", p.BountyTag)
}

func TestAssignBountyRejectsBlankTag(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{
		Platform: PlatformYouTube,
		OwnerID:  "owner-1",
		URL:      "https://youtube.com/watch?v=abc",
		Views:    2000,
	})
	require.NoError(t, err)

	_, err = svc.AssignBounty(ctx, PlatformYouTube, "https://youtube.com/watch?v=abc", "   ")
	require.Error(t, err)

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusBadRequest, be.Status())
}

func TestAssignBountyUnknownPost(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AssignBounty(context.Background(), PlatformYouTube, "https://youtube.com/none", "promo")
	require.Error(t, err)

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestUpdateEarningsSkipsUnchanged(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{
		Platform: PlatformYouTube,
		OwnerID:  "owner-1",
		URL:      "https://youtube.com/watch?v=abc",
		Views:    5000,
	})
	require.NoError(t, err)

	wrote, err := svc.UpdateEarnings(ctx, PlatformYouTube, "https://youtube.com/watch?v=abc", 12.5)
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = svc.UpdateEarnings(ctx, PlatformYouTube, "https://youtube.com/watch?v=abc", 12.5)
	require.NoError(t, err)
	require.False(t, wrote)
}

func TestListBountyOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{Platform: PlatformYouTube, OwnerID: "o1", URL: "https://youtube.com/a", Views: 1})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, UpsertRequest{Platform: PlatformYouTube, OwnerID: "o1", URL: "https://youtube.com/b", Views: 1})
	require.NoError(t, err)

	_, err = svc.AssignBounty(ctx, PlatformYouTube, "https://youtube.com/b", "promo")
	require.NoError(t, err)

	posts, err := svc.ListBounty(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "https://youtube.com/b", posts[0].URL)
}

func TestRemoveByOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{Platform: PlatformYouTube, OwnerID: "o1", URL: "https://youtube.com/a", Views: 1})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, UpsertRequest{Platform: PlatformTikTok, OwnerID: "o1", URL: "https://tiktok.com/@u/video/1", Views: 1})
	require.NoError(t, err)

	affected, err := svc.RemoveByOwner(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	posts, err := svc.ListByOwner(ctx, "o1")
	require.NoError(t, err)
	require.Empty(t, posts)
}
