package payout

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clipbounty/services/post"
	"clipbounty/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fixture struct {
	svc   *Service
	posts *post.Service
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t, &post.TrackedPost{}, &Record{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	posts := post.NewService(post.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{DB: db, Node: node})

	return &fixture{svc: svc, posts: posts}
}

func (f *fixture) trackPost(t *testing.T, owner, url string, views int64, earned float64) {
	t.Helper()
	ctx := context.Background()

	_, err := f.posts.Upsert(ctx, post.UpsertRequest{
		Platform: post.PlatformYouTube,
		OwnerID:  owner,
		URL:      url,
		Views:    views,
	})
	require.NoError(t, err)

	if earned > 0 {
		_, err = f.posts.UpdateEarnings(ctx, post.PlatformYouTube, url, earned)
		require.NoError(t, err)
	}
}

func TestSettleWritesLedgerAndClearsPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.trackPost(t, "owner-1", "https://youtube.com/a", 12000, 50.0)
	f.trackPost(t, "owner-1", "https://youtube.com/b", 25500, 15.3)
	f.trackPost(t, "owner-2", "https://youtube.com/c", 100, 1.0)

	settlement, err := f.svc.Settle(ctx, "owner-1")
	require.NoError(t, err)
	require.Equal(t, 2, settlement.Records)
	require.Equal(t, 65.3, settlement.TotalUSD)

	// settled posts are gone, other owners untouched
	posts, err := f.posts.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Empty(t, posts)

	posts, err = f.posts.ListByOwner(ctx, "owner-2")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	records, err := f.svc.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		require.Equal(t, settlement.BatchID, r.BatchID)
		require.NotEmpty(t, r.Reference)
	}
}

func TestSettleNothingTracked(t *testing.T) {
	f := newFixture(t)

	settlement, err := f.svc.Settle(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Equal(t, 0, settlement.Records)
	require.Equal(t, 0.0, settlement.TotalUSD)
}

func TestSettleRequiresOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Settle(context.Background(), "")
	require.Error(t, err)
}

func TestSettleTwiceIsZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.trackPost(t, "owner-1", "https://youtube.com/a", 12000, 50.0)

	first, err := f.svc.Settle(ctx, "owner-1")
	require.NoError(t, err)
	require.Equal(t, 1, first.Records)

	second, err := f.svc.Settle(ctx, "owner-1")
	require.NoError(t, err)
	require.Equal(t, 0, second.Records)
}

func TestTotalPaidAccumulatesAcrossBatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.trackPost(t, "owner-1", "https://youtube.com/a", 12000, 50.0)
	_, err := f.svc.Settle(ctx, "owner-1")
	require.NoError(t, err)

	f.trackPost(t, "owner-1", "https://youtube.com/b", 25500, 15.3)
	_, err = f.svc.Settle(ctx, "owner-1")
	require.NoError(t, err)

	total, err := f.svc.TotalPaid(ctx, "owner-1")
	require.NoError(t, err)
	require.Equal(t, 65.3, total)
}

func TestGeneratePayoutReference(t *testing.T) {
	ref, err := GeneratePayoutReference()
	require.NoError(t, err)
	require.Regexp(t, `^PAY-\d{8}-[0-9A-F]{6}$`, ref)
}

type failingSequence struct{}

func (failingSequence) NextBatchCode(context.Context) (string, error) {
	return "", errors.New("redis unavailable")
}

func (failingSequence) NextPayoutCode(context.Context, string) (string, error) {
	return "", errors.New("redis unavailable")
}

func TestSettleSurvivesSequenceOutage(t *testing.T) {
	db := testutil.NewTestDB(t, &post.TrackedPost{}, &Record{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	posts := post.NewService(post.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{DB: db, Node: node, Seq: failingSequence{}})

	ctx := context.Background()
	_, err = posts.Upsert(ctx, post.UpsertRequest{
		Platform: post.PlatformYouTube,
		OwnerID:  "owner-1",
		URL:      "https://youtube.com/a",
		Views:    12000,
	})
	require.NoError(t, err)
	_, err = posts.UpdateEarnings(ctx, post.PlatformYouTube, "https://youtube.com/a", 50.0)
	require.NoError(t, err)

	settlement, err := svc.Settle(ctx, "owner-1")
	require.NoError(t, err)
	require.NotEmpty(t, settlement.BatchID)
	require.Equal(t, 1, settlement.Records)

	rows, err := svc.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Regexp(t, `^PAY-\d{8}-`, rows[0].Reference)
}
