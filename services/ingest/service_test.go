package ingest

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clipbounty/services/post"
	"clipbounty/services/rate"
	"clipbounty/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fixture struct {
	svc   *Service
	posts *post.Service
	rates *rate.Service
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t, &rate.Definition{}, &post.TrackedPost{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	posts := post.NewService(post.ServiceParams{DB: db, Node: node})
	rates := rate.NewService(rate.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{Log: zap.NewNop(), Posts: posts, Rates: rates})

	return &fixture{svc: svc, posts: posts, rates: rates}
}

func TestIngestUpsertsBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, BatchRequest{
		OwnerID:  "owner-1",
		Platform: "youtube",
		Items: []Item{
			{VideoID: "a", URL: "https://youtube.com/watch?v=a", Views: 100},
			{VideoID: "b", URL: "https://youtube.com/watch?v=b", Views: 200},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Processed)
	require.Empty(t, result.Failed)

	posts, err := f.posts.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, posts, 2)
}

func TestIngestPartialFailure(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Ingest(context.Background(), BatchRequest{
		OwnerID:  "owner-1",
		Platform: "youtube",
		Items: []Item{
			{VideoID: "a", URL: "https://youtube.com/watch?v=a", Views: 100},
			{VideoID: "b", URL: "https://youtube.com/watch?v=b", Views: 200, Platform: "myspace"},
			{VideoID: "c", URL: "https://youtube.com/watch?v=c", Views: 300},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Processed)
	require.Len(t, result.Failed, 1)
	require.Equal(t, 1, result.Failed[0].Index)
}

func TestIngestRecomputesEarningsInline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rates.Upsert(ctx, rate.UpsertRequest{
		Key:           rate.StandardKey,
		Kind:          rate.KindProportional,
		AmountPer1000: 0.60,
	})
	require.NoError(t, err)

	_, err = f.svc.Ingest(ctx, BatchRequest{
		OwnerID:  "owner-1",
		Platform: "youtube",
		Items: []Item{
			{VideoID: "a", URL: "https://youtube.com/watch?v=a", Views: 25500},
		},
	})
	require.NoError(t, err)

	p, err := f.posts.Get(ctx, post.PlatformYouTube, "https://youtube.com/watch?v=a")
	require.NoError(t, err)
	require.Equal(t, 15.3000, p.FinalEarnedUSD)
}

func TestIngestWithoutRateLeavesEarningsAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, BatchRequest{
		OwnerID:  "owner-1",
		Platform: "youtube",
		Items: []Item{
			{VideoID: "a", URL: "https://youtube.com/watch?v=a", Views: 25500},
		},
	})
	require.NoError(t, err)

	p, err := f.posts.Get(ctx, post.PlatformYouTube, "https://youtube.com/watch?v=a")
	require.NoError(t, err)
	require.Equal(t, 0.0, p.FinalEarnedUSD)
}

func TestIngestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, BatchRequest{Platform: "youtube"})
	require.Error(t, err)

	result, err := f.svc.Ingest(ctx, BatchRequest{OwnerID: "owner-1", Platform: "youtube"})
	require.NoError(t, err)
	require.Equal(t, 0, result.Processed)
}

func TestIngestBatchLimit(t *testing.T) {
	f := newFixture(t)
	f.svc.maxBatchSize = 2

	_, err := f.svc.Ingest(context.Background(), BatchRequest{
		OwnerID:  "owner-1",
		Platform: "youtube",
		Items: []Item{
			{URL: "https://youtube.com/watch?v=a"},
			{URL: "https://youtube.com/watch?v=b"},
			{URL: "https://youtube.com/watch?v=c"},
		},
	})
	require.Error(t, err)
}
