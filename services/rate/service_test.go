package rate

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
	db := testutil.NewTestDB(t, &Definition{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func TestUpsertCreatesFlatRate(t *testing.T) {
	svc := newTestService(t)

	def, err := svc.Upsert(context.Background(), UpsertRequest{
		Key:       "LaunchClips",
		Kind:      KindFlat,
		AmountUSD: 5.00,
		PerViews:  1000,
	})
	require.NoError(t, err)
	require.Equal(t, "launchclips", def.Key)
	require.Equal(t, KindFlat, def.Kind)
}

func TestUpsertReplacesExisting(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{Key: "promo", Kind: KindFlat, AmountUSD: 5, PerViews: 1000})
	require.NoError(t, err)

	def, err := svc.Upsert(ctx, UpsertRequest{Key: "promo", Kind: KindProportional, AmountPer1000: 0.60})
	require.NoError(t, err)
	require.Equal(t, KindProportional, def.Kind)
	require.Equal(t, 0.60, def.AmountPer1000)

	defs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
}

func TestUpsertRejectsZeroPerViews(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upsert(context.Background(), UpsertRequest{
		Key:       "broken",
		Kind:      KindFlat,
		AmountUSD: 5.00,
		PerViews:  0,
	})
	require.Error(t, err)

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusBadRequest, be.Status())
}

func TestUpsertRejectsUnknownKind(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upsert(context.Background(), UpsertRequest{Key: "x", Kind: Kind("HOURLY")})
	require.Error(t, err)
}

func TestGetNormalizesKey(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{Key: "promo", Kind: KindFlat, AmountUSD: 5, PerViews: 1000})
	require.NoError(t, err)

	def, err := svc.Get(ctx, "  PROMO  ")
	require.NoError(t, err)
	require.Equal(t, "promo", def.Key)
}

func TestGetMissingKey(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "nope")
	require.Error(t, err)

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestApplicableFallsBackToStandard(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{Key: StandardKey, Kind: KindProportional, AmountPer1000: 0.60})
	require.NoError(t, err)

	def, err := svc.Applicable(ctx, false, "")
	require.NoError(t, err)
	require.NotNil(t, def)
	require.Equal(t, StandardKey, def.Key)

	// bounty post with an unregistered tag resolves to nothing, not standard
	def, err = svc.Applicable(ctx, true, "mystery")
	require.NoError(t, err)
	require.Nil(t, def)

	// same for a blank tag: never pay a bounty at the standard rate
	def, err = svc.Applicable(ctx, true, "   ")
	require.NoError(t, err)
	require.Nil(t, def)
}

func TestDeleteRate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertRequest{Key: "promo", Kind: KindFlat, AmountUSD: 5, PerViews: 1000})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "PROMO"))

	_, err = svc.Get(ctx, "promo")
	require.Error(t, err)

	require.Error(t, svc.Delete(ctx, "promo"))
}
