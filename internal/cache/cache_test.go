package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/visabulletin/internal/model"
)

func newTestCache(t *testing.T) (*RowCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, time.Minute), mr
}

func TestRowCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	date := "2019-05-01"
	days := 30
	rows := []model.RawBulletinRow{{
		BulletinMonth: "2024-01-01",
		CategoryCode:  "EB2",
		RegionCode:    model.RegionChina,
		TableType:     model.TableA,
		PriorityDate:  &date,
		ChangeDays:    &days,
		ChangeStatus:  model.StatusAdvanced,
	}}

	require.NoError(t, c.Set(ctx, LatestKey(), rows))

	got, err := c.Get(ctx, LatestKey())
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestRowCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), LatestKey())
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRowCache_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, LatestKey(), []model.RawBulletinRow{{CategoryCode: "EB1"}}))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, LatestKey())
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRowCache_Invalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	q := model.TrendQuery{CategoryCode: "EB2", RegionCode: model.RegionChina, TableType: model.TableA, Months: 12}
	require.NoError(t, c.Set(ctx, LatestKey(), nil))
	require.NoError(t, c.Set(ctx, TrendKey(q), nil))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists(LatestKey()))
	assert.False(t, mr.Exists(TrendKey(q)))
	assert.True(t, mr.Exists("unrelated"))
}

func TestTrendKey(t *testing.T) {
	q := model.TrendQuery{CategoryCode: "F2A", RegionCode: model.RegionRestOfWorld, TableType: model.TableB, Months: 24}
	assert.Equal(t, "visabulletin:trend:F2A:rw:B:24", TrendKey(q))
}
