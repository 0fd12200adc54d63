package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*LeaderboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLeaderboardCache(rdb), mr
}

func TestLeaderboardCache_TopOrdersByXP(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetXP(ctx, 1, 40))
	require.NoError(t, cache.SetXP(ctx, 2, 900))
	require.NoError(t, cache.SetXP(ctx, 3, 150))
	require.NoError(t, cache.SetXP(ctx, 1, 60))

	top, err := cache.Top(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []LeaderboardEntry{{StudentID: 2, XP: 900}, {StudentID: 3, XP: 150}}, top)
	assert.Equal(t, leaderboardTTL, mr.TTL(leaderboardKey))
}

func TestLeaderboardCache_CoveredTracksWarm(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()

	// 只有零散的 SetXP 不算回填
	require.NoError(t, cache.SetXP(ctx, 7, 10))
	covered, err := cache.Covered(ctx)
	require.NoError(t, err)
	assert.Zero(t, covered)

	require.NoError(t, cache.Warm(ctx, []LeaderboardEntry{{StudentID: 1, XP: 5000}, {StudentID: 7, XP: 10}}, 5))
	covered, err = cache.Covered(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, covered)

	top, err := cache.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, uint(1), top[0].StudentID)

	// 删除成员后集合可能缺人，必须重新回填
	require.NoError(t, cache.Remove(ctx, 1))
	covered, err = cache.Covered(ctx)
	require.NoError(t, err)
	assert.Zero(t, covered)

	require.NoError(t, cache.Warm(ctx, nil, 3))
	mr.FlushAll()
	covered, err = cache.Covered(ctx)
	require.NoError(t, err)
	assert.Zero(t, covered)
}
