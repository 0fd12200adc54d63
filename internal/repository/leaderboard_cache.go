package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	leaderboardKey = "skillquest:leaderboard:xp"
	// 记录最近一次全量回填覆盖的名次数
	leaderboardCoveredKey = "skillquest:leaderboard:covered"
	leaderboardTTL        = 24 * time.Hour
)

type LeaderboardEntry struct {
	StudentID uint
	XP        int
}

// LeaderboardCache 以有序集合缓存 XP 排行；Redis 为 nil 时所有方法都是空操作
type LeaderboardCache struct {
	Redis *redis.Client
}

func NewLeaderboardCache(rdb *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{Redis: rdb}
}

func (c *LeaderboardCache) Enabled() bool {
	return c != nil && c.Redis != nil
}

func (c *LeaderboardCache) SetXP(ctx context.Context, studentID uint, xp int) error {
	if !c.Enabled() {
		return nil
	}
	pipe := c.Redis.Pipeline()
	pipe.ZAdd(ctx, leaderboardKey, &redis.Z{Score: float64(xp), Member: strconv.FormatUint(uint64(studentID), 10)})
	pipe.Expire(ctx, leaderboardKey, leaderboardTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Remove 删除成员并作废回填标记，排在其后的学生可能不在集合里
func (c *LeaderboardCache) Remove(ctx context.Context, studentID uint) error {
	if !c.Enabled() {
		return nil
	}
	pipe := c.Redis.TxPipeline()
	pipe.ZRem(ctx, leaderboardKey, strconv.FormatUint(uint64(studentID), 10))
	pipe.Del(ctx, leaderboardCoveredKey)
	_, err := pipe.Exec(ctx)
	return err
}

// Covered 返回有序集合保证正确的前 N 名；没有回填过时为 0
func (c *LeaderboardCache) Covered(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	n, err := c.Redis.Get(ctx, leaderboardCoveredKey).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Top 返回前 limit 名；缓存为空时返回空切片
func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if !c.Enabled() {
		return nil, nil
	}
	zs, err := c.Redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{StudentID: uint(id), XP: int(z.Score)})
	}
	return entries, nil
}

// Warm 写入数据库查出的前 covered 名；entries 少于 covered 说明学生总数不足
func (c *LeaderboardCache) Warm(ctx context.Context, entries []LeaderboardEntry, covered int) error {
	if !c.Enabled() {
		return nil
	}
	pipe := c.Redis.TxPipeline()
	if len(entries) > 0 {
		members := make([]*redis.Z, 0, len(entries))
		for _, e := range entries {
			members = append(members, &redis.Z{Score: float64(e.XP), Member: strconv.FormatUint(uint64(e.StudentID), 10)})
		}
		pipe.ZAdd(ctx, leaderboardKey, members...)
		pipe.Expire(ctx, leaderboardKey, leaderboardTTL)
	}
	pipe.Set(ctx, leaderboardCoveredKey, covered, leaderboardTTL)
	_, err := pipe.Exec(ctx)
	return err
}
