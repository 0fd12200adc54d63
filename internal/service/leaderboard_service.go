package service

import (
	"context"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/progression"
	"skillquest_backend/internal/repository"
	"skillquest_backend/pkg/logger"

	"go.uber.org/zap"
)

const maxLeaderboardSize = 100

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	StudentID  uint   `json:"studentId"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	TotalXP    int    `json:"totalXP"`
	Level      int    `json:"level"`
	LevelTitle string `json:"levelTitle"`
}

// LeaderboardService 优先读 Redis 有序集合，缓存未完整回填时回落到数据库并回填缓存
type LeaderboardService struct {
	StudentRepo *repository.StudentRepository
	Cache       *repository.LeaderboardCache
}

func NewLeaderboardService(studentRepo *repository.StudentRepository, cache *repository.LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{StudentRepo: studentRepo, Cache: cache}
}

func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	if s.Cache.Enabled() {
		entries, ok, err := s.topFromCache(ctx, limit)
		if err != nil {
			logger.Log.Warn("leaderboard cache read failed", zap.Error(err))
		} else if ok {
			return entries, nil
		}
	}

	students, err := s.StudentRepo.FindTopByXP(ctx, limit)
	if err != nil {
		return nil, err
	}

	warm := make([]repository.LeaderboardEntry, 0, len(students))
	for _, st := range students {
		warm = append(warm, repository.LeaderboardEntry{StudentID: st.ID, XP: st.TotalXP})
	}
	if err := s.Cache.Warm(ctx, warm, limit); err != nil {
		logger.Log.Warn("leaderboard cache warm failed", zap.Error(err))
	}

	return rank(students), nil
}

// topFromCache 只有回填覆盖了 limit 名时才信任缓存，零散的 SetXP 不能代表完整排名
func (s *LeaderboardService) topFromCache(ctx context.Context, limit int) ([]LeaderboardEntry, bool, error) {
	covered, err := s.Cache.Covered(ctx)
	if err != nil || covered < limit {
		return nil, false, err
	}
	cached, err := s.Cache.Top(ctx, limit)
	if err != nil {
		return nil, false, err
	}
	// 从未获得 XP 的学生不在集合里，不满一页时交给数据库
	if len(cached) < limit {
		return nil, false, nil
	}
	entries, err := s.fromCache(ctx, cached)
	if err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (s *LeaderboardService) fromCache(ctx context.Context, cached []repository.LeaderboardEntry) ([]LeaderboardEntry, error) {
	ids := make([]uint, 0, len(cached))
	for _, c := range cached {
		ids = append(ids, c.StudentID)
	}
	students, err := s.StudentRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]model.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	ordered := make([]model.Student, 0, len(cached))
	for _, c := range cached {
		// 已删除的账号可能还留在缓存里
		if st, ok := byID[c.StudentID]; ok {
			ordered = append(ordered, st)
		}
	}
	return rank(ordered), nil
}

func rank(students []model.Student) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(students))
	for i, st := range students {
		level := progression.LevelFromXP(st.TotalXP)
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			StudentID:  st.ID,
			Name:       st.Name,
			Avatar:     st.Avatar,
			TotalXP:    st.TotalXP,
			Level:      level,
			LevelTitle: progression.TitleForLevel(level),
		})
	}
	return entries
}
