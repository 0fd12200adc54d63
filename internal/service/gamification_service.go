package service

import (
	"context"
	"math"
	"skillquest_backend/internal/config"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/progression"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/logger"
	"skillquest_backend/pkg/monitoring"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StudentStore 进度引擎对学生记录的读写，写操作都是基于版本号的 CAS
type StudentStore interface {
	FindByID(ctx context.Context, id uint) (*model.Student, error)
	SwapXP(ctx context.Context, id uint, version, totalXP, level int) (bool, error)
	SwapStreak(ctx context.Context, id uint, version int, s progression.StreakState) (bool, error)
	SwapHealed(ctx context.Context, id uint, version, currentStreak, level int) (bool, error)
}

// ActivityCounter 按时间区间统计答题记录
type ActivityCounter interface {
	CountCompletedSteps(ctx context.Context, studentID uint, from, to time.Time) (int64, error)
	CountFirstTryPasses(ctx context.Context, studentID uint, from, to time.Time) (int64, error)
}

// XPListener 在 XP 写入成功后收到学生的新总 XP
type XPListener interface {
	SetXP(ctx context.Context, studentID uint, xp int) error
}

type Dashboard struct {
	CurrentLevel    int         `json:"currentLevel"`
	TotalXP         int         `json:"totalXP"`
	CurrentLevelXP  int         `json:"currentLevelXP"`
	NextLevelXP     int         `json:"nextLevelXP"`
	ProgressPercent float64     `json:"progressPercent"`
	CurrentStreak   int         `json:"currentStreak"`
	LongestStreak   int         `json:"longestStreak"`
	LevelTitle      string      `json:"levelTitle"`
	Stage           model.Stage `json:"stage"`
}

type XPAwardResult struct {
	PreviousXP    int    `json:"previousXP"`
	NewXP         int    `json:"newXP"`
	XPGained      int    `json:"xpGained"`
	PreviousLevel int    `json:"previousLevel"`
	NewLevel      int    `json:"newLevel"`
	LeveledUp     bool   `json:"leveledUp"`
	LevelTitle    string `json:"levelTitle"`
}

type StreakResult struct {
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
	Change        string `json:"change"`
}

type DailyGoal struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	XPReward  int    `json:"xpReward"`
	Completed bool   `json:"completed"`
}

type DailyGoals struct {
	Date           string      `json:"date"`
	Goals          []DailyGoal `json:"goals"`
	CompletedCount int         `json:"completedCount"`
}

const (
	GoalCompleteStep = "complete_step"
	GoalFirstTry     = "first_try"
	GoalKeepStreak   = "keep_streak"
)

// GamificationService 进度引擎：等级、连续学习天数、仪表盘、XP 发放和每日目标
type GamificationService struct {
	Students    StudentStore
	Attempts    ActivityCounter
	Leaderboard XPListener
	Now         func() time.Time

	settings atomic.Pointer[config.GamificationConfig]
}

func NewGamificationService(students StudentStore, attempts ActivityCounter, leaderboard XPListener, cfg config.GamificationConfig) *GamificationService {
	s := &GamificationService{
		Students:    students,
		Attempts:    attempts,
		Leaderboard: leaderboard,
		Now:         time.Now,
	}
	s.UpdateSettings(cfg)
	return s
}

// UpdateSettings 配置热更新
func (s *GamificationService) UpdateSettings(cfg config.GamificationConfig) {
	if cfg.MaxCASRetries < 1 {
		cfg.MaxCASRetries = 1
	}
	s.settings.Store(&cfg)
}

func (s *GamificationService) Settings() config.GamificationConfig {
	return *s.settings.Load()
}

func (s *GamificationService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// casLoop 读取最新记录后调用 apply；apply 返回 false 表示版本冲突，重新读取再试
func (s *GamificationService) casLoop(ctx context.Context, op string, studentID uint, apply func(st *model.Student) (bool, error)) error {
	retries := s.Settings().MaxCASRetries
	for attempt := 1; attempt <= retries; attempt++ {
		st, err := s.Students.FindByID(ctx, studentID)
		if err != nil {
			return err
		}

		done, err := apply(st)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		monitoring.CASConflicts.WithLabelValues(op).Inc()
		logger.Log.Debug("student record changed concurrently, retrying",
			zap.String("op", op),
			zap.Uint("student_id", studentID),
			zap.Int("attempt", attempt),
		)
	}

	logger.Log.Warn("giving up after repeated concurrent updates",
		zap.String("op", op),
		zap.Uint("student_id", studentID),
	)
	return util.ErrConcurrentUpdate
}

// UpdateStreak 记录一次学习活动；同一天内重复调用不写库
func (s *GamificationService) UpdateStreak(ctx context.Context, studentID uint) (*StreakResult, error) {
	now := s.now()

	var result *StreakResult
	err := s.casLoop(ctx, "streak", studentID, func(st *model.Student) (bool, error) {
		prev := progression.StreakState{
			Current:      st.CurrentStreak,
			Longest:      st.LongestStreak,
			LastActivity: st.LastActivityDate,
		}
		next, change := progression.NextStreak(prev, now)
		if change == progression.StreakUnchanged {
			result = &StreakResult{CurrentStreak: prev.Current, LongestStreak: prev.Longest, Change: change.String()}
			return true, nil
		}

		ok, err := s.Students.SwapStreak(ctx, st.ID, st.Version, next)
		if err != nil || !ok {
			return ok, err
		}

		monitoring.StreakChanges.WithLabelValues(change.String()).Inc()
		logger.Log.Info("streak updated",
			zap.Uint("student_id", st.ID),
			zap.Stringer("change", change),
			zap.Int("current_streak", next.Current),
			zap.Int("longest_streak", next.Longest),
		)
		result = &StreakResult{CurrentStreak: next.Current, LongestStreak: next.Longest, Change: change.String()}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetDashboard 汇总进度；顺带修正过期的连续天数和冗余的等级字段，记录一致时不写库
func (s *GamificationService) GetDashboard(ctx context.Context, studentID uint) (*Dashboard, error) {
	now := s.now()

	var dashboard *Dashboard
	err := s.casLoop(ctx, "dashboard", studentID, func(st *model.Student) (bool, error) {
		state := progression.StreakState{
			Current:      st.CurrentStreak,
			Longest:      st.LongestStreak,
			LastActivity: st.LastActivityDate,
		}
		expired := progression.StreakExpired(state, now)
		level := progression.LevelFromXP(st.TotalXP)

		if expired || level != st.CurrentLevel {
			streak := st.CurrentStreak
			if expired {
				streak = 0
			}
			ok, err := s.Students.SwapHealed(ctx, st.ID, st.Version, streak, level)
			if err != nil || !ok {
				return ok, err
			}

			if expired {
				monitoring.StreakHeals.Inc()
				logger.Log.Info("expired streak reset on read",
					zap.Uint("student_id", st.ID),
					zap.Int("previous_streak", st.CurrentStreak),
				)
			}
			if level != st.CurrentLevel {
				logger.Log.Warn("stored level out of sync with xp, corrected",
					zap.Uint("student_id", st.ID),
					zap.Int("stored_level", st.CurrentLevel),
					zap.Int("level", level),
				)
			}
			st.CurrentStreak = streak
			st.CurrentLevel = level
		}

		dashboard = buildDashboard(st)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

func buildDashboard(st *model.Student) *Dashboard {
	p := progression.ProgressForXP(st.TotalXP)
	return &Dashboard{
		CurrentLevel:    p.Level,
		TotalXP:         st.TotalXP,
		CurrentLevelXP:  p.CurrentLevelXP,
		NextLevelXP:     p.NextLevelXP,
		ProgressPercent: p.Percent,
		CurrentStreak:   st.CurrentStreak,
		LongestStreak:   st.LongestStreak,
		LevelTitle:      progression.TitleForLevel(p.Level),
		Stage:           st.Stage,
	}
}

// AwardXP 增加 XP 并同步等级
func (s *GamificationService) AwardXP(ctx context.Context, studentID uint, amount int) (*XPAwardResult, error) {
	if amount <= 0 {
		return nil, util.ErrInvalidXPAmount
	}

	var result *XPAwardResult
	err := s.casLoop(ctx, "xp", studentID, func(st *model.Student) (bool, error) {
		if st.TotalXP > math.MaxInt32-amount {
			return false, util.ErrInvalidXPAmount
		}

		prevLevel := progression.LevelFromXP(st.TotalXP)
		newXP := st.TotalXP + amount
		newLevel := progression.LevelFromXP(newXP)

		ok, err := s.Students.SwapXP(ctx, st.ID, st.Version, newXP, newLevel)
		if err != nil || !ok {
			return ok, err
		}

		result = &XPAwardResult{
			PreviousXP:    st.TotalXP,
			NewXP:         newXP,
			XPGained:      amount,
			PreviousLevel: prevLevel,
			NewLevel:      newLevel,
			LeveledUp:     newLevel > prevLevel,
			LevelTitle:    progression.TitleForLevel(newLevel),
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.XPAwarded.Add(float64(amount))
	if result.LeveledUp {
		monitoring.LevelUps.Inc()
	}
	logger.Log.Info("xp awarded",
		zap.Uint("student_id", studentID),
		zap.Int("amount", amount),
		zap.Int("total_xp", result.NewXP),
		zap.Int("level", result.NewLevel),
		zap.Bool("leveled_up", result.LeveledUp),
	)

	if s.Leaderboard != nil {
		if err := s.Leaderboard.SetXP(ctx, studentID, result.NewXP); err != nil {
			logger.Log.Warn("leaderboard cache update failed", zap.Uint("student_id", studentID), zap.Error(err))
		}
	}
	return result, nil
}

// GetDailyGoals 按服务器 UTC 日期评估当天的三个目标
func (s *GamificationService) GetDailyGoals(ctx context.Context, studentID uint) (*DailyGoals, error) {
	now := s.now()

	st, err := s.Students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	from := progression.DayUTC(now)
	to := from.AddDate(0, 0, 1)

	completed, err := s.Attempts.CountCompletedSteps(ctx, studentID, from, to)
	if err != nil {
		return nil, err
	}
	firstTry, err := s.Attempts.CountFirstTryPasses(ctx, studentID, from, to)
	if err != nil {
		return nil, err
	}

	goals := []DailyGoal{
		{ID: GoalCompleteStep, Title: "Complete a learning step", XPReward: 50, Completed: completed > 0},
		{ID: GoalFirstTry, Title: "Ace a quiz on the first try", XPReward: 25, Completed: firstTry > 0},
		{ID: GoalKeepStreak, Title: "Keep your streak alive", XPReward: 10, Completed: progression.ActiveOn(st.LastActivityDate, now)},
	}

	out := &DailyGoals{Date: from.Format(util.DateFormat), Goals: goals}
	for _, g := range goals {
		if g.Completed {
			out.CompletedCount++
		}
	}
	return out, nil
}
