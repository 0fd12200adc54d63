package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"skillquest_backend/internal/model"
	"skillquest_backend/internal/progression"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func createStudent(t *testing.T, repo *StudentRepository, email string) *model.Student {
	t.Helper()
	s := &model.Student{Name: "Test", Email: email, Password: "x", Role: model.RoleStudent, Stage: model.StageBeginner}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestStudentRepository_FindByIDNotFound(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	_, err = repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}

func TestStudentRepository_SwapXPRequiresCurrentVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(newTestDB(t))
	s := createStudent(t, repo, "cas@example.com")

	ok, err := repo.SwapXP(ctx, s.ID, s.Version, 150, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// 旧版本号写入失败，不覆盖
	ok, err = repo.SwapXP(ctx, s.ID, s.Version, 10, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, got.TotalXP)
	assert.Equal(t, 1, got.CurrentLevel)
	assert.Equal(t, s.Version+1, got.Version)
}

func TestStudentRepository_SwapStreak(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(newTestDB(t))
	s := createStudent(t, repo, "streak@example.com")

	today := progression.DayUTC(time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC))
	ok, err := repo.SwapStreak(ctx, s.ID, s.Version, progression.StreakState{Current: 2, Longest: 6, LastActivity: &today})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentStreak)
	assert.Equal(t, 6, got.LongestStreak)
	require.NotNil(t, got.LastActivityDate)
	assert.True(t, today.Equal(*got.LastActivityDate))
}

func TestStudentRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	students := NewStudentRepository(db)
	attempts := NewQuizAttemptRepository(db)
	badges := NewBadgeRepository(db)

	s := createStudent(t, students, "gone@example.com")
	require.NoError(t, attempts.Create(ctx, &model.QuizAttempt{StudentID: s.ID, Week: 1, Step: 1, AttemptNumber: 1, Score: 3, Total: 3, Passed: true, AttemptedAt: time.Now().UTC()}))
	_, err := badges.Award(ctx, &model.Badge{StudentID: s.ID, Code: "first_step", Name: "First Steps", EarnedAt: time.Now().UTC()})
	require.NoError(t, err)

	require.NoError(t, students.Delete(ctx, s.ID))

	_, err = students.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	n, err := attempts.CountForStep(ctx, s.ID, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	left, err := badges.FindByStudentID(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.ErrorIs(t, students.Delete(ctx, s.ID), util.ErrStudentNotFound)
}

func TestStudentRepository_UpdateStageUnknownStudent(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t))
	assert.ErrorIs(t, repo.UpdateStage(context.Background(), 99, model.StageExpert), util.ErrStudentNotFound)
}

func TestStudentRepository_FindTopByXP(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(newTestDB(t))
	a := createStudent(t, repo, "a@example.com")
	b := createStudent(t, repo, "b@example.com")
	c := createStudent(t, repo, "c@example.com")

	for s, xp := range map[*model.Student]int{a: 100, b: 900, c: 400} {
		ok, err := repo.SwapXP(ctx, s.ID, s.Version, xp, progression.LevelFromXP(xp))
		require.NoError(t, err)
		require.True(t, ok)
	}

	top, err := repo.FindTopByXP(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b.ID, top[0].ID)
	assert.Equal(t, c.ID, top[1].ID)
}

func TestQuizAttemptRepository_DailyAggregates(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	students := NewStudentRepository(db)
	repo := NewQuizAttemptRepository(db)
	s := createStudent(t, students, "agg@example.com")

	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	rows := []model.QuizAttempt{
		// 昨天通过的不计入今天
		{StudentID: s.ID, Week: 1, Step: 1, AttemptNumber: 1, Score: 3, Total: 3, Passed: true, AttemptedAt: yesterday.Add(10 * time.Hour)},
		// 今天：步骤 2 第二次才通过，且通过两次
		{StudentID: s.ID, Week: 1, Step: 2, AttemptNumber: 1, Score: 0, Total: 2, Passed: false, AttemptedAt: today.Add(8 * time.Hour)},
		{StudentID: s.ID, Week: 1, Step: 2, AttemptNumber: 2, Score: 2, Total: 2, Passed: true, AttemptedAt: today.Add(9 * time.Hour)},
		{StudentID: s.ID, Week: 1, Step: 2, AttemptNumber: 3, Score: 2, Total: 2, Passed: true, AttemptedAt: today.Add(10 * time.Hour)},
	}
	for i := range rows {
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}

	from, to := today, today.AddDate(0, 0, 1)

	completed, err := repo.CountCompletedSteps(ctx, s.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)

	firstTry, err := repo.CountFirstTryPasses(ctx, s.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(0), firstTry)

	allTime, err := repo.CountCompletedSteps(ctx, s.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), allTime)

	require.NoError(t, repo.Create(ctx, &model.QuizAttempt{StudentID: s.ID, Week: 2, Step: 1, AttemptNumber: 1, Score: 2, Total: 2, Passed: true, AttemptedAt: today.Add(11 * time.Hour)}))
	firstTry, err = repo.CountFirstTryPasses(ctx, s.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), firstTry)

	passed, err := repo.HasPassedStep(ctx, s.ID, 1, 2)
	require.NoError(t, err)
	assert.True(t, passed)

	count, err := repo.CountForStep(ctx, s.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestQuizAttemptRepository_Stats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := createStudent(t, NewStudentRepository(db), "stats@example.com")
	repo := NewQuizAttemptRepository(db)

	empty, err := repo.Stats(ctx, s.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalAttempts)
	assert.Nil(t, empty.LastAttemptAt)

	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &model.QuizAttempt{StudentID: s.ID, Week: 1, Step: 1, AttemptNumber: 1, Score: 1, Total: 2, Passed: false, AttemptedAt: at}))
	require.NoError(t, repo.Create(ctx, &model.QuizAttempt{StudentID: s.ID, Week: 1, Step: 1, AttemptNumber: 2, Score: 2, Total: 2, Passed: true, AttemptedAt: at.Add(time.Hour)}))

	stats, err := repo.Stats(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalAttempts)
	assert.Equal(t, int64(1), stats.PassedAttempts)
	assert.InDelta(t, 0.75, stats.AvgScoreRatio, 1e-9)
	require.NotNil(t, stats.LastAttemptAt)
	assert.True(t, at.Add(time.Hour).Equal(*stats.LastAttemptAt))
}

func TestBadgeRepository_AwardIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := createStudent(t, NewStudentRepository(db), "badge@example.com")
	repo := NewBadgeRepository(db)

	inserted, err := repo.Award(ctx, &model.Badge{StudentID: s.ID, Code: "streak_3", Name: "Getting Started", EarnedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Award(ctx, &model.Badge{StudentID: s.ID, Code: "streak_3", Name: "Getting Started", EarnedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, inserted)

	badges, err := repo.FindByStudentID(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, badges, 1)
}

func TestQuizBankRepository_SeededQuestions(t *testing.T) {
	repo := NewQuizBankRepository(newTestDB(t))

	questions, err := repo.FindByWeekStep(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, 1, questions[0].Position)
	assert.Len(t, questions[0].Options, 4)

	none, err := repo.FindByWeekStep(context.Background(), 9, 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLeaderboardCache_DisabledIsNoop(t *testing.T) {
	cache := NewLeaderboardCache(nil)
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	assert.NoError(t, cache.SetXP(ctx, 1, 100))
	assert.NoError(t, cache.Remove(ctx, 1))
	assert.NoError(t, cache.Warm(ctx, []LeaderboardEntry{{StudentID: 1, XP: 100}}, 10))
	top, err := cache.Top(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, top)
	covered, err := cache.Covered(ctx)
	assert.NoError(t, err)
	assert.Zero(t, covered)
}
