package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"skillquest_backend/internal/config"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/repository"
	"skillquest_backend/pkg/database"

	"github.com/stretchr/testify/require"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

type testEnv struct {
	clock        *clock
	students     *repository.StudentRepository
	attempts     *repository.QuizAttemptRepository
	badges       *repository.BadgeRepository
	gamification *GamificationService
	badgeSvc     *BadgeService
	quiz         *QuizService
}

func testGamificationConfig() config.GamificationConfig {
	return config.GamificationConfig{
		StepPassXP:                50,
		FirstTryBonusXP:           25,
		PassThreshold:             0.7,
		MaxCASRetries:             3,
		DashboardCountsAsActivity: true,
		LeaderboardSize:           10,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	clk := &clock{now: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)}
	env := &testEnv{
		clock:    clk,
		students: repository.NewStudentRepository(db),
		attempts: repository.NewQuizAttemptRepository(db),
		badges:   repository.NewBadgeRepository(db),
	}

	env.gamification = NewGamificationService(env.students, env.attempts, repository.NewLeaderboardCache(nil), testGamificationConfig())
	env.gamification.Now = clk.Now

	env.badgeSvc = NewBadgeService(env.badges, env.students, env.attempts)
	env.badgeSvc.Now = clk.Now

	env.quiz = NewQuizService(repository.NewQuizBankRepository(db), env.attempts, env.students, env.gamification, env.badgeSvc, nil)
	env.quiz.Now = clk.Now
	return env
}

func (e *testEnv) newStudent(t *testing.T, email string) *model.Student {
	t.Helper()
	s := &model.Student{Name: "Ada", Email: email, Password: "x", Role: model.RoleStudent, Stage: model.StageBeginner}
	require.NoError(t, e.students.Create(context.Background(), s))
	return s
}

func (e *testEnv) reload(t *testing.T, id uint) *model.Student {
	t.Helper()
	s, err := e.students.FindByID(context.Background(), id)
	require.NoError(t, err)
	return s
}
