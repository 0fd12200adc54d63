package service

import (
	"context"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/progression"
	"skillquest_backend/internal/repository"
	"skillquest_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

type BadgeService struct {
	BadgeRepo   *repository.BadgeRepository
	StudentRepo *repository.StudentRepository
	AttemptRepo *repository.QuizAttemptRepository
	Now         func() time.Time
}

func NewBadgeService(badgeRepo *repository.BadgeRepository, studentRepo *repository.StudentRepository, attemptRepo *repository.QuizAttemptRepository) *BadgeService {
	return &BadgeService{
		BadgeRepo:   badgeRepo,
		StudentRepo: studentRepo,
		AttemptRepo: attemptRepo,
		Now:         time.Now,
	}
}

func (s *BadgeService) List(ctx context.Context, studentID uint) ([]model.Badge, error) {
	if _, err := s.StudentRepo.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.BadgeRepo.FindByStudentID(ctx, studentID)
}

// Evaluate 按当前进度颁发新徽章，只返回本次新获得的
func (s *BadgeService) Evaluate(ctx context.Context, studentID uint) ([]model.Badge, error) {
	student, err := s.StudentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	steps, err := s.AttemptRepo.CountCompletedSteps(ctx, studentID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	snapshot := progression.Snapshot{
		Level:          progression.LevelFromXP(student.TotalXP),
		CurrentStreak:  student.CurrentStreak,
		StepsCompleted: int(steps),
	}

	earned := []model.Badge{}
	now := s.Now().UTC()
	for _, def := range progression.QualifiedBadges(snapshot) {
		badge := model.Badge{
			StudentID:   studentID,
			Code:        def.Code,
			Name:        def.Name,
			Description: def.Description,
			EarnedAt:    now,
		}
		inserted, err := s.BadgeRepo.Award(ctx, &badge)
		if err != nil {
			return earned, err
		}
		if inserted {
			logger.Log.Info("badge earned", zap.Uint("student_id", studentID), zap.String("badge", def.Code))
			earned = append(earned, badge)
		}
	}
	return earned, nil
}
