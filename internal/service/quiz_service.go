package service

import (
	"context"
	"skillquest_backend/internal/config"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/repository"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/logger"
	"skillquest_backend/pkg/monitoring"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type QuizResult struct {
	Week          int            `json:"week"`
	Step          int            `json:"step"`
	Score         int            `json:"score"`
	Total         int            `json:"total"`
	Passed        bool           `json:"passed"`
	AttemptNumber int            `json:"attemptNumber"`
	XP            *XPAwardResult `json:"xp"`
	Streak        *StreakResult  `json:"streak,omitempty"`
	NewBadges     []model.Badge  `json:"newBadges"`
}

type DiagnosticResult struct {
	Percentage float64     `json:"percentage"`
	Stage      model.Stage `json:"stage"`
}

type QuizService struct {
	QuizRepo     *repository.QuizBankRepository
	AttemptRepo  *repository.QuizAttemptRepository
	StudentRepo  *repository.StudentRepository
	Gamification *GamificationService
	Badges       *BadgeService
	Recommender  *RecommendationService
	Now          func() time.Time
}

func NewQuizService(
	quizRepo *repository.QuizBankRepository,
	attemptRepo *repository.QuizAttemptRepository,
	studentRepo *repository.StudentRepository,
	gamification *GamificationService,
	badges *BadgeService,
	recommender *RecommendationService,
) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		AttemptRepo:  attemptRepo,
		StudentRepo:  studentRepo,
		Gamification: gamification,
		Badges:       badges,
		Recommender:  recommender,
		Now:          time.Now,
	}
}

// GetQuiz 返回步骤测验题目，答案不会序列化给客户端
func (s *QuizService) GetQuiz(ctx context.Context, week, step int) ([]model.QuizQuestion, error) {
	questions, err := s.QuizRepo.FindByWeekStep(ctx, week, step)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizNotFound
	}
	return questions, nil
}

// Submit 评分并追加答题记录。首次通过某步骤才发 XP，通过即计为当天的学习活动。
// 尝试次数取已有记录数 +1，同一学生并发提交可能得到相同的次数。
func (s *QuizService) Submit(ctx context.Context, studentID uint, week, step int, answers []int) (*QuizResult, error) {
	if _, err := s.StudentRepo.FindByID(ctx, studentID); err != nil {
		return nil, err
	}

	questions, err := s.GetQuiz(ctx, week, step)
	if err != nil {
		return nil, err
	}
	if len(answers) != len(questions) {
		return nil, util.ErrInvalidAnswers
	}

	score := 0
	for i, q := range questions {
		if answers[i] == q.Answer {
			score++
		}
	}
	settings := s.Gamification.Settings()
	passed := float64(score)/float64(len(questions)) >= settings.PassThreshold

	alreadyPassed, err := s.AttemptRepo.HasPassedStep(ctx, studentID, week, step)
	if err != nil {
		return nil, err
	}
	previous, err := s.AttemptRepo.CountForStep(ctx, studentID, week, step)
	if err != nil {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		StudentID:     studentID,
		Week:          week,
		Step:          step,
		AttemptNumber: int(previous) + 1,
		Score:         score,
		Total:         len(questions),
		Passed:        passed,
		AttemptedAt:   s.Now().UTC(),
	}
	if err := s.AttemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}
	monitoring.QuizSubmissions.WithLabelValues(strconv.FormatBool(passed)).Inc()

	result := &QuizResult{
		Week:          week,
		Step:          step,
		Score:         score,
		Total:         len(questions),
		Passed:        passed,
		AttemptNumber: attempt.AttemptNumber,
		NewBadges:     []model.Badge{},
	}

	if passed {
		if !alreadyPassed {
			amount := stepXP(settings, attempt.AttemptNumber)
			result.XP, err = s.Gamification.AwardXP(ctx, studentID, amount)
			if err != nil {
				return nil, err
			}
		}

		result.Streak, err = s.Gamification.UpdateStreak(ctx, studentID)
		if err != nil {
			return nil, err
		}

		badges, err := s.Badges.Evaluate(ctx, studentID)
		if err != nil {
			logger.Log.Warn("badge evaluation failed", zap.Uint("student_id", studentID), zap.Error(err))
		}
		result.NewBadges = append(result.NewBadges, badges...)
	}

	s.sendFeedback(QuizFeedback{
		StudentID:     studentID,
		Week:          week,
		Step:          step,
		Passed:        passed,
		ScoreRatio:    float64(score) / float64(len(questions)),
		AttemptNumber: attempt.AttemptNumber,
	})

	return result, nil
}

func stepXP(settings config.GamificationConfig, attemptNumber int) int {
	xp := settings.StepPassXP
	if attemptNumber == 1 {
		xp += settings.FirstTryBonusXP
	}
	return xp
}

func (s *QuizService) sendFeedback(fb QuizFeedback) {
	if !s.Recommender.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.Recommender.Cfg.Timeout)
		defer cancel()
		_ = s.Recommender.SendFeedback(ctx, fb)
	}()
}

// StageForPercentage 诊断测验百分比对应的学习阶段
func StageForPercentage(pct float64) model.Stage {
	switch {
	case pct < 40:
		return model.StageBeginner
	case pct < 75:
		return model.StageIntermediate
	default:
		return model.StageExpert
	}
}

// SubmitDiagnostic 根据诊断得分设置学习阶段，不影响 XP 和等级
func (s *QuizService) SubmitDiagnostic(ctx context.Context, studentID uint, score, total int) (*DiagnosticResult, error) {
	if total <= 0 || score < 0 || score > total {
		return nil, util.ErrInvalidDiagnostic
	}

	pct := float64(score) / float64(total) * 100
	stage := StageForPercentage(pct)
	if err := s.StudentRepo.UpdateStage(ctx, studentID, stage); err != nil {
		return nil, err
	}

	logger.Log.Info("diagnostic stage assigned", zap.Uint("student_id", studentID), zap.String("stage", string(stage)))
	return &DiagnosticResult{Percentage: pct, Stage: stage}, nil
}
