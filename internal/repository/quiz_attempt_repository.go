package repository

import (
	"context"
	"skillquest_backend/internal/model"
	"skillquest_backend/pkg/database"
	"time"

	"gorm.io/gorm"
)

// QuizAttemptRepository 答题记录只追加，不提供更新接口
type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) Create(ctx context.Context, attempt *model.QuizAttempt) error {
	return database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Create(attempt).Error
	})
}

func (r *QuizAttemptRepository) CountForStep(ctx context.Context, studentID uint, week, step int) (int64, error) {
	var count int64
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
			Where("student_id = ? AND week = ? AND step = ?", studentID, week, step).
			Count(&count).Error
	})
	return count, err
}

func (r *QuizAttemptRepository) HasPassedStep(ctx context.Context, studentID uint, week, step int) (bool, error) {
	var count int64
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
			Where("student_id = ? AND week = ? AND step = ? AND passed = ?", studentID, week, step, true).
			Count(&count).Error
	})
	return count > 0, err
}

// CountCompletedSteps 统计 [from, to) 内通过的不同步骤数；from/to 为零值时不限时间
func (r *QuizAttemptRepository) CountCompletedSteps(ctx context.Context, studentID uint, from, to time.Time) (int64, error) {
	var count int64
	err := database.WithRetry(ctx, func() error {
		sub := r.passedQuery(ctx, studentID, from, to).
			Select("week, step").
			Group("week, step")
		return r.DB.WithContext(ctx).Table("(?) AS completed", sub).Count(&count).Error
	})
	return count, err
}

// CountFirstTryPasses 统计 [from, to) 内第一次提交就通过的步骤数
func (r *QuizAttemptRepository) CountFirstTryPasses(ctx context.Context, studentID uint, from, to time.Time) (int64, error) {
	var count int64
	err := database.WithRetry(ctx, func() error {
		return r.passedQuery(ctx, studentID, from, to).
			Where("attempt_number = ?", 1).
			Count(&count).Error
	})
	return count, err
}

func (r *QuizAttemptRepository) passedQuery(ctx context.Context, studentID uint, from, to time.Time) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("student_id = ? AND passed = ?", studentID, true)
	if !from.IsZero() {
		q = q.Where("attempted_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("attempted_at < ?", to)
	}
	return q
}

// AttemptStats 推荐服务使用的聚合特征
type AttemptStats struct {
	TotalAttempts  int64
	PassedAttempts int64
	AvgScoreRatio  float64
	LastAttemptAt  *time.Time
}

func (r *QuizAttemptRepository) Stats(ctx context.Context, studentID uint) (*AttemptStats, error) {
	var row struct {
		TotalAttempts  int64
		PassedAttempts int64
		AvgScoreRatio  *float64
	}
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
			Select(
				"COUNT(*) AS total_attempts, "+
					"COALESCE(SUM(CASE WHEN passed = ? THEN 1 ELSE 0 END), 0) AS passed_attempts, "+
					"AVG(CASE WHEN total > 0 THEN score * 1.0 / total ELSE 0 END) AS avg_score_ratio", true).
			Where("student_id = ?", studentID).
			Scan(&row).Error
	})
	if err != nil {
		return nil, err
	}

	stats := &AttemptStats{
		TotalAttempts:  row.TotalAttempts,
		PassedAttempts: row.PassedAttempts,
	}
	if row.AvgScoreRatio != nil {
		stats.AvgScoreRatio = *row.AvgScoreRatio
	}

	var last model.QuizAttempt
	err = database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Where("student_id = ?", studentID).
			Order("attempted_at DESC").Limit(1).Find(&last).Error
	})
	if err != nil {
		return nil, err
	}
	if last.ID != 0 {
		at := last.AttemptedAt
		stats.LastAttemptAt = &at
	}
	return stats, nil
}
