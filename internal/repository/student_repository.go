package repository

import (
	"context"
	"errors"
	"fmt"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/progression"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/database"
	"time"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	return database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Create(student).Error
	})
}

func (r *StudentRepository) FindByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).First(&student, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find student %d: %w", id, err)
	}
	return &student, nil
}

func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	var student model.Student
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Where("email = ?", email).First(&student).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &student, nil
}

// compareAndSwap 仅当版本号未变时写入，返回是否写入成功
func (r *StudentRepository) compareAndSwap(ctx context.Context, id uint, version int, fields map[string]interface{}) (bool, error) {
	fields["version"] = gorm.Expr("version + 1")

	var affected int64
	err := database.WithRetry(ctx, func() error {
		res := r.DB.WithContext(ctx).
			Model(&model.Student{}).
			Where("id = ? AND version = ?", id, version).
			Updates(fields)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, fmt.Errorf("update student %d: %w", id, err)
	}
	return affected == 1, nil
}

// SwapXP 写入新的 XP 与等级
func (r *StudentRepository) SwapXP(ctx context.Context, id uint, version, totalXP, level int) (bool, error) {
	return r.compareAndSwap(ctx, id, version, map[string]interface{}{
		"total_xp":      totalXP,
		"current_level": level,
	})
}

// SwapStreak 在一次 UPDATE 中写入当前连续天数、最长连续天数和活动日期
func (r *StudentRepository) SwapStreak(ctx context.Context, id uint, version int, s progression.StreakState) (bool, error) {
	return r.compareAndSwap(ctx, id, version, map[string]interface{}{
		"current_streak":     s.Current,
		"longest_streak":     s.Longest,
		"last_activity_date": s.LastActivity,
	})
}

// SwapHealed 自愈读路径：清零过期的连续天数，并校正冗余的等级字段
func (r *StudentRepository) SwapHealed(ctx context.Context, id uint, version, currentStreak, level int) (bool, error) {
	return r.compareAndSwap(ctx, id, version, map[string]interface{}{
		"current_streak": currentStreak,
		"current_level":  level,
	})
}

func (r *StudentRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Model(&model.Student{}).Where("id = ?", id).
			UpdateColumn("last_login", at).Error
	})
}

func (r *StudentRepository) UpdateStage(ctx context.Context, id uint, stage model.Stage) error {
	var affected int64
	err := database.WithRetry(ctx, func() error {
		res := r.DB.WithContext(ctx).Model(&model.Student{}).Where("id = ?", id).Update("stage", stage)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		// MySQL 对值未变化的行返回 0，需要再确认记录是否存在
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *StudentRepository) UpdateAvatar(ctx context.Context, id uint, url string) error {
	return database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Model(&model.Student{}).Where("id = ?", id).Update("avatar", url).Error
	})
}

func (r *StudentRepository) FindTopByXP(ctx context.Context, limit int) ([]model.Student, error) {
	var students []model.Student
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Order("total_xp DESC").Order("id ASC").Limit(limit).Find(&students).Error
	})
	return students, err
}

func (r *StudentRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Student, error) {
	var students []model.Student
	if len(ids) == 0 {
		return students, nil
	}
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&students).Error
	})
	return students, err
}

// Delete 删除学生及其答题记录、徽章
func (r *StudentRepository) Delete(ctx context.Context, id uint) error {
	return database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("student_id = ?", id).Delete(&model.QuizAttempt{}).Error; err != nil {
				return err
			}
			if err := tx.Where("student_id = ?", id).Delete(&model.Badge{}).Error; err != nil {
				return err
			}
			res := tx.Delete(&model.Student{}, id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return util.ErrStudentNotFound
			}
			return nil
		})
	})
}
