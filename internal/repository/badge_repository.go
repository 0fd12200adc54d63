package repository

import (
	"context"
	"skillquest_backend/internal/model"
	"skillquest_backend/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) FindByStudentID(ctx context.Context, studentID uint) ([]model.Badge, error) {
	var badges []model.Badge
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).Where("student_id = ?", studentID).Order("earned_at ASC").Order("id ASC").Find(&badges).Error
	})
	return badges, err
}

// Award 插入徽章，已存在的 (student_id, code) 会被忽略；返回是否新插入
func (r *BadgeRepository) Award(ctx context.Context, badge *model.Badge) (bool, error) {
	var affected int64
	err := database.WithRetry(ctx, func() error {
		res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(badge)
		affected = res.RowsAffected
		return res.Error
	})
	return affected == 1, err
}
