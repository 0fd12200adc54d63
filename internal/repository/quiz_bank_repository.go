package repository

import (
	"context"
	"skillquest_backend/internal/model"
	"skillquest_backend/pkg/database"

	"gorm.io/gorm"
)

type QuizBankRepository struct {
	DB *gorm.DB
}

func NewQuizBankRepository(db *gorm.DB) *QuizBankRepository {
	return &QuizBankRepository{DB: db}
}

func (r *QuizBankRepository) FindByWeekStep(ctx context.Context, week, step int) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := database.WithRetry(ctx, func() error {
		return r.DB.WithContext(ctx).
			Where("week = ? AND step = ?", week, step).
			Order("position ASC").Order("id ASC").
			Find(&questions).Error
	})
	return questions, err
}
