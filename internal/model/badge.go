package model

import "time"

type Badge struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   uint      `gorm:"uniqueIndex:idx_badge_student_code;not null" json:"-"`
	Code        string    `gorm:"size:50;uniqueIndex:idx_badge_student_code;not null" json:"code"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
}

func (Badge) TableName() string {
	return "badges"
}
