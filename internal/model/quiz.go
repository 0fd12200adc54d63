package model

import "time"

// Options 选择题选项，以 JSON 存储
type Options []string

// QuizQuestion 题库中的一道题，按 周/步骤 分组
type QuizQuestion struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Week     int     `gorm:"index:idx_quiz_week_step;not null" json:"week"`
	Step     int     `gorm:"index:idx_quiz_week_step;not null" json:"step"`
	Position int     `gorm:"default:0" json:"position"`
	Prompt   string  `gorm:"type:text;not null" json:"prompt"`
	Options  Options `gorm:"type:text;serializer:json" json:"options"`
	Answer   int     `gorm:"not null" json:"-"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizAttempt 一次步骤测验提交，只追加不修改
type QuizAttempt struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID     uint      `gorm:"index:idx_attempt_student_day;not null" json:"studentId"`
	Week          int       `gorm:"not null" json:"week"`
	Step          int       `gorm:"not null" json:"step"`
	AttemptNumber int       `gorm:"not null" json:"attemptNumber"`
	Score         int       `gorm:"not null" json:"score"`
	Total         int       `gorm:"not null" json:"total"`
	Passed        bool      `gorm:"not null;default:false" json:"passed"`
	AttemptedAt   time.Time `gorm:"index:idx_attempt_student_day;not null" json:"attemptedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
