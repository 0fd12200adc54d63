package model

import (
	"time"
)

type StudentRole string

const (
	RoleStudent StudentRole = "student"
	RoleAdmin   StudentRole = "admin"
)

// Stage 学习阶段，由诊断测验决定，与数值等级无关
type Stage string

const (
	StageBeginner     Stage = "beginner"
	StageIntermediate Stage = "intermediate"
	StageExpert       Stage = "expert"
)

// Student 学生档案，同时承载进度引擎的全部持久化状态
// swagger:model Student
type Student struct {
	ID            uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Name          string      `gorm:"size:100;not null" json:"name"`
	Email         string      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password      string      `gorm:"size:100;not null" json:"-"`
	Role          StudentRole `gorm:"size:20;default:'student'" json:"role"`
	Stage         Stage       `gorm:"size:20;default:'beginner'" json:"stage"`
	TotalXP       int         `gorm:"column:total_xp;default:0;not null" json:"totalXP"`
	CurrentLevel  int         `gorm:"default:0;not null" json:"currentLevel"`
	CurrentStreak int         `gorm:"default:0;not null" json:"currentStreak"`
	LongestStreak int         `gorm:"default:0;not null" json:"longestStreak"`
	// 学习活动日期（UTC 零点），用于连续学习天数；与 LastLogin 分开存储
	LastActivityDate *time.Time `json:"lastActivityDate"`
	LastLogin        *time.Time `json:"lastLogin"`
	Avatar           string     `gorm:"size:255" json:"avatar"`
	// 乐观锁版本号，每次进度写入 +1
	Version int `gorm:"default:0;not null" json:"-"`
}

func (Student) TableName() string {
	return "students"
}
