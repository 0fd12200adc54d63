package service

import (
	"context"
	"errors"
	"skillquest_backend/internal/config"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/repository"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	StudentRepo *repository.StudentRepository
	Cfg         *config.Config
	Now         func() time.Time
}

func NewAuthService(studentRepo *repository.StudentRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		StudentRepo: studentRepo,
		Cfg:         cfg,
		Now:         time.Now,
	}
}

// Register 新学生从零 XP、零连续天数开始
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.Student, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.StudentRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrStudentNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashedPassword),
		Role:     model.RoleStudent,
		Stage:    model.StageBeginner,
	}
	if err := s.StudentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	logger.Log.Info("student registered", zap.Uint("student_id", student.ID))
	return student, nil
}

// Login 校验密码并签发 JWT，同时记录登录时间；登录不算学习活动
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Student, error) {
	student, err := s.StudentRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, util.ErrStudentNotFound) {
		return "", nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(student, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	now := s.Now().UTC()
	if err := s.StudentRepo.UpdateLastLogin(ctx, student.ID, now); err != nil {
		logger.Log.Warn("failed to record last login", zap.Uint("student_id", student.ID), zap.Error(err))
	} else {
		student.LastLogin = &now
	}

	return token, student, nil
}
