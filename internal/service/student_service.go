package service

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/progression"
	"skillquest_backend/internal/repository"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/logger"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Profile struct {
	*model.Student
	LevelTitle string `json:"levelTitle"`
}

type StudentService struct {
	StudentRepo *repository.StudentRepository
	Storage     *StorageService
	Cache       *repository.LeaderboardCache
}

func NewStudentService(studentRepo *repository.StudentRepository, storage *StorageService, cache *repository.LeaderboardCache) *StudentService {
	return &StudentService{StudentRepo: studentRepo, Storage: storage, Cache: cache}
}

func (s *StudentService) GetProfile(ctx context.Context, studentID uint) (*Profile, error) {
	student, err := s.StudentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Student:    student,
		LevelTitle: progression.TitleForLevel(progression.LevelFromXP(student.TotalXP)),
	}, nil
}

// DeleteAccount 删除学生及其答题记录、徽章和头像
func (s *StudentService) DeleteAccount(ctx context.Context, studentID uint) error {
	student, err := s.StudentRepo.FindByID(ctx, studentID)
	if err != nil {
		return err
	}
	if err := s.StudentRepo.Delete(ctx, studentID); err != nil {
		return err
	}
	if err := s.Cache.Remove(ctx, studentID); err != nil {
		logger.Log.Warn("leaderboard cache remove failed", zap.Uint("student_id", studentID), zap.Error(err))
	}
	s.removeAvatar(ctx, studentID, student.Avatar)
	logger.Log.Info("student account deleted", zap.Uint("student_id", studentID))
	return nil
}

// UploadAvatar 校验文件内容为图片后上传，返回访问地址
func (s *StudentService) UploadAvatar(ctx context.Context, studentID uint, file *multipart.FileHeader) (string, error) {
	if file.Size <= 0 || file.Size > util.MaxAvatarBytes {
		return "", util.ErrInvalidAvatar
	}
	student, err := s.StudentRepo.FindByID(ctx, studentID)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 按文件头嗅探 MIME，不信任客户端声明的类型
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, util.MimeImage) {
		return "", util.ErrInvalidAvatar
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	key := util.AvatarKeyPrefix + strconv.FormatUint(uint64(studentID), 10) + "/" +
		uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))

	url, err := s.Storage.Upload(ctx, key, src, file.Size, contentType)
	if err != nil {
		return "", err
	}
	if err := s.StudentRepo.UpdateAvatar(ctx, studentID, url); err != nil {
		return "", err
	}
	s.removeAvatar(ctx, studentID, student.Avatar)
	return url, nil
}

// removeAvatar 删除旧头像对象，失败只记日志
func (s *StudentService) removeAvatar(ctx context.Context, studentID uint, url string) {
	if url == "" {
		return
	}
	key, ok := s.Storage.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.Storage.Delete(ctx, key); err != nil {
		logger.Log.Warn("avatar delete failed", zap.Uint("student_id", studentID), zap.String("key", key), zap.Error(err))
	}
}
