package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"skillquest_backend/internal/config"
	"skillquest_backend/internal/progression"
	"skillquest_backend/internal/repository"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/logger"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// FeatureVector 发送给外部 RL 服务的学生特征
type FeatureVector struct {
	StudentID            uint    `json:"student_id"`
	Stage                string  `json:"stage"`
	Level                int     `json:"level"`
	TotalXP              int     `json:"total_xp"`
	CurrentStreak        int     `json:"current_streak"`
	LongestStreak        int     `json:"longest_streak"`
	TotalAttempts        int64   `json:"total_attempts"`
	PassRate             float64 `json:"pass_rate"`
	AvgScore             float64 `json:"avg_score"`
	StepsCompleted       int64   `json:"steps_completed"`
	DaysSinceLastAttempt int     `json:"days_since_last_attempt"`
}

type Recommendation struct {
	Action     string  `json:"action"`
	Week       int     `json:"week,omitempty"`
	Step       int     `json:"step,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
	Confidence float64 `json:"confidence"`
}

// QuizFeedback 一次答题结果，作为 RL 服务的奖励信号
type QuizFeedback struct {
	StudentID     uint    `json:"student_id"`
	Week          int     `json:"week"`
	Step          int     `json:"step"`
	Passed        bool    `json:"passed"`
	ScoreRatio    float64 `json:"score_ratio"`
	AttemptNumber int     `json:"attempt_number"`
}

type RecommendationService struct {
	StudentRepo *repository.StudentRepository
	AttemptRepo *repository.QuizAttemptRepository
	Cfg         config.RLConfig
	Now         func() time.Time
	httpClient  *http.Client
}

func NewRecommendationService(studentRepo *repository.StudentRepository, attemptRepo *repository.QuizAttemptRepository, cfg config.RLConfig) *RecommendationService {
	return &RecommendationService{
		StudentRepo: studentRepo,
		AttemptRepo: attemptRepo,
		Cfg:         cfg,
		Now:         time.Now,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			),
		},
	}
}

func (s *RecommendationService) Enabled() bool {
	return s != nil && s.Cfg.Enabled && s.Cfg.URL != ""
}

// Features 通过 SQL 聚合组装特征向量
func (s *RecommendationService) Features(ctx context.Context, studentID uint) (*FeatureVector, error) {
	student, err := s.StudentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	stats, err := s.AttemptRepo.Stats(ctx, studentID)
	if err != nil {
		return nil, err
	}
	steps, err := s.AttemptRepo.CountCompletedSteps(ctx, studentID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	fv := &FeatureVector{
		StudentID:            student.ID,
		Stage:                string(student.Stage),
		Level:                progression.LevelFromXP(student.TotalXP),
		TotalXP:              student.TotalXP,
		CurrentStreak:        student.CurrentStreak,
		LongestStreak:        student.LongestStreak,
		TotalAttempts:        stats.TotalAttempts,
		AvgScore:             stats.AvgScoreRatio,
		StepsCompleted:       steps,
		DaysSinceLastAttempt: -1,
	}
	if stats.TotalAttempts > 0 {
		fv.PassRate = float64(stats.PassedAttempts) / float64(stats.TotalAttempts)
	}
	if stats.LastAttemptAt != nil {
		fv.DaysSinceLastAttempt = progression.DaysBetween(*stats.LastAttemptAt, s.Now())
	}
	return fv, nil
}

// Recommend 请求外部服务给出下一步建议
func (s *RecommendationService) Recommend(ctx context.Context, studentID uint) (*Recommendation, error) {
	if !s.Enabled() {
		return nil, util.ErrRecommenderDisabled
	}

	fv, err := s.Features(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var rec Recommendation
	if err := s.post(ctx, "/predict", map[string]interface{}{"features": fv}, &rec); err != nil {
		logger.Log.Warn("rl prediction failed", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrRecommenderUnavailable, err)
	}
	return &rec, nil
}

// SendFeedback 上报答题结果；调用方通常在 goroutine 中调用，不关心结果
func (s *RecommendationService) SendFeedback(ctx context.Context, fb QuizFeedback) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.post(ctx, "/feedback", fb, nil); err != nil {
		logger.Log.Warn("rl feedback failed", zap.Uint("student_id", fb.StudentID), zap.Error(err))
		return err
	}
	return nil
}

func (s *RecommendationService) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := strings.TrimRight(s.Cfg.URL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("rl service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
