package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"skillquest_backend/internal/config"
	"skillquest_backend/internal/controller"
	"skillquest_backend/internal/repository"
	"skillquest_backend/internal/service"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/configwatcher"
	"skillquest_backend/pkg/database"
	"skillquest_backend/pkg/logger"
	"skillquest_backend/pkg/monitoring"
	"skillquest_backend/pkg/security"
	"skillquest_backend/pkg/tracing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []configwatcher.ConfigReloader
}

type repositories struct {
	student     *repository.StudentRepository
	attempt     *repository.QuizAttemptRepository
	quizBank    *repository.QuizBankRepository
	badge       *repository.BadgeRepository
	leaderboard *repository.LeaderboardCache
}

type services struct {
	auth           *service.AuthService
	storage        *service.StorageService
	gamification   *service.GamificationService
	badge          *service.BadgeService
	recommendation *service.RecommendationService
	quiz           *service.QuizService
	leaderboard    *service.LeaderboardService
	student        *service.StudentService
}

type controllers struct {
	auth           *controller.AuthController
	progression    *controller.ProgressionController
	quiz           *controller.QuizController
	badge          *controller.BadgeController
	leaderboard    *controller.LeaderboardController
	recommendation *controller.RecommendationController
	user           *controller.UserController
	health         *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback configwatcher.ConfigReloader) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ConfigCallbacks 配置热更新时依次调用
func (a *App) ConfigCallbacks() []configwatcher.ConfigReloader {
	return a.configCallbacks
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		student:     repository.NewStudentRepository(db),
		attempt:     repository.NewQuizAttemptRepository(db),
		quizBank:    repository.NewQuizBankRepository(db),
		badge:       repository.NewBadgeRepository(db),
		leaderboard: repository.NewLeaderboardCache(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.student, cfg)
	s.gamification = service.NewGamificationService(repos.student, repos.attempt, repos.leaderboard, cfg.Gamification)
	s.badge = service.NewBadgeService(repos.badge, repos.student, repos.attempt)
	s.recommendation = service.NewRecommendationService(repos.student, repos.attempt, cfg.RL)
	s.quiz = service.NewQuizService(repos.quizBank, repos.attempt, repos.student, s.gamification, s.badge, s.recommendation)
	s.leaderboard = service.NewLeaderboardService(repos.student, repos.leaderboard)
	s.student = service.NewStudentService(repos.student, s.storage, repos.leaderboard)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		progression: controller.NewProgressionController(s.gamification),
		quiz:        controller.NewQuizController(s.quiz),
		badge:       controller.NewBadgeController(s.badge),
		leaderboard: controller.NewLeaderboardController(s.leaderboard, func() int {
			return s.gamification.Settings().LeaderboardSize
		}),
		recommendation: controller.NewRecommendationController(s.recommendation),
		user:           controller.NewUserController(s.student),
		health:         controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerReloaders 配置文件变更后热更新日志级别和进度引擎参数
func (a *App) registerReloaders(s *services) {
	a.RegisterConfigCallback(logger.Reload)
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.gamification.UpdateSettings(cfg.Gamification)
		logger.Log.Info("gamification settings reloaded",
			zap.Int("step_pass_xp", cfg.Gamification.StepPassXP),
			zap.Int("first_try_bonus_xp", cfg.Gamification.FirstTryBonusXP),
			zap.Bool("dashboard_counts_as_activity", cfg.Gamification.DashboardCountsAsActivity),
		)
	})
}

// shouldMigrate release 模式下只有显式要求才迁移
func shouldMigrate(cfg *config.Config) bool {
	return cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
}

// NewApp 初始化所有依赖；MigrateOnly 时只完成数据库迁移
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, shouldMigrate(cfg))
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	app := &App{Config: cfg, DB: db}
	if cfg.MigrateOnly {
		return app, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("initialize redis: %w", err)
	}
	app.Redis = rdb

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
		app.tracer = tp
	}

	app.wire()
	return app, nil
}

// wire 组装仓储、服务、控制器和路由
func (a *App) wire() {
	cfg := a.Config

	repos := a.initRepositories(a.DB, a.Redis)
	services := a.initServices(repos, cfg)
	a.services = services
	controllers := a.initControllers(services)
	a.registerReloaders(services)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	a.Router = router

	a.setupMiddlewares(router, cfg)
	a.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
}

// Run 启动 HTTP 服务和配置监听，ctx 结束后优雅退出
func (a *App) Run(ctx context.Context, configDir string) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watcher := configwatcher.New(filepath.Join(configDir, "config.yaml"), a.configCallbacks...)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Log.Error("config watcher stopped", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	// 关闭服务（5 秒超时）
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := tracing.Shutdown(shutdownCtx, a.tracer); err != nil {
		logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	a.Close()

	logger.Log.Info("Server exiting")
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
