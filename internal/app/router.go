package app

import (
	"skillquest_backend/docs"
	"skillquest_backend/internal/config"
	"skillquest_backend/internal/middleware"
	"skillquest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(&cfg.JWT))
	{
		a.registerStudentRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.user.GetProfile)
	rg.POST("/user/avatar", c.user.UploadAvatar)
	rg.DELETE("/account", c.user.DeleteAccount)

	// 进度引擎
	rg.GET("/dashboard", c.progression.GetDashboard)
	rg.POST("/add-xp", c.progression.AddXP)
	rg.GET("/daily-goals", c.progression.GetDailyGoals)

	quiz := rg.Group("/quiz")
	{
		quiz.GET("/:week/:step", c.quiz.GetQuiz)
		quiz.POST("/:week/:step/submit", c.quiz.SubmitQuiz)
	}
	rg.POST("/diagnostic", c.quiz.SubmitDiagnostic)

	rg.GET("/badges", c.badge.GetBadges)
	rg.GET("/leaderboard", c.leaderboard.GetLeaderboard)
	rg.GET("/recommendation", c.recommendation.GetRecommendation)
}
