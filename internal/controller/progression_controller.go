package controller

import (
	"skillquest_backend/internal/service"
	"skillquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressionController struct {
	Gamification *service.GamificationService
}

func NewProgressionController(gamification *service.GamificationService) *ProgressionController {
	return &ProgressionController{Gamification: gamification}
}

// AddXPRequest swagger:model AddXPRequest
type AddXPRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// GetDashboard godoc
// @Summary 获取进度仪表盘
// @Description 打开仪表盘计为当天的学习活动（可配置），随后返回等级、XP、连续学习天数
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Failure 404 {object} util.Response "学生不存在"
// @Router /api/dashboard [get]
func (c *ProgressionController) GetDashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if c.Gamification.Settings().DashboardCountsAsActivity {
		if _, err := c.Gamification.UpdateStreak(ctx.Request.Context(), user.StudentID); err != nil {
			util.HandleServiceError(ctx, err)
			return
		}
	}

	dashboard, err := c.Gamification.GetDashboard(ctx.Request.Context(), user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// AddXP godoc
// @Summary 增加 XP
// @Description 发放 XP 并记录当天的学习活动
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddXPRequest true "XP 数量，必须为正整数"
// @Success 200 {object} util.Response{data=service.XPAwardResult}
// @Failure 400 {object} util.Response "XP 数量无效"
// @Failure 409 {object} util.Response "并发更新冲突"
// @Router /api/add-xp [post]
func (c *ProgressionController) AddXP(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AddXPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidXPAmount.Error())
		return
	}

	result, err := c.Gamification.AwardXP(ctx.Request.Context(), user.StudentID, req.Amount)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	// XP 已经写入，连续天数更新失败不回滚
	if _, err := c.Gamification.UpdateStreak(ctx.Request.Context(), user.StudentID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// GetDailyGoals godoc
// @Summary 今日目标
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.DailyGoals}
// @Router /api/daily-goals [get]
func (c *ProgressionController) GetDailyGoals(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goals, err := c.Gamification.GetDailyGoals(ctx.Request.Context(), user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, goals)
}
