package controller

import (
	"skillquest_backend/internal/service"
	"skillquest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
	DefaultSize        func() int
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService, defaultSize func() int) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService, DefaultSize: defaultSize}
}

// GetLeaderboard godoc
// @Summary XP 排行榜
// @Tags 成就
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数，最多 100"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	limit := 0
	if c.DefaultSize != nil {
		limit = c.DefaultSize()
	}
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			util.BadRequest(ctx, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := c.LeaderboardService.Top(ctx.Request.Context(), limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}
