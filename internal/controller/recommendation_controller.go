package controller

import (
	"skillquest_backend/internal/service"
	"skillquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	RecommendationService *service.RecommendationService
}

func NewRecommendationController(recommendationService *service.RecommendationService) *RecommendationController {
	return &RecommendationController{RecommendationService: recommendationService}
}

// GetRecommendation godoc
// @Summary 获取学习推荐
// @Description 由外部强化学习服务根据学生特征给出下一步建议
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Recommendation}
// @Failure 502 {object} util.Response "推荐服务不可用"
// @Failure 503 {object} util.Response "推荐服务未启用"
// @Router /api/recommendation [get]
func (c *RecommendationController) GetRecommendation(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rec, err := c.RecommendationService.Recommend(ctx.Request.Context(), user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, rec)
}
