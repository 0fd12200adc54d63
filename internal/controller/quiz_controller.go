package controller

import (
	"skillquest_backend/internal/service"
	"skillquest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// SubmitQuizRequest swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// DiagnosticRequest swagger:model DiagnosticRequest
type DiagnosticRequest struct {
	Score int `json:"score" binding:"min=0"`
	Total int `json:"total" binding:"required,min=1"`
}

func weekStepParams(ctx *gin.Context) (int, int, bool) {
	week, err := strconv.Atoi(ctx.Param("week"))
	if err != nil || week < 1 {
		util.BadRequest(ctx, "invalid week")
		return 0, 0, false
	}
	step, err := strconv.Atoi(ctx.Param("step"))
	if err != nil || step < 1 {
		util.BadRequest(ctx, "invalid step")
		return 0, 0, false
	}
	return week, step, true
}

// GetQuiz godoc
// @Summary 获取步骤测验
// @Description 返回题目和选项，不包含答案
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param week path int true "周"
// @Param step path int true "步骤"
// @Success 200 {object} util.Response{data=[]model.QuizQuestion}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{week}/{step} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	week, step, ok := weekStepParams(ctx)
	if !ok {
		return
	}

	questions, err := c.QuizService.GetQuiz(ctx.Request.Context(), week, step)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}

// SubmitQuiz godoc
// @Summary 提交步骤测验
// @Description 评分并记录答题；首次通过发放 XP，通过即更新连续学习天数和徽章
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param week path int true "周"
// @Param step path int true "步骤"
// @Param body body SubmitQuizRequest true "按题目顺序排列的选项下标"
// @Success 200 {object} util.Response{data=service.QuizResult}
// @Failure 400 {object} util.Response "答案数量与题目不符"
// @Router /api/quiz/{week}/{step}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	week, step, ok := weekStepParams(ctx)
	if !ok {
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.Submit(ctx.Request.Context(), user.StudentID, week, step, req.Answers)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// SubmitDiagnostic godoc
// @Summary 提交诊断测验
// @Description 根据得分百分比设置学习阶段
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DiagnosticRequest true "得分"
// @Success 200 {object} util.Response{data=service.DiagnosticResult}
// @Router /api/diagnostic [post]
func (c *QuizController) SubmitDiagnostic(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req DiagnosticRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitDiagnostic(ctx.Request.Context(), user.StudentID, req.Score, req.Total)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
