package controller

import (
	"skillquest_backend/internal/service"
	"skillquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	StudentService *service.StudentService
}

func NewUserController(studentService *service.StudentService) *UserController {
	return &UserController{StudentService: studentService}
}

// GetProfile godoc
// @Summary 当前学生资料
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Profile}
// @Router /api/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.StudentService.GetProfile(ctx.Request.Context(), user.StudentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}

// UploadAvatar godoc
// @Summary 上传头像
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "头像图片，不超过 2MB"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "文件无效"
// @Router /api/user/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	url, err := c.StudentService.UploadAvatar(ctx.Request.Context(), user.StudentID, file)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"avatar": url})
}

// DeleteAccount godoc
// @Summary 注销账号
// @Description 删除学生及其答题记录和徽章
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/account [delete]
func (c *UserController) DeleteAccount(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.StudentService.DeleteAccount(ctx.Request.Context(), user.StudentID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "account deleted"})
}
