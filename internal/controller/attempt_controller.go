package controller

import (
	"errors"
	"strconv"
	"testroom_backend/internal/model"
	"testroom_backend/internal/service"
	"testroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

func (c *AttemptController) handleAttemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTestNotFound), errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrTestNotPublished):
		util.Error(ctx, 403, "测试尚未发布")
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAttemptTerminal):
		util.Conflict(ctx, "答题已结束")
	case errors.Is(err, util.ErrInvalidAnswerMap):
		util.BadRequest(ctx, "答案格式不合法")
	default:
		util.LogInternalError(ctx, err)
	}
}

// Start godoc
// @Summary 开始或恢复答题
// @Description 同一测试每个学生只有一次答题机会，重复请求返回已有记录；
// @Description 进行中但已超时的记录先按超时终结再返回
// @Tags 答题
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 403 {object} util.Response "测试尚未发布"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/student/tests/{id}/attempt [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.AttemptService.Start(util.MustParseUint(ctx.Param("id")), claims.UserID, claims.OrganizationID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// AnswersRequest 答案映射，键为 q0、q1 等题目序号
type AnswersRequest struct {
	Answers model.AnswerMap `json:"answers" binding:"required"`
}

// SaveAnswers godoc
// @Summary 自动保存答案
// @Description 整体覆盖已保存的答案映射，相同内容重复提交是幂等的
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "答题记录ID"
// @Param   body body AnswersRequest true "答案映射"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "答案格式不合法"
// @Failure 409 {object} util.Response "答题已结束"
// @Router /api/student/attempts/{id}/answers [put]
func (c *AttemptController) SaveAnswers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AttemptService.SaveAnswers(util.MustParseUint(ctx.Param("id")), claims.UserID, req.Answers); err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Complete godoc
// @Summary 交卷
// @Description 截止时间内交卷按提交的答案判分；已超时的按最后一次
// @Description 自动保存的答案判分并标记为超时
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "答题记录ID"
// @Param   body body AnswersRequest true "最终答案映射"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 409 {object} util.Response "答题已结束"
// @Router /api/student/attempts/{id}/complete [post]
func (c *AttemptController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.AttemptService.Complete(util.MustParseUint(ctx.Param("id")), claims.UserID, req.Answers)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Get godoc
// @Summary 查询本人答题记录
// @Tags 答题
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "答题记录ID"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/student/attempts/{id} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.AttemptService.Get(util.MustParseUint(ctx.Param("id")), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ListByTest godoc
// @Summary 某测试的全部答题记录（教师端）
// @Description 按得分降序分页返回
// @Tags 答题
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/tests/{id}/attempts [get]
func (c *AttemptController) ListByTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	attempts, total, err := c.AttemptService.ListByTest(util.MustParseUint(ctx.Param("id")), claims.OrganizationID, page, limit)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}
