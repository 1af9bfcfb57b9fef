package controller

import (
	"errors"
	"strconv"
	"testroom_backend/internal/model"
	"testroom_backend/internal/service"
	"testroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

func (c *TestController) handleTestError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTestNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrTestNameTaken):
		util.Conflict(ctx, "同名测试已存在")
	case errors.Is(err, util.ErrTestNotPublished):
		util.Error(ctx, 403, "测试尚未发布")
	case errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	default:
		util.BadRequest(ctx, err.Error())
	}
}

// Create godoc
// @Summary 创建测试
// @Description 教师创建草稿状态的测试，题目随后单独添加
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.TestRequest true "测试信息"
// @Success 201 {object} util.Response{data=model.Test} "创建成功"
// @Failure 400 {object} util.Response "时长越界等参数错误"
// @Failure 409 {object} util.Response "同名测试已存在"
// @Router /api/tests [post]
func (c *TestController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.CreateTest(claims.OrganizationID, claims.UserID, req)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

// Update godoc
// @Summary 更新测试基本信息
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Param   body body service.TestRequest true "测试信息"
// @Success 200 {object} util.Response{data=model.Test} "成功"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/tests/{id} [put]
func (c *TestController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.UpdateTest(util.MustParseUint(ctx.Param("id")), claims.OrganizationID, claims.UserID, req)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// Publish godoc
// @Summary 发布测试
// @Description 发布后学生可见，空卷不能发布
// @Tags 测试
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Success 200 {object} util.Response{data=model.Test} "成功"
// @Failure 400 {object} util.Response "空卷不能发布"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/tests/{id}/publish [post]
func (c *TestController) Publish(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	test, err := c.TestService.Publish(util.MustParseUint(ctx.Param("id")), claims.OrganizationID, claims.UserID)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// Get godoc
// @Summary 测试详情（教师端，含答案）
// @Tags 测试
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Success 200 {object} util.Response{data=model.Test} "成功"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/tests/{id} [get]
func (c *TestController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	test, err := c.TestService.GetTest(util.MustParseUint(ctx.Param("id")), claims.OrganizationID)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// List godoc
// @Summary 测试列表
// @Tags 测试
// @Produce  json
// @Security BearerAuth
// @Param   status query string false "状态过滤" Enums(draft, published)
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/tests [get]
func (c *TestController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	status := model.TestStatus(ctx.Query("status"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	tests, total, err := c.TestService.ListTests(claims.OrganizationID, status, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: tests, Total: total, Page: page, Limit: limit})
}

// AddQuestion godoc
// @Summary 添加题目
// @Description 追加到卷尾，总分自动重算
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Param   body body service.QuestionRequest true "题目内容"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Failure 400 {object} util.Response "选项或分值不合法"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/tests/{id}/questions [post]
func (c *TestController) AddQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.TestService.AddQuestion(util.MustParseUint(ctx.Param("id")), claims.OrganizationID, claims.UserID, req)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// BatchQuestionsRequest 批量添加题目请求
type BatchQuestionsRequest struct {
	Questions []service.QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// AddQuestions godoc
// @Summary 批量添加题目
// @Description 按提交顺序追加到卷尾，总分自动重算
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Param   body body BatchQuestionsRequest true "题目列表"
// @Success 201 {object} util.Response{data=[]model.Question} "创建成功"
// @Failure 400 {object} util.Response "选项或分值不合法"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/tests/{id}/questions/batch [post]
func (c *TestController) AddQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req BatchQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	qs, err := c.TestService.AddQuestions(util.MustParseUint(ctx.Param("id")), claims.OrganizationID, claims.UserID, req.Questions)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Created(ctx, qs)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Param   qid path int true "题目ID"
// @Param   body body service.QuestionRequest true "题目内容"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/tests/{id}/questions/{qid} [put]
func (c *TestController) UpdateQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.TestService.UpdateQuestion(
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("qid")),
		claims.OrganizationID, claims.UserID, req)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Description 删除后其余题目序号重排，总分自动重算
// @Tags 测试
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Param   qid path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/tests/{id}/questions/{qid} [delete]
func (c *TestController) DeleteQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.TestService.DeleteQuestion(
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("qid")),
		claims.OrganizationID, claims.UserID)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// StudentView godoc
// @Summary 测试详情（学生端，不含答案）
// @Description 仅已发布的测试可见，正确答案被剥除
// @Tags 测试
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Success 200 {object} util.Response{data=service.StudentTestView} "成功"
// @Failure 403 {object} util.Response "测试尚未发布"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/student/tests/{id} [get]
func (c *TestController) StudentView(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.TestService.GetStudentView(util.MustParseUint(ctx.Param("id")), claims.OrganizationID)
	if err != nil {
		c.handleTestError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// StudentList godoc
// @Summary 可参加的测试列表（学生端）
// @Tags 测试
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/student/tests [get]
func (c *TestController) StudentList(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	tests, total, err := c.TestService.ListTests(claims.OrganizationID, model.TestPublished, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: tests, Total: total, Page: page, Limit: limit})
}
