package controller

import (
	"errors"
	"testroom_backend/internal/service"
	"testroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

func (c *ReportController) handleReportError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrTestNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrNothingToReport):
		util.Conflict(ctx, "答题尚未结束，暂无成绩单")
	default:
		util.LogInternalError(ctx, err)
	}
}

// Result godoc
// @Summary 导出成绩单 PDF
// @Description 学生导出本人的，教师和管理员可导出本组织内任意一份；
// @Description 进行中的答题没有成绩单
// @Tags 报告
// @Produce  application/pdf
// @Security BearerAuth
// @Param   id path int true "答题记录ID"
// @Success 200 {file} binary "PDF 文件"
// @Failure 404 {object} util.Response "记录不存在"
// @Failure 409 {object} util.Response "答题尚未结束"
// @Router /api/attempts/{id}/report [get]
func (c *ReportController) Result(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	filename, data, err := c.ReportService.ResultPDF(util.MustParseUint(ctx.Param("id")), claims)
	if err != nil {
		c.handleReportError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(200, util.MimePDF, data)
}

// Summary godoc
// @Summary 导出卷面 PDF（教师端，含答案标注）
// @Tags 报告
// @Produce  application/pdf
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Success 200 {file} binary "PDF 文件"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/tests/{id}/summary [get]
func (c *ReportController) Summary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	filename, data, err := c.ReportService.SummaryPDF(util.MustParseUint(ctx.Param("id")), claims.OrganizationID)
	if err != nil {
		c.handleReportError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(200, util.MimePDF, data)
}

// Archive godoc
// @Summary 归档成绩单
// @Description 渲染成绩单并写入对象存储，返回归档地址
// @Tags 报告
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "答题记录ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 409 {object} util.Response "答题尚未结束"
// @Router /api/attempts/{id}/report/archive [post]
func (c *ReportController) Archive(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	url, err := c.ReportService.ArchiveResult(ctx.Request.Context(), util.MustParseUint(ctx.Param("id")), claims)
	if err != nil {
		c.handleReportError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
