package controller

import (
	"errors"
	"strconv"
	"testroom_backend/internal/service"
	"testroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// AdminStats godoc
// @Summary 管理员概览
// @Description 本组织的师生数量、测试数量与最近答题动态
// @Tags 仪表盘
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.AdminStats} "成功"
// @Router /api/admin/dashboard [get]
func (c *DashboardController) AdminStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.DashboardService.AdminStats(claims.OrganizationID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// TestStats godoc
// @Summary 单场测试的成绩统计（教师端）
// @Description 参与人数、最高分、平均分与排行榜
// @Tags 仪表盘
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测试ID"
// @Success 200 {object} util.Response{data=service.TestStats} "成功"
// @Failure 404 {object} util.Response "测试不存在"
// @Router /api/tests/{id}/stats [get]
func (c *DashboardController) TestStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.DashboardService.TestStats(util.MustParseUint(ctx.Param("id")), claims.OrganizationID)
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, stats)
}

// StudentHistory godoc
// @Summary 个人历史成绩（学生端）
// @Tags 仪表盘
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/student/history [get]
func (c *DashboardController) StudentHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	items, total, err := c.DashboardService.StudentHistory(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: items, Total: total, Page: page, Limit: limit})
}
