package controller

import (
	"errors"
	"strconv"
	"testroom_backend/internal/service"
	"testroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type OrganizationController struct {
	OrgService *service.OrganizationService
}

func NewOrganizationController(orgService *service.OrganizationService) *OrganizationController {
	return &OrganizationController{OrgService: orgService}
}

// Create godoc
// @Summary 创建组织
// @Description 超级管理员创建组织并指定首个组织管理员，两者在同一事务内完成
// @Tags 组织
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.OrganizationRequest true "组织与管理员信息"
// @Success 201 {object} util.Response{data=model.Organization} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "组织名或管理员邮箱已存在"
// @Router /api/superadmin/organizations [post]
func (c *OrganizationController) Create(ctx *gin.Context) {
	var req service.OrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	org, err := c.OrgService.Create(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrOrgNameTaken):
			util.Conflict(ctx, "组织名称已存在")
		case errors.Is(err, util.ErrEmailRegistered):
			util.Conflict(ctx, "该邮箱已被注册")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, org)
}

// List godoc
// @Summary 组织列表
// @Tags 组织
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/superadmin/organizations [get]
func (c *OrganizationController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	orgs, total, err := c.OrgService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: orgs, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary 组织详情
// @Tags 组织
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "组织ID"
// @Success 200 {object} util.Response{data=model.Organization} "成功"
// @Failure 404 {object} util.Response "组织不存在"
// @Router /api/superadmin/organizations/{id} [get]
func (c *OrganizationController) Get(ctx *gin.Context) {
	org, err := c.OrgService.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrOrgNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, org)
}

// Delete godoc
// @Summary 删除组织
// @Description 软删除组织，成员账号保留但无法登录
// @Tags 组织
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "组织ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "组织不存在"
// @Router /api/superadmin/organizations/{id} [delete]
func (c *OrganizationController) Delete(ctx *gin.Context) {
	if err := c.OrgService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		if errors.Is(err, util.ErrOrgNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// SetStatus godoc
// @Summary 启用或停用组织
// @Description 停用组织后其成员登录被拒绝
// @Tags 组织
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "组织ID"
// @Param   body body SetStatusRequest true "目标状态"
// @Success 200 {object} util.Response{data=model.Organization} "成功"
// @Failure 404 {object} util.Response "组织不存在"
// @Router /api/superadmin/organizations/{id}/status [patch]
func (c *OrganizationController) SetStatus(ctx *gin.Context) {
	var req SetStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	org, err := c.OrgService.SetDisabled(util.MustParseUint(ctx.Param("id")), *req.Disabled)
	if err != nil {
		if errors.Is(err, util.ErrOrgNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, org)
}
