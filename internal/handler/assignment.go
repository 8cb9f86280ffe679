package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/middleware"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
)

// RolePermissionHandler 角色权限分配处理器
type RolePermissionHandler struct {
	service service.RolePermissionService
}

// NewRolePermissionHandler 创建角色权限分配处理器
func NewRolePermissionHandler(svc service.RolePermissionService) *RolePermissionHandler {
	return &RolePermissionHandler{service: svc}
}

// AssignPermissionsRequest 分配权限请求，permissionIds 为空表示清空
type AssignPermissionsRequest struct {
	RoleID        string   `json:"roleId" binding:"required"`
	PermissionIDs []string `json:"permissionIds" binding:"dive,required"`
}

// RolePermissionPageRequest 角色权限关联分页查询
type RolePermissionPageRequest struct {
	PageRequest
	RoleID       string `json:"roleId"`
	PermissionID string `json:"permissionId"`
}

// Assign 整体替换角色的权限
// POST /api/role-permission/create
func (h *RolePermissionHandler) Assign(c *gin.Context) {
	var req AssignPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	rows, err := h.service.Assign(c.Request.Context(), req.RoleID, req.PermissionIDs, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "分配成功", rows)
}

// FindPage 分页查询关联记录
// POST /api/role-permission/findPage
func (h *RolePermissionHandler) FindPage(c *gin.Context) {
	var req RolePermissionPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	p := req.Pagination()
	rows, total, err := h.service.FindPage(c.Request.Context(), &repository.RolePermissionFilter{
		RoleID:       req.RoleID,
		PermissionID: req.PermissionID,
	}, p)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, rows, total, p)
}

// FindByRoleID 角色拥有的权限
// GET /api/role-permission/role/:roleId
func (h *RolePermissionHandler) FindByRoleID(c *gin.Context) {
	perms, err := h.service.FindByRoleID(c.Request.Context(), c.Param("roleId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, perms)
}

// FindByPermissionID 拥有该权限的角色
// GET /api/role-permission/permission/:permissionId
func (h *RolePermissionHandler) FindByPermissionID(c *gin.Context) {
	roles, err := h.service.FindByPermissionID(c.Request.Context(), c.Param("permissionId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, roles)
}

// Remove 删除单条关联
// DELETE /api/role-permission/:roleId/:permissionId
func (h *RolePermissionHandler) Remove(c *gin.Context) {
	if err := h.service.RemoveByID(c.Request.Context(), c.Param("roleId"), c.Param("permissionId")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// RemoveByRoleID 清空角色的全部权限
// DELETE /api/role-permission/role/:roleId
func (h *RolePermissionHandler) RemoveByRoleID(c *gin.Context) {
	if err := h.service.RemoveByRoleID(c.Request.Context(), c.Param("roleId")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// UserRoleHandler 用户角色分配处理器
type UserRoleHandler struct {
	service service.UserRoleService
}

// NewUserRoleHandler 创建用户角色分配处理器
func NewUserRoleHandler(svc service.UserRoleService) *UserRoleHandler {
	return &UserRoleHandler{service: svc}
}

// AssignRolesRequest 分配角色请求，roleIds 为空表示清空
type AssignRolesRequest struct {
	UserID  string   `json:"userId" binding:"required"`
	RoleIDs []string `json:"roleIds" binding:"dive,required"`
}

// UserRolePageRequest 用户角色关联分页查询
type UserRolePageRequest struct {
	PageRequest
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}

// Assign 整体替换用户的角色
// POST /api/user-role/create
func (h *UserRoleHandler) Assign(c *gin.Context) {
	var req AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	rows, err := h.service.Assign(c.Request.Context(), req.UserID, req.RoleIDs, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "分配成功", rows)
}

// FindPage 分页查询关联记录
// POST /api/user-role/findPage
func (h *UserRoleHandler) FindPage(c *gin.Context) {
	var req UserRolePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	p := req.Pagination()
	rows, total, err := h.service.FindPage(c.Request.Context(), &repository.UserRoleFilter{
		UserID: req.UserID,
		RoleID: req.RoleID,
	}, p)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, rows, total, p)
}

// FindByUserID 用户拥有的角色
// GET /api/user-role/user/:userId
func (h *UserRoleHandler) FindByUserID(c *gin.Context) {
	roles, err := h.service.FindByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, roles)
}

// FindByRoleID 拥有该角色的用户
// GET /api/user-role/role/:roleId
func (h *UserRoleHandler) FindByRoleID(c *gin.Context) {
	users, err := h.service.FindByRoleID(c.Request.Context(), c.Param("roleId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, users)
}

// Remove 删除单条关联
// DELETE /api/user-role/:userId/:roleId
func (h *UserRoleHandler) Remove(c *gin.Context) {
	if err := h.service.RemoveByID(c.Request.Context(), c.Param("userId"), c.Param("roleId")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// RemoveByUserID 清空用户的全部角色
// DELETE /api/user-role/user/:userId
func (h *UserRoleHandler) RemoveByUserID(c *gin.Context) {
	if err := h.service.RemoveByUserID(c.Request.Context(), c.Param("userId")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}
