package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/export"
	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"github.com/pu-ac-cn/rbac-admin/internal/schema"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
)

// RoleHandler 角色管理处理器
type RoleHandler struct {
	roleService service.RoleService
	catalog     *schema.Catalog
}

// NewRoleHandler 创建角色管理处理器
func NewRoleHandler(roleSvc service.RoleService, catalog *schema.Catalog) *RoleHandler {
	return &RoleHandler{roleService: roleSvc, catalog: catalog}
}

// CreateRoleRequest 创建角色请求
type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"required,max=64"`
	Description string `json:"description" binding:"max=500"`
	Sort        int    `json:"sort"`
	Status      string `json:"status"`
}

// UpdateRoleRequest 更新角色请求
type UpdateRoleRequest struct {
	ID          string  `json:"id" binding:"required"`
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Code        *string `json:"code" binding:"omitempty,min=1,max=64"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Sort        *int    `json:"sort"`
	Status      *string `json:"status"`
}

// RolePageRequest 角色分页查询
type RolePageRequest struct {
	PageRequest
	Name   string `json:"name" form:"name"`
	Code   string `json:"code" form:"code"`
	Status string `json:"status" form:"status"`
}

func (r *RolePageRequest) filter() *repository.RoleFilter {
	return &repository.RoleFilter{Name: r.Name, Code: r.Code, Status: r.Status}
}

// Create 创建角色
// POST /api/role/create
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	role := &model.Role{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Sort:        req.Sort,
		Status:      req.Status,
	}
	if err := h.roleService.Create(c.Request.Context(), role); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "创建成功", role)
}

// FindPage 分页查询角色
// POST /api/role/findPage
func (h *RoleHandler) FindPage(c *gin.Context) {
	var req RolePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	p := req.Pagination()
	roles, total, err := h.roleService.FindPage(c.Request.Context(), req.filter(), p)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, roles, total, p)
}

// ListEnabled 全部启用角色，供分配时选择
// GET /api/role/all/enabled
func (h *RoleHandler) ListEnabled(c *gin.Context) {
	roles, err := h.roleService.ListEnabled(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, roles)
}

// Get 获取角色详情
// GET /api/role/:id
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roleService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, role)
}

// UpdateByID 更新角色
// POST /api/role/updateById
func (h *RoleHandler) UpdateByID(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	role, err := h.roleService.UpdateByID(c.Request.Context(), req.ID, &service.RoleUpdate{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Sort:        req.Sort,
		Status:      req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "更新成功", role)
}

// DeleteByID 删除角色，系统角色不可删除
// DELETE /api/role/deleteById/:id
func (h *RoleHandler) DeleteByID(c *gin.Context) {
	if err := h.roleService.RemoveByID(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// DeleteBatch 批量删除角色
// POST /api/role/deleteBatch
func (h *RoleHandler) DeleteBatch(c *gin.Context) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	if err := h.roleService.RemoveBatch(c.Request.Context(), req.IDs); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// UpdateStatus 启用或禁用角色
// PATCH /api/role/updateStatus/:id?status=
func (h *RoleHandler) UpdateStatus(c *gin.Context) {
	if err := h.roleService.UpdateStatus(c.Request.Context(), c.Param("id"), c.Query("status")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "状态已更新", nil)
}

// Export 导出角色
// GET /api/role/export
func (h *RoleHandler) Export(c *gin.Context) {
	var req RolePageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalid(c, err)
		return
	}

	roles, _, err := h.roleService.FindPage(c.Request.Context(), req.filter(), repository.NewPagination(1, export.MaxRows))
	if err != nil {
		fail(c, err)
		return
	}
	sendExport(c, h.catalog, schema.EntityRole, roles)
}

// PermissionHandler 权限管理处理器
type PermissionHandler struct {
	permissionService service.PermissionService
	catalog           *schema.Catalog
}

// NewPermissionHandler 创建权限管理处理器
func NewPermissionHandler(permSvc service.PermissionService, catalog *schema.Catalog) *PermissionHandler {
	return &PermissionHandler{permissionService: permSvc, catalog: catalog}
}

// CreatePermissionRequest 创建权限请求
type CreatePermissionRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Code      string `json:"code" binding:"required,max=150"`
	Type      string `json:"type" binding:"required,oneof=MENU BUTTON API"`
	Path      string `json:"path"`
	Component string `json:"component"`
	Method    string `json:"method"`
	APIPath   string `json:"apiPath"`
	Icon      string `json:"icon"`
	Sort      int    `json:"sort"`
	Status    string `json:"status"`
	ParentID  string `json:"parentId"`
}

// UpdatePermissionRequest 更新权限请求
type UpdatePermissionRequest struct {
	ID        string  `json:"id" binding:"required"`
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	Code      *string `json:"code" binding:"omitempty,min=1,max=150"`
	Type      *string `json:"type" binding:"omitempty,oneof=MENU BUTTON API"`
	Path      *string `json:"path"`
	Component *string `json:"component"`
	Method    *string `json:"method"`
	APIPath   *string `json:"apiPath"`
	Icon      *string `json:"icon"`
	Sort      *int    `json:"sort"`
	Status    *string `json:"status"`
	ParentID  *string `json:"parentId"`
}

// PermissionPageRequest 权限分页查询
type PermissionPageRequest struct {
	PageRequest
	Name     string `json:"name" form:"name"`
	Code     string `json:"code" form:"code"`
	Type     string `json:"type" form:"type"`
	Status   string `json:"status" form:"status"`
	ParentID string `json:"parentId" form:"parentId"`
}

func (r *PermissionPageRequest) filter() *repository.PermissionFilter {
	return &repository.PermissionFilter{
		Name:     r.Name,
		Code:     r.Code,
		Type:     r.Type,
		Status:   r.Status,
		ParentID: r.ParentID,
	}
}

// Create 创建权限
// POST /api/permission/create
func (h *PermissionHandler) Create(c *gin.Context) {
	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	perm := &model.Permission{
		Name:      req.Name,
		Code:      req.Code,
		Type:      req.Type,
		Path:      req.Path,
		Component: req.Component,
		Method:    req.Method,
		APIPath:   req.APIPath,
		Icon:      req.Icon,
		Sort:      req.Sort,
		Status:    req.Status,
		ParentID:  req.ParentID,
	}
	if err := h.permissionService.Create(c.Request.Context(), perm); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "创建成功", perm)
}

// FindPage 分页查询权限
// POST /api/permission/findPage
func (h *PermissionHandler) FindPage(c *gin.Context) {
	var req PermissionPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	p := req.Pagination()
	perms, total, err := h.permissionService.FindPage(c.Request.Context(), req.filter(), p)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, perms, total, p)
}

// Tree 权限树
// GET /api/permission/tree?status=
func (h *PermissionHandler) Tree(c *gin.Context) {
	tree, err := h.permissionService.Tree(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tree)
}

// Get 获取权限详情
// GET /api/permission/:id
func (h *PermissionHandler) Get(c *gin.Context) {
	perm, err := h.permissionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, perm)
}

// UpdateByID 更新权限
// POST /api/permission/updateById
func (h *PermissionHandler) UpdateByID(c *gin.Context) {
	var req UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	perm, err := h.permissionService.UpdateByID(c.Request.Context(), req.ID, &service.PermissionUpdate{
		Name:      req.Name,
		Code:      req.Code,
		Type:      req.Type,
		Path:      req.Path,
		Component: req.Component,
		Method:    req.Method,
		APIPath:   req.APIPath,
		Icon:      req.Icon,
		Sort:      req.Sort,
		Status:    req.Status,
		ParentID:  req.ParentID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "更新成功", perm)
}

// DeleteByID 删除权限
// DELETE /api/permission/deleteById/:id
func (h *PermissionHandler) DeleteByID(c *gin.Context) {
	if err := h.permissionService.RemoveByID(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// DeleteBatch 批量删除权限
// POST /api/permission/deleteBatch
func (h *PermissionHandler) DeleteBatch(c *gin.Context) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	if err := h.permissionService.RemoveBatch(c.Request.Context(), req.IDs); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// UpdateStatus 启用或禁用权限
// PATCH /api/permission/updateStatus/:id?status=
func (h *PermissionHandler) UpdateStatus(c *gin.Context) {
	if err := h.permissionService.UpdateStatus(c.Request.Context(), c.Param("id"), c.Query("status")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "状态已更新", nil)
}

// Export 导出权限
// GET /api/permission/export
func (h *PermissionHandler) Export(c *gin.Context) {
	var req PermissionPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalid(c, err)
		return
	}

	perms, _, err := h.permissionService.FindPage(c.Request.Context(), req.filter(), repository.NewPagination(1, export.MaxRows))
	if err != nil {
		fail(c, err)
		return
	}
	sendExport(c, h.catalog, schema.EntityPermission, perms)
}
