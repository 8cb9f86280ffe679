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

// UserHandler 用户管理处理器
type UserHandler struct {
	userService service.UserService
	catalog     *schema.Catalog
}

// NewUserHandler 创建用户管理处理器
func NewUserHandler(userSvc service.UserService, catalog *schema.Catalog) *UserHandler {
	return &UserHandler{userService: userSvc, catalog: catalog}
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"max=20"`
	Nickname string `json:"nickname" binding:"max=100"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
}

// UpdateUserRequest 更新用户请求，缺省字段保持不变
type UpdateUserRequest struct {
	ID       string  `json:"id" binding:"required"`
	Username *string `json:"username" binding:"omitempty,min=1,max=64"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Nickname *string `json:"nickname" binding:"omitempty,max=100"`
	Avatar   *string `json:"avatar"`
	Status   *string `json:"status"`
}

// UserPageRequest 用户分页查询
type UserPageRequest struct {
	PageRequest
	Username string `json:"username" form:"username"`
	Nickname string `json:"nickname" form:"nickname"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Status   string `json:"status" form:"status"`
}

func (r *UserPageRequest) filter() *repository.UserFilter {
	return &repository.UserFilter{
		Username: r.Username,
		Nickname: r.Nickname,
		Email:    r.Email,
		Phone:    r.Phone,
		Status:   r.Status,
	}
}

// Create 创建用户
// POST /api/user/create
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	user := &model.User{
		Username: req.Username,
		Email:    model.NullString(req.Email),
		Phone:    model.NullString(req.Phone),
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Status:   req.Status,
	}
	if err := h.userService.Create(c.Request.Context(), user, req.Password); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "创建成功", user)
}

// FindPage 分页查询用户
// POST /api/user/findPage
func (h *UserHandler) FindPage(c *gin.Context) {
	var req UserPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	p := req.Pagination()
	users, total, err := h.userService.FindPage(c.Request.Context(), req.filter(), p)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, users, total, p)
}

// Get 获取用户详情
// GET /api/user/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateByID 更新用户
// POST /api/user/updateById
func (h *UserHandler) UpdateByID(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	user, err := h.userService.UpdateByID(c.Request.Context(), req.ID, &service.UserUpdate{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Status:   req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "更新成功", user)
}

// DeleteByID 删除用户
// DELETE /api/user/deleteById/:id
func (h *UserHandler) DeleteByID(c *gin.Context) {
	if err := h.userService.RemoveByID(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// DeleteBatch 批量删除用户，任一失败则全部不删除
// POST /api/user/deleteBatch
func (h *UserHandler) DeleteBatch(c *gin.Context) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	if err := h.userService.RemoveBatch(c.Request.Context(), req.IDs); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "删除成功", nil)
}

// UpdateStatus 启用或禁用用户
// PATCH /api/user/updateStatus/:id?status=
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	if err := h.userService.UpdateStatus(c.Request.Context(), c.Param("id"), c.Query("status")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "状态已更新", nil)
}

// Export 按查询条件导出用户
// GET /api/user/export
func (h *UserHandler) Export(c *gin.Context) {
	var req UserPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalid(c, err)
		return
	}

	users, _, err := h.userService.FindPage(c.Request.Context(), req.filter(), repository.NewPagination(1, export.MaxRows))
	if err != nil {
		fail(c, err)
		return
	}
	sendExport(c, h.catalog, schema.EntityUser, users)
}
