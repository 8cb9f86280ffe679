package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/middleware"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
)

// AuthHandler 登录与当前用户处理器
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authSvc}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// Login 用户登录
// POST /api/user/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "登录成功", result)
}

// Logout 退出登录
// POST /api/user/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetString(middleware.ContextToken)); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "已退出登录", nil)
}

// Info 当前用户资料、角色和权限
// GET /api/user/info
func (h *AuthHandler) Info(c *gin.Context) {
	info, err := h.authService.Info(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, info)
}

// ChangePassword 修改当前用户密码，成功后所有会话下线
// POST /api/user/changePassword
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMsg(c, "密码已修改，请重新登录", nil)
}

// Sessions 当前用户的登录会话
// GET /api/user/sessions
func (h *AuthHandler) Sessions(c *gin.Context) {
	sessions, err := h.authService.Sessions(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sessions)
}
