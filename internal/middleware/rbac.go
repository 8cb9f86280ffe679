package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
	"go.uber.org/zap"
)

// PermissionChecker 判断用户是否拥有权限编码
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, code string) (bool, error)
}

// RequirePermission 权限检查中间件，需在 JWTAuth 之后使用
func RequirePermission(checker PermissionChecker, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			response.AbortWithError(c, http.StatusUnauthorized, response.MessageOf(http.StatusUnauthorized))
			return
		}

		ok, err := checker.HasPermission(c.Request.Context(), userID, code)
		if err != nil {
			logger.Error("权限检查失败",
				zap.String("user_id", userID),
				zap.String("permission", code),
				zap.Error(err),
			)
			response.AbortWithError(c, http.StatusInternalServerError, response.MessageOf(http.StatusInternalServerError))
			return
		}
		if !ok {
			response.AbortWithError(c, http.StatusForbidden, "没有权限执行此操作")
			return
		}
		c.Next()
	}
}
