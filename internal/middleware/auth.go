// Package middleware HTTP 中间件
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
	"go.uber.org/zap"
)

// 上下文键
const (
	ContextRequestID = "request_id"
	ContextUserID    = "user_id"
	ContextUsername  = "username"
	ContextClaims    = "claims"
	ContextToken     = "token"
)

// Authenticator 校验访问令牌
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*service.TokenClaims, error)
}

// JWTAuth 认证中间件，令牌有效且会话未撤销才放行
func JWTAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			response.AbortWithError(c, http.StatusUnauthorized, "未提供认证令牌")
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if service.KindOf(err) == service.KindUnauthorized {
				response.AbortWithError(c, http.StatusUnauthorized, err.Error())
				return
			}
			logger.Error("认证失败", zap.String("request_id", c.GetString(ContextRequestID)), zap.Error(err))
			response.AbortWithError(c, http.StatusInternalServerError, response.MessageOf(http.StatusInternalServerError))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextClaims, claims)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// BearerToken 从 Authorization 头取出令牌
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetUserID 当前登录用户 ID
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// GetUsername 当前登录用户名
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsername)
}
