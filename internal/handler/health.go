package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
)

// Pinger 依赖连通性检查
type Pinger func(ctx context.Context) error

// HealthHandler 健康检查处理器
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler 创建健康检查处理器，checks 以依赖名为键
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Check 健康检查，任一依赖异常时返回 503
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	healthy := true
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			status[name] = "error"
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		status["status"] = "error"
		c.JSON(http.StatusServiceUnavailable, response.Result{
			Code:    http.StatusServiceUnavailable,
			Msg:     response.MessageOf(http.StatusServiceUnavailable),
			Message: response.MessageOf(http.StatusServiceUnavailable),
			Data:    status,
		})
		return
	}
	response.Success(c, status)
}
