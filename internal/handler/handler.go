// Package handler HTTP 处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
	"go.uber.org/zap"
)

// PageRequest 分页参数
type PageRequest struct {
	Current int `json:"current" form:"current"`
	Size    int `json:"size" form:"size"`
}

// Pagination 转为仓库分页参数
func (p PageRequest) Pagination() *repository.Pagination {
	return repository.NewPagination(p.Current, p.Size)
}

// IDsRequest 批量删除请求
type IDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

// fail 按业务错误分类写入错误响应，未知错误记日志后返回 500
func fail(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindBadRequest:
		response.ErrorWithMsg(c, http.StatusBadRequest, err.Error())
	case service.KindUnauthorized:
		response.ErrorWithMsg(c, http.StatusUnauthorized, err.Error())
	case service.KindForbidden:
		response.ErrorWithMsg(c, http.StatusForbidden, err.Error())
	case service.KindNotFound:
		response.ErrorWithMsg(c, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError)
	}
}

// invalid 参数绑定失败
func invalid(c *gin.Context, err error) {
	response.ErrorWithMsg(c, http.StatusBadRequest, "参数错误: "+err.Error())
}

// page 写入分页响应
func page[T any](c *gin.Context, records []T, total int64, p *repository.Pagination) {
	response.Page(c, records, total, p.Current, p.Size)
}
