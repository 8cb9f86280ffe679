// Package response 统一响应结构
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CodeSuccess 成功状态码，错误时 code 与 HTTP 状态码一致
const CodeSuccess = http.StatusOK

// Result 标准响应结构
// msg 与 message 内容相同，兼容两种前端读取方式
type Result struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// PageResult 分页数据
type PageResult[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Size    int   `json:"size"`
	Current int   `json:"current"`
	Pages   int64 `json:"pages"`
}

// ErrorResult 错误响应结构
type ErrorResult struct {
	Code       int    `json:"code"`
	Msg        string `json:"msg"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
}

// 默认消息
var statusMessages = map[int]string{
	http.StatusOK:                  "操作成功",
	http.StatusBadRequest:          "请求参数无效",
	http.StatusUnauthorized:        "登录已过期，请重新登录",
	http.StatusForbidden:           "无权访问该资源",
	http.StatusNotFound:            "资源不存在",
	http.StatusTooManyRequests:     "请求过于频繁，请稍后重试",
	http.StatusInternalServerError: "服务器内部错误，请稍后重试",
	http.StatusServiceUnavailable:  "服务暂时不可用",
}

// MessageOf 状态码对应的默认消息
func MessageOf(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "未知错误"
}

// NewPage 组装分页数据，records 为 nil 时输出空数组
func NewPage[T any](records []T, total int64, current, size int) *PageResult[T] {
	if records == nil {
		records = []T{}
	}
	var pages int64
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	return &PageResult[T]{
		Records: records,
		Total:   total,
		Size:    size,
		Current: current,
		Pages:   pages,
	}
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	SuccessWithMsg(c, statusMessages[http.StatusOK], data)
}

// SuccessWithMsg 成功响应（自定义消息）
func SuccessWithMsg(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Result{
		Code:    CodeSuccess,
		Msg:     msg,
		Message: msg,
		Data:    data,
	})
}

// Page 分页响应
func Page[T any](c *gin.Context, records []T, total int64, current, size int) {
	Success(c, NewPage(records, total, current, size))
}

// Error 错误响应（默认消息）
func Error(c *gin.Context, status int) {
	ErrorWithMsg(c, status, MessageOf(status))
}

// ErrorWithMsg 错误响应（自定义消息）
func ErrorWithMsg(c *gin.Context, status int, msg string) {
	c.JSON(status, NewError(c, status, msg))
}

// AbortWithError 写入错误响应并终止后续处理
func AbortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, NewError(c, status, msg))
}

// NewError 构造错误响应体
func NewError(c *gin.Context, status int, msg string) ErrorResult {
	return ErrorResult{
		Code:       status,
		Msg:        msg,
		Message:    msg,
		Success:    false,
		StatusCode: status,
		Error:      http.StatusText(status),
		Timestamp:  time.Now().Format(time.RFC3339),
		Path:       c.Request.URL.Path,
	}
}
