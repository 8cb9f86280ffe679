// Package service 业务逻辑层
package service

import (
	"errors"
	"fmt"
)

// ErrorKind 业务错误分类，决定 HTTP 状态码
type ErrorKind int

const (
	KindBadRequest ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
)

// Error 业务错误
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// BadRequest 参数或业务规则错误
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// NotFound 资源不存在
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized 未认证
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden 无权限
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// KindOf 取错误分类，非业务错误返回 0
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

var (
	ErrUserNotFound       = NotFound("用户不存在")
	ErrUsernameExists     = BadRequest("用户名已存在")
	ErrEmailExists        = BadRequest("邮箱已被使用")
	ErrPhoneExists        = BadRequest("手机号已被使用")
	ErrUserDuplicate      = BadRequest("用户名、邮箱或手机号已被使用")
	ErrPasswordTooShort   = BadRequest("密码长度不能少于 6 位")
	ErrInvalidCredentials = Unauthorized("用户名或密码错误")
	ErrUserDisabled       = Forbidden("用户已被禁用")

	ErrRoleNotFound       = NotFound("角色不存在")
	ErrRoleCodeExists     = BadRequest("角色编码已存在")
	ErrSystemRole         = BadRequest("系统内置角色不能删除")
	ErrSystemRoleReadonly = BadRequest("系统内置角色不能修改名称和编码")

	ErrPermissionNotFound   = NotFound("权限不存在")
	ErrPermissionCodeExists = BadRequest("权限编码已存在")
	ErrSystemPermission     = BadRequest("系统内置权限不能删除")
	ErrPermissionHasChild   = BadRequest("存在子权限，不能删除")
	ErrInvalidParent        = BadRequest("父级权限不合法")
	ErrInvalidPermType      = BadRequest("权限类型必须为 MENU、BUTTON 或 API")

	ErrInvalidStatus   = BadRequest("状态值不合法")
	ErrEmptyIDs        = BadRequest("ID 列表不能为空")
	ErrDuplicateRecord = BadRequest("数据已存在")

	ErrAssignmentNotFound = NotFound("关联关系不存在")
	ErrAssignmentConflict = BadRequest("关联关系已被修改，请刷新后重试")

	ErrInvalidToken   = Unauthorized("令牌无效或已过期")
	ErrSessionRevoked = Unauthorized("登录已失效，请重新登录")
	ErrForbidden      = Forbidden("没有权限执行此操作")
)
