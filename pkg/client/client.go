// Package client 管理后台 API 客户端
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pu-ac-cn/rbac-admin/pkg/response"
	"go.uber.org/zap"
)

// ErrOverdue 登录过期，会话已清空，需要重新登录
var ErrOverdue = errors.New("登录已过期，请重新登录")

// APIError 服务端返回的业务错误
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Msg, e.Code)
}

// envelope 统一响应结构
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Client API 客户端
type Client struct {
	httpClient *resty.Client
	session    *Session
	logger     *zap.Logger
}

// Option 客户端选项
type Option func(*Client)

// WithTimeout 请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.SetTimeout(d)
	}
}

// WithRetry 网络错误重试次数
func WithRetry(count int) Option {
	return func(c *Client) {
		c.httpClient.
			SetRetryCount(count).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(3 * time.Second)
	}
}

// WithLogger 日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New 创建客户端，baseURL 形如 http://localhost:8080/api
func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession()
	}
	c := &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		session: session,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session 当前会话
func (c *Client) Session() *Session {
	return c.session
}

// do 发送请求并解出 data，携带令牌却返回 401 时清空会话
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	token := c.session.Token()
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("API 请求失败", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("请求 %s 失败: %w", path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(resp.Body(), &env)

	unauthorized := resp.StatusCode() == http.StatusUnauthorized || env.Code == http.StatusUnauthorized
	if unauthorized && token != "" {
		c.session.Clear()
		return ErrOverdue
	}
	if resp.IsError() || decodeErr != nil || env.Code != response.CodeSuccess {
		apiErr := &APIError{Code: env.Code, Msg: env.Msg}
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode()
		}
		if apiErr.Msg == "" {
			apiErr.Msg = response.MessageOf(apiErr.Code)
		}
		c.logger.Warn("API 返回错误",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("code", apiErr.Code),
			zap.String("msg", apiErr.Msg),
		)
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("解析 %s 响应失败: %w", path, err)
	}
	return nil
}

// Login 登录并写入会话
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/user/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.session.Set(result.Token, result.ExpiresAt, result.User)
	return &result, nil
}

// Logout 退出登录，无论服务端结果如何都清空会话
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Token() == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/user/logout", nil, nil)
	c.session.Clear()
	if errors.Is(err, ErrOverdue) {
		return nil
	}
	return err
}

// Info 当前用户资料
func (c *Client) Info(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.do(ctx, http.MethodGet, "/user/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// FindUsers 分页查询用户
func (c *Client) FindUsers(ctx context.Context, query *UserQuery) (*response.PageResult[User], error) {
	if query == nil {
		query = &UserQuery{}
	}
	var page response.PageResult[User]
	if err := c.do(ctx, http.MethodPost, "/user/findPage", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateRole 创建角色
func (c *Client) CreateRole(ctx context.Context, input *RoleInput) (*Role, error) {
	var role Role
	if err := c.do(ctx, http.MethodPost, "/role/create", input, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// EnabledRoles 全部启用角色
func (c *Client) EnabledRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := c.do(ctx, http.MethodGet, "/role/all/enabled", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// PermissionTree 权限树
func (c *Client) PermissionTree(ctx context.Context) ([]*Permission, error) {
	var tree []*Permission
	if err := c.do(ctx, http.MethodGet, "/permission/tree", nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// AssignRolePermissions 整体替换角色的权限
func (c *Client) AssignRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	if permissionIDs == nil {
		permissionIDs = []string{}
	}
	return c.do(ctx, http.MethodPost, "/role-permission/create", map[string]any{
		"roleId":        roleID,
		"permissionIds": permissionIDs,
	}, nil)
}

// AssignUserRoles 整体替换用户的角色
func (c *Client) AssignUserRoles(ctx context.Context, userID string, roleIDs []string) error {
	if roleIDs == nil {
		roleIDs = []string{}
	}
	return c.do(ctx, http.MethodPost, "/user-role/create", map[string]any{
		"userId":  userID,
		"roleIds": roleIDs,
	}, nil)
}

// RolePermissions 角色拥有的权限
func (c *Client) RolePermissions(ctx context.Context, roleID string) ([]Permission, error) {
	var perms []Permission
	if err := c.do(ctx, http.MethodGet, "/role-permission/role/"+roleID, nil, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// UserRoles 用户拥有的角色
func (c *Client) UserRoles(ctx context.Context, userID string) ([]Role, error) {
	var roles []Role
	if err := c.do(ctx, http.MethodGet, "/user-role/user/"+userID, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// DeleteRoles 删除角色，系统角色在本地跳过并返回
func (c *Client) DeleteRoles(ctx context.Context, roles []Role) ([]Role, error) {
	var skipped []Role
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		if r.IsSystem {
			skipped = append(skipped, r)
			continue
		}
		ids = append(ids, r.ID)
	}

	switch len(ids) {
	case 0:
		return skipped, nil
	case 1:
		return skipped, c.do(ctx, http.MethodDelete, "/role/deleteById/"+ids[0], nil, nil)
	}
	return skipped, c.do(ctx, http.MethodPost, "/role/deleteBatch", map[string]any{"ids": ids}, nil)
}
