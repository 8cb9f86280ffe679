package client

import "time"

// User 用户
type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Nickname      string     `json:"nickname"`
	Avatar        string     `json:"avatar"`
	Status        string     `json:"status"`
	LastLoginTime *time.Time `json:"lastLoginTime"`
	LastLoginIP   string     `json:"lastLoginIp"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Role 角色
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Sort        int       `json:"sort"`
	Status      string    `json:"status"`
	IsSystem    bool      `json:"isSystem"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Permission 权限，树形接口返回 Children
type Permission struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Code      string        `json:"code"`
	Type      string        `json:"type"`
	Path      string        `json:"path"`
	Icon      string        `json:"icon"`
	Sort      int           `json:"sort"`
	Status    string        `json:"status"`
	IsSystem  bool          `json:"isSystem"`
	ParentID  string        `json:"parentId"`
	Children  []*Permission `json:"children,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// UserInfo 当前用户资料
type UserInfo struct {
	User        *User         `json:"user"`
	Roles       []string      `json:"roles"`
	Permissions []string      `json:"permissions"`
	Menus       []*Permission `json:"menus"`
}

// UserQuery 用户分页查询条件
type UserQuery struct {
	Current  int    `json:"current,omitempty"`
	Size     int    `json:"size,omitempty"`
	Username string `json:"username,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Status   string `json:"status,omitempty"`
}

// RoleInput 创建角色参数
type RoleInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Sort        int    `json:"sort"`
	Status      string `json:"status,omitempty"`
}
