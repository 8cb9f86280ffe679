package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
)

// Entity 一个实体的字段描述
type Entity struct {
	Name    string
	Title   string
	Columns []Column
	memo    Memo
}

// Derived 派生列，结果按指纹缓存
func (e *Entity) Derived() Columns {
	return e.memo.Derive(e.Columns)
}

// Catalog 实体字段描述注册表
type Catalog struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

// NewCatalog 创建空注册表
func NewCatalog() *Catalog {
	return &Catalog{entities: make(map[string]*Entity)}
}

// Register 注册实体，名称重复时报错
func (c *Catalog) Register(name, title string, cols []Column) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entities[name]; ok {
		return fmt.Errorf("实体 %s 已注册", name)
	}
	c.entities[name] = &Entity{Name: name, Title: title, Columns: cols}
	return nil
}

// Lookup 按名称查找实体
func (c *Catalog) Lookup(name string) (*Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entities[name]
	return e, ok
}

// Names 已注册的实体名，按字母序
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entities))
	for name := range c.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// 内置实体名
const (
	EntityUser       = "user"
	EntityRole       = "role"
	EntityPermission = "permission"
)

// NewDefaultCatalog 注册用户、角色、权限三个实体
func NewDefaultCatalog() *Catalog {
	c := NewCatalog()
	_ = c.Register(EntityUser, "用户", UserColumns())
	_ = c.Register(EntityRole, "角色", RoleColumns())
	_ = c.Register(EntityPermission, "权限", PermissionColumns())
	return c
}

func required(msg string) []Rule {
	return []Rule{{Required: true, Message: msg}}
}

func statusColumn() Column {
	return Column{
		Name:  "status",
		Title: "状态",
		Type:  TypeSelect,
		Options: []Option{
			{Label: "启用", Value: model.StatusEnabled},
			{Label: "禁用", Value: model.StatusDisabled},
		},
		Width: 100,
	}
}

func createdAtColumn() Column {
	return Column{
		Name: "createdAt", Title: "创建时间", Type: TypeDatetime, Width: 180,
		HiddenInSearch: true, HiddenInCreate: true, HiddenInEdit: true,
	}
}

func systemColumn() Column {
	return Column{
		Name: "isSystem", Title: "系统内置", Type: TypeSwitch, Width: 100,
		HiddenInSearch: true, HiddenInCreate: true, HiddenInEdit: true,
	}
}

// UserColumns 用户字段
func UserColumns() []Column {
	min6 := 6
	return []Column{
		{Name: "username", Title: "用户名", Type: TypeInput, Rules: required("用户名不能为空"), Width: 140},
		{
			Name: "password", Title: "密码", Type: TypePassword,
			Rules:          []Rule{{Required: true, Message: "密码不能为空"}, {Min: &min6, Message: "密码长度不能少于 6 位"}},
			HiddenInSearch: true, HiddenInTable: true, HiddenInDetail: true,
		},
		{Name: "nickname", Title: "昵称", Type: TypeInput, Width: 140},
		{Name: "email", Title: "邮箱", Type: TypeInput, Rules: []Rule{{Pattern: `^[^@\s]+@[^@\s]+$`, Message: "邮箱格式不正确"}}, Width: 200},
		{Name: "phone", Title: "手机号", Type: TypeInput, Width: 140},
		{Name: "avatar", Title: "头像", Type: TypeImage, HiddenInSearch: true, Width: 100},
		statusColumn(),
		{
			Name: "lastLoginTime", Title: "最后登录时间", Type: TypeDatetime, Width: 180,
			HiddenInSearch: true, HiddenInCreate: true, HiddenInEdit: true,
		},
		{
			Name: "lastLoginIp", Title: "最后登录 IP", Type: TypeInput, Width: 140,
			HiddenInSearch: true, HiddenInCreate: true, HiddenInEdit: true, HiddenInTable: true,
		},
		createdAtColumn(),
	}
}

// RoleColumns 角色字段
func RoleColumns() []Column {
	return []Column{
		{Name: "name", Title: "角色名称", Type: TypeInput, Rules: required("角色名称不能为空"), Width: 160},
		{Name: "code", Title: "角色编码", Type: TypeInput, Rules: required("角色编码不能为空"), Width: 160},
		{Name: "description", Title: "描述", Type: TypeTextarea, HiddenInSearch: true},
		{Name: "sort", Title: "排序", Type: TypeNumber, HiddenInSearch: true, Width: 80},
		statusColumn(),
		systemColumn(),
		createdAtColumn(),
	}
}

// PermissionColumns 权限字段
func PermissionColumns() []Column {
	return []Column{
		{Name: "name", Title: "权限名称", Type: TypeInput, Rules: required("权限名称不能为空"), Width: 160},
		{Name: "code", Title: "权限编码", Type: TypeInput, Rules: required("权限编码不能为空"), Width: 200},
		{
			Name: "type", Title: "权限类型", Type: TypeSelect, Rules: required("请选择权限类型"), Width: 100,
			Options: []Option{
				{Label: "菜单", Value: model.PermissionTypeMenu},
				{Label: "按钮", Value: model.PermissionTypeButton},
				{Label: "接口", Value: model.PermissionTypeAPI},
			},
		},
		{
			Name: "parentId", Title: "上级权限", Type: TypeTreeSelect,
			FieldProps:     map[string]any{"dataSource": "/api/permission/tree"},
			HiddenInSearch: true, HiddenInTable: true,
		},
		{Name: "path", Title: "路由地址", Type: TypeInput, HiddenInSearch: true, Width: 180},
		{Name: "component", Title: "组件路径", Type: TypeInput, HiddenInSearch: true, HiddenInTable: true},
		{
			Name: "method", Title: "请求方法", Type: TypeSelect, HiddenInSearch: true, HiddenInTable: true,
			Options: []Option{
				{Label: "GET", Value: "GET"}, {Label: "POST", Value: "POST"}, {Label: "PUT", Value: "PUT"},
				{Label: "PATCH", Value: "PATCH"}, {Label: "DELETE", Value: "DELETE"},
			},
		},
		{Name: "apiPath", Title: "接口路径", Type: TypeInput, HiddenInSearch: true, HiddenInTable: true},
		{Name: "icon", Title: "图标", Type: TypeInput, HiddenInSearch: true, Width: 100},
		{Name: "sort", Title: "排序", Type: TypeNumber, HiddenInSearch: true, Width: 80},
		statusColumn(),
		systemColumn(),
		createdAtColumn(),
	}
}
