package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

// Role 角色模型
type Role struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Code        string `gorm:"type:varchar(64);not null;uniqueIndex:uk_roles_code" json:"code"` // 角色编码，如 super_admin
	Description string `gorm:"type:varchar(500)" json:"description"`
	Sort        int    `gorm:"default:0" json:"sort"`
	Status      string `gorm:"type:varchar(20);default:enabled" json:"status"`
	IsSystem    bool   `gorm:"default:false" json:"isSystem"` // 系统内置角色不可删除

	DeletedAt soft_delete.DeletedAt `gorm:"softDelete:milli;default:0;index;uniqueIndex:uk_roles_code" json:"-"`
}

// TableName 指定表名
func (Role) TableName() string {
	return "roles"
}

// IsEnabled 检查角色是否启用
func (r *Role) IsEnabled() bool {
	return r.Status == StatusEnabled
}

// 权限类型
const (
	PermissionTypeMenu   = "MENU"
	PermissionTypeButton = "BUTTON"
	PermissionTypeAPI    = "API"
)

// Permission 权限模型，菜单/按钮/接口三类共用
type Permission struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Code      string `gorm:"type:varchar(150);not null;uniqueIndex:uk_permissions_code" json:"code"` // 权限编码，如 system:user:create
	Type      string `gorm:"type:varchar(10);not null" json:"type"`
	Path      string `gorm:"type:varchar(255)" json:"path"`      // 菜单路由
	Component string `gorm:"type:varchar(255)" json:"component"` // 菜单组件
	Method    string `gorm:"type:varchar(10)" json:"method"`     // 接口方法
	APIPath   string `gorm:"type:varchar(255)" json:"apiPath"`   // 接口路径
	Icon      string `gorm:"type:varchar(100)" json:"icon"`
	Sort      int    `gorm:"default:0" json:"sort"`
	Status    string `gorm:"type:varchar(20);default:enabled" json:"status"`
	IsSystem  bool   `gorm:"default:false" json:"isSystem"`
	ParentID  string `gorm:"type:varchar(36);index;default:'-1'" json:"parentId"`

	DeletedAt soft_delete.DeletedAt `gorm:"softDelete:milli;default:0;index;uniqueIndex:uk_permissions_code" json:"-"`

	Children []*Permission `gorm:"-" json:"children,omitempty"`
}

// TableName 指定表名
func (Permission) TableName() string {
	return "permissions"
}

// IsEnabled 检查权限是否启用
func (p *Permission) IsEnabled() bool {
	return p.Status == StatusEnabled
}

// ValidPermissionType 检查权限类型是否合法
func ValidPermissionType(t string) bool {
	switch t {
	case PermissionTypeMenu, PermissionTypeButton, PermissionTypeAPI:
		return true
	}
	return false
}

// UserRole 用户角色关联，整体替换时物理删除
type UserRole struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(36);not null;uniqueIndex:uk_user_role" json:"userId"`
	RoleID    string    `gorm:"type:char(36);not null;uniqueIndex:uk_user_role;index" json:"roleId"`
	CreatedBy string    `gorm:"type:varchar(64)" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (UserRole) TableName() string {
	return "user_roles"
}

// BeforeCreate 创建前自动生成 UUID
func (ur *UserRole) BeforeCreate(tx *gorm.DB) error {
	if ur.ID == "" {
		ur.ID = uuid.New().String()
	}
	return nil
}

// RolePermission 角色权限关联，整体替换时物理删除
type RolePermission struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	RoleID       string    `gorm:"type:char(36);not null;uniqueIndex:uk_role_permission" json:"roleId"`
	PermissionID string    `gorm:"type:char(36);not null;uniqueIndex:uk_role_permission;index" json:"permissionId"`
	CreatedBy    string    `gorm:"type:varchar(64)" json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (RolePermission) TableName() string {
	return "role_permissions"
}

// BeforeCreate 创建前自动生成 UUID
func (rp *RolePermission) BeforeCreate(tx *gorm.DB) error {
	if rp.ID == "" {
		rp.ID = uuid.New().String()
	}
	return nil
}

// 系统内置角色编码
const (
	RoleSuperAdmin = "super_admin" // 超级管理员
	RoleAdmin      = "admin"       // 管理员
)

// BuildPermissionTree 按 ParentID 组装权限树，同级按 Sort 升序
// 父节点不在列表中的权限作为顶级节点
func BuildPermissionTree(perms []*Permission) []*Permission {
	byID := make(map[string]*Permission, len(perms))
	for _, p := range perms {
		p.Children = nil
		byID[p.ID] = p
	}

	roots := make([]*Permission, 0)
	for _, p := range perms {
		if parent, ok := byID[p.ParentID]; ok && p.ParentID != p.ID {
			parent.Children = append(parent.Children, p)
			continue
		}
		roots = append(roots, p)
	}
	sortPermissions(roots)
	return roots
}

func sortPermissions(list []*Permission) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Sort < list[j].Sort })
	for _, p := range list {
		if len(p.Children) > 0 {
			sortPermissions(p.Children)
		}
	}
}
