package model

// 系统内置权限编码，路由鉴权使用
const (
	PermSystem = "system"

	PermUser       = "system:user"
	PermUserCreate = "system:user:create"
	PermUserUpdate = "system:user:update"
	PermUserDelete = "system:user:delete"
	PermUserAssign = "system:user:assign"
	PermUserExport = "system:user:export"

	PermRole       = "system:role"
	PermRoleCreate = "system:role:create"
	PermRoleUpdate = "system:role:update"
	PermRoleDelete = "system:role:delete"
	PermRoleAssign = "system:role:assign"

	PermPermission       = "system:permission"
	PermPermissionCreate = "system:permission:create"
	PermPermissionUpdate = "system:permission:update"
	PermPermissionDelete = "system:permission:delete"
)

// SeedPermission 初始化权限，父节点用编码引用
type SeedPermission struct {
	Permission
	ParentCode string
}

// DefaultSystemRoles 系统默认角色列表
func DefaultSystemRoles() []Role {
	return []Role{
		{
			Name:        "超级管理员",
			Code:        RoleSuperAdmin,
			Description: "拥有系统所有权限",
			Sort:        0,
			Status:      StatusEnabled,
			IsSystem:    true,
		},
		{
			Name:        "管理员",
			Code:        RoleAdmin,
			Description: "系统管理菜单的日常维护",
			Sort:        1,
			Status:      StatusEnabled,
			IsSystem:    true,
		},
	}
}

// DefaultSystemPermissions 系统默认权限树，父节点在前
func DefaultSystemPermissions() []SeedPermission {
	menu := func(code, name, path, component, icon string, sort int, parent string) SeedPermission {
		return SeedPermission{
			Permission: Permission{
				Name: name, Code: code, Type: PermissionTypeMenu, Path: path, Component: component,
				Icon: icon, Sort: sort, Status: StatusEnabled, IsSystem: true,
			},
			ParentCode: parent,
		}
	}
	button := func(code, name string, sort int, parent string) SeedPermission {
		return SeedPermission{
			Permission: Permission{
				Name: name, Code: code, Type: PermissionTypeButton,
				Sort: sort, Status: StatusEnabled, IsSystem: true,
			},
			ParentCode: parent,
		}
	}

	return []SeedPermission{
		menu(PermSystem, "系统管理", "/system", "", "IconSetting", 0, ""),

		menu(PermUser, "用户管理", "/system/user", "system/user/index", "IconUser", 0, PermSystem),
		button(PermUserCreate, "新增用户", 0, PermUser),
		button(PermUserUpdate, "编辑用户", 1, PermUser),
		button(PermUserDelete, "删除用户", 2, PermUser),
		button(PermUserAssign, "分配角色", 3, PermUser),
		button(PermUserExport, "导出用户", 4, PermUser),

		menu(PermRole, "角色管理", "/system/role", "system/role/index", "IconUserGroup", 1, PermSystem),
		button(PermRoleCreate, "新增角色", 0, PermRole),
		button(PermRoleUpdate, "编辑角色", 1, PermRole),
		button(PermRoleDelete, "删除角色", 2, PermRole),
		button(PermRoleAssign, "分配权限", 3, PermRole),

		menu(PermPermission, "权限管理", "/system/permission", "system/permission/index", "IconLock", 2, PermSystem),
		button(PermPermissionCreate, "新增权限", 0, PermPermission),
		button(PermPermissionUpdate, "编辑权限", 1, PermPermission),
		button(PermPermissionDelete, "删除权限", 2, PermPermission),
	}
}
