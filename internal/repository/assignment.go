package repository

import (
	"context"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"gorm.io/gorm"
)

// UserRoleFilter 用户角色关联查询条件
type UserRoleFilter struct {
	UserID string
	RoleID string
}

// UserRoleRepository 用户角色关联仓库接口
type UserRoleRepository interface {
	CreateBatch(ctx context.Context, rows []*model.UserRole) error
	// Delete 删除单条关联，返回删除行数
	Delete(ctx context.Context, userID, roleID string) (int64, error)
	DeleteByUserID(ctx context.Context, userIDs ...string) (int64, error)
	DeleteByRoleID(ctx context.Context, roleIDs ...string) (int64, error)
	FindPage(ctx context.Context, filter *UserRoleFilter, page *Pagination) ([]*model.UserRole, int64, error)
	// ListRolesByUserID 用户拥有的启用且未删除的角色
	ListRolesByUserID(ctx context.Context, userID string) ([]*model.Role, error)
	// ListUsersByRoleID 拥有该角色的启用且未删除的用户
	ListUsersByRoleID(ctx context.Context, roleID string) ([]*model.User, error)
	HasRoleCode(ctx context.Context, userID, roleCode string) (bool, error)
}

// RolePermissionFilter 角色权限关联查询条件
type RolePermissionFilter struct {
	RoleID       string
	PermissionID string
}

// RolePermissionRepository 角色权限关联仓库接口
type RolePermissionRepository interface {
	CreateBatch(ctx context.Context, rows []*model.RolePermission) error
	Delete(ctx context.Context, roleID, permissionID string) (int64, error)
	DeleteByRoleID(ctx context.Context, roleIDs ...string) (int64, error)
	DeleteByPermissionID(ctx context.Context, permissionIDs ...string) (int64, error)
	FindPage(ctx context.Context, filter *RolePermissionFilter, page *Pagination) ([]*model.RolePermission, int64, error)
	// ListPermissionsByRoleID 角色拥有的启用且未删除的权限
	ListPermissionsByRoleID(ctx context.Context, roleID string) ([]*model.Permission, error)
	// ListRolesByPermissionID 拥有该权限的启用且未删除的角色
	ListRolesByPermissionID(ctx context.Context, permissionID string) ([]*model.Role, error)
	// ListPermissionsByRoleIDs 多个角色的权限并集
	ListPermissionsByRoleIDs(ctx context.Context, roleIDs []string) ([]*model.Permission, error)
}

// userRoleRepository 用户角色关联仓库实现
type userRoleRepository struct {
	db *gorm.DB
}

// NewUserRoleRepository 创建用户角色关联仓库
func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &userRoleRepository{db: db}
}

func (r *userRoleRepository) CreateBatch(ctx context.Context, rows []*model.UserRole) error {
	if len(rows) == 0 {
		return nil
	}
	return conn(ctx, r.db).CreateInBatches(rows, 100).Error
}

func (r *userRoleRepository) Delete(ctx context.Context, userID, roleID string) (int64, error) {
	result := conn(ctx, r.db).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&model.UserRole{})
	return result.RowsAffected, result.Error
}

func (r *userRoleRepository) DeleteByUserID(ctx context.Context, userIDs ...string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("user_id IN ?", userIDs).Delete(&model.UserRole{})
	return result.RowsAffected, result.Error
}

func (r *userRoleRepository) DeleteByRoleID(ctx context.Context, roleIDs ...string) (int64, error) {
	if len(roleIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("role_id IN ?", roleIDs).Delete(&model.UserRole{})
	return result.RowsAffected, result.Error
}

func (r *userRoleRepository) FindPage(ctx context.Context, filter *UserRoleFilter, page *Pagination) ([]*model.UserRole, int64, error) {
	var rows []*model.UserRole
	var total int64

	query := conn(ctx, r.db).Model(&model.UserRole{})
	if filter != nil {
		if filter.UserID != "" {
			query = query.Where("user_id = ?", filter.UserID)
		}
		if filter.RoleID != "" {
			query = query.Where("role_id = ?", filter.RoleID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(query, page).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *userRoleRepository) ListRolesByUserID(ctx context.Context, userID string) ([]*model.Role, error) {
	var roles []*model.Role
	err := conn(ctx, r.db).Model(&model.Role{}).
		Select("roles.*").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.status = ?", userID, model.StatusEnabled).
		Order("roles.sort ASC").Order("user_roles.created_at DESC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *userRoleRepository) ListUsersByRoleID(ctx context.Context, roleID string) ([]*model.User, error) {
	var users []*model.User
	err := conn(ctx, r.db).Model(&model.User{}).
		Select("users.*").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role_id = ? AND users.status = ?", roleID, model.StatusEnabled).
		Order("user_roles.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRoleRepository) HasRoleCode(ctx context.Context, userID, roleCode string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.code = ?", userID, roleCode).
		Where("roles.status = ? AND roles.deleted_at = 0", model.StatusEnabled).
		Count(&count).Error
	return count > 0, err
}

// rolePermissionRepository 角色权限关联仓库实现
type rolePermissionRepository struct {
	db *gorm.DB
}

// NewRolePermissionRepository 创建角色权限关联仓库
func NewRolePermissionRepository(db *gorm.DB) RolePermissionRepository {
	return &rolePermissionRepository{db: db}
}

func (r *rolePermissionRepository) CreateBatch(ctx context.Context, rows []*model.RolePermission) error {
	if len(rows) == 0 {
		return nil
	}
	return conn(ctx, r.db).CreateInBatches(rows, 100).Error
}

func (r *rolePermissionRepository) Delete(ctx context.Context, roleID, permissionID string) (int64, error) {
	result := conn(ctx, r.db).Where("role_id = ? AND permission_id = ?", roleID, permissionID).Delete(&model.RolePermission{})
	return result.RowsAffected, result.Error
}

func (r *rolePermissionRepository) DeleteByRoleID(ctx context.Context, roleIDs ...string) (int64, error) {
	if len(roleIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("role_id IN ?", roleIDs).Delete(&model.RolePermission{})
	return result.RowsAffected, result.Error
}

func (r *rolePermissionRepository) DeleteByPermissionID(ctx context.Context, permissionIDs ...string) (int64, error) {
	if len(permissionIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("permission_id IN ?", permissionIDs).Delete(&model.RolePermission{})
	return result.RowsAffected, result.Error
}

func (r *rolePermissionRepository) FindPage(ctx context.Context, filter *RolePermissionFilter, page *Pagination) ([]*model.RolePermission, int64, error) {
	var rows []*model.RolePermission
	var total int64

	query := conn(ctx, r.db).Model(&model.RolePermission{})
	if filter != nil {
		if filter.RoleID != "" {
			query = query.Where("role_id = ?", filter.RoleID)
		}
		if filter.PermissionID != "" {
			query = query.Where("permission_id = ?", filter.PermissionID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(query, page).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *rolePermissionRepository) ListPermissionsByRoleID(ctx context.Context, roleID string) ([]*model.Permission, error) {
	var perms []*model.Permission
	err := conn(ctx, r.db).Model(&model.Permission{}).
		Select("permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ? AND permissions.status = ?", roleID, model.StatusEnabled).
		Order("permissions.sort ASC").Order("role_permissions.created_at DESC").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *rolePermissionRepository) ListRolesByPermissionID(ctx context.Context, permissionID string) ([]*model.Role, error) {
	var roles []*model.Role
	err := conn(ctx, r.db).Model(&model.Role{}).
		Select("roles.*").
		Joins("JOIN role_permissions ON role_permissions.role_id = roles.id").
		Where("role_permissions.permission_id = ? AND roles.status = ?", permissionID, model.StatusEnabled).
		Order("roles.sort ASC").Order("role_permissions.created_at DESC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *rolePermissionRepository) ListPermissionsByRoleIDs(ctx context.Context, roleIDs []string) ([]*model.Permission, error) {
	var perms []*model.Permission
	if len(roleIDs) == 0 {
		return perms, nil
	}
	sub := conn(ctx, r.db).Model(&model.RolePermission{}).Select("permission_id").Where("role_id IN ?", roleIDs)
	err := conn(ctx, r.db).
		Where("id IN (?) AND status = ?", sub, model.StatusEnabled).
		Order("sort ASC").Order("created_at ASC").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}
