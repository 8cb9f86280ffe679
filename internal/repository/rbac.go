package repository

import (
	"context"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"gorm.io/gorm"
)

// RoleFilter 角色查询条件
type RoleFilter struct {
	Name   string
	Code   string
	Status string
}

// RoleRepository 角色仓库接口
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	GetByID(ctx context.Context, id string) (*model.Role, error)
	GetByCode(ctx context.Context, code string) (*model.Role, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Role, error)
	ListEnabled(ctx context.Context) ([]*model.Role, error)
	Update(ctx context.Context, role *model.Role) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, ids ...string) error
	FindPage(ctx context.Context, filter *RoleFilter, page *Pagination) ([]*model.Role, int64, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
}

// PermissionFilter 权限查询条件
type PermissionFilter struct {
	Name     string
	Code     string
	Type     string
	Status   string
	ParentID string
}

// PermissionRepository 权限仓库接口
type PermissionRepository interface {
	Create(ctx context.Context, perm *model.Permission) error
	GetByID(ctx context.Context, id string) (*model.Permission, error)
	GetByCode(ctx context.Context, code string) (*model.Permission, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Permission, error)
	// ListAll 列出全部权限，status 为空时不过滤
	ListAll(ctx context.Context, status string) ([]*model.Permission, error)
	Update(ctx context.Context, perm *model.Permission) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, ids ...string) error
	FindPage(ctx context.Context, filter *PermissionFilter, page *Pagination) ([]*model.Permission, int64, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	// CountChildren 统计 parentIDs 下未删除的子权限，excludeIDs 中的不计
	CountChildren(ctx context.Context, parentIDs, excludeIDs []string) (int64, error)
}

// roleRepository 角色仓库实现
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓库
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return conn(ctx, r.db).Create(role).Error
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*model.Role, error) {
	var role model.Role
	if err := conn(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	if err := conn(ctx, r.db).First(&role, "code = ?", code).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *roleRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Role, error) {
	var roles []*model.Role
	if len(ids) == 0 {
		return roles, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) ListEnabled(ctx context.Context) ([]*model.Role, error) {
	var roles []*model.Role
	err := conn(ctx, r.db).
		Where("status = ?", model.StatusEnabled).
		Order("sort ASC").Order("created_at DESC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) Update(ctx context.Context, role *model.Role) error {
	return conn(ctx, r.db).Save(role).Error
}

func (r *roleRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return conn(ctx, r.db).Model(&model.Role{}).Where("id = ?", id).Update("status", status).Error
}

func (r *roleRepository) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("id IN ?", ids).Delete(&model.Role{}).Error
}

func (r *roleRepository) FindPage(ctx context.Context, filter *RoleFilter, page *Pagination) ([]*model.Role, int64, error) {
	var roles []*model.Role
	var total int64

	query := conn(ctx, r.db).Model(&model.Role{})
	if filter != nil {
		if filter.Name != "" {
			query = query.Where("name LIKE ?", "%"+filter.Name+"%")
		}
		if filter.Code != "" {
			query = query.Where("code LIKE ?", "%"+filter.Code+"%")
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(query, page).Order("sort ASC").Order("created_at DESC").Find(&roles).Error; err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

func (r *roleRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&model.Role{}).Where("code = ?", code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// permissionRepository 权限仓库实现
type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository 创建权限仓库
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) Create(ctx context.Context, perm *model.Permission) error {
	return conn(ctx, r.db).Create(perm).Error
}

func (r *permissionRepository) GetByID(ctx context.Context, id string) (*model.Permission, error) {
	var perm model.Permission
	if err := conn(ctx, r.db).First(&perm, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &perm, nil
}

func (r *permissionRepository) GetByCode(ctx context.Context, code string) (*model.Permission, error) {
	var perm model.Permission
	if err := conn(ctx, r.db).First(&perm, "code = ?", code).Error; err != nil {
		return nil, notFound(err)
	}
	return &perm, nil
}

func (r *permissionRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Permission, error) {
	var perms []*model.Permission
	if len(ids) == 0 {
		return perms, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) ListAll(ctx context.Context, status string) ([]*model.Permission, error) {
	var perms []*model.Permission
	query := conn(ctx, r.db)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("sort ASC").Order("created_at ASC").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) Update(ctx context.Context, perm *model.Permission) error {
	return conn(ctx, r.db).Save(perm).Error
}

func (r *permissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return conn(ctx, r.db).Model(&model.Permission{}).Where("id = ?", id).Update("status", status).Error
}

func (r *permissionRepository) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("id IN ?", ids).Delete(&model.Permission{}).Error
}

func (r *permissionRepository) FindPage(ctx context.Context, filter *PermissionFilter, page *Pagination) ([]*model.Permission, int64, error) {
	var perms []*model.Permission
	var total int64

	query := conn(ctx, r.db).Model(&model.Permission{})
	if filter != nil {
		if filter.Name != "" {
			query = query.Where("name LIKE ?", "%"+filter.Name+"%")
		}
		if filter.Code != "" {
			query = query.Where("code LIKE ?", "%"+filter.Code+"%")
		}
		if filter.Type != "" {
			query = query.Where("type = ?", filter.Type)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.ParentID != "" {
			query = query.Where("parent_id = ?", filter.ParentID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(query, page).Order("sort ASC").Order("created_at DESC").Find(&perms).Error; err != nil {
		return nil, 0, err
	}

	return perms, total, nil
}

func (r *permissionRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&model.Permission{}).Where("code = ?", code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *permissionRepository) CountChildren(ctx context.Context, parentIDs, excludeIDs []string) (int64, error) {
	var count int64
	if len(parentIDs) == 0 {
		return 0, nil
	}
	query := conn(ctx, r.db).Model(&model.Permission{}).Where("parent_id IN ?", parentIDs)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
