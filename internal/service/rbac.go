package service

import (
	"context"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
)

// ErrSystemRoleDisable 系统角色不可禁用
var ErrSystemRoleDisable = BadRequest("系统内置角色不能禁用")

// RoleUpdate 角色更新内容，nil 字段保持不变
type RoleUpdate struct {
	Name        *string
	Code        *string
	Description *string
	Sort        *int
	Status      *string
}

// RoleService 角色服务接口
type RoleService interface {
	Create(ctx context.Context, role *model.Role) error
	GetByID(ctx context.Context, id string) (*model.Role, error)
	FindPage(ctx context.Context, filter *repository.RoleFilter, page *repository.Pagination) ([]*model.Role, int64, error)
	ListEnabled(ctx context.Context) ([]*model.Role, error)
	UpdateByID(ctx context.Context, id string, input *RoleUpdate) (*model.Role, error)
	RemoveByID(ctx context.Context, id string) error
	RemoveBatch(ctx context.Context, ids []string) error
	UpdateStatus(ctx context.Context, id, status string) error
}

type roleService struct {
	tx                 repository.Transactor
	roleRepo           repository.RoleRepository
	userRoleRepo       repository.UserRoleRepository
	rolePermissionRepo repository.RolePermissionRepository
}

// NewRoleService 创建角色服务
func NewRoleService(tx repository.Transactor, roleRepo repository.RoleRepository, userRoleRepo repository.UserRoleRepository, rolePermissionRepo repository.RolePermissionRepository) RoleService {
	return &roleService{
		tx:                 tx,
		roleRepo:           roleRepo,
		userRoleRepo:       userRoleRepo,
		rolePermissionRepo: rolePermissionRepo,
	}
}

func (s *roleService) Create(ctx context.Context, role *model.Role) error {
	if role.Status == "" {
		role.Status = model.StatusEnabled
	} else if status, ok := model.ParseStatus(role.Status); ok {
		role.Status = status
	} else {
		return ErrInvalidStatus
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.roleRepo.ExistsByCode(ctx, role.Code, "")
		if err != nil {
			return err
		}
		if exists {
			return BadRequest("角色编码 %s 已存在", role.Code)
		}
		return asDuplicate(s.roleRepo.Create(ctx, role), ErrRoleCodeExists)
	})
}

func (s *roleService) GetByID(ctx context.Context, id string) (*model.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, ErrRoleNotFound)
	}
	return role, nil
}

func (s *roleService) FindPage(ctx context.Context, filter *repository.RoleFilter, page *repository.Pagination) ([]*model.Role, int64, error) {
	return s.roleRepo.FindPage(ctx, filter, page)
}

func (s *roleService) ListEnabled(ctx context.Context) ([]*model.Role, error) {
	return s.roleRepo.ListEnabled(ctx)
}

func (s *roleService) UpdateByID(ctx context.Context, id string, input *RoleUpdate) (*model.Role, error) {
	var role *model.Role
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		role, err = s.roleRepo.GetByID(ctx, id)
		if err != nil {
			return asNotFound(err, ErrRoleNotFound)
		}
		if input == nil {
			return nil
		}

		// 系统角色名称和编码不可修改
		if role.IsSystem {
			if (input.Name != nil && *input.Name != role.Name) || (input.Code != nil && *input.Code != role.Code) {
				return ErrSystemRoleReadonly
			}
			if input.Status != nil && *input.Status != "" && *input.Status != role.Status {
				if status, _ := model.ParseStatus(*input.Status); status == model.StatusDisabled {
					return ErrSystemRoleDisable
				}
			}
		}

		if input.Code != nil && *input.Code != "" && *input.Code != role.Code {
			exists, err := s.roleRepo.ExistsByCode(ctx, *input.Code, role.ID)
			if err != nil {
				return err
			}
			if exists {
				return BadRequest("角色编码 %s 已存在", *input.Code)
			}
			role.Code = *input.Code
		}
		if input.Name != nil && *input.Name != "" {
			role.Name = *input.Name
		}
		if input.Description != nil {
			role.Description = *input.Description
		}
		if input.Sort != nil {
			role.Sort = *input.Sort
		}
		if input.Status != nil && *input.Status != "" {
			status, ok := model.ParseStatus(*input.Status)
			if !ok {
				return ErrInvalidStatus
			}
			role.Status = status
		}
		return asDuplicate(s.roleRepo.Update(ctx, role), ErrRoleCodeExists)
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService) RemoveByID(ctx context.Context, id string) error {
	return s.RemoveBatch(ctx, []string{id})
}

// RemoveBatch 批量软删除角色，任一角色不存在或为系统角色时整体失败
func (s *roleService) RemoveBatch(ctx context.Context, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return ErrEmptyIDs
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		roles, err := s.roleRepo.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		found := make(map[string]bool, len(roles))
		for _, r := range roles {
			if r.IsSystem {
				if len(ids) == 1 {
					return ErrSystemRole
				}
				return BadRequest("系统内置角色 %s 不能删除", r.Name)
			}
			found[r.ID] = true
		}
		if missing := firstMissing(ids, found); missing != "" {
			if len(ids) == 1 {
				return ErrRoleNotFound
			}
			return NotFound("角色 %s 不存在", missing)
		}

		if _, err := s.userRoleRepo.DeleteByRoleID(ctx, ids...); err != nil {
			return err
		}
		if _, err := s.rolePermissionRepo.DeleteByRoleID(ctx, ids...); err != nil {
			return err
		}
		return s.roleRepo.Delete(ctx, ids...)
	})
}

func (s *roleService) UpdateStatus(ctx context.Context, id, status string) error {
	parsed, ok := model.ParseStatus(status)
	if !ok {
		return ErrInvalidStatus
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		role, err := s.roleRepo.GetByID(ctx, id)
		if err != nil {
			return asNotFound(err, ErrRoleNotFound)
		}
		if role.IsSystem && parsed == model.StatusDisabled {
			return ErrSystemRoleDisable
		}
		return s.roleRepo.UpdateStatus(ctx, id, parsed)
	})
}

// PermissionUpdate 权限更新内容，nil 字段保持不变
type PermissionUpdate struct {
	Name      *string
	Code      *string
	Type      *string
	Path      *string
	Component *string
	Method    *string
	APIPath   *string
	Icon      *string
	Sort      *int
	Status    *string
	ParentID  *string
}

// PermissionService 权限服务接口
type PermissionService interface {
	Create(ctx context.Context, perm *model.Permission) error
	GetByID(ctx context.Context, id string) (*model.Permission, error)
	FindPage(ctx context.Context, filter *repository.PermissionFilter, page *repository.Pagination) ([]*model.Permission, int64, error)
	// Tree 权限树，status 为空时包含禁用权限
	Tree(ctx context.Context, status string) ([]*model.Permission, error)
	UpdateByID(ctx context.Context, id string, input *PermissionUpdate) (*model.Permission, error)
	RemoveByID(ctx context.Context, id string) error
	RemoveBatch(ctx context.Context, ids []string) error
	UpdateStatus(ctx context.Context, id, status string) error
}

type permissionService struct {
	tx                 repository.Transactor
	permRepo           repository.PermissionRepository
	rolePermissionRepo repository.RolePermissionRepository
}

// NewPermissionService 创建权限服务
func NewPermissionService(tx repository.Transactor, permRepo repository.PermissionRepository, rolePermissionRepo repository.RolePermissionRepository) PermissionService {
	return &permissionService{
		tx:                 tx,
		permRepo:           permRepo,
		rolePermissionRepo: rolePermissionRepo,
	}
}

func (s *permissionService) Create(ctx context.Context, perm *model.Permission) error {
	if !model.ValidPermissionType(perm.Type) {
		return ErrInvalidPermType
	}
	if perm.ParentID == "" {
		perm.ParentID = model.RootParentID
	}
	if perm.Status == "" {
		perm.Status = model.StatusEnabled
	} else if status, ok := model.ParseStatus(perm.Status); ok {
		perm.Status = status
	} else {
		return ErrInvalidStatus
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkParent(ctx, perm.ParentID, ""); err != nil {
			return err
		}
		exists, err := s.permRepo.ExistsByCode(ctx, perm.Code, "")
		if err != nil {
			return err
		}
		if exists {
			return BadRequest("权限编码 %s 已存在", perm.Code)
		}
		return asDuplicate(s.permRepo.Create(ctx, perm), ErrPermissionCodeExists)
	})
}

// checkParent 父级必须存在，且不能是自身或自身的后代
func (s *permissionService) checkParent(ctx context.Context, parentID, selfID string) error {
	if parentID == model.RootParentID {
		return nil
	}
	if parentID == selfID {
		return ErrInvalidParent
	}
	if _, err := s.permRepo.GetByID(ctx, parentID); err != nil {
		return asNotFound(err, BadRequest("父级权限 %s 不存在", parentID))
	}
	if selfID == "" {
		return nil
	}

	all, err := s.permRepo.ListAll(ctx, "")
	if err != nil {
		return err
	}
	parentOf := make(map[string]string, len(all))
	for _, p := range all {
		parentOf[p.ID] = p.ParentID
	}
	// 沿新父级向上查找，遇到自身说明形成环
	for cur, steps := parentID, 0; cur != model.RootParentID && steps <= len(all); steps++ {
		if cur == selfID {
			return ErrInvalidParent
		}
		next, ok := parentOf[cur]
		if !ok {
			break
		}
		cur = next
	}
	return nil
}

func (s *permissionService) GetByID(ctx context.Context, id string) (*model.Permission, error) {
	perm, err := s.permRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, ErrPermissionNotFound)
	}
	return perm, nil
}

func (s *permissionService) FindPage(ctx context.Context, filter *repository.PermissionFilter, page *repository.Pagination) ([]*model.Permission, int64, error) {
	return s.permRepo.FindPage(ctx, filter, page)
}

func (s *permissionService) Tree(ctx context.Context, status string) ([]*model.Permission, error) {
	perms, err := s.permRepo.ListAll(ctx, status)
	if err != nil {
		return nil, err
	}
	return model.BuildPermissionTree(perms), nil
}

func (s *permissionService) UpdateByID(ctx context.Context, id string, input *PermissionUpdate) (*model.Permission, error) {
	var perm *model.Permission
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		perm, err = s.permRepo.GetByID(ctx, id)
		if err != nil {
			return asNotFound(err, ErrPermissionNotFound)
		}
		if input == nil {
			return nil
		}

		if input.Code != nil && *input.Code != "" && *input.Code != perm.Code {
			exists, err := s.permRepo.ExistsByCode(ctx, *input.Code, perm.ID)
			if err != nil {
				return err
			}
			if exists {
				return BadRequest("权限编码 %s 已存在", *input.Code)
			}
			perm.Code = *input.Code
		}
		if input.Type != nil && *input.Type != "" {
			if !model.ValidPermissionType(*input.Type) {
				return ErrInvalidPermType
			}
			perm.Type = *input.Type
		}
		if input.ParentID != nil && *input.ParentID != perm.ParentID {
			parentID := *input.ParentID
			if parentID == "" {
				parentID = model.RootParentID
			}
			if err := s.checkParent(ctx, parentID, perm.ID); err != nil {
				return err
			}
			perm.ParentID = parentID
		}
		if input.Status != nil && *input.Status != "" {
			status, ok := model.ParseStatus(*input.Status)
			if !ok {
				return ErrInvalidStatus
			}
			perm.Status = status
		}
		if input.Name != nil && *input.Name != "" {
			perm.Name = *input.Name
		}
		setIfNotNil(&perm.Path, input.Path)
		setIfNotNil(&perm.Component, input.Component)
		setIfNotNil(&perm.Method, input.Method)
		setIfNotNil(&perm.APIPath, input.APIPath)
		setIfNotNil(&perm.Icon, input.Icon)
		if input.Sort != nil {
			perm.Sort = *input.Sort
		}
		return asDuplicate(s.permRepo.Update(ctx, perm), ErrPermissionCodeExists)
	})
	if err != nil {
		return nil, err
	}
	return perm, nil
}

func setIfNotNil(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (s *permissionService) RemoveByID(ctx context.Context, id string) error {
	return s.RemoveBatch(ctx, []string{id})
}

// RemoveBatch 批量软删除权限，任一权限不存在、为系统权限或仍有其他子权限时整体失败
func (s *permissionService) RemoveBatch(ctx context.Context, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return ErrEmptyIDs
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		perms, err := s.permRepo.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		found := make(map[string]bool, len(perms))
		for _, p := range perms {
			if p.IsSystem {
				if len(ids) == 1 {
					return ErrSystemPermission
				}
				return BadRequest("系统内置权限 %s 不能删除", p.Name)
			}
			found[p.ID] = true
		}
		if missing := firstMissing(ids, found); missing != "" {
			if len(ids) == 1 {
				return ErrPermissionNotFound
			}
			return NotFound("权限 %s 不存在", missing)
		}

		children, err := s.permRepo.CountChildren(ctx, ids, ids)
		if err != nil {
			return err
		}
		if children > 0 {
			return ErrPermissionHasChild
		}

		if _, err := s.rolePermissionRepo.DeleteByPermissionID(ctx, ids...); err != nil {
			return err
		}
		return s.permRepo.Delete(ctx, ids...)
	})
}

func (s *permissionService) UpdateStatus(ctx context.Context, id, status string) error {
	parsed, ok := model.ParseStatus(status)
	if !ok {
		return ErrInvalidStatus
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.permRepo.GetByID(ctx, id); err != nil {
			return asNotFound(err, ErrPermissionNotFound)
		}
		return s.permRepo.UpdateStatus(ctx, id, parsed)
	})
}
