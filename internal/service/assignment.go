package service

import (
	"context"
	"time"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
)

// RolePermissionService 角色权限分配服务接口
type RolePermissionService interface {
	// Assign 用 permissionIDs 整体替换角色的权限，校验通过前不做任何写入
	Assign(ctx context.Context, roleID string, permissionIDs []string, createdBy string) ([]*model.RolePermission, error)
	FindPage(ctx context.Context, filter *repository.RolePermissionFilter, page *repository.Pagination) ([]*model.RolePermission, int64, error)
	FindByRoleID(ctx context.Context, roleID string) ([]*model.Permission, error)
	FindByPermissionID(ctx context.Context, permissionID string) ([]*model.Role, error)
	RemoveByID(ctx context.Context, roleID, permissionID string) error
	RemoveByRoleID(ctx context.Context, roleID string) error
}

type rolePermissionService struct {
	tx                 repository.Transactor
	roleRepo           repository.RoleRepository
	permRepo           repository.PermissionRepository
	rolePermissionRepo repository.RolePermissionRepository
}

// NewRolePermissionService 创建角色权限分配服务
func NewRolePermissionService(tx repository.Transactor, roleRepo repository.RoleRepository, permRepo repository.PermissionRepository, rolePermissionRepo repository.RolePermissionRepository) RolePermissionService {
	return &rolePermissionService{
		tx:                 tx,
		roleRepo:           roleRepo,
		permRepo:           permRepo,
		rolePermissionRepo: rolePermissionRepo,
	}
}

func (s *rolePermissionService) Assign(ctx context.Context, roleID string, permissionIDs []string, createdBy string) ([]*model.RolePermission, error) {
	ids := uniqueIDs(permissionIDs)
	var rows []*model.RolePermission

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
			return asNotFound(err, ErrRoleNotFound)
		}

		perms, err := s.permRepo.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		enabled := make(map[string]bool, len(perms))
		for _, p := range perms {
			if p.IsEnabled() {
				enabled[p.ID] = true
			}
		}
		if bad := firstMissing(ids, enabled); bad != "" {
			return BadRequest("权限 %s 不存在或已禁用", bad)
		}

		if _, err := s.rolePermissionRepo.DeleteByRoleID(ctx, roleID); err != nil {
			return err
		}

		now := time.Now()
		rows = make([]*model.RolePermission, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, &model.RolePermission{
				RoleID:       roleID,
				PermissionID: id,
				CreatedBy:    createdBy,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
		return asDuplicate(s.rolePermissionRepo.CreateBatch(ctx, rows), ErrAssignmentConflict)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *rolePermissionService) FindPage(ctx context.Context, filter *repository.RolePermissionFilter, page *repository.Pagination) ([]*model.RolePermission, int64, error) {
	return s.rolePermissionRepo.FindPage(ctx, filter, page)
}

func (s *rolePermissionService) FindByRoleID(ctx context.Context, roleID string) ([]*model.Permission, error) {
	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		return nil, asNotFound(err, ErrRoleNotFound)
	}
	return s.rolePermissionRepo.ListPermissionsByRoleID(ctx, roleID)
}

func (s *rolePermissionService) FindByPermissionID(ctx context.Context, permissionID string) ([]*model.Role, error) {
	if _, err := s.permRepo.GetByID(ctx, permissionID); err != nil {
		return nil, asNotFound(err, ErrPermissionNotFound)
	}
	return s.rolePermissionRepo.ListRolesByPermissionID(ctx, permissionID)
}

func (s *rolePermissionService) RemoveByID(ctx context.Context, roleID, permissionID string) error {
	n, err := s.rolePermissionRepo.Delete(ctx, roleID, permissionID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (s *rolePermissionService) RemoveByRoleID(ctx context.Context, roleID string) error {
	n, err := s.rolePermissionRepo.DeleteByRoleID(ctx, roleID)
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFound("角色 %s 没有关联的权限", roleID)
	}
	return nil
}

// UserRoleService 用户角色分配服务接口
type UserRoleService interface {
	// Assign 用 roleIDs 整体替换用户的角色，校验通过前不做任何写入
	Assign(ctx context.Context, userID string, roleIDs []string, createdBy string) ([]*model.UserRole, error)
	FindPage(ctx context.Context, filter *repository.UserRoleFilter, page *repository.Pagination) ([]*model.UserRole, int64, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Role, error)
	FindByRoleID(ctx context.Context, roleID string) ([]*model.User, error)
	RemoveByID(ctx context.Context, userID, roleID string) error
	RemoveByUserID(ctx context.Context, userID string) error

	// GetUserPermissions 用户所有启用角色的启用权限并集
	GetUserPermissions(ctx context.Context, userID string) ([]*model.Permission, error)
	// HasPermission 检查用户是否拥有权限编码，超级角色直接通过
	HasPermission(ctx context.Context, userID, code string) (bool, error)
}

type userRoleService struct {
	tx                 repository.Transactor
	userRepo           repository.UserRepository
	roleRepo           repository.RoleRepository
	userRoleRepo       repository.UserRoleRepository
	rolePermissionRepo repository.RolePermissionRepository
	superRole          string
}

// UserRoleServiceDeps 用户角色服务依赖
type UserRoleServiceDeps struct {
	Tx                 repository.Transactor
	UserRepo           repository.UserRepository
	RoleRepo           repository.RoleRepository
	UserRoleRepo       repository.UserRoleRepository
	RolePermissionRepo repository.RolePermissionRepository
	// SuperRole 拥有全部权限的角色编码，为空时不启用
	SuperRole string
}

// NewUserRoleService 创建用户角色分配服务
func NewUserRoleService(deps UserRoleServiceDeps) UserRoleService {
	return &userRoleService{
		tx:                 deps.Tx,
		userRepo:           deps.UserRepo,
		roleRepo:           deps.RoleRepo,
		userRoleRepo:       deps.UserRoleRepo,
		rolePermissionRepo: deps.RolePermissionRepo,
		superRole:          deps.SuperRole,
	}
}

func (s *userRoleService) Assign(ctx context.Context, userID string, roleIDs []string, createdBy string) ([]*model.UserRole, error) {
	ids := uniqueIDs(roleIDs)
	var rows []*model.UserRole

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			return asNotFound(err, ErrUserNotFound)
		}

		roles, err := s.roleRepo.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		enabled := make(map[string]bool, len(roles))
		for _, r := range roles {
			if r.IsEnabled() {
				enabled[r.ID] = true
			}
		}
		if bad := firstMissing(ids, enabled); bad != "" {
			return BadRequest("角色 %s 不存在或已禁用", bad)
		}

		if _, err := s.userRoleRepo.DeleteByUserID(ctx, userID); err != nil {
			return err
		}

		now := time.Now()
		rows = make([]*model.UserRole, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, &model.UserRole{
				UserID:    userID,
				RoleID:    id,
				CreatedBy: createdBy,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		return asDuplicate(s.userRoleRepo.CreateBatch(ctx, rows), ErrAssignmentConflict)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *userRoleService) FindPage(ctx context.Context, filter *repository.UserRoleFilter, page *repository.Pagination) ([]*model.UserRole, int64, error) {
	return s.userRoleRepo.FindPage(ctx, filter, page)
}

func (s *userRoleService) FindByUserID(ctx context.Context, userID string) ([]*model.Role, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, asNotFound(err, ErrUserNotFound)
	}
	return s.userRoleRepo.ListRolesByUserID(ctx, userID)
}

func (s *userRoleService) FindByRoleID(ctx context.Context, roleID string) ([]*model.User, error) {
	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		return nil, asNotFound(err, ErrRoleNotFound)
	}
	return s.userRoleRepo.ListUsersByRoleID(ctx, roleID)
}

func (s *userRoleService) RemoveByID(ctx context.Context, userID, roleID string) error {
	n, err := s.userRoleRepo.Delete(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (s *userRoleService) RemoveByUserID(ctx context.Context, userID string) error {
	n, err := s.userRoleRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFound("用户 %s 没有关联的角色", userID)
	}
	return nil
}

func (s *userRoleService) GetUserPermissions(ctx context.Context, userID string) ([]*model.Permission, error) {
	roles, err := s.userRoleRepo.ListRolesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roleIDs := make([]string, 0, len(roles))
	for _, r := range roles {
		roleIDs = append(roleIDs, r.ID)
	}
	return s.rolePermissionRepo.ListPermissionsByRoleIDs(ctx, roleIDs)
}

func (s *userRoleService) HasPermission(ctx context.Context, userID, code string) (bool, error) {
	if s.superRole != "" {
		ok, err := s.userRoleRepo.HasRoleCode(ctx, userID, s.superRole)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	perms, err := s.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}
