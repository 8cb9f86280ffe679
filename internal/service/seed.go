package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
)

// SeedResult 初始化数据结果
type SeedResult struct {
	RolesCreated       int
	PermissionsCreated int
	Granted            int
}

// Seeder 写入系统默认角色和权限
type Seeder struct {
	tx           repository.Transactor
	roleRepo     repository.RoleRepository
	permRepo     repository.PermissionRepository
	rolePermRepo repository.RolePermissionRepository
}

// NewSeeder 创建初始化器
func NewSeeder(tx repository.Transactor, roleRepo repository.RoleRepository, permRepo repository.PermissionRepository, rolePermRepo repository.RolePermissionRepository) *Seeder {
	return &Seeder{tx: tx, roleRepo: roleRepo, permRepo: permRepo, rolePermRepo: rolePermRepo}
}

// Seed 幂等写入默认数据，已存在的编码跳过
// 新建的管理员角色会被授予全部默认权限
func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		permIDs, err := s.seedPermissions(ctx, result)
		if err != nil {
			return err
		}

		for _, def := range model.DefaultSystemRoles() {
			role := def
			_, err := s.roleRepo.GetByCode(ctx, role.Code)
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if err := s.roleRepo.Create(ctx, &role); err != nil {
				return fmt.Errorf("创建角色 %s 失败: %w", role.Code, err)
			}
			result.RolesCreated++

			if role.Code != model.RoleAdmin || len(permIDs) == 0 {
				continue
			}
			rows := make([]*model.RolePermission, 0, len(permIDs))
			for _, id := range permIDs {
				rows = append(rows, &model.RolePermission{RoleID: role.ID, PermissionID: id, CreatedBy: "system"})
			}
			if err := s.rolePermRepo.CreateBatch(ctx, rows); err != nil {
				return fmt.Errorf("授予角色 %s 权限失败: %w", role.Code, err)
			}
			result.Granted += len(rows)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// seedPermissions 按顺序写入权限，返回全部默认权限的 ID
func (s *Seeder) seedPermissions(ctx context.Context, result *SeedResult) ([]string, error) {
	defaults := model.DefaultSystemPermissions()
	idByCode := make(map[string]string, len(defaults))
	ids := make([]string, 0, len(defaults))

	for _, def := range defaults {
		existing, err := s.permRepo.GetByCode(ctx, def.Code)
		if err == nil {
			idByCode[def.Code] = existing.ID
			ids = append(ids, existing.ID)
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		perm := def.Permission
		perm.ParentID = model.RootParentID
		if def.ParentCode != "" {
			parentID, ok := idByCode[def.ParentCode]
			if !ok {
				return nil, fmt.Errorf("权限 %s 的父节点 %s 不存在", def.Code, def.ParentCode)
			}
			perm.ParentID = parentID
		}
		if err := s.permRepo.Create(ctx, &perm); err != nil {
			return nil, fmt.Errorf("创建权限 %s 失败: %w", def.Code, err)
		}
		idByCode[def.Code] = perm.ID
		ids = append(ids, perm.ID)
		result.PermissionsCreated++
	}
	return ids, nil
}
