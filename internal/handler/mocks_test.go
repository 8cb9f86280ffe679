package handler

import (
	"context"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
	"github.com/stretchr/testify/mock"
)

// mockUserService 模拟用户服务
type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Create(ctx context.Context, user *model.User, password string) error {
	return m.Called(ctx, user, password).Error(0)
}

func (m *mockUserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) FindPage(ctx context.Context, filter *repository.UserFilter, page *repository.Pagination) ([]*model.User, int64, error) {
	args := m.Called(ctx, filter, page)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserService) UpdateByID(ctx context.Context, id string, input *service.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) RemoveByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserService) RemoveBatch(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *mockUserService) UpdateStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

// mockAuthService 模拟认证服务
type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, input *service.LoginInput) (*service.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, tokenString string) error {
	return m.Called(ctx, tokenString).Error(0)
}

func (m *mockAuthService) RevokeUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAuthService) Authenticate(ctx context.Context, tokenString string) (*service.TokenClaims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenClaims), args.Error(1)
}

func (m *mockAuthService) Info(ctx context.Context, userID string) (*service.UserInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserInfo), args.Error(1)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return m.Called(ctx, userID, oldPassword, newPassword).Error(0)
}

func (m *mockAuthService) Sessions(ctx context.Context, userID string) ([]*model.Session, error) {
	args := m.Called(ctx, userID)
	sessions, _ := args.Get(0).([]*model.Session)
	return sessions, args.Error(1)
}

// mockRolePermissionService 模拟角色权限分配服务
type mockRolePermissionService struct {
	mock.Mock
}

func (m *mockRolePermissionService) Assign(ctx context.Context, roleID string, permissionIDs []string, createdBy string) ([]*model.RolePermission, error) {
	args := m.Called(ctx, roleID, permissionIDs, createdBy)
	rows, _ := args.Get(0).([]*model.RolePermission)
	return rows, args.Error(1)
}

func (m *mockRolePermissionService) FindPage(ctx context.Context, filter *repository.RolePermissionFilter, page *repository.Pagination) ([]*model.RolePermission, int64, error) {
	args := m.Called(ctx, filter, page)
	rows, _ := args.Get(0).([]*model.RolePermission)
	return rows, args.Get(1).(int64), args.Error(2)
}

func (m *mockRolePermissionService) FindByRoleID(ctx context.Context, roleID string) ([]*model.Permission, error) {
	args := m.Called(ctx, roleID)
	perms, _ := args.Get(0).([]*model.Permission)
	return perms, args.Error(1)
}

func (m *mockRolePermissionService) FindByPermissionID(ctx context.Context, permissionID string) ([]*model.Role, error) {
	args := m.Called(ctx, permissionID)
	roles, _ := args.Get(0).([]*model.Role)
	return roles, args.Error(1)
}

func (m *mockRolePermissionService) RemoveByID(ctx context.Context, roleID, permissionID string) error {
	return m.Called(ctx, roleID, permissionID).Error(0)
}

func (m *mockRolePermissionService) RemoveByRoleID(ctx context.Context, roleID string) error {
	return m.Called(ctx, roleID).Error(0)
}
