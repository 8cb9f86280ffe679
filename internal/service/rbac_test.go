package service

import (
	"context"
	"testing"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreateRole(t *testing.T, f *fixture, code string, system bool) *model.Role {
	t.Helper()
	role := &model.Role{Name: code, Code: code, IsSystem: system}
	require.NoError(t, f.roles.Create(context.Background(), role))
	return role
}

func mustCreatePerm(t *testing.T, f *fixture, code, parentID string, sort int) *model.Permission {
	t.Helper()
	perm := &model.Permission{Name: code, Code: code, Type: model.PermissionTypeMenu, ParentID: parentID, Sort: sort}
	require.NoError(t, f.perms.Create(context.Background(), perm))
	return perm
}

func TestRoleService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	role := mustCreateRole(t, f, "editor", false)
	assert.Equal(t, model.StatusEnabled, role.Status)

	err := f.roles.Create(ctx, &model.Role{Name: "另一个", Code: "editor"})
	assert.Equal(t, KindBadRequest, KindOf(err))
	assert.Contains(t, err.Error(), "editor")

	assert.ErrorIs(t, f.roles.Create(ctx, &model.Role{Name: "x", Code: "x", Status: "bad"}), ErrInvalidStatus)
}

func TestRoleService_UpdateByID_SystemRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := mustCreateRole(t, f, "super_admin", true)

	_, err := f.roles.UpdateByID(ctx, admin.ID, &RoleUpdate{Code: strPtr("root")})
	assert.ErrorIs(t, err, ErrSystemRoleReadonly)

	_, err = f.roles.UpdateByID(ctx, admin.ID, &RoleUpdate{Name: strPtr("改名")})
	assert.ErrorIs(t, err, ErrSystemRoleReadonly)

	_, err = f.roles.UpdateByID(ctx, admin.ID, &RoleUpdate{Status: strPtr("disabled")})
	assert.ErrorIs(t, err, ErrSystemRoleDisable)

	updated, err := f.roles.UpdateByID(ctx, admin.ID, &RoleUpdate{Description: strPtr("全部权限")})
	require.NoError(t, err)
	assert.Equal(t, "全部权限", updated.Description)
	assert.Equal(t, "super_admin", updated.Code)

	assert.ErrorIs(t, f.roles.UpdateStatus(ctx, admin.ID, "0"), ErrSystemRoleDisable)
}

func TestRoleService_UpdateByID_CodeConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mustCreateRole(t, f, "editor", false)
	viewer := mustCreateRole(t, f, "viewer", false)

	_, err := f.roles.UpdateByID(ctx, viewer.ID, &RoleUpdate{Code: strPtr("editor")})
	assert.Equal(t, KindBadRequest, KindOf(err))

	updated, err := f.roles.UpdateByID(ctx, viewer.ID, &RoleUpdate{Code: strPtr("reader"), Sort: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "reader", updated.Code)
	assert.Equal(t, 3, updated.Sort)

	_, err = f.roles.UpdateByID(ctx, "missing", &RoleUpdate{})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func intPtr(i int) *int { return &i }

func TestRoleService_RemoveBatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	system := mustCreateRole(t, f, "admin", true)
	editor := mustCreateRole(t, f, "editor", false)
	viewer := mustCreateRole(t, f, "viewer", false)
	perm := mustCreatePerm(t, f, "system", "", 0)
	user := mustCreateUser(t, f, "alice")

	_, err := f.rolePerm.Assign(ctx, editor.ID, []string{perm.ID}, "test")
	require.NoError(t, err)
	_, err = f.userRole.Assign(ctx, user.ID, []string{editor.ID, viewer.ID}, "test")
	require.NoError(t, err)

	assert.ErrorIs(t, f.roles.RemoveByID(ctx, system.ID), ErrSystemRole)
	assert.ErrorIs(t, f.roles.RemoveByID(ctx, "missing"), ErrRoleNotFound)

	// 混入系统角色时整体失败，其他角色保持不变
	err = f.roles.RemoveBatch(ctx, []string{editor.ID, system.ID})
	assert.Equal(t, KindBadRequest, KindOf(err))
	_, err = f.roles.GetByID(ctx, editor.ID)
	assert.NoError(t, err)
	assert.Len(t, f.store.userRoles, 2)

	require.NoError(t, f.roles.RemoveBatch(ctx, []string{editor.ID, viewer.ID}))
	_, err = f.roles.GetByID(ctx, editor.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)
	assert.Empty(t, f.store.userRoles)
	assert.Empty(t, f.store.rolePerms)
}

func TestPermissionService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	root := mustCreatePerm(t, f, "system", "", 0)
	assert.Equal(t, model.RootParentID, root.ParentID)

	err := f.perms.Create(ctx, &model.Permission{Name: "x", Code: "x", Type: "PAGE"})
	assert.ErrorIs(t, err, ErrInvalidPermType)

	err = f.perms.Create(ctx, &model.Permission{Name: "x", Code: "x", Type: model.PermissionTypeButton, ParentID: "missing"})
	assert.Equal(t, KindBadRequest, KindOf(err))

	err = f.perms.Create(ctx, &model.Permission{Name: "dup", Code: "system", Type: model.PermissionTypeMenu})
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestPermissionService_UpdateByID_Parent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := mustCreatePerm(t, f, "a", "", 0)
	b := mustCreatePerm(t, f, "b", a.ID, 0)
	c := mustCreatePerm(t, f, "c", b.ID, 0)

	_, err := f.perms.UpdateByID(ctx, a.ID, &PermissionUpdate{ParentID: strPtr(a.ID)})
	assert.ErrorIs(t, err, ErrInvalidParent)

	// 挂到自己的后代下会形成环
	_, err = f.perms.UpdateByID(ctx, a.ID, &PermissionUpdate{ParentID: strPtr(c.ID)})
	assert.ErrorIs(t, err, ErrInvalidParent)

	moved, err := f.perms.UpdateByID(ctx, c.ID, &PermissionUpdate{ParentID: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, model.RootParentID, moved.ParentID)
}

func TestPermissionService_Tree(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	root := mustCreatePerm(t, f, "system", "", 0)
	second := mustCreatePerm(t, f, "system:role", root.ID, 2)
	first := mustCreatePerm(t, f, "system:user", root.ID, 1)
	require.NoError(t, f.perms.UpdateStatus(ctx, second.ID, "disabled"))

	tree, err := f.perms.Tree(ctx, "")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, first.ID, tree[0].Children[0].ID)

	enabled, err := f.perms.Tree(ctx, model.StatusEnabled)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Len(t, enabled[0].Children, 1)
}

func TestPermissionService_RemoveBatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	parent := mustCreatePerm(t, f, "parent", "", 0)
	child := mustCreatePerm(t, f, "child", parent.ID, 0)
	system := &model.Permission{Name: "sys", Code: "sys", Type: model.PermissionTypeAPI, IsSystem: true}
	require.NoError(t, f.perms.Create(ctx, system))

	assert.ErrorIs(t, f.perms.RemoveByID(ctx, parent.ID), ErrPermissionHasChild)
	assert.ErrorIs(t, f.perms.RemoveByID(ctx, system.ID), ErrSystemPermission)

	role := mustCreateRole(t, f, "editor", false)
	_, err := f.rolePerm.Assign(ctx, role.ID, []string{child.ID}, "test")
	require.NoError(t, err)

	// 父子一起删除时不算有子权限
	require.NoError(t, f.perms.RemoveBatch(ctx, []string{parent.ID, child.ID}))
	assert.Empty(t, f.store.rolePerms)
	_, err = f.perms.GetByID(ctx, parent.ID)
	assert.ErrorIs(t, err, ErrPermissionNotFound)
}
