package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"enabled", StatusEnabled, true},
		{" ENABLED ", StatusEnabled, true},
		{"1", StatusEnabled, true},
		{"true", StatusEnabled, true},
		{"disabled", StatusDisabled, true},
		{"0", StatusDisabled, true},
		{"false", StatusDisabled, true},
		{"", "", false},
		{"2", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestUser_BeforeSave(t *testing.T) {
	u := &User{PlainPassword: "secret123"}
	require.NoError(t, u.BeforeSave(nil))
	assert.Empty(t, u.PlainPassword)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.VerifyPassword("secret123"))
	assert.False(t, u.VerifyPassword("wrong"))

	hash := u.Password
	require.NoError(t, u.BeforeSave(nil))
	assert.Equal(t, hash, u.Password)

	assert.False(t, (&User{}).VerifyPassword(""))
}

func TestBaseModel_BeforeCreate(t *testing.T) {
	b := &BaseModel{}
	require.NoError(t, b.BeforeCreate(nil))
	assert.Len(t, b.ID, 36)

	b = &BaseModel{ID: "fixed"}
	require.NoError(t, b.BeforeCreate(nil))
	assert.Equal(t, "fixed", b.ID)
}

func TestBuildPermissionTree(t *testing.T) {
	perms := []*Permission{
		{BaseModel: BaseModel{ID: "b"}, ParentID: RootParentID, Sort: 2},
		{BaseModel: BaseModel{ID: "a"}, ParentID: RootParentID, Sort: 1},
		{BaseModel: BaseModel{ID: "a2"}, ParentID: "a", Sort: 2},
		{BaseModel: BaseModel{ID: "a1"}, ParentID: "a", Sort: 1},
		{BaseModel: BaseModel{ID: "orphan"}, ParentID: "missing", Sort: 0},
		{BaseModel: BaseModel{ID: "self"}, ParentID: "self", Sort: 3},
	}
	tree := BuildPermissionTree(perms)

	ids := func(list []*Permission) []string {
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.ID)
		}
		return out
	}
	assert.Equal(t, []string{"orphan", "a", "b", "self"}, ids(tree))
	assert.Equal(t, []string{"a1", "a2"}, ids(tree[1].Children))
	assert.Empty(t, tree[2].Children)

	// 重复组装不会累积子节点
	tree = BuildPermissionTree(perms)
	assert.Len(t, tree[1].Children, 2)
}

func TestDefaultSystemPermissions_ParentsFirst(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range DefaultSystemPermissions() {
		if p.ParentCode != "" {
			assert.True(t, seen[p.ParentCode], "%s 的父节点 %s 应先出现", p.Code, p.ParentCode)
		}
		assert.False(t, seen[p.Code], "重复编码 %s", p.Code)
		seen[p.Code] = true
		assert.True(t, p.IsSystem)
	}
	for _, r := range DefaultSystemRoles() {
		assert.True(t, r.IsSystem)
	}
}
