package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/export"
	"github.com/pu-ac-cn/rbac-admin/internal/middleware"
	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"github.com/pu-ac-cn/rbac-admin/internal/schema"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Success *bool           `json:"success"`
	Path    string          `json:"path"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// asUser 模拟已通过认证的请求
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextToken, "token-"+userID)
		c.Next()
	}
}

func TestFail(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{service.ErrUsernameExists, http.StatusBadRequest, "用户名已存在"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "用户名或密码错误"},
		{service.ErrUserDisabled, http.StatusForbidden, "用户已被禁用"},
		{service.NotFound("角色 %s 不存在", "r1"), http.StatusNotFound, "角色 r1 不存在"},
		{errors.New("connection refused"), http.StatusInternalServerError, "服务器内部错误，请稍后重试"},
	}

	for _, tt := range tests {
		r := gin.New()
		r.GET("/x", func(c *gin.Context) { fail(c, tt.err) })

		w := doJSON(r, http.MethodGet, "/x", nil)
		assert.Equal(t, tt.status, w.Code)
		env := decode(t, w)
		assert.Equal(t, tt.status, env.Code)
		assert.Equal(t, tt.msg, env.Msg)
		require.NotNil(t, env.Success)
		assert.False(t, *env.Success)
		assert.Equal(t, "/x", env.Path)
	}
}

func newUserRouter(svc *mockUserService) *gin.Engine {
	h := NewUserHandler(svc, schema.NewDefaultCatalog())
	r := gin.New()
	g := r.Group("/api/user", asUser("admin"))
	g.POST("/create", h.Create)
	g.POST("/findPage", h.FindPage)
	g.GET("/export", h.Export)
	g.GET("/:id", h.Get)
	g.POST("/updateById", h.UpdateByID)
	g.DELETE("/deleteById/:id", h.DeleteByID)
	g.POST("/deleteBatch", h.DeleteBatch)
	g.PATCH("/updateStatus/:id", h.UpdateStatus)
	return r
}

func TestUserHandler_Create(t *testing.T) {
	svc := new(mockUserService)
	r := newUserRouter(svc)

	t.Run("参数错误", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/user/create", gin.H{"username": "alice", "password": "123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("成功", func(t *testing.T) {
		svc.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "alice" && u.Email == "alice@example.com"
		}), "secret123").Run(func(args mock.Arguments) {
			u := args.Get(1).(*model.User)
			u.ID = "u1"
			u.Password = "hashed"
		}).Return(nil).Once()

		w := doJSON(r, http.MethodPost, "/api/user/create", gin.H{
			"username": "alice", "password": "secret123", "email": "alice@example.com",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		env := decode(t, w)
		assert.Equal(t, 200, env.Code)
		assert.Contains(t, string(env.Data), `"id":"u1"`)
		assert.NotContains(t, string(env.Data), "hashed")
	})

	t.Run("用户名重复", func(t *testing.T) {
		svc.On("Create", mock.Anything, mock.Anything, "secret123").Return(service.ErrUsernameExists).Once()
		w := doJSON(r, http.MethodPost, "/api/user/create", gin.H{"username": "alice", "password": "secret123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "用户名已存在", decode(t, w).Msg)
	})
}

func TestUserHandler_FindPage(t *testing.T) {
	svc := new(mockUserService)
	r := newUserRouter(svc)

	users := []*model.User{{Username: "alice"}, {Username: "bob"}}
	svc.On("FindPage", mock.Anything,
		&repository.UserFilter{Username: "a", Status: "enabled"},
		&repository.Pagination{Current: 2, Size: 2},
	).Return(users, int64(5), nil)

	w := doJSON(r, http.MethodPost, "/api/user/findPage", gin.H{"current": 2, "size": 2, "username": "a", "status": "enabled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Records []map[string]any `json:"records"`
		Total   int64            `json:"total"`
		Size    int              `json:"size"`
		Current int              `json:"current"`
		Pages   int64            `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Len(t, data.Records, 2)
	assert.Equal(t, int64(5), data.Total)
	assert.Equal(t, 2, data.Current)
	assert.Equal(t, 2, data.Size)
	assert.Equal(t, int64(3), data.Pages)
}

func TestUserHandler_GetAndDelete(t *testing.T) {
	svc := new(mockUserService)
	r := newUserRouter(svc)

	svc.On("GetByID", mock.Anything, "missing").Return(nil, service.ErrUserNotFound)
	w := doJSON(r, http.MethodGet, "/api/user/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.On("RemoveByID", mock.Anything, "u1").Return(nil)
	w = doJSON(r, http.MethodDelete, "/api/user/deleteById/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/user/deleteBatch", gin.H{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("RemoveBatch", mock.Anything, []string{"u1", "u2"}).Return(service.ErrSystemRole)
	w = doJSON(r, http.MethodPost, "/api/user/deleteBatch", gin.H{"ids": []string{"u1", "u2"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestUserHandler_UpdateByID(t *testing.T) {
	svc := new(mockUserService)
	r := newUserRouter(svc)

	svc.On("UpdateByID", mock.Anything, "u1", mock.MatchedBy(func(in *service.UserUpdate) bool {
		return in.Nickname != nil && *in.Nickname == "Alice" && in.Username == nil && in.Password == nil
	})).Return(&model.User{Username: "alice", Nickname: "Alice"}, nil)

	w := doJSON(r, http.MethodPost, "/api/user/updateById", gin.H{"id": "u1", "nickname": "Alice"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/user/updateById", gin.H{"nickname": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestUserHandler_UpdateStatus(t *testing.T) {
	svc := new(mockUserService)
	r := newUserRouter(svc)

	svc.On("UpdateStatus", mock.Anything, "u1", "disabled").Return(nil)
	svc.On("UpdateStatus", mock.Anything, "u1", "bogus").Return(service.ErrInvalidStatus)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPatch, "/api/user/updateStatus/u1?status=disabled", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPatch, "/api/user/updateStatus/u1?status=bogus", nil).Code)
}

func TestUserHandler_Export(t *testing.T) {
	svc := new(mockUserService)
	r := newUserRouter(svc)

	svc.On("FindPage", mock.Anything,
		&repository.UserFilter{Status: "enabled"},
		&repository.Pagination{Current: 1, Size: export.MaxRows},
	).Return([]*model.User{{Username: "alice", Status: model.StatusEnabled, Password: "hashed"}}, int64(1), nil)

	w := doJSON(r, http.MethodGet, "/api/user/export?status=enabled", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "user_")

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("用户")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "用户名", rows[0][0])
	assert.NotContains(t, rows[0], "密码")
	assert.NotContains(t, rows[0], "操作")
	assert.Equal(t, "alice", rows[1][0])
	assert.Contains(t, rows[1], "启用")
}

func TestAuthHandler(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/api/user/login", h.Login)
	authed := r.Group("/api/user", asUser("u1"))
	authed.POST("/logout", h.Logout)
	authed.GET("/info", h.Info)
	authed.POST("/changePassword", h.ChangePassword)

	t.Run("登录成功", func(t *testing.T) {
		svc.On("Login", mock.Anything, mock.MatchedBy(func(in *service.LoginInput) bool {
			return in.Username == "alice" && in.Password == "secret123" && in.IP != ""
		})).Return(&service.LoginResult{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()

		w := doJSON(r, http.MethodPost, "/api/user/login", gin.H{"username": "alice", "password": "secret123"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decode(t, w).Data), `"token":"jwt"`)
	})

	t.Run("密码错误", func(t *testing.T) {
		svc.On("Login", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidCredentials).Once()
		w := doJSON(r, http.MethodPost, "/api/user/login", gin.H{"username": "alice", "password": "bad"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("缺少参数", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/user/login", gin.H{"username": "alice"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("退出", func(t *testing.T) {
		svc.On("Logout", mock.Anything, "token-u1").Return(nil).Once()
		assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/user/logout", nil).Code)
	})

	t.Run("用户信息", func(t *testing.T) {
		svc.On("Info", mock.Anything, "u1").Return(&service.UserInfo{
			User:        &model.User{Username: "alice"},
			Roles:       []string{"admin"},
			Permissions: []string{model.PermUser},
		}, nil).Once()

		w := doJSON(r, http.MethodGet, "/api/user/info", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decode(t, w).Data), `"roles":["admin"]`)
	})

	t.Run("修改密码", func(t *testing.T) {
		svc.On("ChangePassword", mock.Anything, "u1", "old", "newpass1").Return(service.ErrWrongOldPassword).Once()
		w := doJSON(r, http.MethodPost, "/api/user/changePassword", gin.H{"oldPassword": "old", "newPassword": "newpass1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "原密码错误", decode(t, w).Msg)
	})

	svc.AssertExpectations(t)
}

func TestRolePermissionHandler(t *testing.T) {
	svc := new(mockRolePermissionService)
	h := NewRolePermissionHandler(svc)
	r := gin.New()
	g := r.Group("/api/role-permission", asUser("admin"))
	g.POST("/create", h.Assign)
	g.GET("/role/:roleId", h.FindByRoleID)
	g.DELETE("/role/:roleId", h.RemoveByRoleID)
	g.DELETE("/:roleId/:permissionId", h.Remove)

	t.Run("分配记录操作人", func(t *testing.T) {
		svc.On("Assign", mock.Anything, "r1", []string{"p1", "p2"}, "admin").
			Return([]*model.RolePermission{{RoleID: "r1", PermissionID: "p1"}, {RoleID: "r1", PermissionID: "p2"}}, nil).Once()

		w := doJSON(r, http.MethodPost, "/api/role-permission/create", gin.H{"roleId": "r1", "permissionIds": []string{"p1", "p2"}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("空列表清空", func(t *testing.T) {
		svc.On("Assign", mock.Anything, "r1", []string{}, "admin").Return([]*model.RolePermission{}, nil).Once()
		w := doJSON(r, http.MethodPost, "/api/role-permission/create", gin.H{"roleId": "r1", "permissionIds": []string{}})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("目标不存在", func(t *testing.T) {
		svc.On("Assign", mock.Anything, "r1", []string{"gone"}, "admin").
			Return(nil, service.BadRequest("权限 %s 不存在或已禁用", "gone")).Once()
		w := doJSON(r, http.MethodPost, "/api/role-permission/create", gin.H{"roleId": "r1", "permissionIds": []string{"gone"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "权限 gone 不存在或已禁用", decode(t, w).Msg)
	})

	t.Run("查询与删除路由", func(t *testing.T) {
		svc.On("FindByRoleID", mock.Anything, "r1").Return([]*model.Permission{{Code: "a"}}, nil).Once()
		svc.On("RemoveByRoleID", mock.Anything, "r1").Return(nil).Once()
		svc.On("RemoveByID", mock.Anything, "r1", "p1").Return(service.ErrAssignmentNotFound).Once()

		assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/api/role-permission/role/r1", nil).Code)
		assert.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, "/api/role-permission/role/r1", nil).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/api/role-permission/r1/p1", nil).Code)
	})

	svc.AssertExpectations(t)
}

func TestSchemaHandler(t *testing.T) {
	h := NewSchemaHandler(schema.NewDefaultCatalog(), schema.NewDispatcher())
	r := gin.New()
	r.GET("/api/schema", h.List)
	r.GET("/api/schema/:entity", h.Get)

	w := doJSON(r, http.MethodGet, "/api/schema/user", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data EntitySchema
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "user", data.Entity)
	assert.Equal(t, schema.ActionColumn, data.Columns.Table[len(data.Columns.Table)-1].Name)
	for _, wgt := range data.Widgets["detail"] {
		assert.True(t, wgt.Readonly)
	}
	assert.Equal(t, "请输入用户名", data.Widgets["create"][0].Placeholder)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/schema/article", nil).Code)

	w = doJSON(r, http.MethodGet, "/api/schema", nil)
	assert.JSONEq(t, `["permission","role","user"]`, string(decode(t, w).Data))
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	r := gin.New()
	r.GET("/ok", NewHealthHandler(map[string]Pinger{"database": ok, "redis": ok}).Check)
	r.GET("/down", NewHealthHandler(map[string]Pinger{"database": ok, "redis": down}).Check)

	w := doJSON(r, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"redis":"ok"`)

	w = doJSON(r, http.MethodGet, "/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"redis":"error"`)
}
