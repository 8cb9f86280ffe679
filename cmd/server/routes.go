package main

import (
	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/handler"
	"github.com/pu-ac-cn/rbac-admin/internal/model"
)

// handlers 路由用到的全部 Handler
type handlers struct {
	auth     *handler.AuthHandler
	user     *handler.UserHandler
	role     *handler.RoleHandler
	perm     *handler.PermissionHandler
	rolePerm *handler.RolePermissionHandler
	userRole *handler.UserRoleHandler
	schema   *handler.SchemaHandler
}

// registerAPI 注册 /api 路由
// 登录后即可访问的只有个人信息、启用角色下拉、权限树和表单描述，其余接口都要求对应权限码
func registerAPI(router *gin.Engine, h handlers, authn gin.HandlerFunc, perm func(code string) gin.HandlerFunc) {
	api := router.Group("/api")

	// 登录（公开）
	api.POST("/user/login", h.auth.Login)

	// 需要认证的路由
	authRequired := api.Group("")
	authRequired.Use(authn)

	user := authRequired.Group("/user")
	{
		user.POST("/logout", h.auth.Logout)
		user.GET("/info", h.auth.Info)
		user.POST("/changePassword", h.auth.ChangePassword)
		user.GET("/sessions", h.auth.Sessions)

		user.POST("/create", perm(model.PermUserCreate), h.user.Create)
		user.POST("/findPage", perm(model.PermUser), h.user.FindPage)
		user.GET("/export", perm(model.PermUserExport), h.user.Export)
		user.GET("/:id", perm(model.PermUser), h.user.Get)
		user.POST("/updateById", perm(model.PermUserUpdate), h.user.UpdateByID)
		user.DELETE("/deleteById/:id", perm(model.PermUserDelete), h.user.DeleteByID)
		user.POST("/deleteBatch", perm(model.PermUserDelete), h.user.DeleteBatch)
		user.PATCH("/updateStatus/:id", perm(model.PermUserUpdate), h.user.UpdateStatus)
	}

	role := authRequired.Group("/role")
	{
		role.POST("/create", perm(model.PermRoleCreate), h.role.Create)
		role.POST("/findPage", perm(model.PermRole), h.role.FindPage)
		role.GET("/all/enabled", h.role.ListEnabled)
		role.GET("/export", perm(model.PermRole), h.role.Export)
		role.GET("/:id", perm(model.PermRole), h.role.Get)
		role.POST("/updateById", perm(model.PermRoleUpdate), h.role.UpdateByID)
		role.DELETE("/deleteById/:id", perm(model.PermRoleDelete), h.role.DeleteByID)
		role.POST("/deleteBatch", perm(model.PermRoleDelete), h.role.DeleteBatch)
		role.PATCH("/updateStatus/:id", perm(model.PermRoleUpdate), h.role.UpdateStatus)
	}

	permission := authRequired.Group("/permission")
	{
		permission.POST("/create", perm(model.PermPermissionCreate), h.perm.Create)
		permission.POST("/findPage", perm(model.PermPermission), h.perm.FindPage)
		permission.GET("/tree", h.perm.Tree)
		permission.GET("/export", perm(model.PermPermission), h.perm.Export)
		permission.GET("/:id", perm(model.PermPermission), h.perm.Get)
		permission.POST("/updateById", perm(model.PermPermissionUpdate), h.perm.UpdateByID)
		permission.DELETE("/deleteById/:id", perm(model.PermPermissionDelete), h.perm.DeleteByID)
		permission.POST("/deleteBatch", perm(model.PermPermissionDelete), h.perm.DeleteBatch)
		permission.PATCH("/updateStatus/:id", perm(model.PermPermissionUpdate), h.perm.UpdateStatus)
	}

	rolePerm := authRequired.Group("/role-permission")
	{
		rolePerm.POST("/create", perm(model.PermRoleAssign), h.rolePerm.Assign)
		rolePerm.POST("/findPage", perm(model.PermRole), h.rolePerm.FindPage)
		rolePerm.GET("/role/:roleId", perm(model.PermRole), h.rolePerm.FindByRoleID)
		rolePerm.GET("/permission/:permissionId", perm(model.PermRole), h.rolePerm.FindByPermissionID)
		rolePerm.DELETE("/role/:roleId", perm(model.PermRoleAssign), h.rolePerm.RemoveByRoleID)
		rolePerm.DELETE("/:roleId/:permissionId", perm(model.PermRoleAssign), h.rolePerm.Remove)
	}

	userRole := authRequired.Group("/user-role")
	{
		userRole.POST("/create", perm(model.PermUserAssign), h.userRole.Assign)
		userRole.POST("/findPage", perm(model.PermUser), h.userRole.FindPage)
		userRole.GET("/user/:userId", perm(model.PermUser), h.userRole.FindByUserID)
		userRole.GET("/role/:roleId", perm(model.PermUser), h.userRole.FindByRoleID)
		userRole.DELETE("/user/:userId", perm(model.PermUserAssign), h.userRole.RemoveByUserID)
		userRole.DELETE("/:userId/:roleId", perm(model.PermUserAssign), h.userRole.Remove)
	}

	authRequired.GET("/schema", h.schema.List)
	authRequired.GET("/schema/:entity", h.schema.Get)
}
