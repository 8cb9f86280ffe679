// 为用户分配超级管理员角色的工具，用户不存在时可同时创建
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pu-ac-cn/rbac-admin/internal/config"
	"github.com/pu-ac-cn/rbac-admin/internal/database"
	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	password := flag.String("password", "", "用户不存在时以此密码创建")
	flag.Usage = func() {
		fmt.Println("用法: assign-admin [-config path] [-password pwd] <用户名>")
		fmt.Println("示例: assign-admin -password admin123 admin")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	username := flag.Arg(0)

	// 加载配置
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	// 初始化 Repository
	db := database.GetDB()
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	userRoleRepo := repository.NewUserRoleRepository(db)
	rolePermRepo := repository.NewRolePermissionRepository(db)

	// 初始化 Service
	userService := service.NewUserService(tx, userRepo, userRoleRepo, nil)
	userRoleService := service.NewUserRoleService(service.UserRoleServiceDeps{
		Tx:                 tx,
		UserRepo:           userRepo,
		RoleRepo:           roleRepo,
		UserRoleRepo:       userRoleRepo,
		RolePermissionRepo: rolePermRepo,
	})

	// 确保默认角色和权限已初始化
	if _, err := service.NewSeeder(tx, roleRepo, permRepo, rolePermRepo).Seed(ctx); err != nil {
		log.Fatalf("初始化默认角色和权限失败: %v", err)
	}

	superRole := cfg.Auth.SuperRole
	if superRole == "" {
		superRole = model.RoleSuperAdmin
	}
	role, err := roleRepo.GetByCode(ctx, superRole)
	if err != nil {
		log.Fatalf("角色 %s 不存在: %v", superRole, err)
	}

	// 查找用户，不存在时按需创建
	user, err := userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		if *password == "" {
			log.Fatalf("用户不存在: %s（指定 -password 可直接创建）", username)
		}
		user = &model.User{Username: username, Nickname: username}
		if err := userService.Create(ctx, user, *password); err != nil {
			log.Fatalf("创建用户失败: %v", err)
		}
		fmt.Printf("已创建用户 %s\n", username)
	} else if err != nil {
		log.Fatalf("查询用户失败: %v", err)
	}

	// 保留已有角色，追加超级管理员
	current, err := userRoleService.FindByUserID(ctx, user.ID)
	if err != nil {
		log.Fatalf("查询用户角色失败: %v", err)
	}
	roleIDs := []string{role.ID}
	for _, r := range current {
		roleIDs = append(roleIDs, r.ID)
	}
	if _, err := userRoleService.Assign(ctx, user.ID, roleIDs, "system"); err != nil {
		log.Fatalf("分配角色失败: %v", err)
	}

	fmt.Printf("成功为用户 %s 分配角色 %s\n", user.Username, role.Code)
}
