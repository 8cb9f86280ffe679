// Package main 数据库迁移工具
package main

import (
	"context"
	"flag"
	"log"

	"github.com/pu-ac-cn/rbac-admin/internal/config"
	"github.com/pu-ac-cn/rbac-admin/internal/database"
	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "", "配置文件路径")
	seed := flag.Bool("seed", false, "迁移后写入默认角色和权限")
	flag.Parse()

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

	// 初始化数据库连接
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()
	log.Println("数据库连接成功")

	log.Println("开始执行数据库迁移...")
	for _, m := range model.Tables() {
		if err := database.AutoMigrate(m); err != nil {
			log.Fatalf("迁移 %T 失败: %v", m, err)
		}
		log.Printf("  - %T", m)
	}
	log.Println("数据库迁移完成！")

	if !*seed {
		return
	}

	db := database.GetDB()
	seeder := service.NewSeeder(
		repository.NewTransactor(db),
		repository.NewRoleRepository(db),
		repository.NewPermissionRepository(db),
		repository.NewRolePermissionRepository(db),
	)
	result, err := seeder.Seed(context.Background())
	if err != nil {
		log.Fatalf("写入默认数据失败: %v", err)
	}
	log.Printf("默认数据写入完成: 新增角色 %d 个，新增权限 %d 个，授权 %d 条",
		result.RolesCreated, result.PermissionsCreated, result.Granted)
}
