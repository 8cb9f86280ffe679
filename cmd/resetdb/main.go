package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pu-ac-cn/rbac-admin/internal/config"
	"github.com/pu-ac-cn/rbac-admin/internal/database"
	"github.com/pu-ac-cn/rbac-admin/internal/model"
)

// 只清理本项目业务表的重置工具，按依赖顺序删除后可选重建
// 用法：
//
//	go run ./cmd/resetdb -force
//	go run ./cmd/resetdb -force -recreate=false
func main() {
	configPath := flag.String("config", "", "配置文件路径")
	recreate := flag.Bool("recreate", true, "是否在清空后重建表")
	force := flag.Bool("force", false, "确认执行清空操作")
	flag.Parse()

	if !*force {
		log.Fatal("为避免误操作，请加上 -force 参数：go run ./cmd/resetdb -force")
	}

	// 加载配置并连接数据库
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
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()

	m := database.GetDB().Migrator()
	tables := model.Tables()

	// 先删关联表再删主表
	fmt.Println("开始清空权限管理相关表...")
	for i := len(tables) - 1; i >= 0; i-- {
		t := tables[i]
		if !m.HasTable(t) {
			continue
		}
		if err := m.DropTable(t); err != nil {
			log.Fatalf("删除表 %T 失败: %v", t, err)
		}
		fmt.Printf("已删除表: %T\n", t)
	}

	if *recreate {
		for _, t := range tables {
			if err := m.AutoMigrate(t); err != nil {
				log.Fatalf("创建表 %T 失败: %v", t, err)
			}
			fmt.Printf("已创建/更新表: %T\n", t)
		}
	}

	fmt.Println("完成。")
}
