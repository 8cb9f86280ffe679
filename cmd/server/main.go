package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-admin/internal/config"
	"github.com/pu-ac-cn/rbac-admin/internal/database"
	"github.com/pu-ac-cn/rbac-admin/internal/handler"
	"github.com/pu-ac-cn/rbac-admin/internal/logger"
	"github.com/pu-ac-cn/rbac-admin/internal/middleware"
	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/redis"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"github.com/pu-ac-cn/rbac-admin/internal/schema"
	"github.com/pu-ac-cn/rbac-admin/internal/service"
	"github.com/pu-ac-cn/rbac-admin/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 加载配置
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	zl, level, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)
	middleware.SetLogger(zl)

	// 配置文件变化时热更新日志级别
	if *configPath != "" {
		err := config.Watch(*configPath, func(c *config.Config) {
			if err := logger.SetLevel(level, c.Log.Level); err != nil {
				zl.Warn("更新日志级别失败", zap.Error(err))
				return
			}
			zl.Info("日志级别已更新", zap.String("level", c.Log.Level))
		})
		if err != nil {
			zl.Warn("监听配置文件失败", zap.Error(err))
		}
	}

	// 初始化数据库连接
	if err := database.Init(&cfg.Database); err != nil {
		zl.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer database.Close()
	zl.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver))

	// 初始化 Redis 连接
	if err := redis.Init(&cfg.Redis); err != nil {
		zl.Fatal("初始化 Redis 失败", zap.Error(err))
	}
	defer redis.Close()
	zl.Info("Redis 连接成功")

	// 自动迁移数据库表
	if err := database.AutoMigrate(model.Tables()...); err != nil {
		zl.Fatal("数据库迁移失败", zap.Error(err))
	}
	zl.Info("数据库迁移完成")

	// 初始化 Repository
	db := database.GetDB()
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	userRoleRepo := repository.NewUserRoleRepository(db)
	rolePermRepo := repository.NewRolePermissionRepository(db)

	// 加载签名密钥，未配置时使用临时密钥
	privateKey, err := service.LoadPrivateKey(cfg.JWT.PrivateKeyPath)
	if err != nil {
		zl.Fatal("加载 RSA 密钥失败", zap.Error(err))
	}
	if cfg.JWT.PrivateKeyPath == "" {
		zl.Warn("未配置 jwt.private_key_path，使用临时密钥，重启后令牌全部失效")
	}

	superRole := cfg.Auth.SuperRole
	if superRole == "" {
		superRole = model.RoleSuperAdmin
	}

	// 初始化 Service
	tokenService := service.NewTokenService(&service.TokenServiceConfig{
		PrivateKey:   privateKey,
		KeyID:        "key-1",
		Issuer:       cfg.JWT.Issuer,
		AccessExpiry: cfg.JWT.AccessExpiry,
	})
	sessionService := service.NewSessionService(redis.GetClient(), tokenService.AccessExpiry())
	userService := service.NewUserService(tx, userRepo, userRoleRepo, sessionService)
	roleService := service.NewRoleService(tx, roleRepo, userRoleRepo, rolePermRepo)
	permService := service.NewPermissionService(tx, permRepo, rolePermRepo)
	rolePermService := service.NewRolePermissionService(tx, roleRepo, permRepo, rolePermRepo)
	userRoleService := service.NewUserRoleService(service.UserRoleServiceDeps{
		Tx:                 tx,
		UserRepo:           userRepo,
		RoleRepo:           roleRepo,
		UserRoleRepo:       userRoleRepo,
		RolePermissionRepo: rolePermRepo,
		SuperRole:          superRole,
	})
	authService := service.NewAuthService(userRepo, userRoleService, tokenService, sessionService)

	// 初始化 Handler
	catalog := schema.NewDefaultCatalog()
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, catalog)
	roleHandler := handler.NewRoleHandler(roleService, catalog)
	permHandler := handler.NewPermissionHandler(permService, catalog)
	rolePermHandler := handler.NewRolePermissionHandler(rolePermService)
	userRoleHandler := handler.NewUserRoleHandler(userRoleService)
	schemaHandler := handler.NewSchemaHandler(catalog, schema.NewDispatcher())
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": func(context.Context) error { return database.Ping() },
		"redis":    redis.Ping,
	})

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()

	// 全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	// 健康检查
	router.GET("/health", healthHandler.Check)

	// 权限校验
	perm := func(code string) gin.HandlerFunc {
		return middleware.RequirePermission(userRoleService, code)
	}

	// API 路由组
	registerAPI(router, handlers{
		auth:     authHandler,
		user:     userHandler,
		role:     roleHandler,
		perm:     permHandler,
		rolePerm: rolePermHandler,
		userRole: userRoleHandler,
		schema:   schemaHandler,
	}, middleware.JWTAuth(authService), perm)

	// 前端静态文件
	if cfg.Static.Enabled {
		static, err := web.New(cfg.Static)
		if err != nil {
			zl.Fatal("加载前端静态文件失败", zap.Error(err))
		}
		static.Register(router)
	}

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zl.Info("服务启动", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("正在关闭服务...")

	// 优雅关闭，等待 5 秒
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("服务关闭失败", zap.Error(err))
	}

	zl.Info("服务已关闭")
}
