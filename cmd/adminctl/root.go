package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pu-ac-cn/rbac-admin/pkg/client"
	"github.com/spf13/cobra"
)

// options 全局参数
type options struct {
	server   string
	username string
	password string
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "adminctl",
		Short: "权限管理后台命令行工具",
		Long: `adminctl 通过 HTTP 接口管理用户、角色和权限。

示例:
  adminctl users --server http://localhost:8080/api -u admin -p admin123
  adminctl assign-perms <roleId> <permissionId>...
  adminctl assign-roles <userId>             # 不传角色则清空`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("ADMINCTL_SERVER", "http://localhost:8080/api"), "接口地址")
	flags.StringVarP(&opts.username, "username", "u", os.Getenv("ADMINCTL_USERNAME"), "登录用户名")
	flags.StringVarP(&opts.password, "password", "p", os.Getenv("ADMINCTL_PASSWORD"), "登录密码")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "请求超时")

	cmd.AddCommand(
		newLoginCmd(opts),
		newUsersCmd(opts),
		newRolesCmd(opts),
		newPermTreeCmd(opts),
		newAssignPermsCmd(opts),
		newAssignRolesCmd(opts),
	)
	return cmd
}

// connect 创建客户端并登录
func (o *options) connect(ctx context.Context) (*client.Client, error) {
	if o.username == "" || o.password == "" {
		return nil, fmt.Errorf("需要 --username 和 --password")
	}
	c := client.New(o.server, client.NewSession(), client.WithTimeout(o.timeout))
	if _, err := c.Login(ctx, o.username, o.password); err != nil {
		return nil, fmt.Errorf("登录失败: %w", err)
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
