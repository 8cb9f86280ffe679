package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pu-ac-cn/rbac-admin/pkg/client"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "校验账号并显示当前用户的角色和权限",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Logout(cmd.Context())

			info, err := c.Info(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "用户: %s\n", info.User.Username)
			fmt.Fprintf(out, "角色: %s\n", strings.Join(info.Roles, ", "))
			fmt.Fprintf(out, "权限: %d 项\n", len(info.Permissions))
			return nil
		},
	}
}

func newUsersCmd(opts *options) *cobra.Command {
	query := &client.UserQuery{}
	cmd := &cobra.Command{
		Use:   "users",
		Short: "分页查询用户",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Logout(cmd.Context())

			page, err := c.FindUsers(cmd.Context(), query)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\t用户名\t昵称\t邮箱\t状态")
			for _, u := range page.Records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Nickname, u.Email, u.Status)
			}
			fmt.Fprintf(w, "第 %d/%d 页，共 %d 条\n", page.Current, page.Pages, page.Total)
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&query.Current, "current", 1, "页码")
	cmd.Flags().IntVar(&query.Size, "size", 10, "每页条数")
	cmd.Flags().StringVar(&query.Username, "name", "", "按用户名模糊查询")
	cmd.Flags().StringVar(&query.Status, "status", "", "按状态过滤 (enabled, disabled)")
	return cmd
}

func newRolesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "列出启用的角色",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Logout(cmd.Context())

			roles, err := c.EnabledRoles(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\t名称\t编码\t系统")
			for _, r := range roles {
				system := ""
				if r.IsSystem {
					system = "是"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Code, system)
			}
			return w.Flush()
		},
	}
}

func newPermTreeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "perm-tree",
		Short: "打印权限树",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Logout(cmd.Context())

			tree, err := c.PermissionTree(cmd.Context())
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), tree, 0)
			return nil
		},
	}
}

func printTree(w io.Writer, nodes []*client.Permission, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s %s [%s] %s\n", strings.Repeat("  ", depth), n.Code, n.Name, n.Type, n.ID)
		printTree(w, n.Children, depth+1)
	}
}

func newAssignPermsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "assign-perms <roleId> [permissionId...]",
		Short: "整体替换角色的权限",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Logout(cmd.Context())

			if err := c.AssignRolePermissions(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "角色 %s 已分配 %d 项权限\n", args[0], len(args)-1)
			return nil
		},
	}
}

func newAssignRolesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "assign-roles <userId> [roleId...]",
		Short: "整体替换用户的角色",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Logout(cmd.Context())

			if err := c.AssignUserRoles(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "用户 %s 已分配 %d 个角色\n", args[0], len(args)-1)
			return nil
		},
	}
}
