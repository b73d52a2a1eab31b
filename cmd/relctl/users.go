package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"relgraph/internal/bootstrap"
	"relgraph/internal/model"
	"relgraph/pkg/events"
	"relgraph/pkg/jwt"

	"github.com/spf13/cobra"
)

func newUserCmd(opts *options) *cobra.Command {
	var nickname string
	add := &cobra.Command{
		Use:   "add ID USERNAME",
		Short: "导入用户",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				u := &model.User{ID: id, Username: args[1], Nickname: nickname}
				if err := app.Users.Create(ctx, u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) imported\n", u.ID, u.Username)
				return nil
			})
		},
	}
	add.Flags().StringVar(&nickname, "nickname", "", "昵称")

	cmd := &cobra.Command{Use: "user", Short: "用户目录"}
	cmd.AddCommand(add)
	return cmd
}

func newSocialCmd(opts *options) *cobra.Command {
	link := &cobra.Command{
		Use:   "link USER PROVIDER EXTERNAL_USERNAME",
		Short: "绑定第三方账号",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Social.Link(ctx, id, args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
	invalidate := &cobra.Command{
		Use:   "invalidate PROVIDER EXTERNAL_USERNAME",
		Short: "清除缓存的第三方好友列表",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Classifier.InvalidateFriends(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}

	cmd := &cobra.Command{Use: "social", Short: "第三方社交账号"}
	cmd.AddCommand(link, invalidate)
	return cmd
}

func newTokenCmd(opts *options) *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "token USER",
		Short: "签发测试用JWT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var extra map[string]interface{}
			if admin {
				extra = map[string]interface{}{"role": jwt.RoleAdmin}
			}
			token, err := jwt.NewJWTService(opts.cfg.JWT).GenerateToken(id, extra)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "签发管理员令牌")
	return cmd
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [SUBJECT_FILTER]",
		Short: "订阅关系事件流（需要配置 nats.url）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.NATS.URL == "" {
				return fmt.Errorf("nats.url is not configured")
			}
			filter := events.SubjectPattern
			if len(args) == 1 {
				filter = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			pub, err := events.NewNatsPublisher(ctx, opts.cfg.NATS.URL, opts.cfg.NATS.Stream)
			if err != nil {
				return err
			}
			defer pub.Close()

			out := cmd.OutOrStdout()
			return pub.Watch(ctx, filter, func(subject string, data []byte) {
				fmt.Fprintf(out, "%s %s\n", subject, data)
			})
		},
	}
}
