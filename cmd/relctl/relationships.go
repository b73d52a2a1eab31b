package main

import (
	"context"
	"fmt"

	"relgraph/internal/bootstrap"
	"relgraph/internal/service"
	"relgraph/pkg/response"

	"github.com/spf13/cobra"
)

func newExistsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exists FROM TO SLUG",
		Short: "判断关系是否存在",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID(args[0])
			if err != nil {
				return err
			}
			to, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				ok, err := app.Relationships.Exists(ctx, from, to, args[2])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			})
		},
	}
}

// newAddCmd add=true 建立关系，否则删除
func newAddCmd(opts *options, add bool) *cobra.Command {
	use, short := "add ACTOR TARGET SLUG", "建立关系"
	if !add {
		use, short = "remove ACTOR TARGET SLUG", "删除关系"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := parseID(args[0])
			if err != nil {
				return err
			}
			target, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				fn := app.Relationships.Add
				if !add {
					fn = app.Relationships.Remove
				}
				if err := fn(ctx, actor, target, args[2]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var viewerID uint
	cmd := &cobra.Command{
		Use:   "list USER [SLUG]",
		Short: "列出用户的关系列表",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0])
			if err != nil {
				return err
			}
			slug := ""
			if len(args) == 2 {
				slug = args[1]
			}
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				users, err := app.Relationships.ListRelationships(ctx, service.Viewer{ID: viewerID}, userID, slug)
				if err != nil {
					return err
				}
				return printJSON(cmd, &response.UserListResponse{
					UserID: userID,
					Status: slug,
					Users:  response.FilterUsers(users),
					Total:  len(users),
				})
			})
		},
	}
	cmd.Flags().UintVar(&viewerID, "as", 0, "以该用户身份查看（默认匿名）")
	return cmd
}

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify A B",
		Short: "计算 A 与 B 的关系类别",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				result, err := app.Classifier.Classify(ctx, a, b)
				if err != nil {
					return err
				}
				if result == service.ClassNone {
					result = "none"
				}
				fmt.Fprintln(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}
