package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"relgraph/internal/bootstrap"
	"relgraph/internal/model"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "管理关系类型",
	}
	cmd.AddCommand(newStatusListCmd(opts), newStatusCreateCmd(opts), newStatusDeleteCmd(opts))
	return cmd
}

func newStatusListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部关系类型",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				statuses, err := app.Registry.ListStatuses(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tVERB\tFROM\tTO\tSYMMETRICAL\tLOGIN\tPRIVATE")
				for _, s := range statuses {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%t\t%t\n",
						s.ID, s.Name, s.Verb, s.FromSlug, s.ToSlug, s.Symmetrical(), s.LoginRequired, s.Private)
				}
				return w.Flush()
			})
		},
	}
}

func newStatusCreateCmd(opts *options) *cobra.Command {
	var (
		st          model.RelationshipStatus
		symmetrical string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "创建关系类型",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if symmetrical != "" {
				st.SymmetricalSlug = &symmetrical
			}
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Registry.CreateStatus(ctx, &st); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created status %d (%v)\n", st.ID, st.Slugs())
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&st.Name, "name", "", "显示名称")
	f.StringVar(&st.Verb, "verb", "", "动作词")
	f.StringVar(&st.FromSlug, "from", "", "正向slug")
	f.StringVar(&st.ToSlug, "to", "", "反向slug")
	f.StringVar(&symmetrical, "symmetrical", "", "双向slug（可选）")
	f.BoolVar(&st.LoginRequired, "login-required", false, "查看列表需要登录")
	f.BoolVar(&st.Private, "private", false, "列表仅本人可见")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newStatusDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "删除关系类型及其全部关系",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Registry.DeleteStatus(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted status %d\n", id)
				return nil
			})
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "写入默认关系类型（已存在则跳过）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Registry.SeedDefaults(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "default statuses seeded")
				return nil
			})
		},
	}
}
