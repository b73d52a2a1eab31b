package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"relgraph/config"
	"relgraph/internal/bootstrap"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "relctl",
		Short:         "relgraph 管理工具",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.cfg = config.LoadConfigFrom(opts.configPath)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigPath, "配置文件路径")

	root.AddCommand(
		newStatusCmd(opts),
		newSeedCmd(opts),
		newExistsCmd(opts),
		newAddCmd(opts, true),
		newAddCmd(opts, false),
		newListCmd(opts),
		newClassifyCmd(opts),
		newUserCmd(opts),
		newSocialCmd(opts),
		newTokenCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

// withApp 组装服务后执行 fn，结束时释放连接
func (o *options) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := bootstrap.Build(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func parseID(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(v), nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
