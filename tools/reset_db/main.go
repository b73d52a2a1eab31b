package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"relgraph/config"
	dbPkg "relgraph/pkg/db"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// 关系数据表
var relationTables = []string{"relationship_activity", "relationship"}

// 关系类型与用户目录仅 --all 时清空
var directoryTables = []string{"relationship_status", "social_account", "user"}

func main() {
	var (
		configPath string
		all        bool
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset_db",
		Short: "清空关系图数据表（保留表结构）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadConfigFrom(configPath)
			tables := relationTables
			if all {
				tables = append(append([]string{}, relationTables...), directoryTables...)
			}
			return reset(cmd, cfg.Database, tables, yes)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "配置文件路径")
	cmd.Flags().BoolVar(&all, "all", false, "同时清空关系类型、用户与第三方账号表")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "跳过确认")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func reset(cmd *cobra.Command, cfg config.DatabaseConfig, tables []string, yes bool) error {
	dsn, err := dbPkg.DSN(cfg)
	if err != nil {
		return err
	}
	driverName := "mysql"
	if cfg.Driver == "postgres" {
		driverName = "pgx"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("数据库连接测试失败: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "数据库: %s (%s)\n", cfg.Database, driverName)

	if !yes {
		fmt.Fprintf(out, "\n警告: 将清空表 [%s] 中的全部数据!\n", strings.Join(tables, ", "))
		fmt.Fprint(out, "输入 YES 确认: ")
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.TrimSpace(line) != "YES" {
			fmt.Fprintln(out, "操作已取消")
			return nil
		}
	}

	failed := 0
	if driverName == "pgx" {
		quoted := make([]string, len(tables))
		for i, t := range tables {
			quoted[i] = `"` + t + `"`
		}
		if _, err := db.Exec("TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"); err != nil {
			return fmt.Errorf("清空失败: %w", err)
		}
	} else {
		_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
		for _, table := range tables {
			fmt.Fprintf(out, "清空表 %s... ", table)
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM `%s`", table)); err != nil {
				fmt.Fprintf(out, "失败: %v\n", err)
				failed++
				continue
			}
			// 动态表使用 UUID 主键，没有自增列
			if table != "relationship_activity" {
				if _, err := db.Exec(fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = 1", table)); err != nil {
					fmt.Fprintf(out, "重置自增ID失败: %v\n", err)
					failed++
					continue
				}
			}
			fmt.Fprintln(out, "成功")
		}
		_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1")
	}

	if failed > 0 {
		return fmt.Errorf("%d 个表处理失败", failed)
	}
	fmt.Fprintln(out, "\n数据库重置完成，表结构保留")
	return nil
}
