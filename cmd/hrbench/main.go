package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuqie6/HRBench/internal/bootstrap"
	"github.com/yuqie6/HRBench/internal/pkg/buildinfo"
	"github.com/yuqie6/HRBench/internal/pkg/config"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "hrbench",
		Short:         "HRBench - 企业人力资源指标聚合与行业基准对标",
		Long:          `HRBench 从 HR 记录库聚合企业指标，与行业基准目录逐维度对比并给出优势、短板与改进建议。`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initConfigCmd())
	rootCmd.AddCommand(metricsCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(benchmarksCmd())
	rootCmd.AddCommand(templateCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(dimensionsCmd())
	rootCmd.AddCommand(optionsCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// withCore 构建核心依赖执行 fn，结束后释放
func withCore(fn func(core *bootstrap.Core) error) error {
	core, err := bootstrap.NewCore(cfgFile)
	if err != nil {
		return fmt.Errorf("初始化失败: %w", err)
	}
	defer func() {
		if err := core.Close(); err != nil {
			slog.Warn("关闭数据库失败", "error", err)
		}
	}()
	return fn(core)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// initConfigCmd 写出默认配置
func initConfigCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "生成默认配置文件",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("配置文件已存在: %s（使用 --force 覆盖）", path)
			}
			if err := config.WriteFile(path, config.Default()); err != nil {
				return err
			}
			fmt.Printf("✅ 已写入默认配置: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有配置文件")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("hrbench", buildinfo.String())
		},
	}
}
