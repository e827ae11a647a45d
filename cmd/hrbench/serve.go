package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yuqie6/HRBench/internal/bootstrap"
	"github.com/yuqie6/HRBench/internal/collector"
	"github.com/yuqie6/HRBench/internal/httpapi"
	"github.com/yuqie6/HRBench/internal/pkg/config"
)

// loadServeConfig 未指定 --config 且默认配置不存在时先写出默认配置
func loadServeConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err == nil {
			if _, statErr := os.Stat(p); errors.Is(statErr, os.ErrNotExist) {
				if err := config.WriteFile(p, config.Default()); err != nil {
					slog.Warn("写入默认配置失败", "path", p, "error", err)
				}
			}
			path = p
		}
	}
	return config.Load(path)
}

func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务与基准投放目录监控",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.ListenAddr = listen
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := bootstrap.NewRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			h := httpapi.NewHandler(httpapi.Deps{
				AppName:    cfg.App.Name,
				Metrics:    rt.Services.Metrics,
				Benchmarks: rt.Services.Benchmarks,
				Importer:   rt.Services.Import,
				Hub:        rt.Hub,
				BestEffort: cfg.Aggregator.BestEffort,
			})
			srv, err := httpapi.Start(ctx, httpapi.NewRouter(h), httpapi.Options{ListenAddr: cfg.Server.ListenAddr})
			if err != nil {
				return err
			}

			slog.Info("HRBench 已启动", "name", cfg.App.Name, "base_url", srv.BaseURL(), "watch_dir", cfg.Importer.WatchDir)
			<-ctx.Done()
			slog.Info("收到退出信号，正在关闭")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "监听地址（覆盖 server.listen_addr）")
	return cmd
}

// watchCmd 仅运行投放目录监控，打印每个文件的导入结果
func watchCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "监控投放目录并自动导入基准批次",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(func(core *bootstrap.Core) error {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				watchDir := core.Cfg.Importer.WatchDir
				if dir != "" {
					watchDir = dir
				}
				w, err := collector.NewImportWatcher(&collector.ImportWatcherConfig{
					Dir:        watchDir,
					Extensions: core.Cfg.Importer.Extensions,
					Debounce:   core.Cfg.Importer.Debounce(),
					BufferSize: 64,
				}, core.Services.Import, core.Hub)
				if err != nil {
					return err
				}
				if err := w.Start(ctx); err != nil {
					return err
				}
				defer w.Stop()

				fmt.Printf("👀 正在监控 %s（Ctrl+C 退出）\n", w.Dir())
				for {
					select {
					case <-ctx.Done():
						return nil
					case r := <-w.Results():
						if r.Err != nil {
							fmt.Printf("❌ %s: %v\n", r.File, r.Err)
							continue
						}
						fmt.Printf("✅ %s: 成功 %d 行，失败 %d 行\n", r.File, r.Result.Success, r.Result.Failed)
						for _, msg := range r.Result.Errors {
							fmt.Printf("   • %s\n", msg)
						}
					}
				}
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "投放目录（覆盖 importer.watch_dir）")
	return cmd
}
