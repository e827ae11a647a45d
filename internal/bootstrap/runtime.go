package bootstrap

import (
	"context"
	"log/slog"

	"github.com/yuqie6/HRBench/internal/collector"
	"github.com/yuqie6/HRBench/internal/pkg/config"
)

// Runtime 常驻进程：核心依赖 + 投放目录监控
type Runtime struct {
	*Core
	Watcher *collector.ImportWatcher
}

// NewRuntime 构建核心依赖并启动投放目录监控
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	core, err := NewCoreWithConfig(cfg)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Core: core}
	if core.DB != nil && core.DB.SafeMode {
		// 安全模式：只提供只读接口，不启动写库链路
		slog.Warn("数据库处于安全模式，跳过投放目录监控", "reason", core.DB.MigrationError)
		return rt, nil
	}

	w, err := collector.NewImportWatcher(&collector.ImportWatcherConfig{
		Dir:        cfg.Importer.WatchDir,
		Extensions: cfg.Importer.Extensions,
		Debounce:   cfg.Importer.Debounce(),
		BufferSize: 64,
	}, core.Services.Import, core.Hub)
	if err != nil {
		_ = core.Close()
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		_ = core.Close()
		return nil, err
	}
	rt.Watcher = w

	go rt.drainReports(ctx)
	return rt, nil
}

// drainReports 消费导入结果，避免结果通道写满
func (rt *Runtime) drainReports(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-rt.Watcher.Results():
			if !ok {
				return
			}
			if r.Err != nil {
				slog.Warn("投放文件导入失败", "file", r.File, "error", r.Err)
				continue
			}
			slog.Info("投放文件导入完成", "file", r.File, "success", r.Result.Success, "failed", r.Result.Failed)
		}
	}
}

// Close 停止监控并释放核心依赖
func (rt *Runtime) Close() error {
	if rt == nil {
		return nil
	}
	if rt.Watcher != nil {
		_ = rt.Watcher.Stop()
	}
	return rt.Core.Close()
}
