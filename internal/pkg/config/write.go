package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath 可执行文件同级 config/config.yaml
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "config", "config.yaml"), nil
}

// WriteFile 将配置写回 yaml（字段名与 Load 读取的键一致）
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	weights := cfg.Benchmark.CategoryWeights
	if weights == nil {
		weights = map[string]float64{}
	}
	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
			"log_path":  cfg.App.LogPath,
		},
		"storage": map[string]any{
			"db_path": cfg.Storage.DBPath,
		},
		"aggregator": map[string]any{
			"timeout_sec": cfg.Aggregator.TimeoutSec,
			"best_effort": cfg.Aggregator.BestEffort,
		},
		"benchmark": map[string]any{
			"category_weights": weights,
		},
		"importer": map[string]any{
			"watch_dir":   cfg.Importer.WatchDir,
			"debounce_ms": cfg.Importer.DebounceMs,
			"extensions":  cfg.Importer.Extensions,
		},
		"server": map[string]any{
			"listen_addr": cfg.Server.ListenAddr,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
