package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Benchmark  BenchmarkConfig  `mapstructure:"benchmark"`
	Importer   ImporterConfig   `mapstructure:"importer"`
	Server     ServerConfig     `mapstructure:"server"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// AggregatorConfig 指标聚合配置
type AggregatorConfig struct {
	TimeoutSec int  `mapstructure:"timeout_sec"`
	BestEffort bool `mapstructure:"best_effort"` // true: 类别失败时返回部分结果并标记缺失
}

// Timeout 聚合超时
func (c AggregatorConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// BenchmarkConfig 对比配置
type BenchmarkConfig struct {
	CategoryWeights map[string]float64 `mapstructure:"category_weights"`
}

// ImporterConfig 投放目录导入配置
type ImporterConfig struct {
	WatchDir   string   `mapstructure:"watch_dir"`
	DebounceMs int      `mapstructure:"debounce_ms"`
	Extensions []string `mapstructure:"extensions"`
}

// Debounce 防抖时长
func (c ImporterConfig) Debounce() time.Duration {
	if c.DebounceMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量：HRBENCH_STORAGE_DB_PATH 等
	v.SetEnvPrefix("HRBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.Importer.WatchDir = resolvePath(cfg.Importer.WatchDir)
	if cfg.App.LogPath != "" {
		cfg.App.LogPath = resolvePath(cfg.App.LogPath)
	}
	return &cfg, nil
}

// Default 不读取文件与环境变量的默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "hrbench")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_path", "")

	// Storage
	v.SetDefault("storage.db_path", "./data/hrbench.db")

	// Aggregator
	v.SetDefault("aggregator.timeout_sec", 30)
	v.SetDefault("aggregator.best_effort", false)

	// Benchmark：类别权重缺省 1.0
	v.SetDefault("benchmark.category_weights", map[string]float64{})

	// Importer
	v.SetDefault("importer.watch_dir", "./data/inbox")
	v.SetDefault("importer.debounce_ms", 2000)
	v.SetDefault("importer.extensions", []string{".xlsx", ".yaml", ".yml", ".json"})

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8080")
}

// resolvePath 相对路径按可执行文件目录解析；:memory: 与空值原样返回
func resolvePath(path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}

	exe, err := os.Executable()
	if err != nil {
		return path
	}
	return filepath.Join(filepath.Dir(exe), path)
}
