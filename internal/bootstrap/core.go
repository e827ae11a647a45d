package bootstrap

import (
	"io"
	"os"
	"path/filepath"

	"github.com/yuqie6/HRBench/internal/eventbus"
	"github.com/yuqie6/HRBench/internal/pkg/config"
	"github.com/yuqie6/HRBench/internal/repository"
	"github.com/yuqie6/HRBench/internal/service"
)

// Core 持有各子命令共享的核心依赖
type Core struct {
	Cfg       *config.Config
	DB        *repository.Database
	LogCloser io.Closer
	Hub       *eventbus.Hub

	Repos struct {
		Companies   *repository.CompanyRepository
		Employees   *repository.EmployeeRepository
		Payroll     *repository.PayrollRepository
		Performance *repository.PerformanceRepository
		Candidates  *repository.CandidateRepository
		Attendance  *repository.AttendanceRepository
		Training    *repository.TrainingRepository
		Benchmarks  *repository.BenchmarkRepository
	}

	Services struct {
		Metrics    *service.MetricsService
		Benchmarks *service.BenchmarkService
		Import     *service.ImportService
	}
}

// NewCore 加载配置并构建核心依赖（不启动投放目录监控）
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return NewCoreWithConfig(cfg)
}

// NewCoreWithConfig 使用已加载的配置构建核心依赖
func NewCoreWithConfig(cfg *config.Config) (*Core, error) {
	logCloser, _ := config.SetupLogger(config.LoggerOptions{
		Level:     cfg.App.LogLevel,
		Path:      cfg.App.LogPath,
		Component: filepath.Base(os.Args[0]),
	})

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db, LogCloser: logCloser, Hub: eventbus.NewHub()}

	// Repos
	c.Repos.Companies = repository.NewCompanyRepository(db.DB)
	c.Repos.Employees = repository.NewEmployeeRepository(db.DB)
	c.Repos.Payroll = repository.NewPayrollRepository(db.DB)
	c.Repos.Performance = repository.NewPerformanceRepository(db.DB)
	c.Repos.Candidates = repository.NewCandidateRepository(db.DB)
	c.Repos.Attendance = repository.NewAttendanceRepository(db.DB)
	c.Repos.Training = repository.NewTrainingRepository(db.DB)
	c.Repos.Benchmarks = repository.NewBenchmarkRepository(db.DB)

	// Services
	c.Services.Metrics = service.NewMetricsService(service.HRDataStore{
		Employees:   c.Repos.Employees,
		Payroll:     c.Repos.Payroll,
		Performance: c.Repos.Performance,
		Candidates:  c.Repos.Candidates,
		Attendance:  c.Repos.Attendance,
		Training:    c.Repos.Training,
	}, &service.MetricsServiceConfig{Timeout: cfg.Aggregator.Timeout()})

	var collector service.MetricsCollector = c.Services.Metrics
	if cfg.Aggregator.BestEffort {
		collector = service.BestEffortCollector{Service: c.Services.Metrics}
	}
	c.Services.Benchmarks = service.NewBenchmarkService(c.Repos.Benchmarks, c.Repos.Companies, collector,
		&service.BenchmarkServiceConfig{CategoryWeights: categoryWeights(cfg.Benchmark.CategoryWeights)})
	c.Services.Import = service.NewImportService(c.Repos.Benchmarks)

	return c, nil
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	var dbErr error
	if c.DB != nil {
		dbErr = c.DB.Close()
	}
	if c.LogCloser != nil {
		_ = c.LogCloser.Close()
	}
	return dbErr
}

// categoryWeights 配置键为类别名；未知类别忽略
func categoryWeights(raw map[string]float64) map[service.MetricCategory]float64 {
	if len(raw) == 0 {
		return nil
	}
	known := make(map[service.MetricCategory]bool)
	for _, c := range service.MetricCategories() {
		known[c] = true
	}
	out := make(map[service.MetricCategory]float64, len(raw))
	for k, w := range raw {
		c := service.MetricCategory(k)
		if known[c] {
			out[c] = w
		}
	}
	return out
}
