package service

import (
	"context"

	"github.com/yuqie6/HRBench/internal/repository"
	"github.com/yuqie6/HRBench/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type EmployeeRepository interface {
	CountActive(ctx context.Context, companyID string) (int64, error)
	CountAll(ctx context.Context, companyID string) (int64, error)
	CountCreatedBetween(ctx context.Context, companyID string, startMs, endMs int64) (int64, error)
	CountLeftBetween(ctx context.Context, companyID string, startMs, endMs int64, statuses ...string) (int64, error)
}

type PayrollRepository interface {
	GetPaidStats(ctx context.Context, companyID string, startMs, endMs int64) (*repository.PayrollStat, error)
	GetPaidStatsByLevel(ctx context.Context, companyID string, startMs, endMs int64) ([]repository.LevelPayStat, error)
}

type PerformanceRepository interface {
	GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*repository.PerformanceStat, error)
}

type CandidateRepository interface {
	GetHiredBetween(ctx context.Context, companyID string, startMs, endMs int64) ([]schema.Candidate, error)
	CountByStatusesBetween(ctx context.Context, companyID string, startMs, endMs int64, statuses ...string) (int64, error)
}

type AttendanceRepository interface {
	GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*repository.AttendanceStat, error)
}

type TrainingRepository interface {
	GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*repository.TrainingStat, error)
}

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*schema.Company, error)
}

type BenchmarkRepository interface {
	FindByKey(ctx context.Context, key schema.BenchmarkKey) (*schema.IndustryBenchmark, error)
	Upsert(ctx context.Context, b *schema.IndustryBenchmark) error
	List(ctx context.Context, filter repository.BenchmarkFilter) ([]schema.IndustryBenchmark, error)
}

// HRDataStore 只读 HR 记录库（按类别拆分，每个子计算只读自己的记录类型）
type HRDataStore struct {
	Employees   EmployeeRepository
	Payroll     PayrollRepository
	Performance PerformanceRepository
	Candidates  CandidateRepository
	Attendance  AttendanceRepository
	Training    TrainingRepository
}

// MetricsCollector 企业指标聚合
type MetricsCollector interface {
	CollectCompanyMetrics(ctx context.Context, companyID string, year, quarter int) (*CompanyMetrics, error)
}
