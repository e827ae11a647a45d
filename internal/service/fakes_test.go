package service

import (
	"context"
	"sync"

	"github.com/yuqie6/HRBench/internal/repository"
	"github.com/yuqie6/HRBench/internal/schema"
)

type fakeEmployees struct {
	active, all, createdPrior int64
	left, resigned            int64
	err                       error
	block                     bool
}

func (f fakeEmployees) wait(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.err
}

func (f fakeEmployees) CountActive(ctx context.Context, companyID string) (int64, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	return f.active, nil
}
func (f fakeEmployees) CountAll(ctx context.Context, companyID string) (int64, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	return f.all, nil
}
func (f fakeEmployees) CountCreatedBetween(ctx context.Context, companyID string, startMs, endMs int64) (int64, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	return f.createdPrior, nil
}
func (f fakeEmployees) CountLeftBetween(ctx context.Context, companyID string, startMs, endMs int64, statuses ...string) (int64, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	if len(statuses) == 1 && statuses[0] == schema.EmployeeStatusResigned {
		return f.resigned, nil
	}
	return f.left, nil
}

type fakePayroll struct {
	current, prior *repository.PayrollStat
	byLevel        []repository.LevelPayStat
	err            error
	currentStartMs int64
}

func (f fakePayroll) GetPaidStats(ctx context.Context, companyID string, startMs, endMs int64) (*repository.PayrollStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	if startMs == f.currentStartMs {
		return f.current, nil
	}
	return f.prior, nil
}
func (f fakePayroll) GetPaidStatsByLevel(ctx context.Context, companyID string, startMs, endMs int64) ([]repository.LevelPayStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byLevel, nil
}

type fakePerformance struct {
	stat *repository.PerformanceStat
	err  error
}

func (f fakePerformance) GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*repository.PerformanceStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.stat, f.err
}

type fakeCandidates struct {
	hired  []schema.Candidate
	offers int64
	err    error
}

func (f fakeCandidates) GetHiredBetween(ctx context.Context, companyID string, startMs, endMs int64) ([]schema.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.hired, f.err
}
func (f fakeCandidates) CountByStatusesBetween(ctx context.Context, companyID string, startMs, endMs int64, statuses ...string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return f.offers, f.err
}

type fakeAttendance struct {
	stat *repository.AttendanceStat
	err  error
}

func (f fakeAttendance) GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*repository.AttendanceStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.stat, f.err
}

type fakeTraining struct {
	stat *repository.TrainingStat
	err  error
}

func (f fakeTraining) GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*repository.TrainingStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.stat, f.err
}

type fakeCompanies struct {
	companies map[string]*schema.Company
}

func (f fakeCompanies) GetByID(ctx context.Context, id string) (*schema.Company, error) {
	return f.companies[id], nil
}

// fakeBenchmarks 以五元组为键的内存目录
type fakeBenchmarks struct {
	mu        sync.Mutex
	records   map[schema.BenchmarkKey]schema.IndustryBenchmark
	upsertErr map[string]error // industry -> 写入错误
}

func newFakeBenchmarks() *fakeBenchmarks {
	return &fakeBenchmarks{records: make(map[schema.BenchmarkKey]schema.IndustryBenchmark)}
}

func (f *fakeBenchmarks) FindByKey(ctx context.Context, key schema.BenchmarkKey) (*schema.IndustryBenchmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.records[key]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBenchmarks) Upsert(ctx context.Context, b *schema.IndustryBenchmark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upsertErr[b.Industry]; err != nil {
		return err
	}
	f.records[b.Key()] = *b
	return nil
}

func (f *fakeBenchmarks) List(ctx context.Context, filter repository.BenchmarkFilter) ([]schema.IndustryBenchmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []schema.IndustryBenchmark
	for _, b := range f.records {
		if filter.Industry != "" && b.Industry != filter.Industry {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type fakeCollector struct {
	metrics *CompanyMetrics
	err     error
}

func (f fakeCollector) CollectCompanyMetrics(ctx context.Context, companyID string, year, quarter int) (*CompanyMetrics, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *f.metrics
	out.CompanyID = companyID
	return &out, nil
}
