package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuqie6/HRBench/internal/observability"
	"github.com/yuqie6/HRBench/internal/repository"
	"github.com/yuqie6/HRBench/internal/schema"
	"golang.org/x/sync/errgroup"
)

// 无记录时的兜底值（与计算得出的 0 区分，DataAvailable 标记为 false）
const (
	fallbackAttendanceRate     = 96.0
	fallbackOvertimeHours      = 20.0
	fallbackTrainingHours      = 40.0
	fallbackTrainingCompletion = 85.0
	stubEmployeeSatisfaction   = 75.0
	stubEngagementScore        = 72.0
	defaultAggregationTimeout  = 30 * time.Second
	millisPerDay               = float64(24 * time.Hour / time.Millisecond)
	aggregationModeFailFast    = "fail_fast"
	aggregationModeBestEffort  = "best_effort"
)

// MetricsServiceConfig 聚合配置
type MetricsServiceConfig struct {
	Timeout time.Duration    // 整体聚合超时；<=0 使用默认值
	Now     func() time.Time // 测试注入
}

// MetricsService 企业 HR 指标聚合（八个类别并发计算后合并）
type MetricsService struct {
	store   HRDataStore
	timeout time.Duration
	now     func() time.Time
}

// NewMetricsService 创建指标聚合服务
func NewMetricsService(store HRDataStore, cfg *MetricsServiceConfig) *MetricsService {
	s := &MetricsService{
		store:   store,
		timeout: defaultAggregationTimeout,
		now:     time.Now,
	}
	if cfg != nil {
		if cfg.Timeout > 0 {
			s.timeout = cfg.Timeout
		}
		if cfg.Now != nil {
			s.now = cfg.Now
		}
	}
	return s
}

// CompanyMetrics 某企业在某统计期间的指标快照
type CompanyMetrics struct {
	CompanyID   string          `json:"company_id"`
	Period      ReportingPeriod `json:"period"`
	PeriodLabel string          `json:"period_label"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	schema.MetricSet
	DataAvailable     map[MetricCategory]bool `json:"data_available"`
	MissingCategories []MetricCategory        `json:"missing_categories,omitempty"`
	CollectedAt       time.Time               `json:"collected_at"`
}

// Partial 是否存在失败的类别（仅 best-effort 模式可能为 true）
func (m *CompanyMetrics) Partial() bool {
	return m != nil && len(m.MissingCategories) > 0
}

type metricsWindow struct {
	startMs, endMs           int64
	priorStartMs, priorEndMs int64
}

// categoryOutcome 单个类别的计算结果；apply 只写本类别的字段
type categoryOutcome struct {
	available bool
	apply     func(*schema.MetricSet)
}

type categoryTask struct {
	category MetricCategory
	run      func(ctx context.Context, companyID string, w metricsWindow) (categoryOutcome, error)
}

func (s *MetricsService) tasks() []categoryTask {
	return []categoryTask{
		{CategoryHeadcount, s.collectHeadcount},
		{CategoryCompensation, s.collectCompensation},
		{CategoryTurnover, s.collectTurnover},
		{CategoryPerformance, s.collectPerformance},
		{CategoryRecruitment, s.collectRecruitment},
		{CategoryAttendance, s.collectAttendance},
		{CategoryTraining, s.collectTraining},
		{CategorySatisfaction, s.collectSatisfaction},
	}
}

// CollectCompanyMetrics 聚合企业指标；任一类别失败则整体失败（不返回部分结果）
func (s *MetricsService) CollectCompanyMetrics(ctx context.Context, companyID string, year, quarter int) (*CompanyMetrics, error) {
	started := time.Now()
	out, err := s.collectFailFast(ctx, companyID, year, quarter)
	observeAggregation(aggregationModeFailFast, started, err)
	if err != nil {
		slog.Error("聚合企业指标失败", "company_id", companyID, "year", year, "quarter", quarter, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *MetricsService) collectFailFast(ctx context.Context, companyID string, year, quarter int) (*CompanyMetrics, error) {
	period, w, err := s.prepare(companyID, year, quarter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tasks := s.tasks()
	outcomes := make([]categoryOutcome, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		g.Go(func() error {
			res, err := task.run(gctx, companyID, w)
			if err != nil {
				observability.CategoryFailures.WithLabelValues(string(task.category)).Inc()
				return &CategoryError{Category: task.category, Err: err}
			}
			outcomes[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetricsUnavailable, err)
	}

	out := s.newCompanyMetrics(companyID, period)
	for i, task := range tasks {
		outcomes[i].apply(&out.MetricSet)
		out.DataAvailable[task.category] = outcomes[i].available
	}
	return out, nil
}

// CollectCompanyMetricsBestEffort 每个类别独立捕获失败，失败类别列入 MissingCategories；
// 仅当全部类别失败时返回错误
func (s *MetricsService) CollectCompanyMetricsBestEffort(ctx context.Context, companyID string, year, quarter int) (*CompanyMetrics, error) {
	started := time.Now()
	out, err := s.collectBestEffort(ctx, companyID, year, quarter)
	observeAggregation(aggregationModeBestEffort, started, err)
	if err != nil {
		slog.Error("聚合企业指标失败", "company_id", companyID, "year", year, "quarter", quarter, "error", err)
		return nil, err
	}
	if out.Partial() {
		slog.Warn("企业指标部分缺失", "company_id", companyID, "period", out.PeriodLabel, "missing", out.MissingCategories)
	}
	return out, nil
}

func (s *MetricsService) collectBestEffort(ctx context.Context, companyID string, year, quarter int) (*CompanyMetrics, error) {
	period, w, err := s.prepare(companyID, year, quarter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tasks := s.tasks()
	outcomes := make([]categoryOutcome, len(tasks))
	failures := make([]error, len(tasks))
	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			res, err := task.run(ctx, companyID, w)
			if err != nil {
				observability.CategoryFailures.WithLabelValues(string(task.category)).Inc()
				failures[i] = &CategoryError{Category: task.category, Err: err}
				return nil
			}
			outcomes[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := s.newCompanyMetrics(companyID, period)
	var errs []error
	for i, task := range tasks {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			out.MissingCategories = append(out.MissingCategories, task.category)
			out.DataAvailable[task.category] = false
			slog.Warn("类别指标计算失败，已跳过", "company_id", companyID, "category", task.category, "error", failures[i])
			continue
		}
		outcomes[i].apply(&out.MetricSet)
		out.DataAvailable[task.category] = outcomes[i].available
	}
	if len(errs) == len(tasks) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (s *MetricsService) prepare(companyID string, year, quarter int) (ReportingPeriod, metricsWindow, error) {
	if companyID == "" {
		return ReportingPeriod{}, metricsWindow{}, ErrCompanyNotFound
	}
	period, err := resolvePeriod(s.now(), year, quarter)
	if err != nil {
		return ReportingPeriod{}, metricsWindow{}, err
	}
	var w metricsWindow
	w.startMs, w.endMs = period.WindowMs()
	w.priorStartMs, w.priorEndMs = period.PriorWindowMs()
	return period, w, nil
}

func (s *MetricsService) newCompanyMetrics(companyID string, period ReportingPeriod) *CompanyMetrics {
	start, end := period.Window()
	out := &CompanyMetrics{
		CompanyID:     companyID,
		Period:        period,
		PeriodLabel:   period.Label(),
		PeriodStart:   start,
		PeriodEnd:     end,
		DataAvailable: make(map[MetricCategory]bool, len(metricCategories)),
		CollectedAt:   s.now(),
	}
	out.SalaryByLevel = schema.NewLevelSalary()
	return out
}

func observeAggregation(mode string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.AggregationDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
	observability.AggregationTotal.WithLabelValues(mode, status).Inc()
}

// collectHeadcount 当前在职人数 vs 上一年同期入职人数
func (s *MetricsService) collectHeadcount(ctx context.Context, companyID string, w metricsWindow) (categoryOutcome, error) {
	current, err := s.store.Employees.CountActive(ctx, companyID)
	if err != nil {
		return categoryOutcome{}, err
	}
	prior, err := s.store.Employees.CountCreatedBetween(ctx, companyID, w.priorStartMs, w.priorEndMs)
	if err != nil {
		return categoryOutcome{}, err
	}
	return categoryOutcome{
		available: current > 0 || prior > 0,
		apply: func(m *schema.MetricSet) {
			m.EmployeeCount = int(current)
			m.EmployeeGrowthRate = growthRate(float64(current), float64(prior))
		},
	}, nil
}

// collectCompensation 已发放工资均值（万元）及同比
func (s *MetricsService) collectCompensation(ctx context.Context, companyID string, w metricsWindow) (categoryOutcome, error) {
	current, err := s.store.Payroll.GetPaidStats(ctx, companyID, w.startMs, w.endMs)
	if err != nil {
		return categoryOutcome{}, err
	}
	prior, err := s.store.Payroll.GetPaidStats(ctx, companyID, w.priorStartMs, w.priorEndMs)
	if err != nil {
		return categoryOutcome{}, err
	}
	byLevel, err := s.store.Payroll.GetPaidStatsByLevel(ctx, companyID, w.startMs, w.endMs)
	if err != nil {
		return categoryOutcome{}, err
	}
	if current == nil {
		current = &repository.PayrollStat{}
	}
	if prior == nil {
		prior = &repository.PayrollStat{}
	}

	levels := schema.NewLevelSalary()
	for _, st := range byLevel {
		if _, ok := levels[st.Level]; ok && st.AvgGrossPay > 0 {
			levels[st.Level] = round2(st.AvgGrossPay / 10000)
		}
	}
	return categoryOutcome{
		available: current.RecordCount > 0,
		apply: func(m *schema.MetricSet) {
			m.AvgSalary = round2(current.AvgGrossPay / 10000)
			m.SalaryGrowthRate = growthRate(current.AvgGrossPay, prior.AvgGrossPay)
			m.SalaryByLevel = levels
		},
	}, nil
}

// collectTurnover 离职率；非主动离职率由总离职率减主动离职率得出
func (s *MetricsService) collectTurnover(ctx context.Context, companyID string, w metricsWindow) (categoryOutcome, error) {
	total, err := s.store.Employees.CountAll(ctx, companyID)
	if err != nil {
		return categoryOutcome{}, err
	}
	left, err := s.store.Employees.CountLeftBetween(ctx, companyID, w.startMs, w.endMs,
		schema.EmployeeStatusTerminated, schema.EmployeeStatusResigned)
	if err != nil {
		return categoryOutcome{}, err
	}
	resigned, err := s.store.Employees.CountLeftBetween(ctx, companyID, w.startMs, w.endMs, schema.EmployeeStatusResigned)
	if err != nil {
		return categoryOutcome{}, err
	}
	turnover := percent(left, total)
	voluntary := percent(resigned, total)
	return categoryOutcome{
		available: total > 0,
		apply: func(m *schema.MetricSet) {
			m.TurnoverRate = turnover
			m.VoluntaryTurnoverRate = voluntary
			m.InvoluntaryTurnoverRate = round1(turnover - voluntary)
		},
	}, nil
}

// collectPerformance 平均分与四档分布；无记录时全部为 0
func (s *MetricsService) collectPerformance(ctx context.Context, companyID string, w metricsWindow) (categoryOutcome, error) {
	st, err := s.store.Performance.GetStats(ctx, companyID, w.startMs, w.endMs)
	if err != nil {
		return categoryOutcome{}, err
	}
	if st == nil || st.Total == 0 {
		return categoryOutcome{apply: func(*schema.MetricSet) {}}, nil
	}
	share := func(n int64) float64 {
		return floor1(float64(n) / float64(st.Total) * 100)
	}
	return categoryOutcome{
		available: true,
		apply: func(m *schema.MetricSet) {
			m.AvgPerformanceScore = round1(clamp(st.AvgScore, 0, 100))
			m.PerformanceDistribution = schema.PerformanceDistribution{
				Excellent: share(st.Excellent),
				Good:      share(st.Good),
				Average:   share(st.Average),
				Poor:      share(st.Poor),
			}
		},
	}, nil
}

// collectRecruitment 招聘周期（天）与 offer 接受率；单次招聘成本暂无数据源
func (s *MetricsService) collectRecruitment(ctx context.Context, companyID string, w metricsWindow) (categoryOutcome, error) {
	hired, err := s.store.Candidates.GetHiredBetween(ctx, companyID, w.startMs, w.endMs)
	if err != nil {
		return categoryOutcome{}, err
	}
	offers, err := s.store.Candidates.CountByStatusesBetween(ctx, companyID, w.startMs, w.endMs,
		schema.CandidateStatusOffered, schema.CandidateStatusHired, schema.CandidateStatusOfferDeclined)
	if err != nil {
		return categoryOutcome{}, err
	}

	var cycle float64
	if len(hired) > 0 {
		var totalDays float64
		for _, c := range hired {
			if d := c.UpdatedAt - c.CreatedAt; d > 0 {
				totalDays += float64(d) / millisPerDay
			}
		}
		cycle = round1(totalDays / float64(len(hired)))
	}
	acceptance := clamp(percent(int64(len(hired)), offers), 0, 100)
	return categoryOutcome{
		available: len(hired) > 0 || offers > 0,
		apply: func(m *schema.MetricSet) {
			m.AvgRecruitmentCycle = cycle
			m.OfferAcceptanceRate = acceptance
			m.CostPerHire = 0
		},
	}, nil
}

// collectAttendance 出勤率与人均加班；无记录时返回兜底值
func (s *MetricsService) collectAttendance(ctx context.Context, companyID string, w metricsWindow) (categoryOutcome, error) {
	st, err := s.store.Attendance.GetStats(ctx, companyID, w.startMs, w.endMs)
	if err != nil {
		return categoryOutcome{}, err
	}
	if st == nil || st.Total == 0 {
		return categoryOutcome{
			apply: func(m *schema.MetricSet) {
				m.AvgAttendanceRate = fallbackAttendanceRate
				m.AvgOvertimeHours = fallbackOvertimeHours
			},
		}, nil
	}
	return categoryOutcome{
		available: true,
		apply: func(m *schema.MetricSet) {
			m.AvgAttendanceRate = percent(st.Present, st.Total)
			m.AvgOvertimeHours = round1(st.OvertimeHours / float64(st.Total))
		},
	}, nil
}

// collectTraining 人均学时与完成率；无记录时返回兜底值
func (s *MetricsService) collectTraining(ctx context.Context, companyID string, w metricsWindow) (categoryOutcome, error) {
	st, err := s.store.Training.GetStats(ctx, companyID, w.startMs, w.endMs)
	if err != nil {
		return categoryOutcome{}, err
	}
	if st == nil || st.Total == 0 {
		return categoryOutcome{
			apply: func(m *schema.MetricSet) {
				m.AvgTrainingHours = fallbackTrainingHours
				m.TrainingCompletionRate = fallbackTrainingCompletion
			},
		}, nil
	}
	return categoryOutcome{
		available: true,
		apply: func(m *schema.MetricSet) {
			m.AvgTrainingHours = round1(st.AvgHours)
			m.TrainingCompletionRate = percent(st.Completed, st.Total)
		},
	}, nil
}

// collectSatisfaction 暂无调研数据源，固定返回占位值
func (s *MetricsService) collectSatisfaction(ctx context.Context, _ string, _ metricsWindow) (categoryOutcome, error) {
	if err := ctx.Err(); err != nil {
		return categoryOutcome{}, err
	}
	return categoryOutcome{
		apply: func(m *schema.MetricSet) {
			m.EmployeeSatisfaction = stubEmployeeSatisfaction
			m.EngagementScore = stubEngagementScore
		},
	}, nil
}

// BestEffortCollector 以 best-effort 模式满足 MetricsCollector（对比时允许部分类别缺失）
type BestEffortCollector struct {
	Service *MetricsService
}

func (c BestEffortCollector) CollectCompanyMetrics(ctx context.Context, companyID string, year, quarter int) (*CompanyMetrics, error) {
	return c.Service.CollectCompanyMetricsBestEffort(ctx, companyID, year, quarter)
}
