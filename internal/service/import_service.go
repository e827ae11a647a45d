package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuqie6/HRBench/internal/observability"
	"github.com/yuqie6/HRBench/internal/schema"
)

// BenchmarkRow 外部提交的一行基准数据；数值字段为 nil 表示未提供
type BenchmarkRow struct {
	Industry    string `json:"industry" yaml:"industry"`
	CompanySize string `json:"company_size" yaml:"company_size"`
	Region      string `json:"region" yaml:"region"`
	Year        int    `json:"year" yaml:"year"`
	Quarter     int    `json:"quarter,omitempty" yaml:"quarter,omitempty"`

	EmployeeCount      *int     `json:"employee_count,omitempty" yaml:"employee_count,omitempty"`
	EmployeeGrowthRate *float64 `json:"employee_growth_rate,omitempty" yaml:"employee_growth_rate,omitempty"`

	AvgSalary        *float64           `json:"avg_salary,omitempty" yaml:"avg_salary,omitempty"`
	SalaryGrowthRate *float64           `json:"salary_growth_rate,omitempty" yaml:"salary_growth_rate,omitempty"`
	SalaryByLevel    map[string]float64 `json:"salary_by_level,omitempty" yaml:"salary_by_level,omitempty"`

	TurnoverRate            *float64 `json:"turnover_rate,omitempty" yaml:"turnover_rate,omitempty"`
	VoluntaryTurnoverRate   *float64 `json:"voluntary_turnover_rate,omitempty" yaml:"voluntary_turnover_rate,omitempty"`
	InvoluntaryTurnoverRate *float64 `json:"involuntary_turnover_rate,omitempty" yaml:"involuntary_turnover_rate,omitempty"`

	AvgPerformanceScore *float64 `json:"avg_performance_score,omitempty" yaml:"avg_performance_score,omitempty"`
	PerfExcellent       *float64 `json:"perf_excellent,omitempty" yaml:"perf_excellent,omitempty"`
	PerfGood            *float64 `json:"perf_good,omitempty" yaml:"perf_good,omitempty"`
	PerfAverage         *float64 `json:"perf_average,omitempty" yaml:"perf_average,omitempty"`
	PerfPoor            *float64 `json:"perf_poor,omitempty" yaml:"perf_poor,omitempty"`

	AvgRecruitmentCycle *float64 `json:"avg_recruitment_cycle,omitempty" yaml:"avg_recruitment_cycle,omitempty"`
	OfferAcceptanceRate *float64 `json:"offer_acceptance_rate,omitempty" yaml:"offer_acceptance_rate,omitempty"`
	CostPerHire         *float64 `json:"cost_per_hire,omitempty" yaml:"cost_per_hire,omitempty"`

	AvgAttendanceRate *float64 `json:"avg_attendance_rate,omitempty" yaml:"avg_attendance_rate,omitempty"`
	AvgOvertimeHours  *float64 `json:"avg_overtime_hours,omitempty" yaml:"avg_overtime_hours,omitempty"`

	AvgTrainingHours       *float64 `json:"avg_training_hours,omitempty" yaml:"avg_training_hours,omitempty"`
	TrainingCompletionRate *float64 `json:"training_completion_rate,omitempty" yaml:"training_completion_rate,omitempty"`

	EmployeeSatisfaction *float64 `json:"employee_satisfaction,omitempty" yaml:"employee_satisfaction,omitempty"`
	EngagementScore      *float64 `json:"engagement_score,omitempty" yaml:"engagement_score,omitempty"`

	DataSource     string `json:"data_source,omitempty" yaml:"data_source,omitempty"`
	DataConfidence string `json:"data_confidence,omitempty" yaml:"data_confidence,omitempty"`
	SampleSize     int    `json:"sample_size,omitempty" yaml:"sample_size,omitempty"`
}

// ImportResult 一批导入的汇总
type ImportResult struct {
	BatchID string   `json:"batch_id"`
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ImportService 行业基准批量导入（逐行校验，坏行不影响其他行）
type ImportService struct {
	benchmarks BenchmarkRepository
	now        func() time.Time
}

// NewImportService 创建导入服务
func NewImportService(benchmarks BenchmarkRepository) *ImportService {
	return &ImportService{benchmarks: benchmarks, now: time.Now}
}

type boundedField struct {
	label string
	value *float64
}

// ImportBenchmarkData 校验并写入；仅当 ctx 在批次结束前被取消时返回 error（同时返回已处理部分的结果）
func (s *ImportService) ImportBenchmarkData(ctx context.Context, rows []BenchmarkRow) (*ImportResult, error) {
	result := &ImportResult{
		BatchID: uuid.NewString(),
		Total:   len(rows),
		Errors:  []string{},
	}

	for i := range rows {
		if err := ctx.Err(); err != nil {
			slog.Warn("基准导入被中断", "batch_id", result.BatchID, "processed", i, "total", len(rows))
			return result, fmt.Errorf("导入中断: %w", err)
		}
		line := i + 1

		record, problems := s.validateRow(rows[i])
		if len(problems) > 0 {
			result.Failed++
			for _, p := range problems {
				result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %s", line, p))
			}
			observability.ImportRows.WithLabelValues("rejected").Inc()
			slog.Debug("基准行校验失败", "batch_id", result.BatchID, "row", line, "problems", problems)
			continue
		}

		if err := s.benchmarks.Upsert(ctx, record); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 写入失败: %v", line, err))
			observability.ImportRows.WithLabelValues("write_failed").Inc()
			slog.Warn("基准行写入失败", "batch_id", result.BatchID, "row", line, "key", record.Key().String(), "error", err)
			continue
		}
		result.Success++
		observability.ImportRows.WithLabelValues("imported").Inc()
	}

	slog.Info("基准导入完成", "batch_id", result.BatchID, "total", result.Total, "success", result.Success, "failed", result.Failed)
	return result, nil
}

// validateRow 返回待写入记录与全部违规描述（不含行号前缀）
func (s *ImportService) validateRow(row BenchmarkRow) (*schema.IndustryBenchmark, []string) {
	var problems []string

	industry := normalizeKey(row.Industry)
	size := normalizeKey(row.CompanySize)
	region := normalizeKey(row.Region)
	if industry == "" {
		problems = append(problems, "行业不能为空")
	}
	if size == "" {
		problems = append(problems, "企业规模不能为空")
	}
	if region == "" {
		problems = append(problems, "地区不能为空")
	}

	year := row.Year
	if year == 0 {
		year = s.now().Year()
	}
	if year < 1970 || year > 9999 {
		problems = append(problems, fmt.Sprintf("年份无效: %d", row.Year))
	}
	if row.Quarter < 0 || row.Quarter > 4 {
		problems = append(problems, "季度必须为1-4")
	}

	for _, f := range []boundedField{
		{"离职率", row.TurnoverRate},
		{"主动离职率", row.VoluntaryTurnoverRate},
		{"非主动离职率", row.InvoluntaryTurnoverRate},
		{"出勤率", row.AvgAttendanceRate},
		{"Offer接受率", row.OfferAcceptanceRate},
		{"平均绩效分", row.AvgPerformanceScore},
		{"员工满意度", row.EmployeeSatisfaction},
		{"敬业度", row.EngagementScore},
		{"培训完成率", row.TrainingCompletionRate},
		{"绩效优秀占比", row.PerfExcellent},
		{"绩效良好占比", row.PerfGood},
		{"绩效中等占比", row.PerfAverage},
		{"绩效待改进占比", row.PerfPoor},
	} {
		if f.value != nil && (*f.value < 0 || *f.value > 100) {
			problems = append(problems, fmt.Sprintf("%s必须在0-100之间", f.label))
		}
	}

	for _, f := range []boundedField{
		{"平均薪酬", row.AvgSalary},
		{"平均招聘周期", row.AvgRecruitmentCycle},
		{"单次招聘成本", row.CostPerHire},
		{"平均加班时长", row.AvgOvertimeHours},
		{"人均培训时长", row.AvgTrainingHours},
	} {
		if f.value != nil && *f.value < 0 {
			problems = append(problems, fmt.Sprintf("%s不能为负数", f.label))
		}
	}
	if row.EmployeeCount != nil && *row.EmployeeCount < 0 {
		problems = append(problems, "员工人数不能为负数")
	}
	if row.SampleSize < 0 {
		problems = append(problems, "样本量不能为负数")
	}
	for level, v := range row.SalaryByLevel {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("职级%s薪酬不能为负数", level))
		}
	}

	if row.TurnoverRate != nil && row.VoluntaryTurnoverRate != nil && *row.VoluntaryTurnoverRate > *row.TurnoverRate {
		problems = append(problems, "主动离职率不能高于离职率")
	}
	if sum := valueOf(row.PerfExcellent) + valueOf(row.PerfGood) + valueOf(row.PerfAverage) + valueOf(row.PerfPoor); sum > 100.0001 {
		problems = append(problems, "绩效分布各档之和不能超过100")
	}

	confidence := normalizeKey(row.DataConfidence)
	if confidence == "" {
		confidence = schema.ConfidenceMedium
	} else if !hasOption(confidenceOptions, confidence) {
		problems = append(problems, "数据可信度必须为 high/medium/low")
	}

	if len(problems) > 0 {
		return nil, problems
	}

	b := &schema.IndustryBenchmark{
		Industry:       industry,
		CompanySize:    size,
		Region:         region,
		Year:           year,
		Quarter:        row.Quarter,
		DataSource:     strings.TrimSpace(row.DataSource),
		DataConfidence: confidence,
		SampleSize:     row.SampleSize,
	}
	applyRowMetrics(&b.MetricSet, row)
	return b, nil
}

func applyRowMetrics(m *schema.MetricSet, row BenchmarkRow) {
	if row.EmployeeCount != nil {
		m.EmployeeCount = *row.EmployeeCount
	}
	m.EmployeeGrowthRate = valueOf(row.EmployeeGrowthRate)
	m.AvgSalary = valueOf(row.AvgSalary)
	m.SalaryGrowthRate = valueOf(row.SalaryGrowthRate)
	m.SalaryByLevel = schema.NewLevelSalary()
	for level, v := range row.SalaryByLevel {
		if _, ok := m.SalaryByLevel[level]; ok {
			m.SalaryByLevel[level] = v
		}
	}

	m.TurnoverRate = valueOf(row.TurnoverRate)
	m.VoluntaryTurnoverRate = valueOf(row.VoluntaryTurnoverRate)
	if row.InvoluntaryTurnoverRate != nil {
		m.InvoluntaryTurnoverRate = *row.InvoluntaryTurnoverRate
	} else if row.TurnoverRate != nil && row.VoluntaryTurnoverRate != nil {
		m.InvoluntaryTurnoverRate = round1(*row.TurnoverRate - *row.VoluntaryTurnoverRate)
	}

	m.AvgPerformanceScore = valueOf(row.AvgPerformanceScore)
	m.PerformanceDistribution = schema.PerformanceDistribution{
		Excellent: valueOf(row.PerfExcellent),
		Good:      valueOf(row.PerfGood),
		Average:   valueOf(row.PerfAverage),
		Poor:      valueOf(row.PerfPoor),
	}

	m.AvgRecruitmentCycle = valueOf(row.AvgRecruitmentCycle)
	m.OfferAcceptanceRate = valueOf(row.OfferAcceptanceRate)
	m.CostPerHire = valueOf(row.CostPerHire)
	m.AvgAttendanceRate = valueOf(row.AvgAttendanceRate)
	m.AvgOvertimeHours = valueOf(row.AvgOvertimeHours)
	m.AvgTrainingHours = valueOf(row.AvgTrainingHours)
	m.TrainingCompletionRate = valueOf(row.TrainingCompletionRate)
	m.EmployeeSatisfaction = valueOf(row.EmployeeSatisfaction)
	m.EngagementScore = valueOf(row.EngagementScore)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func valueOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Float 构造可选数值（测试与解析器使用）
func Float(v float64) *float64 {
	return &v
}
