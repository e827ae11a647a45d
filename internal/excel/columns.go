package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuqie6/HRBench/internal/schema"
	"github.com/yuqie6/HRBench/internal/service"
)

// column 导入模板的一列：表头（中文）、字段 key、示例值与写入函数
type column struct {
	key     string
	header  string
	example any
	set     func(row *service.BenchmarkRow, raw string) error
}

func textField(get func(*service.BenchmarkRow) *string) func(*service.BenchmarkRow, string) error {
	return func(row *service.BenchmarkRow, raw string) error {
		*get(row) = raw
		return nil
	}
}

func intField(get func(*service.BenchmarkRow) *int) func(*service.BenchmarkRow, string) error {
	return func(row *service.BenchmarkRow, raw string) error {
		v, err := parseNumber(raw)
		if err != nil {
			return err
		}
		*get(row) = int(v)
		return nil
	}
}

func floatField(get func(*service.BenchmarkRow) **float64) func(*service.BenchmarkRow, string) error {
	return func(row *service.BenchmarkRow, raw string) error {
		v, err := parseNumber(raw)
		if err != nil {
			return err
		}
		*get(row) = &v
		return nil
	}
}

func levelField(level string) func(*service.BenchmarkRow, string) error {
	return func(row *service.BenchmarkRow, raw string) error {
		v, err := parseNumber(raw)
		if err != nil {
			return err
		}
		if row.SalaryByLevel == nil {
			row.SalaryByLevel = make(map[string]float64, len(schema.SalaryLevels))
		}
		row.SalaryByLevel[level] = v
		return nil
	}
}

// parseNumber 兼容千分位与百分号（"1,200" / "15%"）
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析数值 %q", raw)
	}
	return v, nil
}

var levelHeaders = map[string]string{
	schema.LevelJunior:  "初级薪酬(万元)",
	schema.LevelMiddle:  "中级薪酬(万元)",
	schema.LevelSenior:  "高级薪酬(万元)",
	schema.LevelExpert:  "专家薪酬(万元)",
	schema.LevelManager: "管理层薪酬(万元)",
}

var levelExamples = map[string]float64{
	schema.LevelJunior:  15,
	schema.LevelMiddle:  25,
	schema.LevelSenior:  40,
	schema.LevelExpert:  60,
	schema.LevelManager: 80,
}

func templateColumns() []column {
	cols := []column{
		{"industry", "行业", "technology", textField(func(r *service.BenchmarkRow) *string { return &r.Industry })},
		{"company_size", "企业规模", "medium", textField(func(r *service.BenchmarkRow) *string { return &r.CompanySize })},
		{"region", "地区", "east", textField(func(r *service.BenchmarkRow) *string { return &r.Region })},
		{"year", "年份", 2024, intField(func(r *service.BenchmarkRow) *int { return &r.Year })},
		{"quarter", "季度(0为全年)", 0, intField(func(r *service.BenchmarkRow) *int { return &r.Quarter })},
		{"employee_count", "员工人数", 500, func(r *service.BenchmarkRow, raw string) error {
			v, err := parseNumber(raw)
			if err != nil {
				return err
			}
			n := int(v)
			r.EmployeeCount = &n
			return nil
		}},
		{"employee_growth_rate", "员工增长率(%)", 8.5, floatField(func(r *service.BenchmarkRow) **float64 { return &r.EmployeeGrowthRate })},
		{"avg_salary", "平均薪酬(万元)", 32.5, floatField(func(r *service.BenchmarkRow) **float64 { return &r.AvgSalary })},
		{"salary_growth_rate", "薪酬增长率(%)", 6, floatField(func(r *service.BenchmarkRow) **float64 { return &r.SalaryGrowthRate })},
	}
	for _, lv := range schema.SalaryLevels {
		cols = append(cols, column{"salary_" + lv, levelHeaders[lv], levelExamples[lv], levelField(lv)})
	}
	cols = append(cols,
		column{"turnover_rate", "离职率(%)", 15, floatField(func(r *service.BenchmarkRow) **float64 { return &r.TurnoverRate })},
		column{"voluntary_turnover_rate", "主动离职率(%)", 10, floatField(func(r *service.BenchmarkRow) **float64 { return &r.VoluntaryTurnoverRate })},
		column{"involuntary_turnover_rate", "非主动离职率(%)", 5, floatField(func(r *service.BenchmarkRow) **float64 { return &r.InvoluntaryTurnoverRate })},
		column{"avg_performance_score", "平均绩效分", 78, floatField(func(r *service.BenchmarkRow) **float64 { return &r.AvgPerformanceScore })},
		column{"perf_excellent", "绩效优秀占比(%)", 15, floatField(func(r *service.BenchmarkRow) **float64 { return &r.PerfExcellent })},
		column{"perf_good", "绩效良好占比(%)", 35, floatField(func(r *service.BenchmarkRow) **float64 { return &r.PerfGood })},
		column{"perf_average", "绩效中等占比(%)", 35, floatField(func(r *service.BenchmarkRow) **float64 { return &r.PerfAverage })},
		column{"perf_poor", "绩效待改进占比(%)", 15, floatField(func(r *service.BenchmarkRow) **float64 { return &r.PerfPoor })},
		column{"avg_recruitment_cycle", "平均招聘周期(天)", 30, floatField(func(r *service.BenchmarkRow) **float64 { return &r.AvgRecruitmentCycle })},
		column{"offer_acceptance_rate", "Offer接受率(%)", 80, floatField(func(r *service.BenchmarkRow) **float64 { return &r.OfferAcceptanceRate })},
		column{"cost_per_hire", "单次招聘成本(元)", 8000, floatField(func(r *service.BenchmarkRow) **float64 { return &r.CostPerHire })},
		column{"avg_attendance_rate", "出勤率(%)", 95, floatField(func(r *service.BenchmarkRow) **float64 { return &r.AvgAttendanceRate })},
		column{"avg_overtime_hours", "平均加班时长(小时)", 25, floatField(func(r *service.BenchmarkRow) **float64 { return &r.AvgOvertimeHours })},
		column{"avg_training_hours", "人均培训时长(小时)", 40, floatField(func(r *service.BenchmarkRow) **float64 { return &r.AvgTrainingHours })},
		column{"training_completion_rate", "培训完成率(%)", 85, floatField(func(r *service.BenchmarkRow) **float64 { return &r.TrainingCompletionRate })},
		column{"employee_satisfaction", "员工满意度", 75, floatField(func(r *service.BenchmarkRow) **float64 { return &r.EmployeeSatisfaction })},
		column{"engagement_score", "敬业度", 70, floatField(func(r *service.BenchmarkRow) **float64 { return &r.EngagementScore })},
		column{"data_source", "数据来源", "行业薪酬调研报告", textField(func(r *service.BenchmarkRow) *string { return &r.DataSource })},
		column{"data_confidence", "数据可信度", "medium", textField(func(r *service.BenchmarkRow) *string { return &r.DataConfidence })},
		column{"sample_size", "样本量", 120, intField(func(r *service.BenchmarkRow) *int { return &r.SampleSize })},
	)
	return cols
}

// resolveColumns 将表头映射到列定义；表头可以是中文名或字段 key，无法识别的列忽略
func resolveColumns(headers []string) map[int]column {
	byName := make(map[string]column)
	for _, c := range templateColumns() {
		byName[c.key] = c
		byName[c.header] = c
	}
	out := make(map[int]column, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if c, ok := byName[h]; ok {
			out[i] = c
			continue
		}
		if c, ok := byName[strings.ToLower(h)]; ok {
			out[i] = c
		}
	}
	return out
}
