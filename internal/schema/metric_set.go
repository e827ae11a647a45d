package schema

import (
	"database/sql/driver"
	"encoding/json"
)

// 职级（薪酬分层统计口径）
const (
	LevelJunior  = "junior"
	LevelMiddle  = "middle"
	LevelSenior  = "senior"
	LevelExpert  = "expert"
	LevelManager = "manager"
)

// SalaryLevels 固定顺序的五个职级
var SalaryLevels = []string{LevelJunior, LevelMiddle, LevelSenior, LevelExpert, LevelManager}

// MetricSet 企业指标与行业基准共用的指标结构，按八个类别分组
type MetricSet struct {
	HeadcountMetrics
	CompensationMetrics
	TurnoverMetrics
	PerformanceMetrics
	RecruitmentMetrics
	AttendanceMetrics
	TrainingMetrics
	SatisfactionMetrics
}

// HeadcountMetrics 人员规模
type HeadcountMetrics struct {
	EmployeeCount      int     `json:"employee_count"`
	EmployeeGrowthRate float64 `json:"employee_growth_rate"` // %，一位小数
}

// CompensationMetrics 薪酬
type CompensationMetrics struct {
	AvgSalary        float64     `json:"avg_salary"` // 万元
	SalaryGrowthRate float64     `json:"salary_growth_rate"`
	SalaryByLevel    LevelSalary `gorm:"type:text" json:"salary_by_level"`
}

// TurnoverMetrics 离职
type TurnoverMetrics struct {
	TurnoverRate            float64 `json:"turnover_rate"`
	VoluntaryTurnoverRate   float64 `json:"voluntary_turnover_rate"`
	InvoluntaryTurnoverRate float64 `json:"involuntary_turnover_rate"`
}

// PerformanceMetrics 绩效
type PerformanceMetrics struct {
	AvgPerformanceScore     float64                 `json:"avg_performance_score"`
	PerformanceDistribution PerformanceDistribution `gorm:"embedded;embeddedPrefix:perf_" json:"performance_distribution"`
}

// PerformanceDistribution 绩效分布（各档占比 %）
type PerformanceDistribution struct {
	Excellent float64 `json:"excellent"` // >=90
	Good      float64 `json:"good"`      // [80,90)
	Average   float64 `json:"average"`   // [70,80)
	Poor      float64 `json:"poor"`      // <70
}

// Sum 四档占比之和
func (d PerformanceDistribution) Sum() float64 {
	return d.Excellent + d.Good + d.Average + d.Poor
}

// RecruitmentMetrics 招聘
type RecruitmentMetrics struct {
	AvgRecruitmentCycle float64 `json:"avg_recruitment_cycle"` // 天
	OfferAcceptanceRate float64 `json:"offer_acceptance_rate"`
	CostPerHire         float64 `json:"cost_per_hire"` // 元
}

// AttendanceMetrics 考勤
type AttendanceMetrics struct {
	AvgAttendanceRate float64 `json:"avg_attendance_rate"`
	AvgOvertimeHours  float64 `json:"avg_overtime_hours"`
}

// TrainingMetrics 培训
type TrainingMetrics struct {
	AvgTrainingHours       float64 `json:"avg_training_hours"`
	TrainingCompletionRate float64 `json:"training_completion_rate"`
}

// SatisfactionMetrics 满意度
type SatisfactionMetrics struct {
	EmployeeSatisfaction float64 `json:"employee_satisfaction"`
	EngagementScore      float64 `json:"engagement_score"`
}

// Value 按指标 key（与 json 字段名一致）读取数值，未知 key 返回 false
func (m MetricSet) Value(key string) (float64, bool) {
	switch key {
	case "employee_count":
		return float64(m.EmployeeCount), true
	case "employee_growth_rate":
		return m.EmployeeGrowthRate, true
	case "avg_salary":
		return m.AvgSalary, true
	case "salary_growth_rate":
		return m.SalaryGrowthRate, true
	case "turnover_rate":
		return m.TurnoverRate, true
	case "voluntary_turnover_rate":
		return m.VoluntaryTurnoverRate, true
	case "involuntary_turnover_rate":
		return m.InvoluntaryTurnoverRate, true
	case "avg_performance_score":
		return m.AvgPerformanceScore, true
	case "avg_recruitment_cycle":
		return m.AvgRecruitmentCycle, true
	case "offer_acceptance_rate":
		return m.OfferAcceptanceRate, true
	case "cost_per_hire":
		return m.CostPerHire, true
	case "avg_attendance_rate":
		return m.AvgAttendanceRate, true
	case "avg_overtime_hours":
		return m.AvgOvertimeHours, true
	case "avg_training_hours":
		return m.AvgTrainingHours, true
	case "training_completion_rate":
		return m.TrainingCompletionRate, true
	case "employee_satisfaction":
		return m.EmployeeSatisfaction, true
	case "engagement_score":
		return m.EngagementScore, true
	}
	return 0, false
}

// LevelSalary 职级 -> 平均薪酬（万元），以 JSON 文本存储
type LevelSalary map[string]float64

// NewLevelSalary 返回五个职级均为 0 的占位结构
func NewLevelSalary() LevelSalary {
	out := make(LevelSalary, len(SalaryLevels))
	for _, lv := range SalaryLevels {
		out[lv] = 0
	}
	return out
}

// Value 实现 driver.Valuer 接口
func (l LevelSalary) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (l *LevelSalary) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*l = NewLevelSalary()
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = NewLevelSalary()
		return nil
	}
	out := NewLevelSalary()
	if len(bytes) == 0 {
		*l = out
		return nil
	}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*l = out
	return nil
}
