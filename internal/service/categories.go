package service

// MetricCategory 指标类别
type MetricCategory string

const (
	CategoryHeadcount    MetricCategory = "headcount"
	CategoryCompensation MetricCategory = "compensation"
	CategoryTurnover     MetricCategory = "turnover"
	CategoryPerformance  MetricCategory = "performance"
	CategoryRecruitment  MetricCategory = "recruitment"
	CategoryAttendance   MetricCategory = "attendance"
	CategoryTraining     MetricCategory = "training"
	CategorySatisfaction MetricCategory = "satisfaction"
)

var metricCategories = []MetricCategory{
	CategoryHeadcount,
	CategoryCompensation,
	CategoryTurnover,
	CategoryPerformance,
	CategoryRecruitment,
	CategoryAttendance,
	CategoryTraining,
	CategorySatisfaction,
}

// MetricCategories 返回固定顺序的八个类别
func MetricCategories() []MetricCategory {
	return append([]MetricCategory(nil), metricCategories...)
}

// Label 中文名
func (c MetricCategory) Label() string {
	switch c {
	case CategoryHeadcount:
		return "人员规模"
	case CategoryCompensation:
		return "薪酬"
	case CategoryTurnover:
		return "离职"
	case CategoryPerformance:
		return "绩效"
	case CategoryRecruitment:
		return "招聘"
	case CategoryAttendance:
		return "考勤"
	case CategoryTraining:
		return "培训"
	case CategorySatisfaction:
		return "满意度"
	default:
		return string(c)
	}
}
