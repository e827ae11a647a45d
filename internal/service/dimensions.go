package service

// ComparisonDimension 可对比的指标维度（静态配置）
type ComparisonDimension struct {
	Key            string         `json:"key"`
	Label          string         `json:"label"`
	Unit           string         `json:"unit"`
	HigherIsBetter bool           `json:"higher_is_better"`
	Category       MetricCategory `json:"category"`
	Advice         string         `json:"advice"`
	// ZeroMeansMissing 企业值为 0 表示暂无数据源
	ZeroMeansMissing bool `json:"-"`
}

var comparisonDimensions = []ComparisonDimension{
	{Key: "employee_growth_rate", Label: "员工增长率", Unit: "%", HigherIsBetter: true, Category: CategoryHeadcount,
		Advice: "结合业务规划评估编制，加快关键岗位补充"},
	{Key: "avg_salary", Label: "平均薪酬", Unit: "万元", HigherIsBetter: false, Category: CategoryCompensation,
		Advice: "梳理薪酬结构，控制人力成本增速"},
	{Key: "salary_growth_rate", Label: "薪酬增长率", Unit: "%", HigherIsBetter: false, Category: CategoryCompensation,
		Advice: "调薪与绩效挂钩，避免普涨推高成本"},
	{Key: "turnover_rate", Label: "离职率", Unit: "%", HigherIsBetter: false, Category: CategoryTurnover,
		Advice: "开展离职面谈，识别流失原因并建立保留机制"},
	{Key: "voluntary_turnover_rate", Label: "主动离职率", Unit: "%", HigherIsBetter: false, Category: CategoryTurnover,
		Advice: "关注核心员工敬业度，完善职业发展通道"},
	{Key: "avg_performance_score", Label: "平均绩效分", Unit: "分", HigherIsBetter: true, Category: CategoryPerformance,
		Advice: "强化目标管理与绩效辅导，提升组织效能"},
	{Key: "avg_recruitment_cycle", Label: "平均招聘周期", Unit: "天", HigherIsBetter: false, Category: CategoryRecruitment,
		Advice: "优化面试流程，拓展招聘渠道以缩短周期"},
	{Key: "offer_acceptance_rate", Label: "Offer接受率", Unit: "%", HigherIsBetter: true, Category: CategoryRecruitment,
		Advice: "提升雇主品牌与薪酬竞争力，改善候选人体验"},
	{Key: "cost_per_hire", Label: "单次招聘成本", Unit: "元", HigherIsBetter: false, Category: CategoryRecruitment,
		ZeroMeansMissing: true, Advice: "提高内推与自有渠道占比，降低招聘费用"},
	{Key: "avg_attendance_rate", Label: "出勤率", Unit: "%", HigherIsBetter: true, Category: CategoryAttendance,
		Advice: "排查缺勤集中部门，完善考勤与请假管理"},
	{Key: "avg_overtime_hours", Label: "平均加班时长", Unit: "小时", HigherIsBetter: false, Category: CategoryAttendance,
		Advice: "合理安排工作负荷，关注员工健康与效率"},
	{Key: "avg_training_hours", Label: "人均培训时长", Unit: "小时", HigherIsBetter: true, Category: CategoryTraining,
		Advice: "增加培训投入，建立分层分级的学习体系"},
	{Key: "training_completion_rate", Label: "培训完成率", Unit: "%", HigherIsBetter: true, Category: CategoryTraining,
		Advice: "跟踪学习进度，将培训完成情况纳入考核"},
	{Key: "employee_satisfaction", Label: "员工满意度", Unit: "分", HigherIsBetter: true, Category: CategorySatisfaction,
		Advice: "定期开展满意度调研，针对短板制定改进计划"},
	{Key: "engagement_score", Label: "敬业度", Unit: "分", HigherIsBetter: true, Category: CategorySatisfaction,
		Advice: "加强认可激励与内部沟通，提升员工投入度"},
}

// Dimensions 返回维度表副本
func Dimensions() []ComparisonDimension {
	return append([]ComparisonDimension(nil), comparisonDimensions...)
}

// LookupDimension 按 key 查找维度
func LookupDimension(key string) (ComparisonDimension, bool) {
	for _, d := range comparisonDimensions {
		if d.Key == key {
			return d, true
		}
	}
	return ComparisonDimension{}, false
}

// PositionLabel 五档分位标签
type PositionLabel string

const (
	PositionTop          PositionLabel = "top"
	PositionAboveAverage PositionLabel = "above-average"
	PositionAverage      PositionLabel = "average"
	PositionBelowAverage PositionLabel = "below-average"
	PositionBottom       PositionLabel = "bottom"
)

// 分档阈值（按调整方向后的差异百分比）
const (
	thresholdTop       = 20.0
	thresholdAbove     = 5.0
	thresholdBelow     = -5.0
	thresholdBottomMax = -20.0
)

// ClassifyPosition >=20 top；[5,20) above-average；(-5,5) average；(-20,-5] below-average；<-20 bottom
func ClassifyPosition(orientedPercent float64) PositionLabel {
	switch {
	case orientedPercent >= thresholdTop:
		return PositionTop
	case orientedPercent >= thresholdAbove:
		return PositionAboveAverage
	case orientedPercent > thresholdBelow:
		return PositionAverage
	case orientedPercent >= thresholdBottomMax:
		return PositionBelowAverage
	default:
		return PositionBottom
	}
}

// Text 中文展示名
func (l PositionLabel) Text() string {
	switch l {
	case PositionTop:
		return "领先"
	case PositionAboveAverage:
		return "优于平均"
	case PositionAverage:
		return "平均"
	case PositionBelowAverage:
		return "低于平均"
	case PositionBottom:
		return "落后"
	default:
		return string(l)
	}
}

// Favorable 是否计入优势
func (l PositionLabel) Favorable() bool {
	return l == PositionTop || l == PositionAboveAverage
}

// Unfavorable 是否计入短板
func (l PositionLabel) Unfavorable() bool {
	return l == PositionBelowAverage || l == PositionBottom
}

// Option 枚举选项
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ReferenceData 导入模板与输入校验用的枚举列表
type ReferenceData struct {
	Industries   []Option `json:"industries"`
	CompanySizes []Option `json:"company_sizes"`
	Regions      []Option `json:"regions"`
	Confidences  []Option `json:"confidences"`
}

var (
	industryOptions = []Option{
		{"technology", "互联网/科技"},
		{"finance", "金融"},
		{"manufacturing", "制造业"},
		{"retail", "零售"},
		{"healthcare", "医疗健康"},
		{"education", "教育"},
		{"real_estate", "房地产"},
		{"energy", "能源"},
		{"logistics", "物流"},
		{"consulting", "咨询服务"},
	}
	companySizeOptions = []Option{
		{"startup", "初创（50人以下）"},
		{"small", "小型（50-200人）"},
		{"medium", "中型（200-1000人）"},
		{"large", "大型（1000-5000人）"},
		{"enterprise", "超大型（5000人以上）"},
	}
	regionOptions = []Option{
		{"north", "华北"},
		{"east", "华东"},
		{"south", "华南"},
		{"central", "华中"},
		{"southwest", "西南"},
		{"northwest", "西北"},
		{"northeast", "东北"},
	}
	confidenceOptions = []Option{
		{"high", "高"},
		{"medium", "中"},
		{"low", "低"},
	}
)

// ReferenceOptions 行业/规模/地区/可信度枚举
func ReferenceOptions() ReferenceData {
	return ReferenceData{
		Industries:   append([]Option(nil), industryOptions...),
		CompanySizes: append([]Option(nil), companySizeOptions...),
		Regions:      append([]Option(nil), regionOptions...),
		Confidences:  append([]Option(nil), confidenceOptions...),
	}
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

// CompanySizeForHeadcount 按在职人数推断规模档位
func CompanySizeForHeadcount(n int) string {
	switch {
	case n < 50:
		return "startup"
	case n < 200:
		return "small"
	case n < 1000:
		return "medium"
	case n < 5000:
		return "large"
	default:
		return "enterprise"
	}
}
