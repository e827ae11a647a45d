package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yuqie6/HRBench/internal/observability"
	"github.com/yuqie6/HRBench/internal/repository"
	"github.com/yuqie6/HRBench/internal/schema"
)

// BenchmarkServiceConfig 对比配置
type BenchmarkServiceConfig struct {
	// CategoryWeights 类别权重，缺省为 1.0；类别内各维度平分
	CategoryWeights map[MetricCategory]float64
	Now             func() time.Time
}

// BenchmarkService 行业基准查询与对比
type BenchmarkService struct {
	benchmarks BenchmarkRepository
	companies  CompanyRepository
	metrics    MetricsCollector
	weights    map[MetricCategory]float64
	now        func() time.Time
}

// NewBenchmarkService 创建基准对比服务；companies/metrics 仅 CompareCompany 需要，可为 nil
func NewBenchmarkService(benchmarks BenchmarkRepository, companies CompanyRepository, metrics MetricsCollector, cfg *BenchmarkServiceConfig) *BenchmarkService {
	s := &BenchmarkService{
		benchmarks: benchmarks,
		companies:  companies,
		metrics:    metrics,
		weights:    make(map[MetricCategory]float64, len(metricCategories)),
		now:        time.Now,
	}
	for _, c := range metricCategories {
		s.weights[c] = 1.0
	}
	if cfg != nil {
		for c, w := range cfg.CategoryWeights {
			if w >= 0 {
				s.weights[c] = w
			}
		}
		if cfg.Now != nil {
			s.now = cfg.Now
		}
	}
	return s
}

// DimensionComparison 单个维度的对比结果
type DimensionComparison struct {
	Key               string         `json:"key"`
	Label             string         `json:"label"`
	Unit              string         `json:"unit"`
	Category          MetricCategory `json:"category"`
	HigherIsBetter    bool           `json:"higher_is_better"`
	CompanyValue      float64        `json:"company_value"`
	BenchmarkValue    float64        `json:"benchmark_value"`
	Difference        float64        `json:"difference"`
	DifferencePercent float64        `json:"difference_percent"`
	OrientedPercent   float64        `json:"oriented_percent"`
	Position          float64        `json:"position"` // 0-100
	PositionLabel     PositionLabel  `json:"position_label"`
	PositionText      string         `json:"position_text"`
	Analysis          string         `json:"analysis"`
	// DataAvailable=false 时仅展示，不计入优势、短板与综合得分
	DataAvailable bool `json:"data_available"`
}

// BenchmarkInfo 参与对比的基准记录摘要
type BenchmarkInfo struct {
	ID int64 `json:"id"`
	schema.BenchmarkKey
	DataSource     string `json:"data_source"`
	DataConfidence string `json:"data_confidence"`
	SampleSize     int    `json:"sample_size"`
}

// ComparisonResult 一次对比的完整输出
type ComparisonResult struct {
	CompanyID       string                  `json:"company_id"`
	CompanyName     string                  `json:"company_name,omitempty"`
	Period          ReportingPeriod         `json:"period"`
	PeriodLabel     string                  `json:"period_label"`
	Benchmark       BenchmarkInfo           `json:"benchmark"`
	Dimensions      []DimensionComparison   `json:"dimensions"`
	OverallScore    float64                 `json:"overall_score"`
	OverallPosition int                     `json:"overall_position"`
	OverallLabel    PositionLabel           `json:"overall_label"`
	OverallText     string                  `json:"overall_text"`
	Strengths       []string                `json:"strengths"`
	Weaknesses      []string                `json:"weaknesses"`
	Recommendations []string                `json:"recommendations"`
	DataAvailable   map[MetricCategory]bool `json:"data_available,omitempty"`
	Skipped         []MetricCategory        `json:"skipped_categories,omitempty"`
	ComparedAt      time.Time               `json:"compared_at"`
}

// GetBenchmark 五元组精确匹配；未命中返回 (nil, nil)，year=0 取当前年份，quarter=0 只匹配全年记录
func (s *BenchmarkService) GetBenchmark(ctx context.Context, industry, companySize, region string, year, quarter int) (*schema.IndustryBenchmark, error) {
	period, err := resolvePeriod(s.now(), year, quarter)
	if err != nil {
		return nil, err
	}
	industry, companySize, region = normalizeKey(industry), normalizeKey(companySize), normalizeKey(region)
	key := schema.BenchmarkKey{
		Industry:    industry,
		CompanySize: companySize,
		Region:      region,
		Year:        period.Year,
		Quarter:     period.Quarter,
	}
	if industry == "" || companySize == "" || region == "" {
		observability.BenchmarkLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}

	b, err := s.benchmarks.FindByKey(ctx, key)
	if err != nil {
		observability.BenchmarkLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	if b == nil {
		observability.BenchmarkLookups.WithLabelValues("miss").Inc()
		slog.Debug("未找到行业基准", "key", key.String())
		return nil, nil
	}
	observability.BenchmarkLookups.WithLabelValues("hit").Inc()
	return b, nil
}

// ListBenchmarks 浏览基准目录
func (s *BenchmarkService) ListBenchmarks(ctx context.Context, filter repository.BenchmarkFilter) ([]schema.IndustryBenchmark, error) {
	return s.benchmarks.List(ctx, filter)
}

// Compare 逐维度对比企业指标与行业基准
func (s *BenchmarkService) Compare(metrics *CompanyMetrics, benchmark *schema.IndustryBenchmark) (*ComparisonResult, error) {
	if metrics == nil || benchmark == nil {
		return nil, errors.New("对比参数不能为空")
	}

	skipped := make(map[MetricCategory]bool, len(metrics.MissingCategories))
	for _, c := range metrics.MissingCategories {
		skipped[c] = true
	}

	result := &ComparisonResult{
		CompanyID:   metrics.CompanyID,
		Period:      metrics.Period,
		PeriodLabel: metrics.PeriodLabel,
		Benchmark: BenchmarkInfo{
			ID:             benchmark.ID,
			BenchmarkKey:   benchmark.Key(),
			DataSource:     benchmark.DataSource,
			DataConfidence: benchmark.DataConfidence,
			SampleSize:     benchmark.SampleSize,
		},
		Dimensions:      make([]DimensionComparison, 0, len(comparisonDimensions)),
		Strengths:       []string{},
		Weaknesses:      []string{},
		Recommendations: []string{},
		DataAvailable:   metrics.DataAvailable,
		Skipped:         metrics.MissingCategories,
		ComparedAt:      s.now(),
	}

	type candidate struct {
		dim       ComparisonDimension
		cv, bv    float64
		available bool
	}
	candidates := make([]candidate, 0, len(comparisonDimensions))
	perCategory := make(map[MetricCategory]int, len(metricCategories))
	for _, d := range comparisonDimensions {
		if skipped[d.Category] {
			continue
		}
		cv, _ := metrics.Value(d.Key)
		bv, _ := benchmark.Value(d.Key)
		c := candidate{dim: d, cv: cv, bv: bv, available: dimensionAvailable(metrics, d, cv)}
		if c.available {
			perCategory[d.Category]++
		}
		candidates = append(candidates, c)
	}

	var weighted, totalWeight float64
	var unweighted float64
	var scored int
	for _, c := range candidates {
		d := c.dim
		if !c.available {
			result.Dimensions = append(result.Dimensions, unavailableDimension(d, c.cv, c.bv))
			continue
		}
		dc := compareDimension(d, c.cv, c.bv)
		result.Dimensions = append(result.Dimensions, dc)

		scored++
		unweighted += dc.Position
		if w := s.weights[d.Category]; w > 0 {
			share := w / float64(perCategory[d.Category])
			weighted += dc.Position * share
			totalWeight += share
		}

		switch {
		case dc.PositionLabel.Favorable():
			result.Strengths = append(result.Strengths, fmt.Sprintf("%s%s", d.Label, dc.PositionText))
		case dc.PositionLabel.Unfavorable():
			result.Weaknesses = append(result.Weaknesses, fmt.Sprintf("%s%s", d.Label, dc.PositionText))
			result.Recommendations = append(result.Recommendations, recommendation(d, dc))
		}
	}

	switch {
	case totalWeight > 0:
		result.OverallScore = round1(weighted / totalWeight)
	case scored > 0:
		result.OverallScore = round1(unweighted / float64(scored))
	default:
		result.OverallScore = 50
	}
	result.OverallPosition = int(math.Round(result.OverallScore))
	result.OverallLabel = ClassifyPosition(result.OverallScore - 50)
	result.OverallText = result.OverallLabel.Text()

	observability.ComparisonsTotal.WithLabelValues(string(result.OverallLabel)).Inc()
	return result, nil
}

// CompareCompany 聚合企业指标并与其所属细分行业的基准对比
func (s *BenchmarkService) CompareCompany(ctx context.Context, companyID string, year, quarter int) (*ComparisonResult, error) {
	if s.companies == nil || s.metrics == nil {
		return nil, errors.New("企业对比依赖未配置")
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	metrics, err := s.metrics.CollectCompanyMetrics(ctx, companyID, year, quarter)
	if err != nil {
		return nil, err
	}

	size := company.CompanySize
	if size == "" {
		size = CompanySizeForHeadcount(metrics.EmployeeCount)
	}
	benchmark, err := s.GetBenchmark(ctx, company.Industry, size, company.Region, metrics.Period.Year, metrics.Period.Quarter)
	if err != nil {
		return nil, err
	}
	if benchmark == nil {
		key := schema.BenchmarkKey{Industry: company.Industry, CompanySize: size, Region: company.Region,
			Year: metrics.Period.Year, Quarter: metrics.Period.Quarter}
		return nil, fmt.Errorf("%w: %s", ErrBenchmarkNotFound, key.String())
	}

	result, err := s.Compare(metrics, benchmark)
	if err != nil {
		return nil, err
	}
	result.CompanyName = company.Name
	slog.Info("企业基准对比完成", "company_id", companyID, "benchmark", benchmark.Key().String(),
		"overall_score", result.OverallScore, "overall_label", result.OverallLabel)
	return result, nil
}

// compareDimension 差异 -> 按方向调整 -> 分档 -> 位置 clamp(50+oriented, 0, 100)
func compareDimension(d ComparisonDimension, companyValue, benchmarkValue float64) DimensionComparison {
	difference := companyValue - benchmarkValue
	var diffPercent float64
	if benchmarkValue != 0 {
		diffPercent = difference / benchmarkValue * 100
	}
	oriented := diffPercent
	if !d.HigherIsBetter {
		oriented = -diffPercent
	}
	label := ClassifyPosition(oriented)

	dc := DimensionComparison{
		Key:               d.Key,
		Label:             d.Label,
		Unit:              d.Unit,
		Category:          d.Category,
		HigherIsBetter:    d.HigherIsBetter,
		CompanyValue:      companyValue,
		BenchmarkValue:    benchmarkValue,
		Difference:        round2(difference),
		DifferencePercent: round1(diffPercent),
		OrientedPercent:   round1(oriented),
		Position:          clamp(50+oriented, 0, 100),
		PositionLabel:     label,
		PositionText:      label.Text(),
		DataAvailable:     true,
	}
	dc.Analysis = analysis(d, dc)
	return dc
}

// dimensionAvailable 类别被聚合器标记为无数据，或维度值为占位 0 时视为不可用；
// DataAvailable 中未出现的类别按可用处理（调用方直接提交的指标）
func dimensionAvailable(m *CompanyMetrics, d ComparisonDimension, value float64) bool {
	if ok, seen := m.DataAvailable[d.Category]; seen && !ok {
		return false
	}
	return !(d.ZeroMeansMissing && value == 0)
}

func unavailableDimension(d ComparisonDimension, companyValue, benchmarkValue float64) DimensionComparison {
	return DimensionComparison{
		Key:            d.Key,
		Label:          d.Label,
		Unit:           d.Unit,
		Category:       d.Category,
		HigherIsBetter: d.HigherIsBetter,
		CompanyValue:   companyValue,
		BenchmarkValue: benchmarkValue,
		Position:       50,
		PositionLabel:  PositionAverage,
		PositionText:   "暂无数据",
		Analysis:       fmt.Sprintf("%s暂无企业数据，未参与评分", d.Label),
	}
}

func analysis(d ComparisonDimension, dc DimensionComparison) string {
	if dc.BenchmarkValue == 0 {
		return fmt.Sprintf("%s为%.2f%s，行业基准暂无有效数据，暂按平均水平处理", d.Label, dc.CompanyValue, d.Unit)
	}
	direction := "持平于"
	switch {
	case dc.DifferencePercent > 0:
		direction = "高于"
	case dc.DifferencePercent < 0:
		direction = "低于"
	}
	return fmt.Sprintf("%s为%.2f%s，%s行业基准（%.2f%s）%.1f%%，处于%s水平",
		d.Label, dc.CompanyValue, d.Unit, direction, dc.BenchmarkValue, d.Unit, math.Abs(dc.DifferencePercent), dc.PositionText)
}

func recommendation(d ComparisonDimension, dc DimensionComparison) string {
	return fmt.Sprintf("%s与行业基准相差%.1f%%（%s），建议%s", d.Label, math.Abs(dc.DifferencePercent), dc.PositionText, d.Advice)
}
