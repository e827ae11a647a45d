package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/yuqie6/HRBench/internal/service"
)

const (
	ComparisonSheet = "对比结果"
	InsightSheet    = "分析建议"
)

// WriteComparison 导出对比报告：概要 + 逐维度明细，优势/短板/建议单独一页
func WriteComparison(result *service.ComparisonResult) (*excelize.File, error) {
	if result == nil {
		return nil, fmt.Errorf("对比结果为空")
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ComparisonSheet); err != nil {
		return nil, fmt.Errorf("初始化报告失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	company := result.CompanyID
	if result.CompanyName != "" {
		company = fmt.Sprintf("%s（%s）", result.CompanyName, result.CompanyID)
	}
	summary := [][]any{
		{"企业", company},
		{"统计期间", result.PeriodLabel},
		{"对比基准", result.Benchmark.String()},
		{"基准来源", result.Benchmark.DataSource},
		{"基准可信度", result.Benchmark.DataConfidence},
		{"样本量", result.Benchmark.SampleSize},
		{"综合得分", result.OverallScore},
		{"综合评级", result.OverallText},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(ComparisonSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("写入报告概要失败: %w", err)
		}
	}

	tableStart := len(summary) + 2
	header := []any{"维度", "类别", "单位", "企业值", "基准值", "差值", "差异(%)", "分位", "评级", "分析"}
	headerCell, _ := excelize.CoordinatesToCellName(1, tableStart)
	if err := f.SetSheetRow(ComparisonSheet, headerCell, &header); err != nil {
		return nil, fmt.Errorf("写入明细表头失败: %w", err)
	}
	_ = f.SetRowStyle(ComparisonSheet, tableStart, tableStart, headerStyle)

	for i, d := range result.Dimensions {
		row := []any{
			d.Label, d.Category.Label(), d.Unit,
			d.CompanyValue, d.BenchmarkValue, d.Difference, d.DifferencePercent,
			d.Position, d.PositionText, d.Analysis,
		}
		cell, _ := excelize.CoordinatesToCellName(1, tableStart+1+i)
		if err := f.SetSheetRow(ComparisonSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("写入维度明细失败: %w", err)
		}
	}
	_ = f.SetColWidth(ComparisonSheet, "A", "A", 18)
	_ = f.SetColWidth(ComparisonSheet, "B", "I", 12)
	_ = f.SetColWidth(ComparisonSheet, "J", "J", 60)

	if _, err := f.NewSheet(InsightSheet); err != nil {
		return nil, fmt.Errorf("创建建议页失败: %w", err)
	}
	columns := []struct {
		title string
		items []string
	}{
		{"优势", result.Strengths},
		{"短板", result.Weaknesses},
		{"改进建议", result.Recommendations},
	}
	for c, col := range columns {
		name, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetCellValue(InsightSheet, name+"1", col.title)
		for i, item := range col.items {
			_ = f.SetCellValue(InsightSheet, fmt.Sprintf("%s%d", name, i+2), item)
		}
	}
	_ = f.SetRowStyle(InsightSheet, 1, 1, headerStyle)
	_ = f.SetColWidth(InsightSheet, "A", "B", 24)
	_ = f.SetColWidth(InsightSheet, "C", "C", 60)

	f.SetActiveSheet(0)
	return f, nil
}
