package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/yuqie6/HRBench/internal/service"
)

const (
	DataSheet    = "基准数据"
	OptionsSheet = "选项说明"

	dropListRows = 1000
)

// BuildImportTemplate 生成导入模板：表头 + 示例行，枚举列带下拉校验，另附选项说明页
func BuildImportTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return nil, fmt.Errorf("初始化模板失败: %w", err)
	}

	cols := templateColumns()
	header := make([]any, len(cols))
	example := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.header
		example[i] = c.example
	}
	if err := f.SetSheetRow(DataSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("写入模板表头失败: %w", err)
	}
	if err := f.SetSheetRow(DataSheet, "A2", &example); err != nil {
		return nil, fmt.Errorf("写入示例行失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}
	_ = f.SetRowStyle(DataSheet, 1, 1, headerStyle)
	lastCol, _ := excelize.ColumnNumberToName(len(cols))
	_ = f.SetColWidth(DataSheet, "A", lastCol, 16)
	_ = f.SetPanes(DataSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	opts := service.ReferenceOptions()
	dropLists := map[string][]service.Option{
		"industry":        opts.Industries,
		"company_size":    opts.CompanySizes,
		"region":          opts.Regions,
		"data_confidence": opts.Confidences,
	}
	for i, c := range cols {
		list, ok := dropLists[c.key]
		if !ok {
			continue
		}
		if err := addDropList(f, i+1, list); err != nil {
			return nil, err
		}
	}

	if err := writeOptionsSheet(f, opts); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

func addDropList(f *excelize.File, colIndex int, options []service.Option) error {
	colName, err := excelize.ColumnNumberToName(colIndex)
	if err != nil {
		return err
	}
	values := make([]string, len(options))
	for i, o := range options {
		values[i] = o.Value
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("%s2:%s%d", colName, colName, dropListRows)
	if err := dv.SetDropList(values); err != nil {
		return fmt.Errorf("设置下拉选项失败: %w", err)
	}
	if err := f.AddDataValidation(DataSheet, dv); err != nil {
		return fmt.Errorf("设置下拉选项失败: %w", err)
	}
	return nil
}

func writeOptionsSheet(f *excelize.File, opts service.ReferenceData) error {
	if _, err := f.NewSheet(OptionsSheet); err != nil {
		return fmt.Errorf("创建选项说明页失败: %w", err)
	}
	groups := []struct {
		title   string
		options []service.Option
	}{
		{"行业", opts.Industries},
		{"企业规模", opts.CompanySizes},
		{"地区", opts.Regions},
		{"数据可信度", opts.Confidences},
	}
	for g, group := range groups {
		valueCol, _ := excelize.ColumnNumberToName(g*2 + 1)
		labelCol, _ := excelize.ColumnNumberToName(g*2 + 2)
		_ = f.SetCellValue(OptionsSheet, valueCol+"1", group.title+"(填写值)")
		_ = f.SetCellValue(OptionsSheet, labelCol+"1", "说明")
		for i, o := range group.options {
			row := i + 2
			_ = f.SetCellValue(OptionsSheet, fmt.Sprintf("%s%d", valueCol, row), o.Value)
			_ = f.SetCellValue(OptionsSheet, fmt.Sprintf("%s%d", labelCol, row), o.Label)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(groups) * 2)
	_ = f.SetColWidth(OptionsSheet, "A", lastCol, 18)
	return nil
}
