package excel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yuqie6/HRBench/internal/service"
)

// ErrNoDataRows 工作簿中没有可导入的数据行
var ErrNoDataRows = errors.New("工作簿中没有数据行")

// ParseBenchmarkRows 读取基准数据页（缺失时取第一个工作表）；空行跳过，数值无法解析时整体报错
func ParseBenchmarkRows(r io.Reader) ([]service.BenchmarkRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("打开 Excel 失败: %w", err)
	}
	defer f.Close()
	return ParseWorkbook(f)
}

// ParseWorkbook 同 ParseBenchmarkRows，直接使用已打开的工作簿
func ParseWorkbook(f *excelize.File) ([]service.BenchmarkRow, error) {
	sheet := DataSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoDataRows
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrNoDataRows
	}

	cols := resolveColumns(rows[0])
	if len(cols) == 0 {
		return nil, fmt.Errorf("无法识别表头: %v", rows[0])
	}

	var out []service.BenchmarkRow
	for i, cells := range rows[1:] {
		if isBlankRow(cells) {
			continue
		}
		var row service.BenchmarkRow
		for idx, raw := range cells {
			c, ok := cols[idx]
			if !ok {
				continue
			}
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if err := c.set(&row, raw); err != nil {
				return nil, fmt.Errorf("第%d行 %s: %w", i+2, c.header, err)
			}
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, ErrNoDataRows
	}
	return out, nil
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
