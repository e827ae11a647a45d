package collector

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/yuqie6/HRBench/internal/excel"
	"github.com/yuqie6/HRBench/internal/service"
)

// ErrUnsupportedFormat 不支持的批次文件格式
var ErrUnsupportedFormat = errors.New("不支持的文件格式")

// DefaultExtensions 可导入的批次文件扩展名
var DefaultExtensions = []string{".xlsx", ".yaml", ".yml", ".json"}

// BatchFile yaml/json 批次文件：既可以是行数组，也可以是 {rows: [...]} 文档
type BatchFile struct {
	Source string                 `yaml:"source,omitempty" json:"source,omitempty"`
	Rows   []service.BenchmarkRow `yaml:"rows" json:"rows"`
}

// LoadRowsFromFile 按扩展名读取基准批次文件
func LoadRowsFromFile(path string) ([]service.BenchmarkRow, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("打开批次文件失败: %w", err)
		}
		defer f.Close()
		return excel.ParseBenchmarkRows(f)
	case ".yaml", ".yml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取批次文件失败: %w", err)
		}
		if ext == ".json" {
			return decodeJSONRows(data)
		}
		return decodeYAMLRows(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func decodeYAMLRows(data []byte) ([]service.BenchmarkRow, error) {
	var rows []service.BenchmarkRow
	if err := yaml.Unmarshal(data, &rows); err == nil {
		return withSource(rows, ""), nil
	}
	var doc BatchFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析 YAML 批次文件失败: %w", err)
	}
	return withSource(doc.Rows, doc.Source), nil
}

func decodeJSONRows(data []byte) ([]service.BenchmarkRow, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var rows []service.BenchmarkRow
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("解析 JSON 批次文件失败: %w", err)
		}
		return rows, nil
	}
	var doc BatchFile
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("解析 JSON 批次文件失败: %w", err)
	}
	return withSource(doc.Rows, doc.Source), nil
}

// withSource 行未填写数据来源时使用批次级来源
func withSource(rows []service.BenchmarkRow, source string) []service.BenchmarkRow {
	if source == "" {
		return rows
	}
	for i := range rows {
		if rows[i].DataSource == "" {
			rows[i].DataSource = source
		}
	}
	return rows
}
