package schema

import (
	"fmt"
	"time"
)

// 基准数据可信度
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// IndustryBenchmark 行业基准记录
// 唯一键：(industry, company_size, region, year, quarter)，quarter=0 表示全年口径。
type IndustryBenchmark struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Industry    string `gorm:"size:50;not null;uniqueIndex:uniq_benchmark_key,priority:1" json:"industry"`
	CompanySize string `gorm:"size:20;not null;uniqueIndex:uniq_benchmark_key,priority:2" json:"company_size"`
	Region      string `gorm:"size:20;not null;uniqueIndex:uniq_benchmark_key,priority:3" json:"region"`
	Year        int    `gorm:"not null;uniqueIndex:uniq_benchmark_key,priority:4" json:"year"`
	Quarter     int    `gorm:"not null;default:0;uniqueIndex:uniq_benchmark_key,priority:5" json:"quarter,omitempty"`

	MetricSet

	DataSource     string    `gorm:"size:255" json:"data_source"`
	DataConfidence string    `gorm:"size:10;default:medium" json:"data_confidence"`
	SampleSize     int       `gorm:"default:0" json:"sample_size"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (IndustryBenchmark) TableName() string {
	return "industry_benchmarks"
}

// Key 返回记录的五元组身份键
func (b *IndustryBenchmark) Key() BenchmarkKey {
	return BenchmarkKey{
		Industry:    b.Industry,
		CompanySize: b.CompanySize,
		Region:      b.Region,
		Year:        b.Year,
		Quarter:     b.Quarter,
	}
}

// BenchmarkKey 基准五元组身份键
type BenchmarkKey struct {
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Region      string `json:"region"`
	Year        int    `json:"year"`
	Quarter     int    `json:"quarter,omitempty"`
}

func (k BenchmarkKey) String() string {
	if k.Quarter == 0 {
		return fmt.Sprintf("%s/%s/%s/%d", k.Industry, k.CompanySize, k.Region, k.Year)
	}
	return fmt.Sprintf("%s/%s/%s/%dQ%d", k.Industry, k.CompanySize, k.Region, k.Year, k.Quarter)
}
