package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMetricsUnavailable 聚合失败对外统一表现
	ErrMetricsUnavailable = errors.New("该期间的指标暂不可用")
	ErrInvalidPeriod      = errors.New("统计期间无效")
	ErrBenchmarkNotFound  = errors.New("未找到匹配的行业基准")
	ErrCompanyNotFound    = errors.New("企业不存在")
)

// CategoryError 单个类别子计算失败（携带类别上下文）
type CategoryError struct {
	Category MetricCategory
	Err      error
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("统计%s指标失败: %v", e.Category.Label(), e.Err)
}

// Unwrap 同时暴露 ErrMetricsUnavailable 与底层原因
func (e *CategoryError) Unwrap() []error {
	return []error{ErrMetricsUnavailable, e.Err}
}
