package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/HRBench/internal/schema"
	"gorm.io/gorm"
)

// PerformanceRepository 绩效仓储
type PerformanceRepository struct {
	db *gorm.DB
}

// NewPerformanceRepository 创建仓储
func NewPerformanceRepository(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// PerformanceStat 绩效分档统计（单次查询）
type PerformanceStat struct {
	Total     int64   `json:"total"`
	AvgScore  float64 `json:"avg_score"`
	Excellent int64   `json:"excellent"` // >=90
	Good      int64   `json:"good"`      // [80,90)
	Average   int64   `json:"average"`   // [70,80)
	Poor      int64   `json:"poor"`      // <70
}

// BatchInsert 批量插入绩效记录
func (r *PerformanceRepository) BatchInsert(ctx context.Context, records []schema.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, 100).Error
	})
}

// GetStats 统计 [startMs, endMs) 内的考核记录；分数按 [0,100] 截断后参与计算
func (r *PerformanceRepository) GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*PerformanceStat, error) {
	const score = "MIN(MAX(final_score, 0), 100)"
	var stat PerformanceStat
	err := r.db.WithContext(ctx).Model(&schema.PerformanceRecord{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(AVG("+score+"), 0) AS avg_score, "+
			"COALESCE(SUM(CASE WHEN final_score >= 90 THEN 1 ELSE 0 END), 0) AS excellent, "+
			"COALESCE(SUM(CASE WHEN final_score >= 80 AND final_score < 90 THEN 1 ELSE 0 END), 0) AS good, "+
			"COALESCE(SUM(CASE WHEN final_score >= 70 AND final_score < 80 THEN 1 ELSE 0 END), 0) AS average, "+
			"COALESCE(SUM(CASE WHEN final_score < 70 THEN 1 ELSE 0 END), 0) AS poor").
		Where("company_id = ? AND reviewed_at >= ? AND reviewed_at < ?", companyID, startMs, endMs).
		Scan(&stat).Error
	if err != nil {
		return nil, fmt.Errorf("查询绩效统计失败: %w", err)
	}
	return &stat, nil
}
