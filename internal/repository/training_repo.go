package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/HRBench/internal/schema"
	"gorm.io/gorm"
)

// TrainingRepository 培训仓储
type TrainingRepository struct {
	db *gorm.DB
}

// NewTrainingRepository 创建仓储
func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// TrainingStat 培训统计
type TrainingStat struct {
	Total     int64   `json:"total"`
	Completed int64   `json:"completed"`
	AvgHours  float64 `json:"avg_hours"`
}

// BatchInsert 批量插入培训记录
func (r *TrainingRepository) BatchInsert(ctx context.Context, records []schema.TrainingRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, 100).Error
	})
}

// GetStats 统计 [startMs, endMs) 内开始的培训
func (r *TrainingRepository) GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*TrainingStat, error) {
	var stat TrainingStat
	err := r.db.WithContext(ctx).Model(&schema.TrainingRecord{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
			"COALESCE(AVG(learning_hours), 0) AS avg_hours", schema.TrainingStatusCompleted).
		Where("company_id = ? AND started_at >= ? AND started_at < ?", companyID, startMs, endMs).
		Scan(&stat).Error
	if err != nil {
		return nil, fmt.Errorf("查询培训统计失败: %w", err)
	}
	return &stat, nil
}
