package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/HRBench/internal/schema"
	"gorm.io/gorm"
)

// CandidateRepository 候选人仓储
type CandidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository 创建仓储
func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// BatchInsert 批量插入候选人
func (r *CandidateRepository) BatchInsert(ctx context.Context, candidates []schema.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(candidates, 100).Error
	})
}

// GetHiredBetween 获取 [startMs, endMs) 内进入 hired 终态的候选人
func (r *CandidateRepository) GetHiredBetween(ctx context.Context, companyID string, startMs, endMs int64) ([]schema.Candidate, error) {
	var candidates []schema.Candidate
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ? AND updated_at >= ? AND updated_at < ?", companyID, schema.CandidateStatusHired, startMs, endMs).
		Order("updated_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("查询入职候选人失败: %w", err)
	}
	return candidates, nil
}

// CountByStatusesBetween 统计 [startMs, endMs) 内状态属于 statuses 的候选人数
func (r *CandidateRepository) CountByStatusesBetween(ctx context.Context, companyID string, startMs, endMs int64, statuses ...string) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Candidate{}).
		Where("company_id = ? AND status IN ? AND updated_at >= ? AND updated_at < ?", companyID, statuses, startMs, endMs).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计候选人失败: %w", err)
	}
	return count, nil
}
