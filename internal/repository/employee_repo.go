package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/HRBench/internal/schema"
	"gorm.io/gorm"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository 创建仓储
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// BatchInsert 批量插入员工（事务包裹）
func (r *EmployeeRepository) BatchInsert(ctx context.Context, employees []schema.Employee) error {
	if len(employees) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(employees, 100).Error
	})
}

// CountActive 统计当前在职人数
func (r *EmployeeRepository) CountActive(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Employee{}).
		Where("company_id = ? AND status = ?", companyID, schema.EmployeeStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计在职人数失败: %w", err)
	}
	return count, nil
}

// CountAll 统计企业员工总数（含已离职）
func (r *EmployeeRepository) CountAll(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Employee{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计员工总数失败: %w", err)
	}
	return count, nil
}

// CountCreatedBetween 统计 [startMs, endMs) 内创建的员工数
func (r *EmployeeRepository) CountCreatedBetween(ctx context.Context, companyID string, startMs, endMs int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Employee{}).
		Where("company_id = ? AND created_at >= ? AND created_at < ?", companyID, startMs, endMs).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计入职人数失败: %w", err)
	}
	return count, nil
}

// CountLeftBetween 统计 [startMs, endMs) 内离职且状态属于 statuses 的员工数
func (r *EmployeeRepository) CountLeftBetween(ctx context.Context, companyID string, startMs, endMs int64, statuses ...string) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Employee{}).
		Where("company_id = ? AND status IN ? AND terminated_at >= ? AND terminated_at < ?", companyID, statuses, startMs, endMs).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计离职人数失败: %w", err)
	}
	return count, nil
}
