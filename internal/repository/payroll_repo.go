package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/HRBench/internal/schema"
	"gorm.io/gorm"
)

// PayrollRepository 薪酬仓储
type PayrollRepository struct {
	db *gorm.DB
}

// NewPayrollRepository 创建仓储
func NewPayrollRepository(db *gorm.DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

// PayrollStat 已发放薪酬统计
type PayrollStat struct {
	RecordCount int64   `json:"record_count"`
	AvgGrossPay float64 `json:"avg_gross_pay"` // 元
}

// LevelPayStat 职级薪酬统计
type LevelPayStat struct {
	Level       string  `json:"level"`
	AvgGrossPay float64 `json:"avg_gross_pay"`
}

// BatchInsert 批量插入薪酬记录
func (r *PayrollRepository) BatchInsert(ctx context.Context, records []schema.PayrollRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, 100).Error
	})
}

// GetPaidStats 统计 [startMs, endMs) 内 status=paid 记录的平均应发工资
func (r *PayrollRepository) GetPaidStats(ctx context.Context, companyID string, startMs, endMs int64) (*PayrollStat, error) {
	var stat PayrollStat
	err := r.db.WithContext(ctx).Model(&schema.PayrollRecord{}).
		Select("COUNT(*) AS record_count, COALESCE(AVG(gross_pay), 0) AS avg_gross_pay").
		Where("company_id = ? AND status = ? AND pay_date >= ? AND pay_date < ?", companyID, schema.PayrollStatusPaid, startMs, endMs).
		Scan(&stat).Error
	if err != nil {
		return nil, fmt.Errorf("查询薪酬统计失败: %w", err)
	}
	return &stat, nil
}

// GetPaidStatsByLevel 按员工职级分组统计平均应发工资
func (r *PayrollRepository) GetPaidStatsByLevel(ctx context.Context, companyID string, startMs, endMs int64) ([]LevelPayStat, error) {
	var stats []LevelPayStat
	err := r.db.WithContext(ctx).Model(&schema.PayrollRecord{}).
		Select("employees.level AS level, COALESCE(AVG(payroll_records.gross_pay), 0) AS avg_gross_pay").
		Joins("JOIN employees ON employees.id = payroll_records.employee_id").
		Where("payroll_records.company_id = ? AND payroll_records.status = ? AND payroll_records.pay_date >= ? AND payroll_records.pay_date < ?",
			companyID, schema.PayrollStatusPaid, startMs, endMs).
		Group("employees.level").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("查询职级薪酬失败: %w", err)
	}
	return stats, nil
}
