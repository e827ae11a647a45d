package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/HRBench/internal/schema"
	"gorm.io/gorm"
)

// AttendanceRepository 考勤仓储
type AttendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository 创建仓储
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// AttendanceStat 考勤统计
type AttendanceStat struct {
	Total         int64   `json:"total"`
	Present       int64   `json:"present"`        // normal + late + early_leave
	OvertimeHours float64 `json:"overtime_hours"` // Σ max(0, 工时/60 - 8)
}

// BatchInsert 批量插入考勤记录
func (r *AttendanceRepository) BatchInsert(ctx context.Context, records []schema.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, 100).Error
	})
}

// GetStats 统计 [startMs, endMs) 内的考勤记录（work_minutes 以分钟存储，8 小时以外计为加班）
func (r *AttendanceRepository) GetStats(ctx context.Context, companyID string, startMs, endMs int64) (*AttendanceStat, error) {
	var stat AttendanceStat
	err := r.db.WithContext(ctx).Model(&schema.AttendanceRecord{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status IN (?, ?, ?) THEN 1 ELSE 0 END), 0) AS present, "+
			"COALESCE(SUM(CASE WHEN work_minutes > 480 THEN (work_minutes - 480) / 60.0 ELSE 0 END), 0) AS overtime_hours",
			schema.AttendanceStatusNormal, schema.AttendanceStatusLate, schema.AttendanceStatusEarlyLeave).
		Where("company_id = ? AND date >= ? AND date < ?", companyID, startMs, endMs).
		Scan(&stat).Error
	if err != nil {
		return nil, fmt.Errorf("查询考勤统计失败: %w", err)
	}
	return &stat, nil
}
