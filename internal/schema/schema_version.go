package schema

import "time"

// SchemaMeta 记录 hrbench 库表结构版本，单行（ID=1）。
type SchemaMeta struct {
	ID            int       `gorm:"primaryKey"`
	SchemaVersion int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (SchemaMeta) TableName() string {
	return "schema_meta"
}

// Models 返回需要迁移的全部表（生产库与测试库共用）
func Models() []any {
	return []any{
		&SchemaMeta{},
		&Company{},
		&Employee{},
		&PayrollRecord{},
		&PerformanceRecord{},
		&Candidate{},
		&AttendanceRecord{},
		&TrainingRecord{},
		&IndustryBenchmark{},
	}
}
