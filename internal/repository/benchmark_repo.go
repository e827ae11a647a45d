package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/HRBench/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BenchmarkRepository 行业基准目录仓储
type BenchmarkRepository struct {
	db *gorm.DB
}

// NewBenchmarkRepository 创建仓储
func NewBenchmarkRepository(db *gorm.DB) *BenchmarkRepository {
	return &BenchmarkRepository{db: db}
}

// BenchmarkFilter 目录浏览过滤条件，零值字段不参与过滤
type BenchmarkFilter struct {
	Industry    string
	CompanySize string
	Region      string
	Year        int
	Limit       int
}

// FindByKey 按五元组精确匹配，不存在返回 nil
func (r *BenchmarkRepository) FindByKey(ctx context.Context, key schema.BenchmarkKey) (*schema.IndustryBenchmark, error) {
	var b schema.IndustryBenchmark
	err := r.db.WithContext(ctx).
		Where("industry = ? AND company_size = ? AND region = ? AND year = ? AND quarter = ?",
			key.Industry, key.CompanySize, key.Region, key.Year, key.Quarter).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询行业基准失败: %w", err)
	}
	return &b, nil
}

// Upsert 按五元组插入或整体覆盖（单条语句，读方不会看到半写入的记录）
func (r *BenchmarkRepository) Upsert(ctx context.Context, b *schema.IndustryBenchmark) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "industry"}, {Name: "company_size"}, {Name: "region"}, {Name: "year"}, {Name: "quarter"},
		},
		UpdateAll: true,
	}).Create(b).Error
	if err != nil {
		return fmt.Errorf("写入行业基准失败: %w", err)
	}
	return nil
}

// List 浏览目录
func (r *BenchmarkRepository) List(ctx context.Context, filter BenchmarkFilter) ([]schema.IndustryBenchmark, error) {
	q := r.db.WithContext(ctx).Model(&schema.IndustryBenchmark{})
	if filter.Industry != "" {
		q = q.Where("industry = ?", filter.Industry)
	}
	if filter.CompanySize != "" {
		q = q.Where("company_size = ?", filter.CompanySize)
	}
	if filter.Region != "" {
		q = q.Where("region = ?", filter.Region)
	}
	if filter.Year > 0 {
		q = q.Where("year = ?", filter.Year)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var out []schema.IndustryBenchmark
	if err := q.Order("year DESC, quarter DESC, industry, company_size, region").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询行业基准列表失败: %w", err)
	}
	return out, nil
}

// Count 统计目录记录数
func (r *BenchmarkRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&schema.IndustryBenchmark{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计行业基准失败: %w", err)
	}
	return count, nil
}
