package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/HRBench/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyRepository 企业档案仓储
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository 创建仓储
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// GetByID 按 ID 获取企业，不存在返回 nil
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*schema.Company, error) {
	var c schema.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询企业失败: %w", err)
	}
	return &c, nil
}

// Upsert 插入或更新企业档案
func (r *CompanyRepository) Upsert(ctx context.Context, c *schema.Company) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(c).Error
}
