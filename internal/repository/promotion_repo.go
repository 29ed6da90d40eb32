package repository

import (
	"context"

	"gorm.io/gorm"

	"parkspot/internal/domain"
)

type PromotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

func (r *PromotionRepository) Create(ctx context.Context, p *domain.Promotion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PromotionRepository) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	var p domain.Promotion
	if err := r.db.WithContext(ctx).Where("code = ?", domain.NormalizePromoCode(code)).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromotionRepository) IncrementUsage(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Promotion{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
}
