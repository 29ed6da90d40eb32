package repository

import (
	"context"

	"gorm.io/gorm"

	"parkspot/internal/domain"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) Create(ctx context.Context, c *domain.CommissionRule) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// GetActive returns the newest active rule, or nil when there is none.
func (r *CommissionRepository) GetActive(ctx context.Context) (*domain.CommissionRule, error) {
	var rules []domain.CommissionRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id desc").
		Limit(1).
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}
