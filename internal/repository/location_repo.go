package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkspot/internal/domain"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, loc *domain.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	var loc domain.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetForUpdate locks the location row. Every booking transaction takes this
// lock first, before touching any booking row.
func (r *LocationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Location, error) {
	var loc domain.Location
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loc, id).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepository) ListPricingRules(ctx context.Context, locationID int64) ([]domain.PricingRule, error) {
	var rules []domain.PricingRule
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("position asc, id asc").
		Find(&rules).Error
	return rules, err
}

// ReserveSpot decrements the available counter, never below zero.
func (r *LocationRepository) ReserveSpot(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Location{}).
		Where("id = ? AND available_spots > 0", id).
		UpdateColumn("available_spots", gorm.Expr("available_spots - ?", 1)).Error
}

// ReleaseSpot increments the available counter, never above total_spots.
func (r *LocationRepository) ReleaseSpot(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Location{}).
		Where("id = ? AND available_spots < total_spots", id).
		UpdateColumn("available_spots", gorm.Expr("available_spots + ?", 1)).Error
}
