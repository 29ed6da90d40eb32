package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkspot/internal/domain"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.BookingRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) Save(ctx context.Context, req *domain.BookingRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	var req domain.BookingRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) GetForUpdate(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	var req domain.BookingRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}
