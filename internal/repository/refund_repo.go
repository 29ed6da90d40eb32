package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkspot/internal/domain"
)

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, rr *domain.RefundRequest) error {
	return r.db.WithContext(ctx).Create(rr).Error
}

func (r *RefundRepository) Save(ctx context.Context, rr *domain.RefundRequest) error {
	return r.db.WithContext(ctx).Save(rr).Error
}

func (r *RefundRepository) GetForUpdate(ctx context.Context, id int64) (*domain.RefundRequest, error) {
	var rr domain.RefundRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rr, id).Error
	if err != nil {
		return nil, err
	}
	return &rr, nil
}

func (r *RefundRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.RefundRequest, error) {
	var rr domain.RefundRequest
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&rr).Error; err != nil {
		return nil, err
	}
	return &rr, nil
}

func (r *RefundRepository) List(ctx context.Context, status domain.RefundStatus, limit, offset int) ([]domain.RefundRequest, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	db := r.db.WithContext(ctx).Order("created_at asc, id asc").Limit(limit).Offset(offset)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var out []domain.RefundRequest
	err := db.Find(&out).Error
	return out, err
}
