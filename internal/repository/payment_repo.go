package repository

import (
	"context"

	"gorm.io/gorm"

	"parkspot/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkRefunded is the only mutation a payment sees after creation.
func (r *PaymentRepository) MarkRefunded(ctx context.Context, bookingID int64, status domain.PaymentStatus, amount float64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("booking_id = ?", bookingID).
		Updates(map[string]any{"status": status, "refunded_amount": amount}).Error
}
