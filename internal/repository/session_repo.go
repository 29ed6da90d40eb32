package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkspot/internal/domain"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.ParkingSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SessionRepository) Save(ctx context.Context, s *domain.ParkingSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SessionRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.ParkingSession, error) {
	var s domain.ParkingSession
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) GetByBookingIDForUpdate(ctx context.Context, bookingID int64) (*domain.ParkingSession, error) {
	var s domain.ParkingSession
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
