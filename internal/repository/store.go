package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one *gorm.DB. Inside Transaction every
// repository shares the same database transaction.
type Store struct {
	db *gorm.DB

	Users       *UserRepository
	Locations   *LocationRepository
	Bookings    *BookingRepository
	Payments    *PaymentRepository
	Sessions    *SessionRepository
	Promotions  *PromotionRepository
	Commissions *CommissionRepository
	Refunds     *RefundRepository
	Requests    *RequestRepository
	Analytics   *AnalyticsRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       NewUserRepository(db),
		Locations:   NewLocationRepository(db),
		Bookings:    NewBookingRepository(db),
		Payments:    NewPaymentRepository(db),
		Sessions:    NewSessionRepository(db),
		Promotions:  NewPromotionRepository(db),
		Commissions: NewCommissionRepository(db),
		Refunds:     NewRefundRepository(db),
		Requests:    NewRequestRepository(db),
		Analytics:   NewAnalyticsRepository(db),
	}
}

// DB exposes the underlying handle, the open transaction when called on the
// Store passed to a Transaction callback.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
