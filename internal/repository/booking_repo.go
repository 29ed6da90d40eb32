package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkspot/internal/domain"
	"parkspot/internal/domain/availability"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) Save(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ConfirmationCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("confirmation_code = ?", code).
		Count(&n).Error
	return n > 0, err
}

// CountOverlapping counts spot-holding bookings whose range overlaps
// [q.CheckIn, q.CheckOut).
func (r *BookingRepository) CountOverlapping(ctx context.Context, q availability.Query) (int64, error) {
	var n int64
	db := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("location_id = ?", q.LocationID).
		Where("status IN ?", statusStrings(domain.OccupyingStatuses)).
		Where("check_in < ? AND check_out > ?", q.CheckOut, q.CheckIn)
	if q.ExcludeBookingID != 0 {
		db = db.Where("id <> ?", q.ExcludeBookingID)
	}
	err := db.Count(&n).Error
	return n, err
}

type BookingFilter struct {
	LocationID int64
	UserID     int64
	OwnerID    int64
	Statuses   []domain.BookingStatus
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// List returns bookings matching f, newest check-in first.
func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := sq.Select("b.*").From("bookings b").OrderBy("b.check_in DESC", "b.id DESC")

	if f.LocationID != 0 {
		q = q.Where(sq.Eq{"b.location_id": f.LocationID})
	}
	if f.UserID != 0 {
		q = q.Where(sq.Eq{"b.user_id": f.UserID})
	}
	if f.OwnerID != 0 {
		q = q.Join("locations l ON l.id = b.location_id").Where(sq.Eq{"l.owner_id": f.OwnerID})
	}
	if len(f.Statuses) > 0 {
		q = q.Where(sq.Eq{"b.status": statusStrings(f.Statuses)})
	}
	if !f.From.IsZero() {
		q = q.Where(sq.Gt{"b.check_out": f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(sq.Lt{"b.check_in": f.To})
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	q = q.Limit(uint64(limit))
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var out []domain.Booking
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListDueForCompletion returns CONFIRMED bookings whose check-out is before
// cutoff.
func (r *BookingRepository) ListDueForCompletion(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND check_out < ?", domain.BookingConfirmed, cutoff).
		Order("check_out asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
