package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkspot/internal/domain"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// RecordBooking upserts the day's counters for a location.
func (r *AnalyticsRepository) RecordBooking(ctx context.Context, locationID int64, at time.Time, revenue float64) error {
	row := domain.LocationAnalytics{
		LocationID:    locationID,
		Day:           at.UTC().Format(domain.AnalyticsDayLayout),
		TotalBookings: 1,
		Revenue:       revenue,
		UpdatedAt:     time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "location_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_bookings": gorm.Expr("location_analytics.total_bookings + ?", 1),
			"revenue":        gorm.Expr("location_analytics.revenue + ?", revenue),
			"updated_at":     row.UpdatedAt,
		}),
	}).Create(&row).Error
}

func (r *AnalyticsRepository) GetDay(ctx context.Context, locationID int64, day string) (*domain.LocationAnalytics, error) {
	var row domain.LocationAnalytics
	if err := r.db.WithContext(ctx).Where("location_id = ? AND day = ?", locationID, day).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
