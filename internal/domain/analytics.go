package domain

import "time"

const AnalyticsDayLayout = "2006-01-02"

// LocationAnalytics holds per-location, per-day counters.
type LocationAnalytics struct {
	ID            int64     `json:"id"`
	LocationID    int64     `json:"location_id" gorm:"not null;uniqueIndex:idx_location_analytics_day,priority:1"`
	Day           string    `json:"day" gorm:"type:varchar(10);not null;uniqueIndex:idx_location_analytics_day,priority:2"`
	TotalBookings int       `json:"total_bookings" gorm:"not null;default:0"`
	Revenue       float64   `json:"revenue" gorm:"not null;default:0"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (LocationAnalytics) TableName() string {
	return "location_analytics"
}
