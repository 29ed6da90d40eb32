package domain

import "time"

type SessionStatus string

const (
	SessionReserved   SessionStatus = "RESERVED"
	SessionCheckedIn  SessionStatus = "CHECKED_IN"
	SessionCheckedOut SessionStatus = "CHECKED_OUT"
)

// ParkingSession tracks the vehicle on the lot. It moves only on staff action.
type ParkingSession struct {
	ID           int64         `json:"id"`
	BookingID    int64         `json:"booking_id" gorm:"not null;uniqueIndex"`
	LocationID   int64         `json:"location_id" gorm:"not null;index"`
	Status       SessionStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	CheckedInAt  *time.Time    `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time    `json:"checked_out_at,omitempty"`
	CheckedInBy  *int64        `json:"checked_in_by,omitempty"`
	CheckedOutBy *int64        `json:"checked_out_by,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
