package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// OccupyingStatuses are the statuses in which a booking holds a spot.
var OccupyingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) OccupiesSpot() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	ID         int64  `json:"id"`
	UserID     *int64 `json:"user_id,omitempty" gorm:"index"`
	LocationID int64  `json:"location_id" gorm:"not null;index:idx_bookings_location_range,priority:1"`

	CheckIn  time.Time `json:"check_in" gorm:"not null;index:idx_bookings_location_range,priority:2"`
	CheckOut time.Time `json:"check_out" gorm:"not null;index:idx_bookings_location_range,priority:3"`

	GuestFirstName string `json:"guest_first_name"`
	GuestLastName  string `json:"guest_last_name"`
	GuestEmail     string `json:"guest_email,omitempty"`
	GuestPhone     string `json:"guest_phone,omitempty"`

	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	VehicleColor string `json:"vehicle_color"`
	VehiclePlate string `json:"vehicle_plate,omitempty"`

	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Taxes         float64 `json:"taxes"`
	Fees          float64 `json:"fees"`
	TotalPrice    float64 `json:"total_price"`
	Commission    float64 `json:"commission"`
	OwnerEarnings float64 `json:"owner_earnings"`

	PromotionID      *int64        `json:"promotion_id,omitempty"`
	Status           BookingStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	ConfirmationCode string        `json:"confirmation_code" gorm:"type:varchar(32);not null;uniqueIndex"`

	RejectionReason    string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

// HoursUntilCheckIn is negative once check-in has passed.
func (b *Booking) HoursUntilCheckIn(now time.Time) float64 {
	return b.CheckIn.Sub(now).Hours()
}

func (b *Booking) IsOwnedBy(userID int64) bool {
	return b.UserID != nil && *b.UserID == userID
}
