package domain

import "time"

type RequestType string

const (
	RequestWalkIn        RequestType = "WALK_IN"
	RequestExtension     RequestType = "EXTENSION"
	RequestModification  RequestType = "MODIFICATION"
	RequestEarlyCheckout RequestType = "EARLY_CHECKOUT"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// BookingRequest is a staff-originated intention. BookingID is set exactly
// once, when the request is consumed.
type BookingRequest struct {
	ID         int64         `json:"id"`
	LocationID int64         `json:"location_id" gorm:"not null;index"`
	Type       RequestType   `json:"type" gorm:"type:varchar(16);not null"`
	Status     RequestStatus `json:"status" gorm:"type:varchar(16);not null;index"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	VehicleMake   string `json:"vehicle_make,omitempty"`
	VehicleModel  string `json:"vehicle_model,omitempty"`
	VehicleColor  string `json:"vehicle_color,omitempty"`
	VehiclePlate  string `json:"vehicle_plate,omitempty"`

	RequestedStart  time.Time `json:"requested_start"`
	RequestedEnd    time.Time `json:"requested_end"`
	EstimatedAmount float64   `json:"estimated_amount"`

	OriginalBookingID *int64 `json:"original_booking_id,omitempty" gorm:"index"`
	BookingID         *int64 `json:"booking_id,omitempty" gorm:"uniqueIndex"`

	CreatedBy       int64      `json:"created_by"`
	ProcessedBy     *int64     `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	Notes           string     `json:"notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
