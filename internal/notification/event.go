package notification

import (
	"time"

	"github.com/google/uuid"
)

// Event types double as routing keys on the events exchange.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingRejected  = "booking.rejected"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingCompleted = "booking.completed"
	TypeRequestConverted = "request.converted"
	TypeBookingExtended  = "booking.extended"
)

// Event is what an owner is told about one of their bookings.
type Event struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	OwnerID          int64     `json:"owner_id"`
	BookingID        int64     `json:"booking_id"`
	LocationID       int64     `json:"location_id"`
	ConfirmationCode string    `json:"confirmation_code,omitempty"`
	Status           string    `json:"status"`
	Total            float64   `json:"total,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

func NewEvent(eventType string, ownerID, bookingID, locationID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OwnerID:    ownerID,
		BookingID:  bookingID,
		LocationID: locationID,
		OccurredAt: time.Now().UTC(),
	}
}
