package request

import "time"

type CreateRequest struct {
	LocationID        int64     `json:"location_id" validate:"omitempty,gt=0"`
	Type              string    `json:"type" validate:"required,oneof=WALK_IN EXTENSION MODIFICATION EARLY_CHECKOUT"`
	OriginalBookingID *int64    `json:"original_booking_id,omitempty" validate:"omitempty,gt=0"`
	RequestedStart    time.Time `json:"requested_start"`
	RequestedEnd      time.Time `json:"requested_end"`
	EstimatedAmount   float64   `json:"estimated_amount" validate:"gte=0"`

	CustomerName  string `json:"customer_name" validate:"max=200"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string `json:"customer_phone" validate:"omitempty,max=32"`
	VehicleMake   string `json:"vehicle_make" validate:"max=64"`
	VehicleModel  string `json:"vehicle_model" validate:"max=64"`
	VehicleColor  string `json:"vehicle_color" validate:"max=32"`
	VehiclePlate  string `json:"vehicle_plate" validate:"max=16"`
	Notes         string `json:"notes" validate:"max=2000"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}
