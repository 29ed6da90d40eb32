package booking

import "time"

type CreateBookingRequest struct {
	LocationID int64     `json:"location_id" validate:"required,gt=0"`
	CheckIn    time.Time `json:"check_in" validate:"required"`
	CheckOut   time.Time `json:"check_out" validate:"required"`

	GuestFirstName string `json:"guest_first_name" validate:"required,max=100"`
	GuestLastName  string `json:"guest_last_name" validate:"max=100"`
	GuestEmail     string `json:"guest_email" validate:"omitempty,email"`
	GuestPhone     string `json:"guest_phone" validate:"omitempty,max=32"`

	VehicleMake  string `json:"vehicle_make" validate:"max=64"`
	VehicleModel string `json:"vehicle_model" validate:"max=64"`
	VehicleColor string `json:"vehicle_color" validate:"max=32"`
	VehiclePlate string `json:"vehicle_plate" validate:"max=16"`

	PromoCode string               `json:"promo_code,omitempty" validate:"max=64"`
	Payment   *PaymentConfirmation `json:"payment,omitempty"`
}

// PaymentConfirmation is the gateway's answer as relayed by the client.
type PaymentConfirmation struct {
	TransactionID string `json:"transaction_id" validate:"required,max=128"`
	ClientSecret  string `json:"client_secret,omitempty"`
	Success       bool   `json:"success"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type QuoteRequest struct {
	CheckIn   time.Time `form:"check_in" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	CheckOut  time.Time `form:"check_out" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	PromoCode string    `form:"promo_code"`
}

type ListBookingsQuery struct {
	LocationID int64     `form:"location_id"`
	Status     string    `form:"status"`
	From       time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit      int       `form:"limit"`
	Offset     int       `form:"offset"`
}
