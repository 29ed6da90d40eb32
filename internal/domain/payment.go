package domain

import "time"

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentSuccess           PaymentStatus = "SUCCESS"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

const (
	ProviderGateway = "gateway"
	ProviderOnSite  = "on_site"
)

// Payment records what the payment gateway reported for a booking.
type Payment struct {
	ID             int64         `json:"id"`
	BookingID      int64         `json:"booking_id" gorm:"not null;uniqueIndex"`
	Amount         float64       `json:"amount" gorm:"not null"`
	Provider       string        `json:"provider" gorm:"type:varchar(32);not null"`
	TransactionRef string        `json:"transaction_ref,omitempty" gorm:"type:varchar(128);index"`
	Status         PaymentStatus `json:"status" gorm:"type:varchar(24);not null"`
	RefundedAmount float64       `json:"refunded_amount"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
