package domain

import "time"

type LocationStatus string

const (
	LocationActive   LocationStatus = "ACTIVE"
	LocationInactive LocationStatus = "INACTIVE"
)

type CancellationPolicyType string

const (
	PolicyFree     CancellationPolicyType = "free"
	PolicyModerate CancellationPolicyType = "moderate"
	PolicyStrict   CancellationPolicyType = "strict"
)

// Location is a parking facility. AvailableSpots is a denormalized counter
// that is only ever changed inside a booking transaction.
type Location struct {
	ID              int64          `json:"id"`
	OwnerID         int64          `json:"owner_id" gorm:"not null;index"`
	Name            string         `json:"name" gorm:"not null"`
	Address         string         `json:"address,omitempty"`
	AirportCode     string         `json:"airport_code,omitempty" gorm:"type:varchar(8);index"`
	TotalSpots      int            `json:"total_spots" gorm:"not null"`
	AvailableSpots  int            `json:"available_spots" gorm:"not null"`
	BasePricePerDay float64        `json:"base_price_per_day" gorm:"not null"`
	Status          LocationStatus `json:"status" gorm:"type:varchar(16);not null;index"`

	// An empty CancellationPolicyType means the owner never configured one.
	CancellationPolicyType  CancellationPolicyType `json:"cancellation_policy_type,omitempty" gorm:"type:varchar(16)"`
	CancellationPolicyHours int                    `json:"cancellation_policy_hours,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PricingRules []PricingRule `json:"pricing_rules,omitempty" gorm:"foreignKey:LocationID"`
}

func (l *Location) IsActive() bool {
	return l.Status == LocationActive
}

// PricingRule raises the base price by Multiplier while it is active and its
// window covers the whole stay.
type PricingRule struct {
	ID         int64      `json:"id"`
	LocationID int64      `json:"location_id" gorm:"not null;index"`
	Name       string     `json:"name"`
	Multiplier float64    `json:"multiplier" gorm:"not null" validate:"gte=1"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	IsActive   bool       `json:"is_active"`
	Position   int        `json:"position"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AppliesTo reports whether the rule is active for the stay [checkIn, checkOut).
func (r PricingRule) AppliesTo(checkIn, checkOut time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.StartDate != nil && r.StartDate.After(checkIn) {
		return false
	}
	if r.EndDate != nil && r.EndDate.Before(checkOut) {
		return false
	}
	return true
}
