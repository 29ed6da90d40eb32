package domain

import (
	"strings"
	"time"
)

// AdjustmentType is shared by promotions and commission rules.
type AdjustmentType string

const (
	AdjustmentPercentage AdjustmentType = "percentage"
	AdjustmentFixed      AdjustmentType = "fixed"
)

type Promotion struct {
	ID         int64          `json:"id"`
	Code       string         `json:"code" gorm:"type:varchar(64);not null;uniqueIndex"`
	Type       AdjustmentType `json:"type" gorm:"type:varchar(16);not null"`
	Value      float64        `json:"value" gorm:"not null"`
	IsActive   bool           `json:"is_active"`
	ExpiresAt  time.Time      `json:"expires_at"`
	UsageCount int            `json:"usage_count" gorm:"not null;default:0"`
	CreatedAt  time.Time      `json:"created_at"`
}

// IsValidAt reports whether the promotion may still be redeemed at now.
func (p *Promotion) IsValidAt(now time.Time) bool {
	return p.IsActive && now.Before(p.ExpiresAt)
}

func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CommissionRule is the platform's cut of a booking subtotal.
type CommissionRule struct {
	ID        int64          `json:"id"`
	Type      AdjustmentType `json:"type" gorm:"type:varchar(16);not null"`
	Value     float64        `json:"value" gorm:"not null"`
	IsActive  bool           `json:"is_active" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
}
