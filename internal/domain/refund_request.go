package domain

import "time"

type RefundStatus string

const (
	RefundPending  RefundStatus = "PENDING"
	RefundApproved RefundStatus = "APPROVED"
	RefundRejected RefundStatus = "REJECTED"
)

// RefundRequest is created on cancellation and waits for an admin.
// ApprovedAmount is only a suggestion until Status is APPROVED.
type RefundRequest struct {
	ID             int64                  `json:"id"`
	BookingID      int64                  `json:"booking_id" gorm:"not null;uniqueIndex"`
	OriginalAmount float64                `json:"original_amount"`
	ApprovedAmount float64                `json:"approved_amount"`
	RefundPercent  float64                `json:"refund_percent"`
	PolicyType     CancellationPolicyType `json:"policy_type,omitempty" gorm:"type:varchar(16)"`
	ManualReview   bool                   `json:"manual_review"`
	Reason         string                 `json:"reason,omitempty" gorm:"type:text"`
	Status         RefundStatus           `json:"status" gorm:"type:varchar(16);not null;index"`
	ReviewedBy     *int64                 `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time             `json:"reviewed_at,omitempty"`
	ReviewNote     string                 `json:"review_note,omitempty" gorm:"type:text"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
