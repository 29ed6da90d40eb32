// Package refund computes what a cancelled booking should get back. It
// only suggests an amount; moving money is an admin decision.
package refund

import (
	"parkspot/internal/domain"
	"parkspot/internal/domain/pricing"
)

const DefaultDeadlineHours = 24

type Policy struct {
	Type  domain.CancellationPolicyType
	Hours int
}

// PolicyFor returns nil when the location has no policy configured.
func PolicyFor(loc *domain.Location) *Policy {
	if loc == nil || loc.CancellationPolicyType == "" {
		return nil
	}
	return &Policy{Type: loc.CancellationPolicyType, Hours: loc.CancellationPolicyHours}
}

func (p Policy) deadline() float64 {
	if p.Hours <= 0 {
		return DefaultDeadlineHours
	}
	return float64(p.Hours)
}

type Outcome struct {
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
	// ManualReview is set when no policy was available to decide.
	ManualReview bool `json:"manual_review"`
}

// Compute applies policy to a cancellation made hoursUntilCheckIn before
// check-in. hoursUntilCheckIn is negative after check-in.
func Compute(policy *Policy, hoursUntilCheckIn, originalPrice float64) Outcome {
	if policy == nil {
		return Outcome{ManualReview: true}
	}

	var percent float64
	switch policy.Type {
	case domain.PolicyFree:
		if hoursUntilCheckIn >= policy.deadline() {
			percent = 100
		}
	case domain.PolicyModerate:
		if hoursUntilCheckIn >= policy.deadline() {
			percent = 50
		}
	case domain.PolicyStrict:
		percent = 0
	default:
		return Outcome{ManualReview: true}
	}
	return outcome(percent, originalPrice)
}

// Withdrawal is the outcome for a booking cancelled before the owner
// confirmed it. Nothing was rendered, so everything is returned.
func Withdrawal(originalPrice float64) Outcome {
	return outcome(100, originalPrice)
}

func outcome(percent, originalPrice float64) Outcome {
	return Outcome{
		Percent: percent,
		Amount:  pricing.Percent(originalPrice, percent),
	}
}
