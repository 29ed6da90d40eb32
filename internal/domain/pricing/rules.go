package pricing

import (
	"time"

	"parkspot/internal/domain"
)

const baseMultiplier = 1.0

// SelectMultiplier picks the highest multiplier among the rules that apply
// to the stay. Rules never stack; with no applicable rule the base rate is
// used unchanged.
func SelectMultiplier(rules []domain.PricingRule, checkIn, checkOut time.Time) float64 {
	best := 0.0
	found := false
	for _, r := range rules {
		if !r.AppliesTo(checkIn, checkOut) {
			continue
		}
		if !found || r.Multiplier > best {
			best = r.Multiplier
			found = true
		}
	}
	if !found {
		return baseMultiplier
	}
	return best
}
