// Package pricing turns a base daily rate, pricing rules, an optional
// promotion and an optional commission rule into an itemized price.
// Everything here is pure: callers validate dates and promotions first.
package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"parkspot/internal/domain"
)

const (
	TaxRate               = 12.0 // percent
	ServiceFee            = 5.99
	DefaultCommissionRate = 15.0 // percent
)

type Input struct {
	BasePricePerDay float64
	Rules           []domain.PricingRule
	CheckIn         time.Time
	CheckOut        time.Time
	Promotion       *domain.Promotion
	Commission      *domain.CommissionRule
}

type Breakdown struct {
	Days                   int     `json:"days"`
	Multiplier             float64 `json:"multiplier"`
	SubtotalBeforeDiscount float64 `json:"subtotal_before_discount"`
	Discount               float64 `json:"discount"`
	Subtotal               float64 `json:"subtotal"`
	Taxes                  float64 `json:"taxes"`
	Fees                   float64 `json:"fees"`
	Total                  float64 `json:"total"`
	Commission             float64 `json:"commission"`
	OwnerEarnings          float64 `json:"owner_earnings"`
}

func Compute(in Input) Breakdown {
	days := Days(in.CheckIn, in.CheckOut)
	multiplier := SelectMultiplier(in.Rules, in.CheckIn, in.CheckOut)

	gross := cents(decimal.NewFromFloat(in.BasePricePerDay).
		Mul(decimal.NewFromInt(int64(days))).
		Mul(decimal.NewFromFloat(multiplier)))
	discount := Discount(in.Promotion, gross)
	subtotal := math.Max(Sub(gross, discount), 0)
	taxes := Taxes(subtotal)
	fees := ServiceFee
	commission := Commission(in.Commission, subtotal)

	return Breakdown{
		Days:                   days,
		Multiplier:             multiplier,
		SubtotalBeforeDiscount: gross,
		Discount:               discount,
		Subtotal:               subtotal,
		Taxes:                  taxes,
		Fees:                   fees,
		Total:                  Add(subtotal, taxes, fees),
		Commission:             commission,
		OwnerEarnings:          Sub(subtotal, commission),
	}
}

// Days is the stay length in whole days, rounded up, never less than one.
func Days(checkIn, checkOut time.Time) int {
	days := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Discount returns the promotion discount on gross, capped at gross.
func Discount(promo *domain.Promotion, gross float64) float64 {
	if promo == nil {
		return 0
	}
	var d float64
	switch promo.Type {
	case domain.AdjustmentPercentage:
		d = Percent(gross, promo.Value)
	case domain.AdjustmentFixed:
		d = promo.Value
	}
	return Round2(clamp(d, 0, gross))
}

func Taxes(subtotal float64) float64 {
	return Percent(subtotal, TaxRate)
}

// Commission is the platform cut of a post-discount subtotal. A nil or
// inactive rule falls back to DefaultCommissionRate. It never exceeds the
// subtotal, so owner earnings stay non-negative.
func Commission(rule *domain.CommissionRule, subtotal float64) float64 {
	if rule == nil || !rule.IsActive {
		return Percent(subtotal, DefaultCommissionRate)
	}
	var c float64
	switch rule.Type {
	case domain.AdjustmentFixed:
		c = rule.Value
	default:
		c = Percent(subtotal, rule.Value)
	}
	return Round2(clamp(c, 0, subtotal))
}

// Round2 rounds to cents, half away from zero. The float is read through
// its shortest decimal form, so 1.005 becomes 1.01.
func Round2(v float64) float64 {
	return cents(decimal.NewFromFloat(v))
}

// Percent returns pct percent of amount in cents.
func Percent(amount, pct float64) float64 {
	return cents(decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)))
}

// Ratio returns part as a percentage of whole, in hundredths. A zero whole
// yields zero.
func Ratio(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return cents(decimal.NewFromFloat(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromFloat(whole)))
}

// Add sums amounts exactly and rounds to cents.
func Add(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return cents(sum)
}

// Sub returns a-b in cents.
func Sub(a, b float64) float64 {
	return cents(decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)))
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
