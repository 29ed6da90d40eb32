// Package availability answers whether a location has a free spot for a
// half-open [checkIn, checkOut) range.
package availability

import (
	"context"
	"time"
)

type Query struct {
	LocationID int64
	CheckIn    time.Time
	CheckOut   time.Time
	// ExcludeBookingID keeps a booking from competing with itself when its
	// own range is being extended.
	ExcludeBookingID int64
}

// BookingCounter counts PENDING and CONFIRMED bookings overlapping a query.
// Implementations must run on the caller's transaction.
type BookingCounter interface {
	CountOverlapping(ctx context.Context, q Query) (int64, error)
}

type Result struct {
	TotalSpots  int `json:"total_spots"`
	Overlapping int `json:"overlapping"`
	Remaining   int `json:"remaining"`
}

func (r Result) HasCapacity() bool {
	return r.Remaining > 0
}

// Checker is stateless. The BookingCounter passed to Check decides the
// transaction it reads from.
type Checker struct{}

func (Checker) Check(ctx context.Context, counter BookingCounter, totalSpots int, q Query) (Result, error) {
	n, err := counter.CountOverlapping(ctx, q)
	if err != nil {
		return Result{}, err
	}
	return Result{
		TotalSpots:  totalSpots,
		Overlapping: int(n),
		Remaining:   Remaining(totalSpots, n),
	}, nil
}

// Overlaps uses half-open semantics: back-to-back ranges do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func Remaining(totalSpots int, overlapping int64) int {
	left := int64(totalSpots) - overlapping
	if left < 0 {
		return 0
	}
	return int(left)
}

func ValidRange(checkIn, checkOut time.Time) bool {
	return !checkIn.IsZero() && checkOut.After(checkIn)
}
