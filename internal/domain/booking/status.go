package booking

import "parkspot/internal/domain"

var validTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingRejected, domain.BookingCancelled},
	domain.BookingConfirmed: {domain.BookingCancelled, domain.BookingCompleted},
	domain.BookingRejected:  {},
	domain.BookingCancelled: {},
	domain.BookingCompleted: {},
}

// CanTransition reports whether from -> to is a legal move. PENDING ->
// CANCELLED is the guest withdrawing before the owner decided.
func CanTransition(from, to domain.BookingStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s domain.BookingStatus) bool {
	next, ok := validTransitions[s]
	return ok && len(next) == 0
}

// Transition validates from -> to and returns the matching error kind.
func Transition(from, to domain.BookingStatus) error {
	if to == domain.BookingCancelled && from == domain.BookingCancelled {
		return ErrAlreadyCancelled
	}
	if !CanTransition(from, to) {
		return ErrInvalidStateTransition
	}
	return nil
}
