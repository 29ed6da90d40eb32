package booking

import (
	"errors"
	"fmt"
)

// Domain error kinds. Callers compare with errors.Is.
var (
	ErrLocationUnavailable    = errors.New("location unavailable")
	ErrNoSpotsAvailable       = errors.New("no spots available")
	ErrInvalidPromotion       = errors.New("invalid promotion")
	ErrInvalidDateRange       = errors.New("invalid date range")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrAlreadyCancelled       = errors.New("booking already cancelled")
	ErrRequestNotFound        = errors.New("request not found")
	ErrInvalidRequestState    = errors.New("invalid request state")
	ErrUnauthorized           = errors.New("unauthorized")

	ErrBookingNotFound     = errors.New("booking not found")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrRefundNotFound      = errors.New("refund request not found")
	ErrSessionNotFound     = errors.New("parking session not found")
	ErrInvalidSessionState = errors.New("invalid parking session state")
)

// ErrStorageFailure marks errors raised by the backing store. They are
// retryable by the caller; domain errors are not.
var ErrStorageFailure = errors.New("storage failure")

var domainErrors = []error{
	ErrLocationUnavailable,
	ErrNoSpotsAvailable,
	ErrInvalidPromotion,
	ErrInvalidDateRange,
	ErrInvalidStateTransition,
	ErrAlreadyCancelled,
	ErrRequestNotFound,
	ErrInvalidRequestState,
	ErrUnauthorized,
	ErrBookingNotFound,
	ErrPaymentDeclined,
	ErrRefundNotFound,
	ErrSessionNotFound,
	ErrInvalidSessionState,
}

// StorageFailure wraps err so that errors.Is(err, ErrStorageFailure) holds.
// Domain errors and nil pass through unchanged.
func StorageFailure(err error) error {
	if err == nil || IsDomainError(err) || errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
