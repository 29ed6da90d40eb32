package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	bookingdomain "parkspot/internal/domain/booking"
	"parkspot/internal/pkg/response"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{bookingdomain.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE", "Check-out must be after check-in"},
	{bookingdomain.ErrInvalidPromotion, http.StatusUnprocessableEntity, "INVALID_PROMOTION", "Promotion code is invalid or expired"},
	{bookingdomain.ErrLocationUnavailable, http.StatusConflict, "LOCATION_UNAVAILABLE", "Location is not accepting bookings"},
	{bookingdomain.ErrNoSpotsAvailable, http.StatusConflict, "NO_SPOTS_AVAILABLE", "No spots available for the selected dates"},
	{bookingdomain.ErrAlreadyCancelled, http.StatusConflict, "ALREADY_CANCELLED", "Booking is already cancelled"},
	{bookingdomain.ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE_TRANSITION", "Booking cannot move to the requested status"},
	{bookingdomain.ErrInvalidRequestState, http.StatusConflict, "INVALID_REQUEST_STATE", "Request has already been processed"},
	{bookingdomain.ErrInvalidSessionState, http.StatusConflict, "INVALID_SESSION_STATE", "Parking session cannot move to the requested state"},
	{bookingdomain.ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found"},
	{bookingdomain.ErrRequestNotFound, http.StatusNotFound, "REQUEST_NOT_FOUND", "Request not found"},
	{bookingdomain.ErrRefundNotFound, http.StatusNotFound, "REFUND_NOT_FOUND", "Refund request not found"},
	{bookingdomain.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND", "Parking session not found"},
	{bookingdomain.ErrUnauthorized, http.StatusForbidden, response.CodeForbidden, "You are not allowed to perform this action"},
	{bookingdomain.ErrPaymentDeclined, http.StatusPaymentRequired, "PAYMENT_DECLINED", "Payment was not successful"},
	{bookingdomain.ErrStorageFailure, http.StatusServiceUnavailable, "STORAGE_FAILURE", "Storage is temporarily unavailable"},
}

// WriteError renders err as the standard error envelope. Errors that are
// not part of the booking vocabulary become a 500.
func WriteError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				_ = c.Error(err)
			}
			response.Error(c, m.status, m.code, m.message)
			return
		}
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
}
