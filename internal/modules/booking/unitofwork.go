package booking

import (
	"context"
	"fmt"
	"time"

	"parkspot/internal/domain"
	"parkspot/internal/domain/availability"
	bookingdomain "parkspot/internal/domain/booking"
	"parkspot/internal/domain/wallet"
	"parkspot/internal/repository"
)

// The helpers in this file run on an open transaction and are shared with
// the request conversion service. Lock order is always location, then
// booking, then session.

const codeAttempts = 5

// LockActiveLocation locks the location row and requires it to be ACTIVE.
func LockActiveLocation(ctx context.Context, tx *repository.Store, locationID int64) (*domain.Location, error) {
	loc, err := tx.Locations.GetForUpdate(ctx, locationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, bookingdomain.ErrLocationUnavailable
		}
		return nil, err
	}
	if !loc.IsActive() {
		return nil, bookingdomain.ErrLocationUnavailable
	}
	return loc, nil
}

// LockBooking locks the location of a booking and then the booking itself.
func LockBooking(ctx context.Context, tx *repository.Store, bookingID int64) (*domain.Location, *domain.Booking, error) {
	peek, err := tx.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, bookingdomain.ErrBookingNotFound
		}
		return nil, nil, err
	}
	loc, err := tx.Locations.GetForUpdate(ctx, peek.LocationID)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.Bookings.GetForUpdate(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return loc, b, nil
}

// EnsureCapacity fails with ErrNoSpotsAvailable unless at least one spot is
// free for q at loc.
func EnsureCapacity(ctx context.Context, tx *repository.Store, loc *domain.Location, q availability.Query) (availability.Result, error) {
	res, err := availability.Checker{}.Check(ctx, tx.Bookings, loc.TotalSpots, q)
	if err != nil {
		return res, err
	}
	if !res.HasCapacity() {
		return res, bookingdomain.ErrNoSpotsAvailable
	}
	return res, nil
}

// NewBooking describes everything inserted alongside a booking row.
type NewBooking struct {
	Booking       *domain.Booking
	Payment       domain.Payment
	SessionStatus domain.SessionStatus
	CheckedInBy   *int64
	Now           time.Time
	// NewCode overrides confirmation code generation in tests.
	NewCode func(time.Time) string
}

// PersistBooking inserts the booking with a fresh confirmation code, then its
// payment and parking session, bumps the day's analytics and takes a spot
// off the location counter.
func PersistBooking(ctx context.Context, tx *repository.Store, nb NewBooking) error {
	b := nb.Booking

	code, err := uniqueConfirmationCode(ctx, tx, nb)
	if err != nil {
		return err
	}
	b.ConfirmationCode = code

	if err := tx.Bookings.Create(ctx, b); err != nil {
		if repository.IsUniqueViolation(err) {
			return fmt.Errorf("confirmation code %s already taken: %w", code, err)
		}
		return err
	}

	payment := nb.Payment
	payment.BookingID = b.ID
	payment.Amount = b.TotalPrice
	if err := tx.Payments.Create(ctx, &payment); err != nil {
		return err
	}

	session := domain.ParkingSession{
		BookingID:  b.ID,
		LocationID: b.LocationID,
		Status:     nb.SessionStatus,
	}
	if nb.SessionStatus == domain.SessionCheckedIn {
		at := nb.Now
		session.CheckedInAt = &at
		session.CheckedInBy = nb.CheckedInBy
	}
	if err := tx.Sessions.Create(ctx, &session); err != nil {
		return err
	}

	if err := tx.Analytics.RecordBooking(ctx, b.LocationID, nb.Now, b.TotalPrice); err != nil {
		return err
	}
	return tx.Locations.ReserveSpot(ctx, b.LocationID)
}

func uniqueConfirmationCode(ctx context.Context, tx *repository.Store, nb NewBooking) (string, error) {
	gen := nb.NewCode
	if gen == nil {
		gen = bookingdomain.NewConfirmationCode
	}
	for i := 0; i < codeAttempts; i++ {
		code := gen(nb.Now)
		taken, err := tx.Bookings.ConfirmationCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free confirmation code after %d attempts", codeAttempts)
}

// CreditOwner posts earnings for a booking to the location owner's wallet.
func CreditOwner(tx *repository.Store, loc *domain.Location, bookingID int64, amount float64, txType, reference string) error {
	if amount <= 0 {
		return nil
	}
	_, _, err := wallet.CreditTx(tx.DB(), wallet.Credit{
		OwnerID:   loc.OwnerID,
		BookingID: bookingID,
		Amount:    amount,
		Type:      txType,
		Reference: reference,
	})
	return err
}

// CompleteTx moves a CONFIRMED booking to COMPLETED, closes its parking
// session if still open and returns the spot to the location.
func CompleteTx(ctx context.Context, tx *repository.Store, b *domain.Booking, now time.Time, by *int64) error {
	if err := bookingdomain.Transition(b.Status, domain.BookingCompleted); err != nil {
		return err
	}
	b.Status = domain.BookingCompleted
	b.CompletedAt = &now
	if err := tx.Bookings.Save(ctx, b); err != nil {
		return err
	}

	session, err := tx.Sessions.GetByBookingIDForUpdate(ctx, b.ID)
	switch {
	case err == nil:
		if session.Status != domain.SessionCheckedOut {
			session.Status = domain.SessionCheckedOut
			session.CheckedOutAt = &now
			session.CheckedOutBy = by
			if err := tx.Sessions.Save(ctx, session); err != nil {
				return err
			}
		}
	case repository.IsNotFound(err):
	default:
		return err
	}

	return tx.Locations.ReleaseSpot(ctx, b.LocationID)
}

// RequireStaff fails with ErrUnauthorized unless userID is a staff member or
// an admin.
func RequireStaff(ctx context.Context, tx *repository.Store, userID int64) error {
	u, err := tx.Users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return bookingdomain.ErrUnauthorized
		}
		return err
	}
	if !u.IsStaff() {
		return bookingdomain.ErrUnauthorized
	}
	return nil
}
