package request

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkspot/internal/database"
	"parkspot/internal/domain"
	bookingdomain "parkspot/internal/domain/booking"
	"parkspot/internal/domain/wallet"
	"parkspot/internal/modules/booking"
	"parkspot/internal/pkg/logger"
	"parkspot/internal/pkg/testdb"
	"parkspot/internal/repository"
)

const (
	ownerID    int64 = 10
	customerID int64 = 20
	staffID    int64 = 40
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 10, 0, 0, 0, time.UTC)
}

var testNow = day(1)

type fixture struct {
	store    *repository.Store
	svc      *Service
	bookings *booking.Service
	loc      *domain.Location
}

func setup(t *testing.T, spots int) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testdb.Open(t, database.Models()...)
	store := repository.NewStore(db)

	for _, u := range []domain.User{
		{ID: ownerID, Email: "owner@example.com", Role: domain.RoleOwner},
		{ID: customerID, Email: "customer@example.com", Role: domain.RoleCustomer},
		{ID: staffID, Email: "staff@example.com", Role: domain.RoleStaff},
	} {
		u := u
		require.NoError(t, store.Users.Create(ctx, &u))
	}

	loc := &domain.Location{
		OwnerID:                ownerID,
		Name:                   "Harbor Garage",
		TotalSpots:             spots,
		AvailableSpots:         spots,
		BasePricePerDay:        50,
		Status:                 domain.LocationActive,
		CancellationPolicyType: domain.PolicyModerate,
	}
	require.NoError(t, store.Locations.Create(ctx, loc))

	clock := func() time.Time { return testNow }
	log := logger.Discard()
	bookings := booking.NewService(store, log, booking.WithClock(clock))
	svc := NewService(store, bookings.Effects(), log, WithClock(clock))
	return &fixture{store: store, svc: svc, bookings: bookings, loc: loc}
}

func (f *fixture) walkIn(t *testing.T, in, out time.Time, estimated float64) *domain.BookingRequest {
	t.Helper()
	req, err := f.svc.Create(context.Background(), domain.Actor{UserID: staffID, Role: domain.RoleStaff}, CreateRequest{
		LocationID:      f.loc.ID,
		Type:            string(domain.RequestWalkIn),
		RequestedStart:  in,
		RequestedEnd:    out,
		EstimatedAmount: estimated,
		CustomerName:    "Maria de la Cruz",
		VehiclePlate:    "XYZ789",
	})
	require.NoError(t, err)
	return req
}

func (f *fixture) confirmedBooking(t *testing.T, in, out time.Time) *domain.Booking {
	t.Helper()
	ctx := context.Background()
	b, err := f.bookings.CreateBooking(ctx, domain.Actor{UserID: customerID, Role: domain.RoleCustomer}, booking.CreateBookingRequest{
		LocationID:     f.loc.ID,
		CheckIn:        in,
		CheckOut:       out,
		GuestFirstName: "Sam",
	})
	require.NoError(t, err)
	_, err = f.bookings.ApproveBooking(ctx, domain.Actor{UserID: ownerID, Role: domain.RoleOwner}, b.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) balance(t *testing.T) float64 {
	t.Helper()
	w, err := wallet.NewService(f.store.DB()).GetOrCreateWallet(context.Background(), ownerID)
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) countBookings(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.store.DB().Model(&domain.Booking{}).Count(&n).Error)
	return n
}

func TestConvertWalkIn(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	req := f.walkIn(t, day(1), day(2), 80)

	approved, b, err := f.svc.ConvertRequestToBooking(ctx, req.ID, staffID)
	require.NoError(t, err)

	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Nil(t, b.UserID)
	assert.Equal(t, "Maria", b.GuestFirstName)
	assert.Equal(t, "de la Cruz", b.GuestLastName)
	assert.Equal(t, VehiclePlaceholder, b.VehicleMake)
	assert.Equal(t, VehiclePlaceholder, b.VehicleModel)
	assert.Equal(t, VehiclePlaceholder, b.VehicleColor)
	assert.Equal(t, "XYZ789", b.VehiclePlate)
	assert.Equal(t, 80.0, b.Subtotal)
	assert.InDelta(t, 9.6, b.Taxes, 0.0001)
	assert.Zero(t, b.Fees)
	assert.InDelta(t, 89.6, b.TotalPrice, 0.0001)
	assert.Equal(t, 12.0, b.Commission)
	assert.Equal(t, 68.0, b.OwnerEarnings)

	assert.Equal(t, domain.RequestApproved, approved.Status)
	require.NotNil(t, approved.BookingID)
	assert.Equal(t, b.ID, *approved.BookingID)
	require.NotNil(t, approved.ProcessedBy)
	assert.Equal(t, staffID, *approved.ProcessedBy)

	session, err := f.store.Sessions.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCheckedIn, session.Status)
	require.NotNil(t, session.CheckedInBy)
	assert.Equal(t, staffID, *session.CheckedInBy)

	payment, err := f.store.Payments.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderOnSite, payment.Provider)
	assert.Equal(t, domain.PaymentPending, payment.Status)

	assert.Equal(t, 68.0, f.balance(t))

	loc, err := f.store.Locations.GetByID(ctx, f.loc.ID)
	require.NoError(t, err)
	assert.Zero(t, loc.AvailableSpots)
}

func TestConvertTwiceProducesOneBooking(t *testing.T) {
	f := setup(t, 2)
	ctx := context.Background()
	req := f.walkIn(t, day(1), day(2), 80)

	_, _, err := f.svc.ConvertRequestToBooking(ctx, req.ID, staffID)
	require.NoError(t, err)

	_, _, err = f.svc.ConvertRequestToBooking(ctx, req.ID, staffID)
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidRequestState)
	assert.Equal(t, int64(1), f.countBookings(t))
	assert.Equal(t, 68.0, f.balance(t))
}

func TestConvertConcurrentlyProducesOneBooking(t *testing.T) {
	f := setup(t, 5)
	req := f.walkIn(t, day(1), day(2), 80)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.ConvertRequestToBooking(context.Background(), req.ID, staffID)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, bookingdomain.ErrInvalidRequestState), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(1), f.countBookings(t))
}

func TestConvertFutureWalkInStaysReserved(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	req := f.walkIn(t, day(3), day(4), 50)

	_, b, err := f.svc.ConvertRequestToBooking(ctx, req.ID, staffID)
	require.NoError(t, err)

	session, err := f.store.Sessions.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionReserved, session.Status)
}

func TestConvertWithoutCapacity(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	f.confirmedBooking(t, day(1), day(3))
	req := f.walkIn(t, day(2), day(4), 50)

	_, _, err := f.svc.ConvertRequestToBooking(ctx, req.ID, staffID)
	assert.ErrorIs(t, err, bookingdomain.ErrNoSpotsAvailable)

	stored, err := f.store.Requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, stored.Status)
	assert.Nil(t, stored.BookingID)
}

func TestConvertRequiresStaff(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	req := f.walkIn(t, day(1), day(2), 50)

	_, _, err := f.svc.ConvertRequestToBooking(ctx, req.ID, customerID)
	assert.ErrorIs(t, err, bookingdomain.ErrUnauthorized)

	_, _, err = f.svc.ConvertRequestToBooking(ctx, 999, staffID)
	assert.ErrorIs(t, err, bookingdomain.ErrRequestNotFound)
}

func TestCreateEstimatesFromPricing(t *testing.T) {
	f := setup(t, 1)
	req := f.walkIn(t, day(1), day(3), 0)
	assert.Equal(t, 100.0, req.EstimatedAmount)
	assert.Equal(t, domain.RequestPending, req.Status)

	_, err := f.svc.Create(context.Background(), domain.Actor{UserID: staffID, Role: domain.RoleStaff}, CreateRequest{
		Type:         string(domain.RequestExtension),
		RequestedEnd: day(5),
	})
	assert.ErrorIs(t, err, bookingdomain.ErrBookingNotFound)
}

func TestHandleExtension(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	b := f.confirmedBooking(t, day(1), day(3))
	require.Equal(t, 85.0, f.balance(t))

	req, err := f.svc.Create(ctx, domain.Actor{UserID: staffID, Role: domain.RoleStaff}, CreateRequest{
		Type:              string(domain.RequestExtension),
		OriginalBookingID: &b.ID,
		RequestedEnd:      day(4),
		EstimatedAmount:   50,
	})
	require.NoError(t, err)
	assert.True(t, req.RequestedStart.Equal(day(3)))

	approved, extended, err := f.svc.HandleExtensionRequest(ctx, req.ID, staffID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, approved.Status)
	assert.True(t, extended.CheckOut.Equal(day(4)))
	assert.InDelta(t, 167.99, extended.TotalPrice, 0.0001)
	assert.InDelta(t, 127.5, extended.OwnerEarnings, 0.0001)
	assert.InDelta(t, 127.5, f.balance(t), 0.0001)

	session, err := f.store.Sessions.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCheckedIn, session.Status)

	_, _, err = f.svc.HandleExtensionRequest(ctx, req.ID, staffID)
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidRequestState)
	assert.InDelta(t, 127.5, f.balance(t), 0.0001)
}

func TestHandleExtensionOfPendingBookingKeepsSessionReserved(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	b, err := f.bookings.CreateBooking(ctx, domain.Actor{UserID: customerID, Role: domain.RoleCustomer}, booking.CreateBookingRequest{
		LocationID:     f.loc.ID,
		CheckIn:        day(2),
		CheckOut:       day(4),
		GuestFirstName: "Lee",
	})
	require.NoError(t, err)
	require.Equal(t, domain.BookingPending, b.Status)

	req, err := f.svc.Create(ctx, domain.Actor{UserID: staffID, Role: domain.RoleStaff}, CreateRequest{
		Type:              string(domain.RequestExtension),
		OriginalBookingID: &b.ID,
		RequestedEnd:      day(5),
		EstimatedAmount:   50,
	})
	require.NoError(t, err)

	_, extended, err := f.svc.HandleExtensionRequest(ctx, req.ID, staffID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, extended.Status)
	assert.True(t, extended.CheckOut.Equal(day(5)))
	assert.Equal(t, 0.0, f.balance(t))

	session, err := f.store.Sessions.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionReserved, session.Status)

	_, err = f.bookings.ApproveBooking(ctx, domain.Actor{UserID: ownerID, Role: domain.RoleOwner}, b.ID)
	require.NoError(t, err)
	completed, err := f.bookings.CompleteBooking(ctx, b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, completed.Status)
}

func TestHandleExtensionBlockedByNextBooking(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	b := f.confirmedBooking(t, day(1), day(3))
	f.confirmedBooking(t, day(3), day(5))

	req, err := f.svc.Create(ctx, domain.Actor{UserID: staffID, Role: domain.RoleStaff}, CreateRequest{
		Type:              string(domain.RequestExtension),
		OriginalBookingID: &b.ID,
		RequestedEnd:      day(4),
		EstimatedAmount:   50,
	})
	require.NoError(t, err)

	_, _, err = f.svc.HandleExtensionRequest(ctx, req.ID, staffID)
	assert.ErrorIs(t, err, bookingdomain.ErrNoSpotsAvailable)

	unchanged, err := f.store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.CheckOut.Equal(day(3)))
}

func TestHandleEarlyCheckout(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	b := f.confirmedBooking(t, day(1), day(4))

	req, err := f.svc.Create(ctx, domain.Actor{UserID: staffID, Role: domain.RoleStaff}, CreateRequest{
		Type:              string(domain.RequestEarlyCheckout),
		OriginalBookingID: &b.ID,
		RequestedEnd:      day(2),
	})
	require.NoError(t, err)

	approved, done, err := f.svc.HandleEarlyCheckoutRequest(ctx, req.ID, staffID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, approved.Status)
	assert.Equal(t, domain.BookingCompleted, done.Status)
	assert.True(t, done.CheckOut.Equal(day(2)))

	session, err := f.store.Sessions.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCheckedOut, session.Status)

	loc, err := f.store.Locations.GetByID(ctx, f.loc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loc.AvailableSpots)
}

func TestRejectRequest(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	req := f.walkIn(t, day(1), day(2), 50)

	rejected, err := f.svc.RejectRequest(ctx, req.ID, staffID, "no plate")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, rejected.Status)
	assert.Equal(t, "no plate", rejected.RejectionReason)

	_, _, err = f.svc.ConvertRequestToBooking(ctx, req.ID, staffID)
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidRequestState)
	assert.Zero(t, f.countBookings(t))
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in, first, last string
	}{
		{"Maria de la Cruz", "Maria", "de la Cruz"},
		{"  Lee   Chen ", "Lee", "Chen"},
		{"Prince", "Prince", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := SplitName(tc.in)
		assert.Equal(t, tc.first, first, tc.in)
		assert.Equal(t, tc.last, last, tc.in)
	}
}
