package request

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"parkspot/internal/domain"
	"parkspot/internal/domain/availability"
	bookingdomain "parkspot/internal/domain/booking"
	"parkspot/internal/domain/pricing"
	"parkspot/internal/domain/wallet"
	"parkspot/internal/modules/booking"
	"parkspot/internal/notification"
	"parkspot/internal/repository"
)

// VehiclePlaceholder fills vehicle fields staff left blank on a walk-in.
const VehiclePlaceholder = "Unknown"

// Service turns staff-originated requests into bookings or changes to
// existing ones. It shares the booking service's transaction helpers, so
// the same capacity and inventory rules hold.
type Service struct {
	store   *repository.Store
	effects booking.Effects
	log     logrus.FieldLogger
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *repository.Store, effects booking.Effects, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{store: store, effects: effects, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// Create records a PENDING request. A zero estimated amount is filled in
// from the location's pricing.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateRequest) (*domain.BookingRequest, error) {
	req := &domain.BookingRequest{
		LocationID:        in.LocationID,
		Type:              domain.RequestType(in.Type),
		Status:            domain.RequestPending,
		CustomerName:      strings.TrimSpace(in.CustomerName),
		CustomerEmail:     in.CustomerEmail,
		CustomerPhone:     in.CustomerPhone,
		VehicleMake:       in.VehicleMake,
		VehicleModel:      in.VehicleModel,
		VehicleColor:      in.VehicleColor,
		VehiclePlate:      in.VehiclePlate,
		RequestedStart:    in.RequestedStart.UTC(),
		RequestedEnd:      in.RequestedEnd.UTC(),
		EstimatedAmount:   pricing.Round2(in.EstimatedAmount),
		OriginalBookingID: in.OriginalBookingID,
		CreatedBy:         actor.UserID,
		Notes:             in.Notes,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := booking.RequireStaff(ctx, tx, actor.UserID); err != nil {
			return err
		}

		needsOriginal := req.Type == domain.RequestExtension || req.Type == domain.RequestEarlyCheckout
		switch {
		case needsOriginal && req.OriginalBookingID == nil:
			return bookingdomain.ErrBookingNotFound
		case !needsOriginal && req.OriginalBookingID != nil:
			return bookingdomain.ErrInvalidRequestState
		}

		if req.OriginalBookingID != nil {
			original, err := tx.Bookings.GetByID(ctx, *req.OriginalBookingID)
			if err != nil {
				if repository.IsNotFound(err) {
					return bookingdomain.ErrBookingNotFound
				}
				return err
			}
			req.LocationID = original.LocationID
			if req.Type == domain.RequestEarlyCheckout {
				req.RequestedStart = original.CheckIn
				if req.RequestedEnd.IsZero() {
					req.RequestedEnd = s.clock()
				}
				return tx.Requests.Create(ctx, req)
			}
			if req.RequestedStart.IsZero() {
				req.RequestedStart = original.CheckOut
			}
			if req.CustomerName == "" {
				req.CustomerName = strings.TrimSpace(original.GuestFirstName + " " + original.GuestLastName)
			}
		}

		if req.Type == domain.RequestWalkIn && req.RequestedStart.IsZero() {
			req.RequestedStart = s.clock()
		}
		if !availability.ValidRange(req.RequestedStart, req.RequestedEnd) {
			return bookingdomain.ErrInvalidDateRange
		}

		loc, err := tx.Locations.GetByID(ctx, req.LocationID)
		if err != nil {
			if repository.IsNotFound(err) {
				return bookingdomain.ErrLocationUnavailable
			}
			return err
		}
		if !loc.IsActive() {
			return bookingdomain.ErrLocationUnavailable
		}

		if req.EstimatedAmount == 0 {
			rules, err := tx.Locations.ListPricingRules(ctx, loc.ID)
			if err != nil {
				return err
			}
			req.EstimatedAmount = pricing.Compute(pricing.Input{
				BasePricePerDay: loc.BasePricePerDay,
				Rules:           rules,
				CheckIn:         req.RequestedStart,
				CheckOut:        req.RequestedEnd,
			}).Subtotal
		}

		return tx.Requests.Create(ctx, req)
	})
	if err != nil {
		s.logFailure("create request", err, logrus.Fields{"location_id": in.LocationID, "type": in.Type})
		return nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{"request_id": req.ID, "type": req.Type, "estimated": req.EstimatedAmount}).Info("booking request created")
	return req, nil
}

// ConvertRequestToBooking turns a PENDING walk-in or modification request
// into a CONFIRMED booking. A request converts at most once.
func (s *Service) ConvertRequestToBooking(ctx context.Context, requestID, staffID int64) (*domain.BookingRequest, *domain.Booking, error) {
	now := s.clock()

	var (
		req     *domain.BookingRequest
		created *domain.Booking
		loc     *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := booking.RequireStaff(ctx, tx, staffID); err != nil {
			return err
		}
		peek, err := getRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if peek.OriginalBookingID != nil || (peek.Type != domain.RequestWalkIn && peek.Type != domain.RequestModification) {
			return bookingdomain.ErrInvalidRequestState
		}

		loc, err = booking.LockActiveLocation(ctx, tx, peek.LocationID)
		if err != nil {
			return err
		}
		req, err = lockPendingRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		checkIn, checkOut := req.RequestedStart.UTC(), req.RequestedEnd.UTC()
		if !availability.ValidRange(checkIn, checkOut) {
			return bookingdomain.ErrInvalidDateRange
		}
		q := availability.Query{LocationID: loc.ID, CheckIn: checkIn, CheckOut: checkOut}
		if _, err := booking.EnsureCapacity(ctx, tx, loc, q); err != nil {
			return err
		}

		rule, err := tx.Commissions.GetActive(ctx)
		if err != nil {
			return err
		}
		estimated := pricing.Round2(req.EstimatedAmount)
		taxes := pricing.Taxes(estimated)
		commission := pricing.Commission(rule, estimated)

		first, last := SplitName(req.CustomerName)
		b := &domain.Booking{
			LocationID:     loc.ID,
			CheckIn:        checkIn,
			CheckOut:       checkOut,
			GuestFirstName: first,
			GuestLastName:  last,
			GuestEmail:     req.CustomerEmail,
			GuestPhone:     req.CustomerPhone,
			VehicleMake:    orPlaceholder(req.VehicleMake),
			VehicleModel:   orPlaceholder(req.VehicleModel),
			VehicleColor:   orPlaceholder(req.VehicleColor),
			VehiclePlate:   req.VehiclePlate,
			Subtotal:       estimated,
			Taxes:          taxes,
			TotalPrice:     pricing.Add(estimated, taxes),
			Commission:     commission,
			OwnerEarnings:  pricing.Sub(estimated, commission),
			Status:         domain.BookingConfirmed,
		}

		nb := booking.NewBooking{
			Booking:       b,
			Payment:       domain.Payment{Provider: domain.ProviderOnSite, Status: domain.PaymentPending},
			SessionStatus: domain.SessionReserved,
			Now:           now,
		}
		if req.Type == domain.RequestWalkIn && !checkIn.After(now) {
			nb.SessionStatus = domain.SessionCheckedIn
			nb.CheckedInBy = &staffID
		}
		if err := booking.PersistBooking(ctx, tx, nb); err != nil {
			return err
		}
		if err := booking.CreditOwner(tx, loc, b.ID, b.OwnerEarnings, wallet.TransactionTypeEarning, wallet.EarningReference(b.ID)); err != nil {
			return err
		}

		markApproved(req, staffID, now)
		req.BookingID = &b.ID
		if err := tx.Requests.Save(ctx, req); err != nil {
			return err
		}

		created = b
		return nil
	})
	if err != nil {
		s.logFailure("convert request", err, logrus.Fields{"request_id": requestID, "staff_id": staffID})
		return nil, nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"booking_id": created.ID,
		"total":      created.TotalPrice,
	}).Info("request converted to booking")

	s.effects.AfterCommit(ctx, loc, created, notification.TypeRequestConverted, "")
	return req, created, nil
}

// HandleExtensionRequest moves the original booking's check-out to the
// requested end and adds the estimated amount to its price.
func (s *Service) HandleExtensionRequest(ctx context.Context, requestID, staffID int64) (*domain.BookingRequest, *domain.Booking, error) {
	now := s.clock()

	var (
		req *domain.BookingRequest
		out *domain.Booking
		loc *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := booking.RequireStaff(ctx, tx, staffID); err != nil {
			return err
		}
		peek, err := getRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if peek.Type != domain.RequestExtension {
			return bookingdomain.ErrInvalidRequestState
		}
		if peek.OriginalBookingID == nil {
			return bookingdomain.ErrBookingNotFound
		}

		l, b, err := booking.LockBooking(ctx, tx, *peek.OriginalBookingID)
		if err != nil {
			return err
		}
		req, err = lockPendingRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingPending && b.Status != domain.BookingConfirmed {
			return bookingdomain.ErrInvalidStateTransition
		}

		newEnd := req.RequestedEnd.UTC()
		if !newEnd.After(b.CheckOut) {
			return bookingdomain.ErrInvalidDateRange
		}
		q := availability.Query{LocationID: l.ID, CheckIn: b.CheckOut, CheckOut: newEnd, ExcludeBookingID: b.ID}
		if _, err := booking.EnsureCapacity(ctx, tx, l, q); err != nil {
			return err
		}

		rule, err := tx.Commissions.GetActive(ctx)
		if err != nil {
			return err
		}
		increment := pricing.Round2(req.EstimatedAmount)
		commission := pricing.Commission(rule, increment)
		earnings := pricing.Sub(increment, commission)

		b.CheckOut = newEnd
		b.Subtotal = pricing.Add(b.Subtotal, increment)
		b.TotalPrice = pricing.Add(b.TotalPrice, increment)
		b.Commission = pricing.Add(b.Commission, commission)
		b.OwnerEarnings = pricing.Add(b.OwnerEarnings, earnings)
		if err := tx.Bookings.Save(ctx, b); err != nil {
			return err
		}
		// A PENDING booking keeps its RESERVED session until it is confirmed.
		if b.Status == domain.BookingConfirmed {
			if err := booking.CreditOwner(tx, l, b.ID, earnings, wallet.TransactionTypeExtension, wallet.ExtensionReference(req.ID)); err != nil {
				return err
			}
			if err := ensureCheckedIn(ctx, tx, b, staffID, now); err != nil {
				return err
			}
		}

		markApproved(req, staffID, now)
		if err := tx.Requests.Save(ctx, req); err != nil {
			return err
		}

		out, loc = b, l
		return nil
	})
	if err != nil {
		s.logFailure("extend booking", err, logrus.Fields{"request_id": requestID, "staff_id": staffID})
		return nil, nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{"request_id": req.ID, "booking_id": out.ID, "check_out": out.CheckOut}).Info("booking extended")
	s.effects.AfterCommit(ctx, loc, out, notification.TypeBookingExtended, "")
	return req, out, nil
}

// HandleEarlyCheckoutRequest shortens the original booking to the requested
// end and completes it. The price is unchanged.
func (s *Service) HandleEarlyCheckoutRequest(ctx context.Context, requestID, staffID int64) (*domain.BookingRequest, *domain.Booking, error) {
	now := s.clock()

	var (
		req *domain.BookingRequest
		out *domain.Booking
		loc *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := booking.RequireStaff(ctx, tx, staffID); err != nil {
			return err
		}
		peek, err := getRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if peek.Type != domain.RequestEarlyCheckout {
			return bookingdomain.ErrInvalidRequestState
		}
		if peek.OriginalBookingID == nil {
			return bookingdomain.ErrBookingNotFound
		}

		l, b, err := booking.LockBooking(ctx, tx, *peek.OriginalBookingID)
		if err != nil {
			return err
		}
		req, err = lockPendingRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		end := req.RequestedEnd.UTC()
		if end.IsZero() {
			end = now
		}
		if !end.After(b.CheckIn) || end.After(b.CheckOut) {
			return bookingdomain.ErrInvalidDateRange
		}

		b.CheckOut = end
		if err := booking.CompleteTx(ctx, tx, b, now, &staffID); err != nil {
			return err
		}

		markApproved(req, staffID, now)
		if err := tx.Requests.Save(ctx, req); err != nil {
			return err
		}

		out, loc = b, l
		return nil
	})
	if err != nil {
		s.logFailure("early checkout", err, logrus.Fields{"request_id": requestID, "staff_id": staffID})
		return nil, nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{"request_id": req.ID, "booking_id": out.ID}).Info("booking checked out early")
	s.effects.AfterCommit(ctx, loc, out, notification.TypeBookingCompleted, "")
	return req, out, nil
}

// RejectRequest closes a PENDING request without touching any booking.
func (s *Service) RejectRequest(ctx context.Context, requestID, staffID int64, reason string) (*domain.BookingRequest, error) {
	now := s.clock()

	var req *domain.BookingRequest
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := booking.RequireStaff(ctx, tx, staffID); err != nil {
			return err
		}
		if _, err := getRequest(ctx, tx, requestID); err != nil {
			return err
		}
		var err error
		req, err = lockPendingRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		req.Status = domain.RequestRejected
		req.RejectionReason = reason
		req.ProcessedBy = &staffID
		req.ProcessedAt = &now
		return tx.Requests.Save(ctx, req)
	})
	if err != nil {
		s.logFailure("reject request", err, logrus.Fields{"request_id": requestID, "staff_id": staffID})
		return nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithField("request_id", req.ID).Info("booking request rejected")
	return req, nil
}

// SplitName splits on the first run of whitespace. The last name may be
// empty.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	i := strings.IndexFunc(full, unicode.IsSpace)
	if i < 0 {
		return full, ""
	}
	return full[:i], strings.TrimSpace(full[i:])
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return VehiclePlaceholder
	}
	return v
}

func getRequest(ctx context.Context, tx *repository.Store, id int64) (*domain.BookingRequest, error) {
	req, err := tx.Requests.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, bookingdomain.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// lockPendingRequest re-reads the request under lock. The BookingID check
// is what keeps conversion to a single booking.
func lockPendingRequest(ctx context.Context, tx *repository.Store, id int64) (*domain.BookingRequest, error) {
	req, err := tx.Requests.GetForUpdate(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, bookingdomain.ErrRequestNotFound
		}
		return nil, err
	}
	if req.Status != domain.RequestPending || req.BookingID != nil {
		return nil, bookingdomain.ErrInvalidRequestState
	}
	return req, nil
}

func markApproved(req *domain.BookingRequest, staffID int64, now time.Time) {
	req.Status = domain.RequestApproved
	req.ProcessedBy = &staffID
	req.ProcessedAt = &now
}

// ensureCheckedIn puts the booking's session back into CHECKED_IN.
func ensureCheckedIn(ctx context.Context, tx *repository.Store, b *domain.Booking, staffID int64, now time.Time) error {
	session, err := tx.Sessions.GetByBookingIDForUpdate(ctx, b.ID)
	if err != nil {
		if !repository.IsNotFound(err) {
			return err
		}
		return tx.Sessions.Create(ctx, &domain.ParkingSession{
			BookingID:   b.ID,
			LocationID:  b.LocationID,
			Status:      domain.SessionCheckedIn,
			CheckedInAt: &now,
			CheckedInBy: &staffID,
		})
	}
	if session.Status == domain.SessionCheckedIn {
		return nil
	}
	session.Status = domain.SessionCheckedIn
	if session.CheckedInAt == nil {
		session.CheckedInAt = &now
		session.CheckedInBy = &staffID
	}
	session.CheckedOutAt = nil
	session.CheckedOutBy = nil
	return tx.Sessions.Save(ctx, session)
}

func (s *Service) logFailure(op string, err error, fields logrus.Fields) {
	entry := s.log.WithFields(fields).WithField("err", err)
	if bookingdomain.IsDomainError(err) {
		entry.Info(op + " rejected")
		return
	}
	entry.Error(op + " failed")
}
