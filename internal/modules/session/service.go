package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"parkspot/internal/domain"
	bookingdomain "parkspot/internal/domain/booking"
	"parkspot/internal/modules/booking"
	"parkspot/internal/notification"
	"parkspot/internal/repository"
)

// Service moves parking sessions on staff action. Check-out also completes
// the booking.
type Service struct {
	store   *repository.Store
	effects booking.Effects
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewService(store *repository.Store, effects booking.Effects, log logrus.FieldLogger) *Service {
	return &Service{store: store, effects: effects, log: log, now: time.Now}
}

func (s *Service) Get(ctx context.Context, bookingID int64) (*domain.ParkingSession, error) {
	ps, err := s.store.Sessions.GetByBookingID(ctx, bookingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, bookingdomain.ErrSessionNotFound
		}
		return nil, bookingdomain.StorageFailure(err)
	}
	return ps, nil
}

// CheckIn marks the vehicle of a CONFIRMED booking as on the lot.
func (s *Service) CheckIn(ctx context.Context, bookingID, staffID int64) (*domain.ParkingSession, error) {
	now := s.now().UTC()

	var out *domain.ParkingSession
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := booking.RequireStaff(ctx, tx, staffID); err != nil {
			return err
		}
		_, b, err := booking.LockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingConfirmed {
			return bookingdomain.ErrInvalidStateTransition
		}
		ps, err := lockSession(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		if ps.Status != domain.SessionReserved {
			return bookingdomain.ErrInvalidSessionState
		}

		ps.Status = domain.SessionCheckedIn
		ps.CheckedInAt = &now
		ps.CheckedInBy = &staffID
		if err := tx.Sessions.Save(ctx, ps); err != nil {
			return err
		}
		out = ps
		return nil
	})
	if err != nil {
		s.logFailure("check in", err, bookingID, staffID)
		return nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": bookingID, "staff_id": staffID}).Info("vehicle checked in")
	return out, nil
}

// CheckOut closes a CHECKED_IN session and completes its booking.
func (s *Service) CheckOut(ctx context.Context, bookingID, staffID int64) (*domain.ParkingSession, *domain.Booking, error) {
	now := s.now().UTC()

	var (
		out *domain.ParkingSession
		b   *domain.Booking
		loc *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := booking.RequireStaff(ctx, tx, staffID); err != nil {
			return err
		}
		l, locked, err := booking.LockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		ps, err := lockSession(ctx, tx, locked.ID)
		if err != nil {
			return err
		}
		if ps.Status != domain.SessionCheckedIn {
			return bookingdomain.ErrInvalidSessionState
		}

		if err := booking.CompleteTx(ctx, tx, locked, now, &staffID); err != nil {
			return err
		}
		out, err = tx.Sessions.GetByBookingID(ctx, locked.ID)
		if err != nil {
			return err
		}
		b, loc = locked, l
		return nil
	})
	if err != nil {
		s.logFailure("check out", err, bookingID, staffID)
		return nil, nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": bookingID, "staff_id": staffID}).Info("vehicle checked out")
	s.effects.AfterCommit(ctx, loc, b, notification.TypeBookingCompleted, "")
	return out, b, nil
}

func lockSession(ctx context.Context, tx *repository.Store, bookingID int64) (*domain.ParkingSession, error) {
	ps, err := tx.Sessions.GetByBookingIDForUpdate(ctx, bookingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, bookingdomain.ErrSessionNotFound
		}
		return nil, err
	}
	return ps, nil
}

func (s *Service) logFailure(op string, err error, bookingID, staffID int64) {
	entry := s.log.WithFields(logrus.Fields{"booking_id": bookingID, "staff_id": staffID, "err": err})
	if bookingdomain.IsDomainError(err) {
		entry.Info(op + " rejected")
		return
	}
	entry.Error(op + " failed")
}
