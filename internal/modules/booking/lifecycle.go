package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"parkspot/internal/domain"
	bookingdomain "parkspot/internal/domain/booking"
	"parkspot/internal/domain/refund"
	"parkspot/internal/domain/wallet"
	"parkspot/internal/notification"
	"parkspot/internal/repository"
)

// CancelBooking cancels a PENDING or CONFIRMED booking on behalf of its
// guest (or an admin), releases the spot and files a refund request for
// admin review.
func (s *Service) CancelBooking(ctx context.Context, actor domain.Actor, id int64, reason string) (*domain.Booking, *domain.RefundRequest, error) {
	now := s.clock()

	var (
		out *domain.Booking
		rr  *domain.RefundRequest
		loc *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		l, b, err := LockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !b.IsOwnedBy(actor.UserID) {
			return bookingdomain.ErrUnauthorized
		}
		if err := bookingdomain.Transition(b.Status, domain.BookingCancelled); err != nil {
			return err
		}

		var outcome refund.Outcome
		if b.Status == domain.BookingPending {
			outcome = refund.Withdrawal(b.TotalPrice)
		} else {
			outcome = refund.Compute(refund.PolicyFor(l), b.HoursUntilCheckIn(now), b.TotalPrice)
		}

		b.Status = domain.BookingCancelled
		b.CancellationReason = reason
		b.CancelledAt = &now
		if err := tx.Bookings.Save(ctx, b); err != nil {
			return err
		}

		rr = &domain.RefundRequest{
			BookingID:      b.ID,
			OriginalAmount: b.TotalPrice,
			ApprovedAmount: outcome.Amount,
			RefundPercent:  outcome.Percent,
			PolicyType:     l.CancellationPolicyType,
			ManualReview:   outcome.ManualReview,
			Reason:         reason,
			Status:         domain.RefundPending,
		}
		if err := tx.Refunds.Create(ctx, rr); err != nil {
			return err
		}
		if err := tx.Locations.ReleaseSpot(ctx, l.ID); err != nil {
			return err
		}

		out, loc = b, l
		return nil
	})
	if err != nil {
		s.logFailure("cancel booking", err, logrus.Fields{"booking_id": id})
		return nil, nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":    out.ID,
		"refund_amount": rr.ApprovedAmount,
		"manual_review": rr.ManualReview,
	}).Info("booking cancelled")

	s.afterCommit(ctx, loc, out, notification.TypeBookingCancelled, reason)
	return out, rr, nil
}

// ApproveBooking confirms a PENDING booking and credits the owner's wallet
// with the booking's owner earnings.
func (s *Service) ApproveBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	var (
		out *domain.Booking
		loc *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		l, b, err := LockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && l.OwnerID != actor.UserID {
			return bookingdomain.ErrUnauthorized
		}
		if err := bookingdomain.Transition(b.Status, domain.BookingConfirmed); err != nil {
			if errors.Is(err, bookingdomain.ErrAlreadyCancelled) {
				return bookingdomain.ErrInvalidStateTransition
			}
			return err
		}

		b.Status = domain.BookingConfirmed
		if err := tx.Bookings.Save(ctx, b); err != nil {
			return err
		}
		if err := CreditOwner(tx, l, b.ID, b.OwnerEarnings, wallet.TransactionTypeEarning, wallet.EarningReference(b.ID)); err != nil {
			return err
		}

		out, loc = b, l
		return nil
	})
	if err != nil {
		s.logFailure("approve booking", err, logrus.Fields{"booking_id": id})
		return nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": out.ID, "owner_earnings": out.OwnerEarnings}).Info("booking confirmed")
	s.afterCommit(ctx, loc, out, notification.TypeBookingConfirmed, "")
	return out, nil
}

// RejectBooking declines a PENDING booking and releases its spot.
func (s *Service) RejectBooking(ctx context.Context, actor domain.Actor, id int64, reason string) (*domain.Booking, error) {
	var (
		out *domain.Booking
		loc *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		l, b, err := LockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && l.OwnerID != actor.UserID {
			return bookingdomain.ErrUnauthorized
		}
		if err := bookingdomain.Transition(b.Status, domain.BookingRejected); err != nil {
			return err
		}

		b.Status = domain.BookingRejected
		b.RejectionReason = reason
		if err := tx.Bookings.Save(ctx, b); err != nil {
			return err
		}
		if err := tx.Locations.ReleaseSpot(ctx, l.ID); err != nil {
			return err
		}

		out, loc = b, l
		return nil
	})
	if err != nil {
		s.logFailure("reject booking", err, logrus.Fields{"booking_id": id})
		return nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithField("booking_id", out.ID).Info("booking rejected")
	s.afterCommit(ctx, loc, out, notification.TypeBookingRejected, reason)
	return out, nil
}

// CompleteBooking closes a CONFIRMED booking after check-out. by is the
// staff member responsible, nil for the sweeper.
func (s *Service) CompleteBooking(ctx context.Context, id int64, by *int64) (*domain.Booking, error) {
	now := s.clock()

	var (
		out *domain.Booking
		loc *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		l, b, err := LockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := CompleteTx(ctx, tx, b, now, by); err != nil {
			return err
		}
		out, loc = b, l
		return nil
	})
	if err != nil {
		s.logFailure("complete booking", err, logrus.Fields{"booking_id": id})
		return nil, bookingdomain.StorageFailure(err)
	}

	s.afterCommit(ctx, loc, out, notification.TypeBookingCompleted, "")
	return out, nil
}

// CompleteDue completes up to limit CONFIRMED bookings whose check-out passed
// before the grace period. Failures are logged and skipped.
func (s *Service) CompleteDue(ctx context.Context, grace time.Duration, limit int) (int, error) {
	cutoff := s.clock().Add(-grace)
	due, err := s.store.Bookings.ListDueForCompletion(ctx, cutoff, limit)
	if err != nil {
		return 0, bookingdomain.StorageFailure(err)
	}

	done := 0
	for _, b := range due {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if _, err := s.CompleteBooking(ctx, b.ID, nil); err != nil {
			continue
		}
		done++
	}
	return done, nil
}
