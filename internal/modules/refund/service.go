package refund

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"parkspot/internal/domain"
	bookingdomain "parkspot/internal/domain/booking"
	"parkspot/internal/domain/pricing"
	"parkspot/internal/repository"
)

// Service is the admin side of refund requests filed on cancellation.
// Moving money back to the customer happens outside this service.
type Service struct {
	store *repository.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(store *repository.Store, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.RefundRequest, error) {
	status := domain.RefundStatus(strings.ToUpper(strings.TrimSpace(q.Status)))
	out, err := s.store.Refunds.List(ctx, status, q.Limit, q.Offset)
	if err != nil {
		return nil, bookingdomain.StorageFailure(err)
	}
	return out, nil
}

// Approve settles the refund at the suggested amount or at the override,
// capped at what was paid, and marks the booking's payment accordingly.
func (s *Service) Approve(ctx context.Context, adminID, refundID int64, in ApproveRequest) (*domain.RefundRequest, error) {
	now := s.now().UTC()

	var out *domain.RefundRequest
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		rr, err := lockPending(ctx, tx, refundID)
		if err != nil {
			return err
		}

		amount := rr.ApprovedAmount
		if in.Amount != nil {
			amount = *in.Amount
		}
		amount = pricing.Round2(math.Min(math.Max(amount, 0), rr.OriginalAmount))

		rr.Status = domain.RefundApproved
		rr.ApprovedAmount = amount
		if rr.OriginalAmount > 0 {
			rr.RefundPercent = pricing.Ratio(amount, rr.OriginalAmount)
		}
		rr.ReviewedBy = &adminID
		rr.ReviewedAt = &now
		rr.ReviewNote = in.Note
		if err := tx.Refunds.Save(ctx, rr); err != nil {
			return err
		}

		if amount > 0 {
			status := domain.PaymentPartiallyRefunded
			if amount >= rr.OriginalAmount {
				status = domain.PaymentRefunded
			}
			if err := tx.Payments.MarkRefunded(ctx, rr.BookingID, status, amount); err != nil {
				return err
			}
		}

		out = rr
		return nil
	})
	if err != nil {
		s.logFailure("approve refund", err, refundID, adminID)
		return nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{
		"refund_id":  out.ID,
		"booking_id": out.BookingID,
		"amount":     out.ApprovedAmount,
	}).Info("refund approved")
	return out, nil
}

// Reject closes the refund request without paying anything back.
func (s *Service) Reject(ctx context.Context, adminID, refundID int64, note string) (*domain.RefundRequest, error) {
	now := s.now().UTC()

	var out *domain.RefundRequest
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		rr, err := lockPending(ctx, tx, refundID)
		if err != nil {
			return err
		}
		rr.Status = domain.RefundRejected
		rr.ReviewedBy = &adminID
		rr.ReviewedAt = &now
		rr.ReviewNote = note
		if err := tx.Refunds.Save(ctx, rr); err != nil {
			return err
		}
		out = rr
		return nil
	})
	if err != nil {
		s.logFailure("reject refund", err, refundID, adminID)
		return nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{"refund_id": out.ID, "booking_id": out.BookingID}).Info("refund rejected")
	return out, nil
}

func lockPending(ctx context.Context, tx *repository.Store, id int64) (*domain.RefundRequest, error) {
	rr, err := tx.Refunds.GetForUpdate(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, bookingdomain.ErrRefundNotFound
		}
		return nil, err
	}
	if rr.Status != domain.RefundPending {
		return nil, bookingdomain.ErrInvalidStateTransition
	}
	return rr, nil
}

func (s *Service) logFailure(op string, err error, refundID, adminID int64) {
	entry := s.log.WithFields(logrus.Fields{"refund_id": refundID, "admin_id": adminID, "err": err})
	if bookingdomain.IsDomainError(err) {
		entry.Info(op + " rejected")
		return
	}
	entry.Error(op + " failed")
}
