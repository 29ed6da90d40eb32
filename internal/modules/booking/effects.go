package booking

import (
	"context"

	"github.com/sirupsen/logrus"

	"parkspot/internal/domain"
	"parkspot/internal/notification"
)

// Effects are the post-commit side effects shared by every service that
// writes bookings. Neither may fail the operation that triggered it.
type Effects struct {
	Notifier Notifier
	Cache    AvailabilityCache
	Log      logrus.FieldLogger
}

// AfterCommit invalidates cached availability for the booking's location and
// tells the location owner about the change.
func (e Effects) AfterCommit(ctx context.Context, loc *domain.Location, b *domain.Booking, eventType, reason string) {
	if e.Cache != nil {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
		if err := e.Cache.InvalidateLocation(cctx, b.LocationID); err != nil && e.Log != nil {
			e.Log.WithFields(logrus.Fields{"location_id": b.LocationID, "err": err}).Warn("availability cache invalidation failed")
		}
		cancel()
	}

	if e.Notifier == nil || loc == nil {
		return
	}
	ev := notification.NewEvent(eventType, loc.OwnerID, b.ID, b.LocationID)
	ev.ConfirmationCode = b.ConfirmationCode
	ev.Status = string(b.Status)
	ev.Total = b.TotalPrice
	ev.Reason = reason
	e.Notifier.Dispatch(ev)
}
