package booking

import (
	"context"

	"parkspot/internal/domain/availability"
	"parkspot/internal/notification"
)

// Notifier receives owner events after a transaction commits. Dispatch must
// return immediately.
type Notifier interface {
	Dispatch(e notification.Event)
}

// AvailabilityCache caches the public availability answer. It is never
// consulted when deciding whether a booking may be created.
type AvailabilityCache interface {
	Get(ctx context.Context, q availability.Query) (availability.Result, bool)
	Set(ctx context.Context, q availability.Query, res availability.Result) error
	InvalidateLocation(ctx context.Context, locationID int64) error
}
