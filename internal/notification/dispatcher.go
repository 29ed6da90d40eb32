package notification

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Dispatcher sends events in the background. Dispatch never blocks and
// never reports failure to the caller; failures are only logged.
type Dispatcher struct {
	pub     Publisher
	log     logrus.FieldLogger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher accepts a nil Publisher, in which case events are dropped.
func NewDispatcher(pub Publisher, log logrus.FieldLogger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{pub: pub, log: log, timeout: timeout}
}

func (d *Dispatcher) Dispatch(e Event) {
	if d.pub == nil {
		d.log.WithFields(logrus.Fields{"event": e.Type, "booking_id": e.BookingID}).Debug("notification publisher disabled, event dropped")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.WithField("panic", r).Error("notification dispatch panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.pub.Publish(ctx, e.Type, e); err != nil {
			d.log.WithFields(logrus.Fields{
				"event":      e.Type,
				"booking_id": e.BookingID,
				"owner_id":   e.OwnerID,
				"err":        err,
			}).Warn("notification dispatch failed")
		}
	}()
}

// Wait blocks until in-flight dispatches finish. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
