package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"parkspot/internal/config"
	"parkspot/internal/database"
	"parkspot/internal/modules/booking"
	"parkspot/internal/notification"
	"parkspot/internal/pkg/logger"
	"parkspot/internal/pkg/queue"
	"parkspot/internal/repository"
)

// booking_sweeper completes CONFIRMED bookings whose check-out passed more
// than SWEEP_GRACE ago without a staff check-out.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}

	opts := []booking.Option{}
	var dispatcher *notification.Dispatcher
	if cfg.RabbitMQURL != "" {
		pub, err := queue.NewPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, owner notifications disabled")
		} else {
			defer pub.Close()
			dispatcher = notification.NewDispatcher(pub, log, cfg.NotifyTimeout)
			opts = append(opts, booking.WithNotifier(dispatcher))
		}
	}
	svc := booking.NewService(repository.NewStore(db), log, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		sweep(ctx, svc, cfg, log)
		select {
		case <-ctx.Done():
			if dispatcher != nil {
				dispatcher.Wait()
			}
			log.Info("booking sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func sweep(ctx context.Context, svc *booking.Service, cfg *config.Config, log logrus.FieldLogger) {
	for {
		n, err := svc.CompleteDue(ctx, cfg.SweepGrace, cfg.SweepBatch)
		if err != nil {
			log.WithError(err).Error("booking sweep failed")
			return
		}
		log.WithField("completed", n).Info("booking sweep pass")
		if n < cfg.SweepBatch {
			return
		}
	}
}
