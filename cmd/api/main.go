package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"parkspot/internal/config"
	"parkspot/internal/database"
	"parkspot/internal/domain/wallet"
	"parkspot/internal/modules/booking"
	"parkspot/internal/modules/refund"
	"parkspot/internal/modules/request"
	"parkspot/internal/modules/session"
	"parkspot/internal/notification"
	"parkspot/internal/pkg/cache"
	jwtsvc "parkspot/internal/pkg/jwt"
	"parkspot/internal/pkg/logger"
	"parkspot/internal/pkg/queue"
	"parkspot/internal/repository"
)

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
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.WithError(err).Fatal("database migrate failed")
		}
	}
	store := repository.NewStore(db)

	opts := []booking.Option{}

	rdb := cache.NewRedisClient(cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, booking.WithCache(cache.NewAvailabilityCache(rdb, cfg.AvailabilityCacheTTL)))
		log.WithField("addr", cfg.RedisAddr).Info("availability cache enabled")
	} else {
		log.Warn("redis not configured or unreachable, availability cache disabled")
	}

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

	bookingService := booking.NewService(store, log, opts...)
	effects := bookingService.Effects()
	requestService := request.NewService(store, effects, log)
	sessionService := session.NewService(store, effects, log)
	refundService := refund.NewService(store, log)
	walletService := wallet.NewService(db)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(routerDeps{
		log:         log,
		db:          db,
		jwt:         jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		corsOrigins: cfg.CORSAllowedOrigins,
		bookings:    bookingService,
		requests:    requestService,
		sessions:    sessionService,
		refunds:     refundService,
		wallets:     walletService,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http server shutdown failed")
	}
	if dispatcher != nil {
		dispatcher.Wait()
	}
}
