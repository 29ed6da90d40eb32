package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"parkspot/internal/domain"
	"parkspot/internal/domain/wallet"
	"parkspot/internal/middleware"
	"parkspot/internal/modules/booking"
	"parkspot/internal/modules/refund"
	"parkspot/internal/modules/request"
	"parkspot/internal/modules/session"
	jwtsvc "parkspot/internal/pkg/jwt"
)

type routerDeps struct {
	log         logrus.FieldLogger
	db          *gorm.DB
	jwt         *jwtsvc.Service
	corsOrigins []string

	bookings *booking.Service
	requests *request.Service
	sessions *session.Service
	refunds  *refund.Service
	wallets  *wallet.Service
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.log))
	if len(d.corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	bookingHandler := booking.NewHandler(d.bookings)

	v1 := r.Group("/api/v1")
	{
		// public
		bookingHandler.RegisterPublicRoutes(v1, middleware.OptionalJWTAuth(d.jwt))

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.jwt))
		{
			bookingHandler.RegisterRoutes(protected)
			wallet.NewHandler(d.wallets).RegisterRoutes(protected)
		}

		staff := v1.Group("/staff")
		staff.Use(middleware.JWTAuth(d.jwt), middleware.RequireRole(string(domain.RoleStaff), string(domain.RoleAdmin)))
		{
			request.NewHandler(d.requests).RegisterRoutes(staff)
			session.NewHandler(d.sessions).RegisterRoutes(staff)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(d.jwt), middleware.AdminOnly())
		{
			refund.NewHandler(d.refunds).RegisterRoutes(admin)
		}
	}

	return r
}
