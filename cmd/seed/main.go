package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkspot/internal/config"
	"parkspot/internal/database"
	"parkspot/internal/domain"
	"parkspot/internal/modules/booking"
	jwtsvc "parkspot/internal/pkg/jwt"
	"parkspot/internal/pkg/logger"
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
		log.WithError(err).Fatal("DB connection failed")
	}

	log.Info("running AutoMigrate")
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("AutoMigrate failed")
	}

	// Cleanup old data (children first)
	log.Info("cleaning old data")
	for _, table := range []string{
		"wallet_transactions", "owner_wallets", "location_analytics", "refund_requests",
		"booking_requests", "parking_sessions", "payments", "bookings",
		"pricing_rules", "locations", "promotions", "commission_rules", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	// ================== USERS ==================
	users := []domain.User{
		{ID: 1, Email: "admin@parkspot.dev", Name: "Platform Admin", Role: domain.RoleAdmin},
		{ID: 2, Email: "owner@parkspot.dev", Name: "Olivia Owner", Role: domain.RoleOwner},
		{ID: 3, Email: "staff@parkspot.dev", Name: "Sam Attendant", Role: domain.RoleStaff},
		{ID: 4, Email: "alex@example.com", Name: "Alex Traveler", Role: domain.RoleCustomer},
		{ID: 5, Email: "jamie@example.com", Name: "Jamie Flyer", Role: domain.RoleCustomer},
	}
	// Upsert by primary key ID so reruns keep ids stable for the printed tokens.
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "role", "updated_at"}),
	}).Create(&users).Error; err != nil {
		log.WithError(err).Fatal("creating users failed")
	}

	// ================== LOCATIONS ==================
	owner := users[1]
	summerStart := time.Date(time.Now().Year(), 6, 1, 0, 0, 0, 0, time.UTC)
	summerEnd := time.Date(time.Now().Year(), 9, 1, 0, 0, 0, 0, time.UTC)

	locations := []domain.Location{
		{
			OwnerID: owner.ID, Name: "Airport Economy Lot", Address: "1 Terminal Rd", AirportCode: "ALA",
			TotalSpots: 120, AvailableSpots: 120, BasePricePerDay: 12.5, Status: domain.LocationActive,
			CancellationPolicyType: domain.PolicyFree, CancellationPolicyHours: 24,
			PricingRules: []domain.PricingRule{
				{Name: "Summer peak", Multiplier: 1.25, StartDate: &summerStart, EndDate: &summerEnd, IsActive: true, Position: 1},
			},
		},
		{
			OwnerID: owner.ID, Name: "Terminal Covered Garage", Address: "3 Terminal Rd", AirportCode: "ALA",
			TotalSpots: 40, AvailableSpots: 40, BasePricePerDay: 25, Status: domain.LocationActive,
			CancellationPolicyType: domain.PolicyModerate, CancellationPolicyHours: 48,
		},
		{
			OwnerID: owner.ID, Name: "Valet Premium", Address: "Arrivals Level", AirportCode: "ALA",
			TotalSpots: 10, AvailableSpots: 10, BasePricePerDay: 45, Status: domain.LocationActive,
			CancellationPolicyType: domain.PolicyStrict,
		},
		{
			OwnerID: owner.ID, Name: "Old North Lot", Address: "North Access Rd", AirportCode: "ALA",
			TotalSpots: 60, AvailableSpots: 60, BasePricePerDay: 8, Status: domain.LocationInactive,
		},
	}
	if err := db.Create(&locations).Error; err != nil {
		log.WithError(err).Fatal("creating locations failed")
	}

	// ================== PROMOTIONS & COMMISSION ==================
	if err := db.Create(&[]domain.Promotion{
		{Code: "WELCOME10", Type: domain.AdjustmentPercentage, Value: 10, IsActive: true, ExpiresAt: time.Now().AddDate(1, 0, 0)},
		{Code: "FLAT5", Type: domain.AdjustmentFixed, Value: 5, IsActive: true, ExpiresAt: time.Now().AddDate(0, 3, 0)},
		{Code: "EXPIRED", Type: domain.AdjustmentPercentage, Value: 50, IsActive: true, ExpiresAt: time.Now().AddDate(0, -1, 0)},
	}).Error; err != nil {
		log.WithError(err).Fatal("creating promotions failed")
	}
	if err := db.Create(&domain.CommissionRule{Type: domain.AdjustmentPercentage, Value: 15, IsActive: true}).Error; err != nil {
		log.WithError(err).Fatal("creating commission rule failed")
	}

	// ================== BOOKINGS ==================
	seedBookings(db, log, locations[0].ID, users[3], users[4])

	// ================== TOKENS ==================
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	for _, u := range users {
		token, err := j.GenerateToken(u.ID, string(u.Role))
		if err != nil {
			log.WithError(err).Fatal("token generation failed")
		}
		fmt.Printf("%-8s %-22s %s\n", u.Role, u.Email, token)
	}

	log.Info("seed completed")
}

// seedBookings goes through the booking service so prices, inventory and
// analytics line up with what the API would produce.
func seedBookings(db *gorm.DB, log logrus.FieldLogger, locationID int64, customers ...domain.User) {
	ctx := context.Background()
	svc := booking.NewService(repository.NewStore(db), log)
	start := time.Now().UTC().Truncate(time.Hour).Add(72 * time.Hour)

	for i, c := range customers {
		actor := domain.Actor{UserID: c.ID, Role: c.Role}
		b, err := svc.CreateBooking(ctx, actor, booking.CreateBookingRequest{
			LocationID:     locationID,
			CheckIn:        start.Add(time.Duration(i) * 24 * time.Hour),
			CheckOut:       start.Add(time.Duration(i+3) * 24 * time.Hour),
			GuestFirstName: c.Name,
			GuestEmail:     c.Email,
			VehiclePlate:   fmt.Sprintf("SEED%03d", i+1),
			PromoCode:      []string{"", "WELCOME10"}[i%2],
		})
		if err != nil {
			log.WithError(err).Fatal("creating booking failed")
		}
		if i == 0 {
			if _, err := svc.ApproveBooking(ctx, domain.Actor{UserID: 1, Role: domain.RoleAdmin}, b.ID); err != nil {
				log.WithError(err).Fatal("approving booking failed")
			}
		}
		log.WithFields(logrus.Fields{"code": b.ConfirmationCode, "total": b.TotalPrice}).Info("booking created")
	}
}
