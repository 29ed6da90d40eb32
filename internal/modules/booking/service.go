package booking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"parkspot/internal/domain"
	"parkspot/internal/domain/availability"
	bookingdomain "parkspot/internal/domain/booking"
	"parkspot/internal/domain/pricing"
	"parkspot/internal/notification"
	"parkspot/internal/repository"
)

const sideEffectTimeout = 3 * time.Second

type Service struct {
	store    *repository.Store
	notifier Notifier
	cache    AvailabilityCache
	log      logrus.FieldLogger
	now      func() time.Time
	newCode  func(time.Time) string
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithCache(c AvailabilityCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCodeGenerator(gen func(time.Time) string) Option {
	return func(s *Service) { s.newCode = gen }
}

func NewService(store *repository.Store, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// CreateBooking reserves a spot and records the booking, its payment, its
// parking session, analytics and inventory in one transaction. The owner is
// notified after commit.
func (s *Service) CreateBooking(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.Booking, error) {
	checkIn, checkOut := req.CheckIn.UTC(), req.CheckOut.UTC()
	if !availability.ValidRange(checkIn, checkOut) {
		return nil, bookingdomain.ErrInvalidDateRange
	}
	if req.Payment != nil && !req.Payment.Success {
		return nil, bookingdomain.ErrPaymentDeclined
	}
	now := s.clock()

	var (
		created *domain.Booking
		loc     *domain.Location
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		loc, err = LockActiveLocation(ctx, tx, req.LocationID)
		if err != nil {
			return err
		}

		q := availability.Query{LocationID: loc.ID, CheckIn: checkIn, CheckOut: checkOut}
		if _, err := EnsureCapacity(ctx, tx, loc, q); err != nil {
			return err
		}

		promo, err := loadPromotion(ctx, tx, req.PromoCode, now)
		if err != nil {
			return err
		}
		commission, err := tx.Commissions.GetActive(ctx)
		if err != nil {
			return err
		}
		rules, err := tx.Locations.ListPricingRules(ctx, loc.ID)
		if err != nil {
			return err
		}

		price := pricing.Compute(pricing.Input{
			BasePricePerDay: loc.BasePricePerDay,
			Rules:           rules,
			CheckIn:         checkIn,
			CheckOut:        checkOut,
			Promotion:       promo,
			Commission:      commission,
		})

		b := &domain.Booking{
			UserID:         actor.UserIDPtr(),
			LocationID:     loc.ID,
			CheckIn:        checkIn,
			CheckOut:       checkOut,
			GuestFirstName: req.GuestFirstName,
			GuestLastName:  req.GuestLastName,
			GuestEmail:     req.GuestEmail,
			GuestPhone:     req.GuestPhone,
			VehicleMake:    req.VehicleMake,
			VehicleModel:   req.VehicleModel,
			VehicleColor:   req.VehicleColor,
			VehiclePlate:   req.VehiclePlate,
			Subtotal:       price.Subtotal,
			Discount:       price.Discount,
			Taxes:          price.Taxes,
			Fees:           price.Fees,
			TotalPrice:     price.Total,
			Commission:     price.Commission,
			OwnerEarnings:  price.OwnerEarnings,
			Status:         domain.BookingPending,
		}
		if promo != nil {
			b.PromotionID = &promo.ID
		}

		if err := PersistBooking(ctx, tx, NewBooking{
			Booking:       b,
			Payment:       paymentFor(req.Payment),
			SessionStatus: domain.SessionReserved,
			Now:           now,
			NewCode:       s.newCode,
		}); err != nil {
			return err
		}

		if promo != nil {
			if err := tx.Promotions.IncrementUsage(ctx, promo.ID); err != nil {
				return err
			}
		}

		created = b
		return nil
	})
	if err != nil {
		s.logFailure("create booking", err, logrus.Fields{"location_id": req.LocationID})
		return nil, bookingdomain.StorageFailure(err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":        created.ID,
		"location_id":       created.LocationID,
		"confirmation_code": created.ConfirmationCode,
		"total":             created.TotalPrice,
	}).Info("booking created")

	s.afterCommit(ctx, loc, created, notification.TypeBookingCreated, "")
	return created, nil
}

func loadPromotion(ctx context.Context, tx *repository.Store, code string, now time.Time) (*domain.Promotion, error) {
	code = domain.NormalizePromoCode(code)
	if code == "" {
		return nil, nil
	}
	promo, err := tx.Promotions.GetByCode(ctx, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, bookingdomain.ErrInvalidPromotion
		}
		return nil, err
	}
	if !promo.IsValidAt(now) {
		return nil, bookingdomain.ErrInvalidPromotion
	}
	return promo, nil
}

func paymentFor(pc *PaymentConfirmation) domain.Payment {
	if pc == nil {
		return domain.Payment{Provider: domain.ProviderGateway, Status: domain.PaymentPending}
	}
	return domain.Payment{
		Provider:       domain.ProviderGateway,
		TransactionRef: pc.TransactionID,
		Status:         domain.PaymentSuccess,
	}
}

// Quote prices a stay without reserving anything.
func (s *Service) Quote(ctx context.Context, locationID int64, checkIn, checkOut time.Time, promoCode string) (*pricing.Breakdown, error) {
	checkIn, checkOut = checkIn.UTC(), checkOut.UTC()
	if !availability.ValidRange(checkIn, checkOut) {
		return nil, bookingdomain.ErrInvalidDateRange
	}

	var out pricing.Breakdown
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		loc, err := tx.Locations.GetByID(ctx, locationID)
		if err != nil {
			if repository.IsNotFound(err) {
				return bookingdomain.ErrLocationUnavailable
			}
			return err
		}
		if !loc.IsActive() {
			return bookingdomain.ErrLocationUnavailable
		}
		promo, err := loadPromotion(ctx, tx, promoCode, s.clock())
		if err != nil {
			return err
		}
		commission, err := tx.Commissions.GetActive(ctx)
		if err != nil {
			return err
		}
		rules, err := tx.Locations.ListPricingRules(ctx, loc.ID)
		if err != nil {
			return err
		}
		out = pricing.Compute(pricing.Input{
			BasePricePerDay: loc.BasePricePerDay,
			Rules:           rules,
			CheckIn:         checkIn,
			CheckOut:        checkOut,
			Promotion:       promo,
			Commission:      commission,
		})
		return nil
	})
	if err != nil {
		return nil, bookingdomain.StorageFailure(err)
	}
	return &out, nil
}

// Availability reports capacity for a range, served from cache when possible.
func (s *Service) Availability(ctx context.Context, locationID int64, checkIn, checkOut time.Time) (availability.Result, error) {
	checkIn, checkOut = checkIn.UTC(), checkOut.UTC()
	if !availability.ValidRange(checkIn, checkOut) {
		return availability.Result{}, bookingdomain.ErrInvalidDateRange
	}
	q := availability.Query{LocationID: locationID, CheckIn: checkIn, CheckOut: checkOut}

	if s.cache != nil {
		if res, ok := s.cache.Get(ctx, q); ok {
			return res, nil
		}
	}

	loc, err := s.store.Locations.GetByID(ctx, locationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return availability.Result{}, bookingdomain.ErrLocationUnavailable
		}
		return availability.Result{}, bookingdomain.StorageFailure(err)
	}
	res, err := availability.Checker{}.Check(ctx, s.store.Bookings, loc.TotalSpots, q)
	if err != nil {
		return availability.Result{}, bookingdomain.StorageFailure(err)
	}
	if !loc.IsActive() {
		res.Remaining = 0
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, q, res); err != nil {
			s.log.WithFields(logrus.Fields{"location_id": locationID, "err": err}).Warn("availability cache write failed")
		}
	}
	return res, nil
}

// GetBooking returns a booking visible to actor: its guest, the location
// owner, staff or an admin.
func (s *Service) GetBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	b, err := s.store.Bookings.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, bookingdomain.ErrBookingNotFound
		}
		return nil, bookingdomain.StorageFailure(err)
	}
	if actor.IsStaff() || b.IsOwnedBy(actor.UserID) {
		return b, nil
	}
	loc, err := s.store.Locations.GetByID(ctx, b.LocationID)
	if err != nil {
		return nil, bookingdomain.StorageFailure(err)
	}
	if loc.OwnerID != actor.UserID {
		return nil, bookingdomain.ErrUnauthorized
	}
	return b, nil
}

// ListBookings scopes the filter to what actor may see.
func (s *Service) ListBookings(ctx context.Context, actor domain.Actor, f repository.BookingFilter) ([]domain.Booking, error) {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleStaff:
	case domain.RoleOwner:
		f.OwnerID = actor.UserID
	default:
		if actor.IsGuest() {
			return nil, bookingdomain.ErrUnauthorized
		}
		f.UserID = actor.UserID
	}
	out, err := s.store.Bookings.List(ctx, f)
	if err != nil {
		return nil, bookingdomain.StorageFailure(err)
	}
	return out, nil
}

// Effects exposes the service's side effects to the services that share its
// transactions.
func (s *Service) Effects() Effects {
	return Effects{Notifier: s.notifier, Cache: s.cache, Log: s.log}
}

func (s *Service) afterCommit(ctx context.Context, loc *domain.Location, b *domain.Booking, eventType, reason string) {
	s.Effects().AfterCommit(ctx, loc, b, eventType, reason)
}

func (s *Service) logFailure(op string, err error, fields logrus.Fields) {
	entry := s.log.WithFields(fields).WithField("err", err)
	if bookingdomain.IsDomainError(err) {
		entry.Info(op + " rejected")
		return
	}
	entry.Error(op + " failed")
}
