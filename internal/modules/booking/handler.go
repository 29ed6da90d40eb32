package booking

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"parkspot/internal/domain"
	"parkspot/internal/pkg/response"
	"parkspot/internal/pkg/validator"
	"parkspot/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts routes open to guests. optionalAuth resolves
// the caller when a token is present.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, optionalAuth gin.HandlerFunc) {
	rg.POST("/bookings", optionalAuth, h.CreateBooking)

	locations := rg.Group("/locations")
	{
		locations.GET("/:id/quote", h.Quote)
		locations.GET("/:id/availability", h.Availability)
	}
}

// RegisterRoutes mounts routes that require an authenticated caller.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/approve", h.ApproveBooking)
		bookings.POST("/:id/reject", h.RejectBooking)
	}
}

// ActorFrom reads the caller set by the auth middleware. Missing values
// yield a guest.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetInt64("user_id"),
		Role:   domain.UserRole(c.GetString("role")),
	}
}

// ParseID reads a positive int64 path parameter and writes a 400 otherwise.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// BindJSON decodes and validates the body, writing the error response on
// failure.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return false
	}
	if errs := validator.Validate(dst); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, response.CodeValidation, "Validation failed", errs)
		return false
	}
	return true
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if !BindJSON(c, &req) {
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), ActorFrom(c), req)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), ActorFrom(c), id)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters")
		return
	}

	f := repository.BookingFilter{
		LocationID: q.LocationID,
		From:       q.From,
		To:         q.To,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	for _, st := range strings.Split(q.Status, ",") {
		if st = strings.TrimSpace(st); st != "" {
			f.Statuses = append(f.Statuses, domain.BookingStatus(strings.ToUpper(st)))
		}
	}

	items, err := h.service.ListBookings(c.Request.Context(), ActorFrom(c), f)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": items})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	if c.Request.ContentLength > 0 && !BindJSON(c, &req) {
		return
	}

	b, refund, err := h.service.CancelBooking(c.Request.Context(), ActorFrom(c), id, req.Reason)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b, "refund_request": refund})
}

func (h *Handler) ApproveBooking(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.ApproveBooking(c.Request.Context(), ActorFrom(c), id)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) RejectBooking(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	if c.Request.ContentLength > 0 && !BindJSON(c, &req) {
		return
	}

	b, err := h.service.RejectBooking(c.Request.Context(), ActorFrom(c), id, req.Reason)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Quote(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var q QuoteRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "check_in and check_out are required")
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), id, q.CheckIn, q.CheckOut, q.PromoCode)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}

func (h *Handler) Availability(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var q QuoteRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "check_in and check_out are required")
		return
	}

	res, err := h.service.Availability(c.Request.Context(), id, q.CheckIn, q.CheckOut)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"total_spots":     res.TotalSpots,
		"remaining_spots": res.Remaining,
		"available":       res.HasCapacity(),
	})
}
