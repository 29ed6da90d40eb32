package request

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkspot/internal/domain"
	"parkspot/internal/modules/booking"
	"parkspot/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the staff request routes. rg must already require a
// staff or admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/requests")
	{
		requests.POST("", h.Create)
		requests.POST("/:id/convert", h.Convert)
		requests.POST("/:id/extend", h.Extend)
		requests.POST("/:id/early-checkout", h.EarlyCheckout)
		requests.POST("/:id/reject", h.Reject)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !booking.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), booking.ActorFrom(c), req)
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"request": created})
}

func (h *Handler) Convert(c *gin.Context) {
	h.process(c, h.service.ConvertRequestToBooking)
}

func (h *Handler) Extend(c *gin.Context) {
	h.process(c, h.service.HandleExtensionRequest)
}

func (h *Handler) EarlyCheckout(c *gin.Context) {
	h.process(c, h.service.HandleEarlyCheckoutRequest)
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := booking.ParseID(c, "id")
	if !ok {
		return
	}
	var body RejectRequest
	if c.Request.ContentLength > 0 && !booking.BindJSON(c, &body) {
		return
	}

	req, err := h.service.RejectRequest(c.Request.Context(), id, c.GetInt64("user_id"), body.Reason)
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": req})
}

type processFunc func(ctx context.Context, requestID, staffID int64) (*domain.BookingRequest, *domain.Booking, error)

func (h *Handler) process(c *gin.Context, fn processFunc) {
	id, ok := booking.ParseID(c, "id")
	if !ok {
		return
	}

	req, b, err := fn(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": req, "booking": b})
}
