package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkspot/internal/modules/booking"
	"parkspot/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the staff lot routes. rg must already require a
// staff or admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.GET("/:id/session", h.Get)
		bookings.POST("/:id/check-in", h.CheckIn)
		bookings.POST("/:id/check-out", h.CheckOut)
	}
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := booking.ParseID(c, "id")
	if !ok {
		return
	}

	ps, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": ps})
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := booking.ParseID(c, "id")
	if !ok {
		return
	}

	ps, err := h.service.CheckIn(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": ps})
}

func (h *Handler) CheckOut(c *gin.Context) {
	id, ok := booking.ParseID(c, "id")
	if !ok {
		return
	}

	ps, b, err := h.service.CheckOut(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": ps, "booking": b})
}
