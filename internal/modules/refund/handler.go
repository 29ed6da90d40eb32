package refund

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

// RegisterRoutes mounts the refund review routes. rg must already be
// restricted to admins.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	refunds := rg.Group("/refunds")
	{
		refunds.GET("", h.List)
		refunds.POST("/:id/approve", h.Approve)
		refunds.POST("/:id/reject", h.Reject)
	}
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters")
		return
	}

	items, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"refunds": items})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := booking.ParseID(c, "id")
	if !ok {
		return
	}
	var req ApproveRequest
	if c.Request.ContentLength > 0 && !booking.BindJSON(c, &req) {
		return
	}

	rr, err := h.service.Approve(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"refund": rr})
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := booking.ParseID(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if c.Request.ContentLength > 0 && !booking.BindJSON(c, &req) {
		return
	}

	rr, err := h.service.Reject(c.Request.Context(), c.GetInt64("user_id"), id, req.Note)
	if err != nil {
		booking.WriteError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"refund": rr})
}
