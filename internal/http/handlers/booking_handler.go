// README: Booking tracking handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lantern/internal/booking"
	"lantern/internal/http/middleware"
	"lantern/internal/types"
)

type BookingHandler struct {
	bookings *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{bookings: svc}
}

// Get handles GET /api/bookings/:id/tracking.
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerActor(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

type bookingStatusReq struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// SetStatus handles POST /api/bookings/:id/status.
func (h *BookingHandler) SetStatus(c *gin.Context) {
	var req bookingStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := h.bookings.SetStatus(c.Request.Context(), booking.SetStatusCommand{
		BookingID: types.ID(c.Param("id")),
		Actor:     middleware.CallerActor(c),
		Status:    booking.Status(req.Status),
		Notes:     req.Notes,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// History handles GET /api/bookings/:id/history.
func (h *BookingHandler) History(c *gin.Context) {
	events, err := h.bookings.History(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerActor(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	if events == nil {
		events = []booking.StatusEvent{}
	}
	writeJSON(c, http.StatusOK, gin.H{"history": events})
}

// Timeline handles GET /api/bookings/:id/timeline.
func (h *BookingHandler) Timeline(c *gin.Context) {
	steps, err := h.bookings.Timeline(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerActor(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"timeline": steps})
}

// Statuses handles GET /api/bookings/statuses.
func (h *BookingHandler) Statuses(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"statuses": booking.StatusCatalog})
}
