// README: Order tracking handlers: location updates, queries, timelines.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lantern/internal/http/middleware"
	"lantern/internal/order"
	"lantern/internal/types"
)

type TrackingHandler struct {
	orders *order.Service
}

func NewTrackingHandler(svc *order.Service) *TrackingHandler {
	return &TrackingHandler{orders: svc}
}

type updateLocationReq struct {
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
	Status *string  `json:"status,omitempty"`
	Notes  *string  `json:"notes,omitempty"`
}

// UpdateLocation handles PUT /api/tracking/:id/location.
func (h *TrackingHandler) UpdateLocation(c *gin.Context) {
	var req updateLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	// Pointers so that a genuine 0 coordinate is distinguishable from a
	// missing field.
	if req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}

	cmd := order.UpdateLocationCommand{
		OrderID:  types.ID(c.Param("id")),
		Actor:    middleware.CallerActor(c),
		Position: types.Point{Lat: *req.Lat, Lng: *req.Lng},
		Notes:    req.Notes,
	}
	if req.Status != nil {
		st := order.Status(*req.Status)
		cmd.NewStatus = &st
	}

	res, err := h.orders.UpdateLocation(c.Request.Context(), cmd)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

type setStatusReq struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// SetStatus handles POST /api/tracking/:id/status.
func (h *TrackingHandler) SetStatus(c *gin.Context) {
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := h.orders.SetStatus(c.Request.Context(), order.SetStatusCommand{
		OrderID: types.ID(c.Param("id")),
		Actor:   middleware.CallerActor(c),
		Status:  order.Status(req.Status),
		Notes:   req.Notes,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

type setDeliveryLocationReq struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Address  string   `json:"address"`
	Landmark string   `json:"landmark,omitempty"`
}

// SetDeliveryLocation handles POST /api/tracking/:id/delivery-location.
func (h *TrackingHandler) SetDeliveryLocation(c *gin.Context) {
	var req setDeliveryLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}

	err := h.orders.SetDeliveryLocation(c.Request.Context(), order.SetDeliveryLocationCommand{
		OrderID: types.ID(c.Param("id")),
		Actor:   middleware.CallerActor(c),
		Location: order.DeliveryLocation{
			Position: types.Point{Lat: *req.Lat, Lng: *req.Lng},
			Address:  req.Address,
			Landmark: req.Landmark,
		},
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Get handles GET /api/tracking/:id.
func (h *TrackingHandler) Get(c *gin.Context) {
	info, err := h.orders.Tracking(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerActor(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, info)
}

// History handles GET /api/tracking/:id/history.
func (h *TrackingHandler) History(c *gin.Context) {
	entries, err := h.orders.History(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerActor(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	if entries == nil {
		entries = []order.TrackingEntry{}
	}
	writeJSON(c, http.StatusOK, gin.H{"history": entries})
}

// Timeline handles GET /api/tracking/:id/timeline.
func (h *TrackingHandler) Timeline(c *gin.Context) {
	steps, err := h.orders.Timeline(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerActor(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"timeline": steps})
}

// ActiveDeliveries handles GET /api/tracking/active-deliveries. It is an
// operational view restricted to couriers and admins.
func (h *TrackingHandler) ActiveDeliveries(c *gin.Context) {
	role := middleware.CallerRole(c)
	if role != types.RoleCourier && role != types.RoleAdmin {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}
	orders, err := h.orders.ActiveDeliveries(c.Request.Context())
	if err != nil {
		writeOrderError(c, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": orders})
}

// OrderStatuses handles GET /api/tracking/order-statuses: the status
// catalog clients render pickers and timelines from.
func (h *TrackingHandler) OrderStatuses(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"statuses": order.StatusCatalog})
}
