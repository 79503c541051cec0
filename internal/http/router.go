// README: HTTP router registration; the API group sits behind Firebase auth.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lantern/internal/activity"
	"lantern/internal/booking"
	"lantern/internal/http/handlers"
	"lantern/internal/http/middleware"
	"lantern/internal/infra"
	"lantern/internal/maps"
	"lantern/internal/order"
)

type RouterDeps struct {
	Orders   *order.Service
	Bookings *booking.Service
	Activity *activity.Service
	Provider maps.Provider
	Planner  *maps.Planner
	Verifier infra.TokenVerifier
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	tracking := handlers.NewTrackingHandler(deps.Orders)
	api.PUT("/tracking/:id/location", tracking.UpdateLocation)
	api.POST("/tracking/:id/status", tracking.SetStatus)
	api.POST("/tracking/:id/delivery-location", tracking.SetDeliveryLocation)
	api.GET("/tracking/:id", tracking.Get)
	api.GET("/tracking/:id/history", tracking.History)
	api.GET("/tracking/:id/timeline", tracking.Timeline)
	api.GET("/tracking/active-deliveries", tracking.ActiveDeliveries)
	api.GET("/tracking/order-statuses", tracking.OrderStatuses)

	geo := handlers.NewGeoHandler(deps.Provider, deps.Planner)
	api.POST("/tracking/optimize-route", geo.OptimizeRoute)
	api.GET("/geo/geocode", geo.Geocode)
	api.GET("/geo/reverse-geocode", geo.ReverseGeocode)
	api.GET("/geo/nearby", geo.Nearby)
	api.GET("/geo/search", geo.Search)
	api.GET("/geo/directions", geo.Directions)
	api.POST("/geo/distance-matrix", geo.DistanceMatrix)
	api.GET("/geo/places/:place_id", geo.PlaceDetails)

	bookings := handlers.NewBookingHandler(deps.Bookings)
	api.GET("/bookings/statuses", bookings.Statuses)
	api.GET("/bookings/:id/tracking", bookings.Get)
	api.POST("/bookings/:id/status", bookings.SetStatus)
	api.GET("/bookings/:id/history", bookings.History)
	api.GET("/bookings/:id/timeline", bookings.Timeline)

	feed := handlers.NewActivityHandler(deps.Activity)
	api.GET("/users/me/activity", feed.Me)

	return r
}
