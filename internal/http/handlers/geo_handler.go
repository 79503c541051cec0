// README: Geo handlers: geocoding, place search, route optimization.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lantern/internal/maps"
	"lantern/internal/types"
)

type GeoHandler struct {
	provider maps.Provider
	planner  *maps.Planner
}

func NewGeoHandler(provider maps.Provider, planner *maps.Planner) *GeoHandler {
	return &GeoHandler{provider: provider, planner: planner}
}

// Geocode handles GET /api/geo/geocode?address=...
func (h *GeoHandler) Geocode(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		writeError(c, http.StatusBadRequest, "address is required")
		return
	}
	result, err := h.provider.Geocode(c.Request.Context(), address)
	if err != nil {
		writeGeoError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

// ReverseGeocode handles GET /api/geo/reverse-geocode?lat=..&lng=..
func (h *GeoHandler) ReverseGeocode(c *gin.Context) {
	point, ok := queryPoint(c, "lat", "lng")
	if !ok {
		return
	}
	result, err := h.provider.ReverseGeocode(c.Request.Context(), point)
	if err != nil {
		writeGeoError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

// Nearby handles GET /api/geo/nearby?lat=..&lng=..&radius=..&type=..&keyword=..
// Results come back ranked by straight-line distance from the center.
func (h *GeoHandler) Nearby(c *gin.Context) {
	center, ok := queryPoint(c, "lat", "lng")
	if !ok {
		return
	}
	radius := uint(1500)
	if v := c.Query("radius"); v != "" {
		r, err := strconv.ParseUint(v, 10, 32)
		if err != nil || r == 0 {
			writeError(c, http.StatusBadRequest, "invalid radius")
			return
		}
		radius = uint(r)
	}

	places, err := h.provider.NearbyPlaces(c.Request.Context(), center, radius, c.Query("type"), c.Query("keyword"))
	if err != nil {
		writeGeoError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"places": maps.RankByStraightLine(center, places)})
}

// Search handles GET /api/geo/search?q=..&lat=..&lng=..&radius=..
func (h *GeoHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		writeError(c, http.StatusBadRequest, "q is required")
		return
	}
	var near *types.Point
	if c.Query("lat") != "" || c.Query("lng") != "" {
		point, ok := queryPoint(c, "lat", "lng")
		if !ok {
			return
		}
		near = &point
	}
	radius := uint(0)
	if v := c.Query("radius"); v != "" {
		r, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid radius")
			return
		}
		radius = uint(r)
	}

	places, err := h.provider.TextSearch(c.Request.Context(), query, near, radius)
	if err != nil {
		writeGeoError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"places": places})
}

// PlaceDetails handles GET /api/geo/places/:place_id.
func (h *GeoHandler) PlaceDetails(c *gin.Context) {
	detail, err := h.provider.PlaceDetails(c.Request.Context(), c.Param("place_id"))
	if err != nil {
		writeGeoError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, detail)
}

// Directions handles GET /api/geo/directions. Unlike the tolerant
// tracking reads, provider failures here surface as errors.
func (h *GeoHandler) Directions(c *gin.Context) {
	origin, ok := queryPoint(c, "origin_lat", "origin_lng")
	if !ok {
		return
	}
	dest, ok := queryPoint(c, "dest_lat", "dest_lng")
	if !ok {
		return
	}
	mode := maps.TravelMode(c.DefaultQuery("mode", string(maps.ModeDriving)))

	route, err := h.planner.Route(c.Request.Context(), origin, dest, mode)
	if err != nil {
		writeGeoError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, route)
}

type distanceMatrixReq struct {
	Origins      []types.Point `json:"origins"`
	Destinations []types.Point `json:"destinations"`
	Mode         string        `json:"mode,omitempty"`
}

// DistanceMatrix handles POST /api/geo/distance-matrix.
func (h *GeoHandler) DistanceMatrix(c *gin.Context) {
	var req distanceMatrixReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	if len(req.Origins) == 0 || len(req.Destinations) == 0 {
		writeError(c, http.StatusBadRequest, "origins and destinations are required")
		return
	}
	mode := maps.ModeDriving
	if req.Mode != "" {
		mode = maps.TravelMode(req.Mode)
	}

	matrix, err := h.provider.DistanceMatrix(c.Request.Context(), req.Origins, req.Destinations, mode)
	if err != nil {
		writeGeoError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, matrix)
}

type optimizeRouteReq struct {
	Start types.Point   `json:"start"`
	Stops []types.Point `json:"stops"`
	Mode  string        `json:"mode,omitempty"`
}

// OptimizeRoute handles POST /api/tracking/optimize-route: a multi-stop
// plan for a courier run. Fails closed when any leg cannot be routed.
func (h *GeoHandler) OptimizeRoute(c *gin.Context) {
	var req optimizeRouteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	if len(req.Stops) == 0 {
		writeError(c, http.StatusBadRequest, "at least one stop is required")
		return
	}
	mode := maps.ModeDriving
	if req.Mode != "" {
		mode = maps.TravelMode(req.Mode)
	}

	plan, err := h.planner.OptimizeRoute(c.Request.Context(), req.Start, req.Stops, mode)
	if err != nil {
		writeGeoError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, plan)
}

func queryPoint(c *gin.Context, latKey, lngKey string) (types.Point, bool) {
	lat, err := strconv.ParseFloat(c.Query(latKey), 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, latKey+" is required")
		return types.Point{}, false
	}
	lng, err := strconv.ParseFloat(c.Query(lngKey), 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, lngKey+" is required")
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
