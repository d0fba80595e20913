package handlers

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/NomadCrew/neoevents/errors"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultFetchWait = 10 * time.Second

// DiscoveryHandler serves the map, location, search and filter routes.
type DiscoveryHandler struct {
	discovery DiscoveryServiceInterface
	fetchWait time.Duration
	log       *zap.SugaredLogger
}

func NewDiscoveryHandler(discovery DiscoveryServiceInterface) *DiscoveryHandler {
	return &DiscoveryHandler{
		discovery: discovery,
		fetchWait: defaultFetchWait,
		log:       logger.GetLogger().Named("discovery-handler"),
	}
}

// GetMapHandler returns the current map snapshot.
// @Summary Get map snapshot
// @Description Returns the user location, the visible events and the selected event
// @Tags map
// @Produce json
// @Success 200 {object} types.Snapshot "Current snapshot"
// @Router /map [get]
func (h *DiscoveryHandler) GetMapHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.discovery.Snapshot())
}

// ListEventsHandler returns the visible events. ?filter= applies a mode for
// this read only.
// @Summary List visible events
// @Description Returns the events visible under the active filter, or under the filter given in the query
// @Tags events
// @Produce json
// @Param filter query string false "Filter mode for this read" Enums(all, today, tomorrow, weekend, favorites)
// @Success 200 {object} types.EventsResponse "Visible events"
// @Failure 400 {object} middleware.ErrorResponse "Unknown filter mode"
// @Router /events [get]
func (h *DiscoveryHandler) ListEventsHandler(c *gin.Context) {
	mode := h.discovery.Filter()
	if raw, ok := c.GetQuery("filter"); ok {
		parsed, valid := types.ParseFilterMode(raw)
		if !valid {
			_ = c.Error(apperrors.ValidationFailed("invalid filter", "unknown filter mode: "+raw))
			return
		}
		mode = parsed
	}

	c.JSON(http.StatusOK, types.EventsResponse{
		Filter: mode,
		Events: h.discovery.VisibleEventsFor(mode),
	})
}

// UpdateLocationHandler applies a position fix sent by the client and returns
// the snapshot once the resulting fetch has completed.
// @Summary Set user location
// @Description Applies a position fix and refetches events around it
// @Tags location
// @Accept json
// @Produce json
// @Param request body types.LocationUpdate true "Position fix"
// @Success 200 {object} types.Snapshot "Snapshot after the fetch"
// @Failure 400 {object} middleware.ErrorResponse "Invalid coordinates"
// @Router /location [put]
func (h *DiscoveryHandler) UpdateLocationHandler(c *gin.Context) {
	var req types.LocationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	if err := h.discovery.SetLocation(types.Coordinates{Lat: *req.Lat, Lng: *req.Lng}); err != nil {
		_ = c.Error(err)
		return
	}

	h.awaitFetches(c.Request.Context())
	c.JSON(http.StatusOK, h.discovery.Snapshot())
}

// ResetLocationHandler re-acquires the device location.
// @Summary Reset to device location
// @Description Re-acquires the device location and resets the filter to all
// @Tags location
// @Produce json
// @Success 200 {object} types.Snapshot "Snapshot after the fetch"
// @Failure 503 {object} middleware.ErrorResponse "Device location unavailable"
// @Router /location/reset [post]
func (h *DiscoveryHandler) ResetLocationHandler(c *gin.Context) {
	if _, err := h.discovery.ResetToDeviceLocation(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	h.awaitFetches(c.Request.Context())
	c.JSON(http.StatusOK, h.discovery.Snapshot())
}

// SearchHandler moves the user to a named place. A miss is not an error.
// @Summary Search a place
// @Description Geocodes a place name and moves the user there. A miss returns found=false
// @Tags location
// @Accept json
// @Produce json
// @Param request body types.SearchRequest true "Place name"
// @Success 200 {object} types.SearchResponse "Search result"
// @Failure 400 {object} middleware.ErrorResponse "Missing query"
// @Failure 429 {object} middleware.ErrorResponse "Rate limit exceeded"
// @Router /search [post]
func (h *DiscoveryHandler) SearchHandler(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	coords, found := h.discovery.Search(c.Request.Context(), req.Query)
	resp := types.SearchResponse{Found: found}
	if found {
		resp.Location = &coords
		h.awaitFetches(c.Request.Context())
	}
	resp.Snapshot = h.discovery.Snapshot()
	c.JSON(http.StatusOK, resp)
}

// SetFilterHandler changes the active filter mode.
// @Summary Set filter mode
// @Tags events
// @Accept json
// @Produce json
// @Param request body types.FilterRequest true "Filter mode"
// @Success 200 {object} types.Snapshot "Snapshot under the new filter"
// @Failure 400 {object} middleware.ErrorResponse "Unknown filter mode"
// @Router /filter [put]
func (h *DiscoveryHandler) SetFilterHandler(c *gin.Context) {
	var req types.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	mode, ok := types.ParseFilterMode(req.Mode)
	if !ok {
		_ = c.Error(apperrors.ValidationFailed("invalid filter", "unknown filter mode: "+req.Mode))
		return
	}

	h.discovery.SetFilter(mode)
	c.JSON(http.StatusOK, h.discovery.Snapshot())
}

// RefreshEventsHandler refetches events for the current location.
// @Summary Refresh events
// @Tags events
// @Produce json
// @Success 200 {object} types.Snapshot "Snapshot after the fetch"
// @Failure 502 {object} middleware.ErrorResponse "Event source failed"
// @Router /events/refresh [post]
func (h *DiscoveryHandler) RefreshEventsHandler(c *gin.Context) {
	if err := h.discovery.Refresh(c.Request.Context()); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.UpstreamError, "Failed to refresh events"))
		return
	}
	c.JSON(http.StatusOK, h.discovery.Snapshot())
}

// SelectEventHandler focuses an event.
// @Summary Select an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} types.Event "Selected event"
// @Failure 404 {object} middleware.ErrorResponse "Event not in the current list"
// @Router /events/{id}/select [put]
func (h *DiscoveryHandler) SelectEventHandler(c *gin.Context) {
	event, err := h.discovery.SelectEvent(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DirectionsHandler returns a driving directions URL, or 204 while the user
// location is unknown.
// @Summary Get driving directions
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} types.DirectionsResponse "Directions URL"
// @Success 204 "User location unknown"
// @Failure 404 {object} middleware.ErrorResponse "Event not in the current list"
// @Router /events/{id}/directions [get]
func (h *DiscoveryHandler) DirectionsHandler(c *gin.Context) {
	url, ok, err := h.discovery.NavigateTo(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, types.DirectionsResponse{URL: url})
}

func (h *DiscoveryHandler) awaitFetches(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.fetchWait)
	defer cancel()
	if err := h.discovery.AwaitFetches(ctx); err != nil {
		h.log.Warnw("Returning snapshot before fetch completed", "error", err)
	}
}
