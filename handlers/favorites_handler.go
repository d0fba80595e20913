package handlers

import (
	"net/http"
	"time"

	"github.com/NomadCrew/neoevents/internal/calendar"
	"github.com/NomadCrew/neoevents/types"
	"github.com/gin-gonic/gin"
)

// FavoritesHandler serves the favorites routes.
type FavoritesHandler struct {
	favorites FavoritesServiceInterface
	loc       *time.Location
	now       func() time.Time
}

func NewFavoritesHandler(favorites FavoritesServiceInterface, loc *time.Location) *FavoritesHandler {
	if loc == nil {
		loc = time.Local
	}
	return &FavoritesHandler{favorites: favorites, loc: loc, now: time.Now}
}

// @Summary List favorites
// @Tags favorites
// @Produce json
// @Success 200 {object} types.FavoritesResponse "Favorite event IDs"
// @Router /favorites [get]
func (h *FavoritesHandler) ListFavoritesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, types.FavoritesResponse{Favorites: h.favorites.Favorites()})
}

// ToggleFavoriteHandler adds or removes an event from the favorites.
// @Summary Toggle a favorite
// @Tags favorites
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} types.ToggleFavoriteResponse "New favorite state"
// @Failure 500 {object} middleware.ErrorResponse "Favorites could not be stored"
// @Router /favorites/{id}/toggle [post]
func (h *FavoritesHandler) ToggleFavoriteHandler(c *gin.Context) {
	id := c.Param("id")
	added, err := h.favorites.ToggleFavorite(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.ToggleFavoriteResponse{
		ID:        id,
		Favorite:  added,
		Favorites: h.favorites.Favorites(),
	})
}

// CalendarHandler exports the favorited events of the current list as an
// iCalendar feed.
// @Summary Export favorites as iCalendar
// @Tags favorites
// @Produce text/calendar
// @Success 200 {string} string "iCalendar feed"
// @Router /favorites/calendar.ics [get]
func (h *FavoritesHandler) CalendarHandler(c *gin.Context) {
	body := calendar.Export(h.favorites.FavoriteEvents(), h.loc, h.now())
	c.Header("Content-Disposition", `attachment; filename="neoevents-favorites.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
