package types

import "strings"

// FilterMode selects which fetched events are visible.
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterToday     FilterMode = "today"
	FilterTomorrow  FilterMode = "tomorrow"
	FilterWeekend   FilterMode = "weekend"
	FilterFavorites FilterMode = "favorites"
)

// ParseFilterMode normalizes a user supplied mode. "favs" is accepted as an
// alias of favorites. ok is false for unknown values.
func ParseFilterMode(s string) (FilterMode, bool) {
	switch m := FilterMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FilterAll, FilterToday, FilterTomorrow, FilterWeekend, FilterFavorites:
		return m, true
	case "favs":
		return FilterFavorites, true
	case "":
		return FilterAll, true
	default:
		return m, false
	}
}

// FilterRequest is the body of PUT /v1/filter.
type FilterRequest struct {
	Mode string `json:"mode" binding:"required"`
}
