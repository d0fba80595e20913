// Package filter derives the visible subset of fetched events from the active
// filter mode, the favorites set and the current calendar date.
//
// Dates are compared as calendar days. "today" is the date of the supplied
// time in its own location; event dates are YYYY-MM-DD strings read as dates
// in that same location. An event whose date does not parse never matches a
// date-based mode.
package filter

import (
	"time"

	"github.com/NomadCrew/neoevents/types"
)

// DateLayout is the wire format of types.Event.Date.
const DateLayout = "2006-01-02"

// Apply returns the events visible under mode. "all" and unknown modes return
// events itself; other modes allocate a new slice. events is never modified.
func Apply(events []types.Event, mode types.FilterMode, favorites map[string]bool, today time.Time) []types.Event {
	switch mode {
	case types.FilterAll:
		return events
	case types.FilterFavorites:
		return keep(events, func(e types.Event) bool { return favorites[e.ID] })
	case types.FilterToday:
		day := Day(today)
		return keepDates(events, today.Location(), func(d time.Time) bool { return d.Equal(day) })
	case types.FilterTomorrow:
		day := Day(today).AddDate(0, 0, 1)
		return keepDates(events, today.Location(), func(d time.Time) bool { return d.Equal(day) })
	case types.FilterWeekend:
		start, end := WeekendWindow(today)
		return keepDates(events, today.Location(), func(d time.Time) bool {
			return !d.Before(start) && !d.After(end)
		})
	default:
		return events
	}
}

// WeekendWindow returns the Saturday and Sunday of the weekend relative to
// today. On a Saturday the window is today and tomorrow; on a Sunday it is
// just today; on weekdays it is the upcoming Saturday and Sunday.
func WeekendWindow(today time.Time) (saturday, sunday time.Time) {
	day := Day(today)
	switch day.Weekday() {
	case time.Saturday:
		return day, day.AddDate(0, 0, 1)
	case time.Sunday:
		return day, day
	default:
		start := day.AddDate(0, 0, int(time.Saturday-day.Weekday()))
		return start, start.AddDate(0, 0, 1)
	}
}

// Day truncates t to midnight of its calendar date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate reads an event date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func keep(events []types.Event, pred func(types.Event) bool) []types.Event {
	out := make([]types.Event, 0, len(events))
	for _, e := range events {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

func keepDates(events []types.Event, loc *time.Location, pred func(time.Time) bool) []types.Event {
	return keep(events, func(e types.Event) bool {
		d, ok := ParseDate(e.Date, loc)
		return ok && pred(d)
	})
}
